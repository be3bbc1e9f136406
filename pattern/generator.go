package pattern

// anchorEligibility keeps sparse zones on the grid: quarters in MINIMAL,
// eighths in GROOVE, anything above
func anchorEligibility(zone EnergyZone, length int) Mask {
	lm := LengthMask(length)
	switch zone {
	case ZoneMinimal:
		return 0x1111111111111111 & lm
	case ZoneGroove:
		return 0x5555555555555555 & lm
	}
	return lm
}

// Generate builds one bar for p. It is a pure function of (p, t): no
// state, no I/O, identical inputs give identical results. Steps:
// weights, budget, euclidean blend + selection for the anchor, guard
// rails, shimmer and aux derivation, velocities, the fill burst and
// timing.
func Generate(p Params, t *Tuning) Result {
	p = p.Clamp()
	length := p.Length

	zone := ZoneFor(p.Energy, t)
	mods := ComputeBuildModifiers(p.Build, p.PhraseProgress, t)
	budget := ComputeBudget(p.Energy, p.Balance, zone, length, p.AuxDensity, mods.DensityMultiplier, t)
	weights := ComputeWeights(p, t)

	phraseSeed := p.PhraseSeed
	if phraseSeed == 0 {
		phraseSeed = p.Seed
	}
	seeds := Seeds{Pattern: p.Seed, Phrase: phraseSeed, Drift: p.Drift}

	var r Result
	r.Length = length
	r.Zone = zone
	r.Phase = mods.Phase
	r.Budget = budget

	// anchor
	rotation := 0
	if !DownbeatRequired(zone, p.Genre, t) {
		rotation = EuclidRotation(p.Seed, length)
	}
	ratio := EuclideanRatio(p.Genre, p.AxisX, zone, t)
	anchor := BlendWithWeights(budget.Anchor, &weights[Anchor], ratio, seeds.Salt(t.EuclidSalt),
		anchorEligibility(zone, length), budget.MinSpacing, length, rotation)
	anchor = Repair(anchor, zone, p.Genre, length, budget.Anchor, t)

	// shimmer
	shimmer := DeriveShimmer(anchor, &weights[Shimmer], p.Drift, p.Coupling, seeds.Salt(t.Salts[Shimmer]),
		budget.Shimmer, length, t)
	if p.Coupling != Shadow {
		shimmer = LimitShimmerRuns(anchor, shimmer, zone, length, t)
		shimmer = EnsureBackbeat(anchor, shimmer, &weights[Shimmer], zone, p.Genre, length, t)
	}

	// aux
	aux := DeriveAux(anchor, shimmer, &weights[Aux], budget.Aux, seeds.Salt(t.Salts[Aux]), length, t)

	r.Masks = [NumVoices]Mask{anchor, shimmer, aux}

	for v := Voice(0); v < NumVoices; v++ {
		vs := p.Seed ^ t.Salts[v]
		m := r.Masks[v]
		for i := 0; i < length; i++ {
			if !m.Has(i) {
				continue
			}
			vel, accented := ComputeVelocity(p.Accent, i, length, vs, v, t)
			if mods.ForceAccents && v == Anchor {
				accented = true
				vel += float32(t.Velocity.BoostAt1)
			}
			vel += float32(mods.VelocityBoost)
			if vel > 1 {
				vel = 1
			}
			r.Velocity[v][i] = vel
			if accented {
				r.Accents[v] = r.Accents[v].Set(i)
			}
		}
	}

	// fill burst
	if p.FillSteps > 0 {
		burst, vel := FillBurst(p.Energy, p.Shape, anchor|shimmer, p.FillSteps, length, p.Seed^t.Burst.Salt, t)
		for i := 0; i < length; i++ {
			if burst.Has(i) && !r.Masks[Aux].Has(i) {
				r.Velocity[Aux][i] = vel[i]
			}
		}
		r.Masks[Aux] |= burst
	}

	r.Swing = float32(ComputeTiming(&r.Timing, p.Genre, p.Swing, zone, p.Seed, length, t))
	return r
}
