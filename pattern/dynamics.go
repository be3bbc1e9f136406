package pattern

const (
	accentSalt    = 0x41434E54
	variationSalt = 0x56415249
	jitterSalt    = 0x4A495454
)

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// ComputeVelocity returns the velocity of a hit on step and whether it
// is accented. Accent widens the range between quiet and loud hits and
// raises the odds of an accent; velocity never drops below the audible floor.
func ComputeVelocity(accent float64, step, length int, seed uint32, voice Voice, t *Tuning) (float32, bool) {
	vt := &t.Velocity
	a := clamp01(accent)
	floor := lerp(vt.FloorAt0, vt.FloorAt1, a)
	ceil := lerp(vt.CeilAt0, vt.CeilAt1, a)
	variation := lerp(vt.VariationAt0, vt.VariationAt1, a)
	prob := lerp(vt.ProbAt0, vt.ProbAt1, a)
	boost := lerp(vt.BoostAt0, vt.BoostAt1, a)

	metric := MetricWeight(step, length)
	accented := t.AccentMasks[voice].Has(step) && HashFloat(seed^accentSalt, uint32(step)) < prob
	v := floor + metric*(ceil-floor)
	if accented {
		v += boost
	}
	v += (HashFloat(seed^variationSalt, uint32(step)) - 0.5) * variation
	return float32(clamp(v, vt.Min, 1)), accented
}

// BuildModifiers is the phrase-arc effect on density and velocity
type BuildModifiers struct {
	DensityMultiplier float64    `json:"densityMultiplier"`
	VelocityBoost     float64    `json:"velocityBoost"`
	Phase             BuildPhase `json:"phase"`
	ForceAccents      bool       `json:"forceAccents"`
}

// PhaseFor places phrase progress in the build arc
func PhaseFor(progress float64, t *Tuning) BuildPhase {
	phase := PhaseGroove
	for p := PhaseBuild; p <= PhaseFill; p++ {
		if progress >= t.Phases[p].Start {
			phase = p
		}
	}
	return phase
}

// ComputeBuildModifiers ramps density and velocity through the phases of
// the phrase, scaled by build. The groove phase is left untouched.
func ComputeBuildModifiers(build, progress float64, t *Tuning) BuildModifiers {
	build = clamp01(build)
	progress = clamp01(progress)
	phase := PhaseFor(progress, t)
	pt := &t.Phases[phase]

	end := 1.0
	if phase < PhaseFill {
		end = t.Phases[phase+1].Start
	}
	local := 0.0
	if end > pt.Start {
		local = clamp01((progress - pt.Start) / (end - pt.Start))
	}

	m := BuildModifiers{Phase: phase, DensityMultiplier: 1}
	if phase == PhaseGroove {
		return m
	}
	density := lerp(pt.DensityFrom, pt.DensityTo, local)
	m.DensityMultiplier = 1 + build*(density-1)
	m.VelocityBoost = build * lerp(pt.VelocityFrom, pt.VelocityTo, local)
	m.ForceAccents = phase == PhaseFill && build >= t.ForceAccentBuild
	return m
}

// ComputeSwing is the delay applied to odd steps as a fraction of a step
func ComputeSwing(genre Genre, swing float64, zone EnergyZone, t *Tuning) float64 {
	s := t.Genre(genre).SwingBase * (1 + clamp01(swing))
	return clamp(s, 0, t.Zone(zone).SwingCap)
}

// ComputeTiming fills the per-step delay table: swing on odd steps plus a
// seeded jitter for genres that use it. Delays are never negative.
func ComputeTiming(out *[MaxSteps]float32, genre Genre, swing float64, zone EnergyZone, seed uint32, length int, t *Tuning) float64 {
	s := ComputeSwing(genre, swing, zone, t)
	jitter := t.Genre(genre).Jitter
	for i := range out {
		out[i] = 0
	}
	for i := 0; i < length; i++ {
		d := 0.0
		if i%2 == 1 {
			d = s
		}
		if jitter > 0 {
			d += HashFloat(seed^jitterSalt, uint32(i)) * jitter
		}
		out[i] = float32(d)
	}
	return s
}
