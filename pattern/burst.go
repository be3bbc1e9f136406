package pattern

// FillBurst lays a run of aux hits over the last fill steps of the bar,
// the closing flourish of a phrase. Energy sets how many hits; shape picks
// the placement: straight divisions, jittered euclidean, then scattered.
// Hits within one step of main (anchor and shimmer) are ducked. The result
// only ever touches steps in [length-fill, length).
func FillBurst(energy, shape float64, main Mask, fill, length int, seed uint32, t *Tuning) (Mask, [MaxSteps]float32) {
	var vel [MaxSteps]float32
	fill = min(fill, length)
	if fill <= 0 {
		return 0, vel
	}
	bt := &t.Burst
	energy = clamp01(energy)
	shape = clamp01(shape)
	start := length - fill

	count := bt.MinHits + int(energy*float64(bt.MaxHits-bt.MinHits))
	count = min(count, bt.MaxHits, fill)

	base := bt.Velocity + bt.VelocityBonus*energy
	var used Mask
	for i := 0; i < count; i++ {
		at := burstTarget(i, count, fill, shape, seed, bt)
		at = nearestFree(at, fill, used)
		if at < 0 {
			break
		}
		used = used.Set(at)

		step := start + at
		v := base
		if near(main, step, length) {
			v *= bt.Duck
		}
		v *= 0.9 + 0.1*HashFloat(seed^0x3, uint32(at))
		vel[step] = float32(clamp01(v))
	}
	return used << uint(start), vel
}

// burstTarget is where trigger i of count wants to land, relative to the
// start of the fill
func burstTarget(i, count, fill int, shape float64, seed uint32, bt *BurstTuning) int {
	even := i * fill / count
	switch {
	case shape < bt.EvenBelow:
		return even
	case shape < bt.EuclidBelow:
		norm := clamp01((shape - bt.EvenBelow) / (bt.EuclidBelow - bt.EvenBelow))
		jitter := int((HashFloat(seed^0x1, uint32(i)) - 0.5) * norm * bt.Jitter)
		return ((even+jitter)%fill + fill) % fill
	}
	return int(HashFloat(seed^0x2, uint32(i))*float64(fill)) % fill
}

// nearestFree searches outwards from at, left first, for a step not in
// used. It returns -1 when all fill steps are taken.
func nearestFree(at, fill int, used Mask) int {
	if !used.Has(at) {
		return at
	}
	for off := 1; off < fill; off++ {
		if l := (at - off + fill) % fill; !used.Has(l) {
			return l
		}
		if r := (at + off) % fill; !used.Has(r) {
			return r
		}
	}
	return -1
}

func near(m Mask, step, length int) bool {
	for d := -1; d <= 1; d++ {
		if m.Has((step + d + length) % length) {
			return true
		}
	}
	return false
}
