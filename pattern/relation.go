package pattern

import "math/bits"

// DeriveShimmer builds the shimmer voice from the anchor under coupling.
// Interlock never lands on an anchor step, Shadow echoes the anchor one
// step late, Independent fills the gaps between anchor hits.
func DeriveShimmer(anchor Mask, w *Weights, drift float64, coupling Coupling, seeds Seeds, budget, length int, t *Tuning) Mask {
	lm := LengthMask(length)
	anchor &= lm
	switch coupling {
	case Interlock:
		return SelectTopKSeeds(w, lm&^anchor, budget, seeds, 0, length)
	case Shadow:
		return RotateLeft(anchor, 1, length) & lm
	}
	return complement(anchor, w, drift, seeds, budget, length, t)
}

// gaps lists the runs of empty steps between consecutive anchor hits,
// wrapping round the bar end
type gaps struct {
	start [MaxSteps]int
	size  [MaxSteps]int
	n     int
}

func findGaps(anchor Mask, length int) gaps {
	var g gaps
	if anchor == 0 {
		g.start[0], g.size[0], g.n = 0, length, 1
		return g
	}
	first := bits.TrailingZeros64(uint64(anchor))
	i := first
	for {
		next := nextHit(anchor, i, length)
		if size := (next - i - 1 + length) % length; size > 0 {
			g.start[g.n] = (i + 1) % length
			g.size[g.n] = size
			g.n++
		}
		i = next
		if i == first {
			break
		}
	}
	return g
}

// nextHit is the next set step after i going round the bar, or i itself
// when it is the only one
func nextHit(m Mask, i, length int) int {
	for d := 1; d <= length; d++ {
		j := (i + d) % length
		if m.Has(j) {
			return j
		}
	}
	return i
}

// shareOut splits budget across gaps in proportion to their size using
// largest remainders, lower gap index first on ties
func shareOut(g *gaps, budget int) [MaxSteps]int {
	var shares, rem [MaxSteps]int
	total := 0
	for i := 0; i < g.n; i++ {
		total += g.size[i]
	}
	if total == 0 || budget <= 0 {
		return shares
	}
	if budget > total {
		budget = total
	}
	given := 0
	for i := 0; i < g.n; i++ {
		shares[i] = budget * g.size[i] / total
		rem[i] = budget * g.size[i] % total
		given += shares[i]
	}
	for ; given < budget; given++ {
		best := -1
		for i := 0; i < g.n; i++ {
			if shares[i] >= g.size[i] {
				continue
			}
			if best < 0 || rem[i] > rem[best] {
				best = i
			}
		}
		if best < 0 {
			break
		}
		shares[best]++
		rem[best] = -1
	}
	return shares
}

func complement(anchor Mask, w *Weights, drift float64, seeds Seeds, budget, length int, t *Tuning) Mask {
	if budget <= 0 {
		return 0
	}
	g := findGaps(anchor, length)
	shares := shareOut(&g, budget)

	var out Mask
	for gi := 0; gi < g.n; gi++ {
		s := shares[gi]
		if s <= 0 {
			continue
		}
		start, size := g.start[gi], g.size[gi]
		switch {
		case drift < 0.3:
			phase := 0.0
			if t.PhasedComplement {
				phase = HashFloat(seeds.Pattern, uint32(gi)+0xC0)
				if phase >= 1 {
					phase = 0.999
				}
			}
			for j := 0; j < s; j++ {
				off := int((float64(j) + phase) * float64(size) / float64(s))
				out = out.Set((start + off) % length)
			}
		case drift < 0.7:
			out |= bestInGap(w, start, size, s, length)
		default:
			var gm Mask
			for k := 0; k < size; k++ {
				gm = gm.Set((start + k) % length)
			}
			out |= selectTopK(w, gm, 0, s, seeds.Salt(uint32(gi)*0x9E37+0xC0), 0, length)
		}
	}
	return out
}

// bestInGap takes the n heaviest steps of a gap, earlier step on ties
func bestInGap(w *Weights, start, size, n, length int) Mask {
	var out Mask
	for picked := 0; picked < n; picked++ {
		best := -1
		for k := 0; k < size; k++ {
			step := (start + k) % length
			if out.Has(step) {
				continue
			}
			if best < 0 || w[step] > w[best] {
				best = step
			}
		}
		if best < 0 {
			break
		}
		out = out.Set(best)
	}
	return out
}

// DeriveAux selects the aux voice from its own weights, with steps the
// anchor or shimmer already use scaled down so aux mostly fills around them
func DeriveAux(anchor, shimmer Mask, w *Weights, budget int, seeds Seeds, length int, t *Tuning) Mask {
	if budget <= 0 {
		return 0
	}
	taken := anchor | shimmer
	aw := *w
	for i := 0; i < length; i++ {
		if taken.Has(i) {
			aw[i] *= t.AuxCollision
		}
	}
	return SelectTopKSeeds(&aw, LengthMask(length), budget, seeds, 0, length)
}
