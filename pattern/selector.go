package pattern

import "math"

const minWeight = 1e-6

// Seeds picks the noise seed per step. Steps whose metric stability is
// above Drift use the locked pattern seed, the rest the phrase seed, so
// raising drift lets weak positions wander from phrase to phrase first.
type Seeds struct {
	Pattern uint32
	Phrase  uint32
	Drift   float64
}

// FixedSeed uses one seed for every step
func FixedSeed(seed uint32) Seeds {
	return Seeds{Pattern: seed, Phrase: seed}
}

// At returns the seed for step
func (s Seeds) At(step, length int) uint32 {
	if MetricWeight(step, length) > s.Drift {
		return s.Pattern
	}
	return s.Phrase
}

// Salt xors salt into both seeds
func (s Seeds) Salt(salt uint32) Seeds {
	s.Pattern ^= salt
	s.Phrase ^= salt
	return s
}

// SelectTopK draws k eligible steps without replacement, proportional to
// their weights, using the Gumbel-max trick with hashed noise. Candidates
// closer than minSpacing (circular) to an accepted hit are skipped, so
// fewer than k hits may come back.
func SelectTopK(w *Weights, eligible Mask, k int, seed uint32, minSpacing, length int) Mask {
	return selectTopK(w, eligible, 0, k, FixedSeed(seed), minSpacing, length)
}

// SelectTopKSeeds is SelectTopK with per-step drift seeds
func SelectTopKSeeds(w *Weights, eligible Mask, k int, seeds Seeds, minSpacing, length int) Mask {
	return selectTopK(w, eligible, 0, k, seeds, minSpacing, length)
}

// selectTopK treats pre as already accepted for spacing and returns only
// the newly chosen steps. Everything lives in fixed arrays.
func selectTopK(w *Weights, eligible, pre Mask, k int, seeds Seeds, minSpacing, length int) Mask {
	if k <= 0 || length <= 0 {
		return 0
	}
	if length > MaxSteps {
		length = MaxSteps
	}
	eligible &= LengthMask(length) &^ pre

	var scores [MaxSteps]float64
	var order [MaxSteps]int8
	n := 0
	for i := 0; i < length; i++ {
		if !eligible.Has(i) {
			continue
		}
		score := math.Log(math.Max(w[i], minWeight)) + gumbel(seeds.At(i, length), uint32(i))
		// insertion keeps the list sorted by score, lower step first on ties
		j := n
		for j > 0 && scores[j-1] < score {
			scores[j] = scores[j-1]
			order[j] = order[j-1]
			j--
		}
		scores[j] = score
		order[j] = int8(i)
		n++
	}

	accepted := pre
	var out Mask
	picked := 0
	for idx := 0; idx < n && picked < k; idx++ {
		step := int(order[idx])
		if !spacingOK(accepted, step, minSpacing, length) {
			continue
		}
		accepted = accepted.Set(step)
		out = out.Set(step)
		picked++
	}
	return out
}

// spacingOK reports whether step sits at least minSpacing steps (circular)
// from every hit in m
func spacingOK(m Mask, step, minSpacing, length int) bool {
	for d := 1; d < minSpacing && d < length; d++ {
		if m.Has((step+d)%length) || m.Has((step-d+length)%length) {
			return false
		}
	}
	return true
}

// circularDistance is the shorter way round between a and b
func circularDistance(a, b, length int) int {
	d := abs(a - b)
	if length-d < d {
		return length - d
	}
	return d
}
