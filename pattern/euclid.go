package pattern

import "math"

// Euclidean spreads k hits over n steps as evenly as possible. The
// accumulator starts at n-k so step 0 is always a hit.
func Euclidean(k, n int) Mask {
	if n <= 0 || k <= 0 {
		return 0
	}
	if n > MaxSteps {
		n = MaxSteps
	}
	if k >= n {
		return LengthMask(n)
	}
	var m Mask
	acc := n - k
	for i := 0; i < n; i++ {
		acc += k
		if acc >= n {
			acc -= n
			m = m.Set(i)
		}
	}
	return m
}

// Rotate shifts a pattern later by offset steps within n
func Rotate(m Mask, offset, n int) Mask {
	return RotateLeft(m, offset, n)
}

// EuclideanRatio is the share of the anchor budget taken from the
// euclidean skeleton. It tapers from the genre max to min as axisX rises
// and fades out in the denser zones.
func EuclideanRatio(genre Genre, axisX float64, zone EnergyZone, t *Tuning) float64 {
	g := t.Genre(genre)
	r := g.EuclidMax - (g.EuclidMax-g.EuclidMin)*clamp01(axisX)
	return clamp01(r * t.Zone(zone).EuclidScale)
}

// EuclidRotation picks a quarter-aligned rotation from the seed
func EuclidRotation(seed uint32, length int) int {
	quarters := length / 4
	if quarters <= 1 {
		return 0
	}
	return int(Hash(seed, 0x0707)%uint32(quarters)) * 4
}

// BlendWithWeights reserves round(budget*ratio) hits from a rotated
// euclidean pattern and fills the rest with weighted selection over the
// remaining eligible steps. Euclidean hits count toward spacing.
func BlendWithWeights(budget int, w *Weights, ratio float64, seeds Seeds, eligible Mask, minSpacing, length, rotation int) Mask {
	if budget <= 0 {
		return 0
	}
	euclidHits := int(math.Round(float64(budget) * clamp01(ratio)))
	skeleton := Rotate(Euclidean(euclidHits, length), rotation, length)
	remaining := budget - skeleton.Count()
	if remaining <= 0 {
		return skeleton
	}
	fill := selectTopK(w, eligible&^skeleton&LengthMask(length), skeleton, remaining, seeds, minSpacing, length)
	return skeleton | fill
}
