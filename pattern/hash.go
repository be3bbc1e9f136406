package pattern

import "math"

// All randomness in the generator comes from these pure integer hashes.
// Same inputs, same outputs; there is no RNG state anywhere.

const goldenRatio = 0x9E3779B9

// Hash mixes seed and salt into a well-distributed 32-bit value
func Hash(seed, salt uint32) uint32 {
	h := seed ^ (salt * goldenRatio)
	h ^= h >> 16
	h *= 0x85EBCA6B
	h ^= h >> 13
	h *= 0xC2B2AE35
	h ^= h >> 16
	return h
}

// HashFloat maps (seed, salt) to [0,1]
func HashFloat(seed, salt uint32) float64 {
	return float64(Hash(seed, salt)>>8) / 16777215.0
}

// HashCombine folds value into seed
func HashCombine(seed, value uint32) uint32 {
	return seed ^ (value + goldenRatio + (seed << 6) + (seed >> 2))
}

// uniformOpen maps (seed, salt) into the open interval (0,1) so the
// double log in gumbel never sees 0 or 1
func uniformOpen(seed, salt uint32) float64 {
	u := float64(Hash(seed, salt)>>8) / 16777216.0
	return clamp(u, 1e-6, 1-1e-6)
}

// gumbel returns standard Gumbel noise by inverse CDF
func gumbel(seed, salt uint32) float64 {
	return -math.Log(-math.Log(uniformOpen(seed, salt)))
}

// PhraseSeed derives the varying seed for phrase n from a pattern seed
func PhraseSeed(patternSeed, phrase uint32) uint32 {
	if phrase == 0 {
		return patternSeed ^ 0xDEADBEEF
	}
	return HashCombine(patternSeed, phrase)
}

// Reseed derives a fresh pattern seed, used when a reseed is requested
func Reseed(patternSeed, counter uint32) uint32 {
	s := patternSeed ^ counter*goldenRatio
	s ^= s >> 16
	s *= 0x85EBCA6B
	if s == 0 {
		s = 0x12345678
	}
	return s
}
