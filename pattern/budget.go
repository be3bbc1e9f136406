package pattern

import "math"

// Bounds is the anchor hit range of one zone at one length
type Bounds struct {
	Min     int `json:"min"`
	Typical int `json:"typical"`
	Max     int `json:"max"`
}

// ZoneBounds scales the zone's count rules to length. Typical and max are
// never below min.
func ZoneBounds(zone EnergyZone, length int, t *Tuning) Bounds {
	zt := t.Zone(zone)
	b := Bounds{Min: zt.MinHits}
	if zt.TypicalDiv > 0 {
		b.Typical = length / zt.TypicalDiv
	}
	if zt.MaxDiv > 0 {
		b.Max = length / zt.MaxDiv
	}
	if b.Typical < b.Min {
		b.Typical = b.Min
	}
	if b.Max < b.Typical {
		b.Max = b.Typical
	}
	return b
}

// MinSpacing is the closest two anchor hits may sit in zone
func MinSpacing(zone EnergyZone, t *Tuning) int {
	return t.Zone(zone).MinSpacing
}

// ComputeBudget works out how many hits each voice gets this bar.
// densityMul comes from the build phase and is 1 outside it.
func ComputeBudget(energy, balance float64, zone EnergyZone, length int, auxDensity AuxDensity, densityMul float64, t *Tuning) Budget {
	b := ZoneBounds(zone, length, t)
	zt := t.Zone(zone)

	progress := zoneProgress(energy, zone, t)
	anchor := float64(b.Min) + progress*float64(b.Typical-b.Min)
	anchorHits := clampInt(int(math.Round(anchor*densityMul)), b.Min, b.Max)

	ratio := clamp01(balance) * t.ShimmerRatioMax
	if zone <= ZoneGroove && ratio > 1 {
		ratio = 1
	}
	shimmerHits := clampInt(int(math.Round(float64(anchorHits)*ratio*densityMul)), 0, b.Max)

	auxHits := 0
	if zt.AuxDiv > 0 {
		base := float64(length/zt.AuxDiv) * t.AuxDensity[auxDensity] * densityMul
		auxHits = clampInt(int(math.Round(base)), 1, int(float64(length)*t.AuxCap))
	}

	return Budget{
		Zone:       zone,
		Anchor:     anchorHits,
		Shimmer:    shimmerHits,
		Aux:        auxHits,
		MinSpacing: zt.MinSpacing,
	}
}

func clampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
