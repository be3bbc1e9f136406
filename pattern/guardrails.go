package pattern

import "math/bits"

// metricLevels lists MetricWeight outputs strongest first
var metricLevels = [...]float64{1.0, 0.75, 0.5, 0.25}

// DownbeatRequired reports whether step 0 must sound in zone for genre.
// A MINIMAL bar always keeps its lone hit on the downbeat, whatever the
// genre; above that only downbeat genres in strong-downbeat zones do.
func DownbeatRequired(zone EnergyZone, genre Genre, t *Tuning) bool {
	if zone == ZoneMinimal {
		return true
	}
	return t.Zone(zone).StrongDownbeat && t.Genre(genre).Downbeat
}

// effectiveSpacing relaxes the zone spacing when the bar is too short to
// fit the zone minimum at full spacing
func effectiveSpacing(zone EnergyZone, length int, t *Tuning) int {
	s := t.Zone(zone).MinSpacing
	minHits := t.Zone(zone).MinHits
	if minHits > 0 && s*minHits > length {
		s = length / minHits
	}
	return s
}

// Repair fixes an anchor mask after selection:
//   - step 0 is set in MINIMAL, and in GROOVE for downbeat genres
//   - hits closer than the zone spacing are resolved by clearing the later one
//   - an empty mask gets a hit on the downbeat
//   - the count is topped up to the zone minimum on the strongest free steps
//   - the count is trimmed to target (clamped to the zone range), weakest first
//   - silences longer than the zone's max gap are broken up, by adding a hit
//     while under target and by moving hits once on it
//
// Running Repair on its own output changes nothing.
func Repair(anchor Mask, zone EnergyZone, genre Genre, length, target int, t *Tuning) Mask {
	anchor &= LengthMask(length)
	b := ZoneBounds(zone, length, t)
	spacing := effectiveSpacing(zone, length, t)
	downbeat := DownbeatRequired(zone, genre, t)

	if downbeat {
		anchor = anchor.Set(0)
	}
	anchor = enforceSpacing(anchor, spacing, length)
	if anchor == 0 {
		anchor = anchor.Set(0)
	}
	anchor = topUp(anchor, b.Min, spacing, length)
	limit := clampInt(target, b.Min, b.Max)
	anchor = trim(anchor, limit, downbeat, length)
	anchor = closeGaps(anchor, t.Zone(zone).MaxGap, limit, spacing, downbeat, length)
	return anchor
}

// longestGap finds the longest run of empty steps between hits, wrapping
// around the bar. It returns the run's first step and its size; the first
// of equal runs wins. m must not be empty.
func longestGap(m Mask, length int) (start, size int) {
	for h := 0; h < length; h++ {
		if !m.Has(h) {
			continue
		}
		if gap := (nextHit(m, h, length) - h - 1 + length) % length; gap > size {
			start, size = (h+1)%length, gap
		}
	}
	return start, size
}

// gapSquares sums the squared gaps of m. Evening out the gaps always
// lowers it.
func gapSquares(m Mask, length int) int {
	sum := 0
	for h := 0; h < length; h++ {
		if m.Has(h) {
			gap := (nextHit(m, h, length) - h - 1 + length) % length
			sum += gap * gap
		}
	}
	return sum
}

// splitPoint picks the step inside a gap that leaves the shortest halves,
// preferring the stronger metric position between two centres. It returns
// -1 when nothing in the gap clears spacing.
func splitPoint(m Mask, start, size, spacing, length int) int {
	best, bestSpan, bestW := -1, length, -1.0
	for j := 0; j < size; j++ {
		at := (start + j) % length
		if !spacingOK(m, at, spacing, length) {
			continue
		}
		span := max(j, size-1-j)
		w := MetricWeight(at, length)
		if span < bestSpan || (span == bestSpan && w > bestW) {
			best, bestSpan, bestW = at, span, w
		}
	}
	return best
}

// closeGaps breaks up silences longer than maxGap. Under limit it adds a
// hit in the longest gap; at limit it moves hits to even the gaps out.
// Every move lowers gapSquares, so the loop ends.
func closeGaps(m Mask, maxGap, limit, spacing int, protectDownbeat bool, length int) Mask {
	if maxGap <= 0 || m == 0 {
		return m
	}
	for {
		start, size := longestGap(m, length)
		if size <= maxGap {
			return m
		}
		if m.Count() < limit {
			if at := splitPoint(m, start, size, spacing, length); at >= 0 {
				m = m.Set(at)
				continue
			}
		}
		moved, ok := spreadHits(m, start, size, spacing, protectDownbeat, length)
		if !ok {
			return m
		}
		m = moved
	}
}

// spreadHits makes one move that lowers gapSquares. It first tries to move
// a hit into the gap at start, weakest hits first, then falls back to
// nudging any hit one step.
func spreadHits(m Mask, start, size, spacing int, protectDownbeat bool, length int) (Mask, bool) {
	score := gapSquares(m, length)
	movable := func(i int) bool {
		return m.Has(i) && !(protectDownbeat && i == 0)
	}
	for l := len(metricLevels) - 1; l >= 0; l-- {
		for i := length - 1; i >= 0; i-- {
			if !movable(i) || MetricWeight(i, length) != metricLevels[l] {
				continue
			}
			rest := m.Clear(i)
			best, bestScore := -1, score
			for j := 0; j < size; j++ {
				at := (start + j) % length
				if !spacingOK(rest, at, spacing, length) {
					continue
				}
				if s := gapSquares(rest.Set(at), length); s < bestScore {
					best, bestScore = at, s
				}
			}
			if best >= 0 {
				return rest.Set(best), true
			}
		}
	}
	for i := 0; i < length; i++ {
		if !movable(i) {
			continue
		}
		rest := m.Clear(i)
		for _, d := range [...]int{-1, 1} {
			at := (i + d + length) % length
			if rest.Has(at) || !spacingOK(rest, at, spacing, length) {
				continue
			}
			if next := rest.Set(at); gapSquares(next, length) < score {
				return next, true
			}
		}
	}
	return m, false
}

// enforceSpacing walks the bar from step 0 and drops any hit that lands
// within spacing of a hit already kept
func enforceSpacing(m Mask, spacing, length int) Mask {
	if spacing <= 1 {
		return m
	}
	var kept Mask
	for i := 0; i < length; i++ {
		if m.Has(i) && spacingOK(kept, i, spacing, length) {
			kept = kept.Set(i)
		}
	}
	return kept
}

func topUp(m Mask, minHits, spacing, length int) Mask {
	for _, level := range metricLevels {
		for i := 0; i < length && m.Count() < minHits; i++ {
			if m.Has(i) || MetricWeight(i, length) != level {
				continue
			}
			if spacingOK(m, i, spacing, length) {
				m = m.Set(i)
			}
		}
	}
	return m
}

// trim removes the weakest hits, latest first among equals, until at most
// limit remain. Step 0 survives when protected.
func trim(m Mask, limit int, protectDownbeat bool, length int) Mask {
	for m.Count() > limit {
		victim := -1
		weakest := 2.0
		for i := length - 1; i >= 0; i-- {
			if !m.Has(i) || (protectDownbeat && i == 0) {
				continue
			}
			if w := MetricWeight(i, length); w < weakest {
				weakest = w
				victim = i
			}
		}
		if victim < 0 {
			break
		}
		m = m.Clear(victim)
	}
	return m
}

// LimitShimmerRuns clears shimmer hits that extend a run of shimmer-only
// hits past the zone's limit. An anchor hit ends the run; runs carry over
// the bar line, so the walk starts just after the first anchor hit.
func LimitShimmerRuns(anchor, shimmer Mask, zone EnergyZone, length int, t *Tuning) Mask {
	limit := t.Zone(zone).ShimmerRun
	if limit <= 0 {
		return shimmer
	}
	start := 0
	if a := anchor & LengthMask(length); a != 0 {
		start = bits.TrailingZeros64(uint64(a)) + 1
	}
	run := 0
	for j := 0; j < length; j++ {
		i := (start + j) % length
		switch {
		case anchor.Has(i):
			run = 0
		case shimmer.Has(i):
			run++
			if run > limit {
				shimmer = shimmer.Clear(i)
			}
		}
	}
	return shimmer
}

// EnsureBackbeat gives shimmer a hit on the first backbeat for genres that
// expect one, trading away its weakest other hit to stay on budget. When
// the backbeat's own run is already at the zone's run limit the traded hit
// comes from that run, so the result still passes LimitShimmerRuns.
func EnsureBackbeat(anchor, shimmer Mask, w *Weights, zone EnergyZone, genre Genre, length int, t *Tuning) Mask {
	if !t.Genre(genre).Backbeat || zone < ZoneGroove || shimmer == 0 {
		return shimmer
	}
	q := length / 4
	if shimmer.Has(q) || shimmer.Has(3*q) || anchor.Has(q) {
		return shimmer
	}

	var run Mask
	for i := (q + length - 1) % length; i != q && !anchor.Has(i); i = (i + length - 1) % length {
		run = run.Set(i)
	}
	for i := (q + 1) % length; i != q && !anchor.Has(i); i = (i + 1) % length {
		run = run.Set(i)
	}
	pool := shimmer
	if limit := t.Zone(zone).ShimmerRun; limit > 0 && (shimmer&run).Count() >= limit {
		pool = shimmer & run
	}

	victim := -1
	weakest := 2.0
	for i := 0; i < length; i++ {
		if pool.Has(i) && w[i] < weakest {
			weakest = w[i]
			victim = i
		}
	}
	if victim >= 0 {
		shimmer = shimmer.Clear(victim)
	}
	return shimmer.Set(q)
}
