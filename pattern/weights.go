package pattern

import "math"

// ZoneFor maps energy onto its zone using the tuning thresholds
func ZoneFor(energy float64, t *Tuning) EnergyZone {
	switch {
	case energy < t.ZoneThresholds[0]:
		return ZoneMinimal
	case energy < t.ZoneThresholds[1]:
		return ZoneGroove
	case energy < t.ZoneThresholds[2]:
		return ZoneBuild
	}
	return ZonePeak
}

// zoneProgress is how far energy has travelled through its zone, in [0,1]
func zoneProgress(energy float64, zone EnergyZone, t *Tuning) float64 {
	lo, hi := 0.0, 1.0
	if zone > ZoneMinimal {
		lo = t.ZoneThresholds[zone-1]
	}
	if zone < ZonePeak {
		hi = t.ZoneThresholds[zone]
	}
	if hi <= lo {
		return 1
	}
	return clamp01((energy - lo) / (hi - lo))
}

// MetricWeight is the strength of a step in the bar's metric hierarchy:
// 1 on the downbeat and half bar, then quarters, eighths, the rest.
func MetricWeight(step, length int) float64 {
	if step == 0 || step*2 == length {
		return 1.0
	}
	if length <= 16 {
		if step%2 == 0 {
			return 0.75
		}
		return 0.25
	}
	if step%4 == 0 {
		return 0.75
	}
	if step%2 == 0 {
		return 0.5
	}
	return 0.25
}

func smoothstep(edge0, edge1, x float64) float64 {
	if edge1 <= edge0 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	u := clamp01((x - edge0) / (edge1 - edge0))
	return u * u * (3 - 2*u)
}

func bell(x, center, width float64) float64 {
	if width <= 0 {
		return 0
	}
	d := (x - center) / width
	return math.Exp(-0.5 * d * d)
}

// CurveMix is the blend of the three weight tables for one shape value
type CurveMix struct {
	Euclid float64
	Sync   float64
	Random float64
}

// Curves computes the normalized blend factors for shape
func Curves(shape float64, t *Tuning) CurveMix {
	c := CurveMix{
		Euclid: 1 - smoothstep(t.EuclidFadeStart, t.EuclidFadeEnd, shape),
		Sync:   bell(shape, t.SyncCenter, t.SyncWidth),
		Random: smoothstep(t.RandomFadeStart, t.RandomFadeEnd, shape),
	}
	total := c.Euclid + c.Sync + c.Random
	if total < 0.001 {
		return CurveMix{Sync: 1}
	}
	c.Euclid /= total
	c.Sync /= total
	c.Random /= total
	return c
}

// stable is the metric-grid table; anchor leans on downbeats, shimmer on
// backbeats and aux on offbeats
func stable(v Voice, step, length int, energy float64) float64 {
	var w float64
	switch v {
	case Shimmer:
		quarter := length / 4
		switch {
		case quarter > 0 && step%(length/2) == quarter:
			w = 1.0
		case step%4 == 0:
			w = 0.7
		case step%2 == 0:
			w = 0.45
		default:
			w = 0.25
		}
	case Aux:
		w = 1.15 - MetricWeight(step, length)
	default:
		switch {
		case step == 0 || step*2 == length:
			w = 1.0
		case step%4 == 0:
			w = 0.85
		case step%2 == 0:
			w = 0.5
		default:
			w = 0.25
		}
	}
	return w * (0.3 + 0.7*energy)
}

func isAnticipation(step, length int) bool {
	if step == length-1 {
		return true
	}
	return step%4 == 3 && step < 28
}

// syncopated suppresses the downbeat and favors anticipations and offbeats
func syncopated(step, length int, energy float64, seed uint32) float64 {
	n := HashFloat(seed, uint32(step)+0x5C0)
	var w float64
	switch {
	case step == 0:
		w = 0.5 + 0.2*n
	case isAnticipation(step, length):
		w = 0.9 + 0.15*n
	case step%2 == 1:
		w = 0.6 + 0.2*n
	case step%4 == 0:
		w = 0.6
	default:
		w = 0.4
	}
	return w * (0.4 + 0.6*energy)
}

// wild is seeded noise with a faint metric pull
func wild(step, length int, energy float64, seed uint32) float64 {
	n := HashFloat(seed, uint32(step)+0x3A1D)
	w := 0.3 + 0.3*energy + (n-0.5)*(0.3+0.4*energy)*2
	if step == 0 {
		w += 0.15
	} else if step%4 == 0 {
		w += 0.08
	}
	return clamp01(w)
}

// applyAxisBias shifts weight between strong and weak metric positions.
// axisX > 0.5 moves weight off strong beats onto weak ones, below 0.5 the
// reverse. axisY scales how loud the weak positions are.
func applyAxisBias(w *Weights, length int, shape, axisX, axisY float64, t *Tuning) {
	xBias := (axisX - 0.5) * 2
	yBias := (axisY - 0.5) * 2
	broken := shape > 0.6 && axisX > 0.7
	for i := 0; i < length; i++ {
		metric := MetricWeight(i, length)
		weak := 1 - 2*metric // > 0 on weak positions, < 0 on strong ones
		f := 1.0
		switch {
		case xBias > 0 && weak < 0:
			f += t.AxisXStrength * xBias * weak
		case xBias > 0:
			f += t.AxisXStrength * 1.33 * xBias * weak
		case xBias < 0:
			f += t.AxisXStrength * xBias * weak
		}
		f *= 1 + t.AxisYStrength*yBias*(1-metric)
		if broken {
			// flatten the hierarchy toward the mean
			f = 0.5*f + 0.5*(1-metric+0.25)
		}
		w[i] = clamp01(w[i] * math.Max(f, 0))
	}
}

// ComputeWeights returns one weight array per voice. Steps beyond the bar
// length are zero.
func ComputeWeights(p Params, t *Tuning) [NumVoices]Weights {
	var out [NumVoices]Weights
	mix := Curves(p.Shape, t)
	for v := Voice(0); v < NumVoices; v++ {
		vs := p.Seed ^ t.Salts[v]
		w := &out[v]
		for i := 0; i < p.Length; i++ {
			w[i] = mix.Euclid*stable(v, i, p.Length, p.Energy) +
				mix.Sync*syncopated(i, p.Length, p.Energy, vs) +
				mix.Random*wild(i, p.Length, p.Energy, vs)
		}
		applyAxisBias(w, p.Length, p.Shape, p.AxisX, p.AxisY, t)
		for i := 0; i < p.Length; i++ {
			nudge := (HashFloat(vs, uint32(i)+0xB1A5) - 0.5) * t.Perturb
			w[i] = clamp01(w[i] + nudge)
		}
	}
	return out
}
