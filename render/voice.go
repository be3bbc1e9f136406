package render

import (
	"math"

	"github.com/gopxl/beep"

	"go-rhythm/pattern"
)

// click is a one-shot drum voice restarted by each trigger. Anchor is a
// pitch-swept sine, shimmer a tone plus noise, aux high-passed noise.
type click struct {
	kind  pattern.Voice
	rate  float64
	level float64

	amp, ampDecay     float64
	pitch, pitchDecay float64
	phase             float64

	noise  uint32
	hpPrev float64
	hpOut  float64
}

func newClick(kind pattern.Voice, rate beep.SampleRate) click {
	sr := float64(rate)
	c := click{kind: kind, rate: sr, noise: 0x9E3779B9 + uint32(kind)}
	var ampTau, pitchTau float64
	switch kind {
	case pattern.Anchor:
		ampTau, pitchTau = 0.25, 0.03
	case pattern.Shimmer:
		ampTau, pitchTau = 0.12, 0.01
	default:
		ampTau, pitchTau = 0.04, 0.01
	}
	c.ampDecay = math.Exp(-1 / (ampTau * sr))
	c.pitchDecay = math.Exp(-1 / (pitchTau * sr))
	return c
}

func (c *click) trigger(velocity float32) {
	c.level = float64(velocity)
	c.amp = 1
	c.pitch = 1
	c.phase = 0
}

// white returns noise in [-1,1). xorshift keeps it allocation free and
// identical between renders.
func (c *click) white() float64 {
	x := c.noise
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	c.noise = x
	return float64(x)/float64(1<<31) - 1
}

func (c *click) next() float64 {
	if c.amp < 1e-4 {
		return 0
	}
	var v float64
	switch c.kind {
	case pattern.Anchor:
		freq := 48 + 110*c.pitch
		v = math.Sin(2 * math.Pi * c.phase)
		c.phase += freq / c.rate
	case pattern.Shimmer:
		freq := 180 + 60*c.pitch
		v = 0.45*math.Sin(2*math.Pi*c.phase) + 0.55*c.white()
		c.phase += freq / c.rate
	default:
		n := c.white()
		c.hpOut = 0.85 * (c.hpOut + n - c.hpPrev)
		c.hpPrev = n
		v = c.hpOut
	}
	c.phase -= math.Floor(c.phase)
	out := v * c.amp * c.level
	c.amp *= c.ampDecay
	c.pitch *= c.pitchDecay
	return out
}
