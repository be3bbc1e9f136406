package sequencer

import (
	"fmt"
	"math"
	"strings"

	"go-rhythm/pattern"
)

// ResetMode is how far back a reset pulse sends the playhead
type ResetMode int

const (
	ResetPhrase ResetMode = iota // next step is step 0 of bar 0
	ResetBar                     // next step is step 0, bar kept
	ResetStep                    // step 0 right now, fired immediately
	NumResetModes
)

var resetModeNames = [...]string{"phrase", "bar", "step"}

func (r ResetMode) String() string {
	if r >= 0 && r < NumResetModes {
		return resetModeNames[r]
	}
	return fmt.Sprintf("reset(%d)", int(r))
}

// ParseResetMode accepts the lower-case mode name
func ParseResetMode(s string) (ResetMode, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range resetModeNames {
		if n == s {
			return ResetMode(i), true
		}
	}
	return ResetPhrase, false
}

// AuxMode selects what the aux output carries
type AuxMode int

const (
	AuxHat      AuxMode = iota // the generated aux pattern
	AuxFillGate                // gate held high through the fill zone
	AuxPhraseCV                // velocity follows phrase progress
	AuxEvent                   // trigger on phrase boundaries and regenerations
	NumAuxModes
)

var auxModeNames = [...]string{"hat", "fill-gate", "phrase-cv", "event"}

func (a AuxMode) String() string {
	if a >= 0 && a < NumAuxModes {
		return auxModeNames[a]
	}
	return fmt.Sprintf("aux(%d)", int(a))
}

// ParseAuxMode accepts the mode name, with _ or - as separator
func ParseAuxMode(s string) (AuxMode, bool) {
	s = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	for i, n := range auxModeNames {
		if n == s {
			return AuxMode(i), true
		}
	}
	return AuxHat, false
}

// Limits
const (
	MinBPM           = 30
	MaxBPM           = 200
	MaxClockDivision = 24
	MaxPhraseBars    = 16

	// ChangeThreshold is how far a continuous control has to move since the
	// last generation before the bar is rebuilt early
	ChangeThreshold = 0.05
)

// Controls is everything the control-rate side hands the sequencer. A
// published value is never modified again.
type Controls struct {
	pattern.Params

	BPM           float64   `json:"bpm"`
	ClockDivision int       `json:"clockDivision"`
	ResetMode     ResetMode `json:"resetMode"`
	AuxMode       AuxMode   `json:"auxMode"`
	PhraseBars    int       `json:"phraseBars"`
	GateMs        float64   `json:"gateMs"`
}

// DefaultControls is the power-on state
func DefaultControls() Controls {
	return Controls{
		Params:        pattern.DefaultParams(),
		BPM:           120,
		ClockDivision: 1,
		ResetMode:     ResetPhrase,
		AuxMode:       AuxHat,
		PhraseBars:    4,
		GateMs:        10,
	}
}

// Clamp pins every field to its legal range
func (c Controls) Clamp() Controls {
	c.Params = c.Params.Clamp()
	if math.IsNaN(c.BPM) {
		c.BPM = 120
	}
	c.BPM = math.Max(MinBPM, math.Min(MaxBPM, c.BPM))
	c.ClockDivision = clampInt(c.ClockDivision, 1, MaxClockDivision)
	c.PhraseBars = clampInt(c.PhraseBars, 1, MaxPhraseBars)
	if math.IsNaN(c.GateMs) || c.GateMs < 1 {
		c.GateMs = 1
	}
	if c.GateMs > 100 {
		c.GateMs = 100
	}
	if c.ResetMode < 0 || c.ResetMode >= NumResetModes {
		c.ResetMode = ResetPhrase
	}
	if c.AuxMode < 0 || c.AuxMode >= NumAuxModes {
		c.AuxMode = AuxHat
	}
	return c
}

// PatternChanged reports whether c differs from prev enough to rebuild the
// bar: any continuous pattern control moved by ChangeThreshold or more, or
// any discrete one changed at all
func (c *Controls) PatternChanged(prev *Controls) bool {
	a, b := &c.Params, &prev.Params
	if a.Genre != b.Genre || a.Coupling != b.Coupling || a.AuxDensity != b.AuxDensity ||
		a.Length != b.Length || a.Seed != b.Seed {
		return true
	}
	pairs := [...][2]float64{
		{a.Shape, b.Shape},
		{a.Energy, b.Energy},
		{a.AxisX, b.AxisX},
		{a.AxisY, b.AxisY},
		{a.Drift, b.Drift},
		{a.Accent, b.Accent},
		{a.Balance, b.Balance},
		{a.Build, b.Build},
		{a.Swing, b.Swing},
	}
	for _, p := range pairs {
		if math.Abs(p[0]-p[1]) >= ChangeThreshold {
			return true
		}
	}
	return false
}

// ParamNames lists the continuous controls Set understands
var ParamNames = []string{"shape", "energy", "axisX", "axisY", "drift", "accent", "balance", "build", "swing"}

// param returns a pointer to the named continuous control
func (c *Controls) param(name string) *float64 {
	switch strings.ToLower(name) {
	case "shape":
		return &c.Shape
	case "energy":
		return &c.Energy
	case "axisx", "axis-x", "x":
		return &c.AxisX
	case "axisy", "axis-y", "y":
		return &c.AxisY
	case "drift":
		return &c.Drift
	case "accent":
		return &c.Accent
	case "balance":
		return &c.Balance
	case "build":
		return &c.Build
	case "swing":
		return &c.Swing
	}
	return nil
}

// Set writes the named continuous control, clamped to [0,1]. It returns
// false for unknown names.
func (c *Controls) Set(name string, v float64) bool {
	p := c.param(name)
	if p == nil {
		return false
	}
	*p = math.Max(0, math.Min(1, v))
	return true
}

// Get reads the named continuous control
func (c *Controls) Get(name string) (float64, bool) {
	p := c.param(name)
	if p == nil {
		return 0, false
	}
	return *p, true
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
