package sequencer

import (
	"math"
	"testing"

	"go-rhythm/pattern"
)

func TestControlsClamp(t *testing.T) {
	c := DefaultControls()
	c.BPM = 500
	c.ClockDivision = 0
	c.PhraseBars = 99
	c.GateMs = math.NaN()
	c.ResetMode = 7
	c.AuxMode = -1
	c.Energy = 2
	c = c.Clamp()
	if c.BPM != MaxBPM || c.ClockDivision != 1 || c.PhraseBars != MaxPhraseBars {
		t.Errorf("limits not applied: %+v", c)
	}
	if c.GateMs != 1 || c.ResetMode != ResetPhrase || c.AuxMode != AuxHat {
		t.Errorf("fallbacks not applied: %+v", c)
	}
	if c.Energy != 1 {
		t.Errorf("pattern params not clamped: %v", c.Energy)
	}
}

func TestPatternChanged(t *testing.T) {
	base := DefaultControls()
	tests := []struct {
		name string
		edit func(*Controls)
		want bool
	}{
		{"nothing", func(*Controls) {}, false},
		{"small energy", func(c *Controls) { c.Energy += 0.04 }, false},
		{"big energy", func(c *Controls) { c.Energy += 0.06 }, true},
		{"drift", func(c *Controls) { c.Drift = 0.5 }, true},
		{"genre", func(c *Controls) { c.Genre = pattern.IDM }, true},
		{"length", func(c *Controls) { c.Length = 64 }, true},
		{"seed", func(c *Controls) { c.Seed++ }, true},
		{"tempo only", func(c *Controls) { c.BPM = 90 }, false},
		{"reset mode only", func(c *Controls) { c.ResetMode = ResetStep }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.edit(&c)
			if got := c.PatternChanged(&base); got != tt.want {
				t.Errorf("PatternChanged = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSetGetParam(t *testing.T) {
	c := DefaultControls()
	for _, name := range ParamNames {
		if !c.Set(name, 0.25) {
			t.Fatalf("Set(%q) failed", name)
		}
		if v, ok := c.Get(name); !ok || v != 0.25 {
			t.Errorf("Get(%q) = %v, %v", name, v, ok)
		}
	}
	if c.Set("tempo", 1) {
		t.Error("unknown names should be rejected")
	}
	c.Set("energy", 3)
	if c.Energy != 1 {
		t.Errorf("Set should clamp, got %v", c.Energy)
	}
}

func TestParseModes(t *testing.T) {
	for m := ResetMode(0); m < NumResetModes; m++ {
		if got, ok := ParseResetMode(m.String()); !ok || got != m {
			t.Errorf("ParseResetMode(%q) = %v, %v", m.String(), got, ok)
		}
	}
	for m := AuxMode(0); m < NumAuxModes; m++ {
		if got, ok := ParseAuxMode(m.String()); !ok || got != m {
			t.Errorf("ParseAuxMode(%q) = %v, %v", m.String(), got, ok)
		}
	}
	if m, ok := ParseAuxMode("FILL_GATE"); !ok || m != AuxFillGate {
		t.Error("underscored names should parse")
	}
	if _, ok := ParseResetMode("beat"); ok {
		t.Error("unknown reset mode parsed")
	}
}
