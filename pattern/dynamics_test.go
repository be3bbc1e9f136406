package pattern

import "testing"

func TestBuildModifiersPhases(t *testing.T) {
	tu := DefaultTuning()

	groove := ComputeBuildModifiers(1, 0.10, tu)
	if groove.DensityMultiplier != 1.0 || groove.VelocityBoost != 0 || groove.ForceAccents {
		t.Errorf("groove phase should be neutral, got %+v", groove)
	}
	if groove.Phase != PhaseGroove {
		t.Errorf("progress 0.10 phase = %v", groove.Phase)
	}

	fill := ComputeBuildModifiers(1, 0.95, tu)
	if fill.Phase != PhaseFill {
		t.Errorf("progress 0.95 phase = %v", fill.Phase)
	}
	if fill.DensityMultiplier < 1.4 {
		t.Errorf("fill density = %v, want >= 1.4", fill.DensityMultiplier)
	}
	if !fill.ForceAccents {
		t.Error("fill at full build should force accents")
	}

	off := ComputeBuildModifiers(0, 0.95, tu)
	if off.DensityMultiplier != 1 || off.ForceAccents {
		t.Errorf("build 0 should leave the fill untouched, got %+v", off)
	}
}

func TestBuildDensityRises(t *testing.T) {
	tu := DefaultTuning()
	prev := 0.0
	for p := 0.0; p <= 1.0; p += 0.025 {
		d := ComputeBuildModifiers(1, p, tu).DensityMultiplier
		if d+1e-9 < prev {
			t.Fatalf("density fell from %v to %v at progress %v", prev, d, p)
		}
		prev = d
	}
}

func TestPhaseFor(t *testing.T) {
	tu := DefaultTuning()
	tests := []struct {
		progress float64
		want     BuildPhase
	}{
		{0, PhaseGroove},
		{0.49, PhaseGroove},
		{0.5, PhaseBuild},
		{0.8, PhaseTension},
		{0.875, PhaseFill},
		{1, PhaseFill},
	}
	for _, tt := range tests {
		if got := PhaseFor(tt.progress, tu); got != tt.want {
			t.Errorf("PhaseFor(%v) = %v, want %v", tt.progress, got, tt.want)
		}
	}
}

func TestVelocityFloor(t *testing.T) {
	tu := DefaultTuning()
	for _, accent := range []float64{0, 0.5, 1} {
		for step := 0; step < 32; step++ {
			for v := Voice(0); v < NumVoices; v++ {
				vel, _ := ComputeVelocity(accent, step, 32, 99, v, tu)
				if vel < 0.3 || vel > 1 {
					t.Fatalf("accent %v step %d voice %v: velocity %v", accent, step, v, vel)
				}
			}
		}
	}
}

func TestAccentWidensRange(t *testing.T) {
	tu := DefaultTuning()
	span := func(accent float64) float32 {
		lo, hi := float32(1), float32(0)
		for step := 0; step < 32; step++ {
			vel, _ := ComputeVelocity(accent, step, 32, 7, Anchor, tu)
			if vel < lo {
				lo = vel
			}
			if vel > hi {
				hi = vel
			}
		}
		return hi - lo
	}
	if span(1) <= span(0) {
		t.Errorf("accent 1 span %v should exceed accent 0 span %v", span(1), span(0))
	}
}

func TestSwingCappedByZone(t *testing.T) {
	tu := DefaultTuning()
	for g := Techno; g <= IDM; g++ {
		for z := ZoneMinimal; z < NumZones; z++ {
			s := ComputeSwing(g, 1, z, tu)
			if s > tu.Zones[z].SwingCap {
				t.Errorf("%v/%v swing %v above cap", g, z, s)
			}
		}
	}
	if ComputeSwing(Tribal, 0, ZoneGroove, tu) <= ComputeSwing(Techno, 0, ZoneGroove, tu) {
		t.Error("tribal should swing harder than techno")
	}
}

func TestTimingSwingsOddSteps(t *testing.T) {
	tu := DefaultTuning()
	var timing [MaxSteps]float32
	s := ComputeTiming(&timing, Tribal, 0.5, ZoneGroove, 1, 16, tu)
	for i := 0; i < 16; i++ {
		want := float32(0)
		if i%2 == 1 {
			want = float32(s)
		}
		if timing[i] != want {
			t.Errorf("step %d delay %v, want %v", i, timing[i], want)
		}
	}
	ComputeTiming(&timing, IDM, 0, ZoneBuild, 1, 16, tu)
	for i := 0; i < 16; i++ {
		if timing[i] < 0 || timing[i] > 0.2+0.03 {
			t.Errorf("IDM step %d delay %v out of range", i, timing[i])
		}
	}
}
