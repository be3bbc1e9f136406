package pattern

import "testing"

func params(energy float64, seed uint32, length int) Params {
	p := DefaultParams()
	p.Energy = energy
	p.Seed = seed
	p.Length = length
	return p
}

func TestGenerateDeterministic(t *testing.T) {
	tu := DefaultTuning()
	for _, g := range []Genre{Techno, Tribal, IDM} {
		for c := Independent; c < NumCouplings; c++ {
			p := params(0.6, 42, 32)
			p.Genre = g
			p.Coupling = c
			p.Drift = 0.5
			a := Generate(p, tu)
			b := Generate(p, tu)
			if a != b {
				t.Fatalf("%v/%v: two calls differ", g, c)
			}
		}
	}
}

func TestGenerateNeverSilent(t *testing.T) {
	tu := DefaultTuning()
	for _, length := range Lengths {
		for seed := uint32(0); seed < 30; seed++ {
			for e := 0.0; e <= 1.0; e += 0.1 {
				r := Generate(params(e, seed, length), tu)
				if r.Masks[Anchor] == 0 {
					t.Fatalf("energy %.1f seed %d length %d: silent anchor", e, seed, length)
				}
			}
		}
	}
}

func TestGenerateAnchorInvariants(t *testing.T) {
	tu := DefaultTuning()
	for _, length := range Lengths {
		for seed := uint32(0); seed < 20; seed++ {
			for e := 0.0; e <= 1.0; e += 0.05 {
				for _, build := range []float64{0, 1} {
					p := params(e, seed, length)
					p.Build = build
					p.PhraseProgress = 0.95
					p.Genre = Genre(seed % 3)
					r := Generate(p, tu)
					b := ZoneBounds(r.Zone, length, tu)
					a := r.Masks[Anchor]
					if a.Count() < b.Min || a.Count() > b.Max {
						t.Fatalf("energy %.2f seed %d length %d: %d anchor hits outside %+v", e, seed, length, a.Count(), b)
					}
					if !spacedOK(a, MinSpacing(r.Zone, tu), length) {
						t.Fatalf("energy %.2f seed %d length %d: spacing broken %s", e, seed, length, a.Grid(length))
					}
					for v := Voice(0); v < NumVoices; v++ {
						if r.Masks[v]&^LengthMask(length) != 0 {
							t.Fatalf("voice %v has hits past the bar", v)
						}
					}
				}
			}
		}
	}
}

func TestGenerateMinimalRoundTrip(t *testing.T) {
	tu := DefaultTuning()
	for _, g := range []Genre{Techno, Tribal, IDM} {
		for seed := uint32(0); seed < 40; seed++ {
			p := params(0, 0xDEADBEEF+seed, 32)
			p.Shape = 0.3
			p.Genre = g
			r := Generate(p, tu)
			if r.Zone != ZoneMinimal {
				t.Fatalf("zone = %v", r.Zone)
			}
			if got := r.Masks[Anchor]; got.Count() != 1 || !got.Has(0) {
				t.Errorf("%v seed %#x: anchor = %s, want the downbeat alone", g, p.Seed, got.Grid(32))
			}
		}
	}

	minimal := Generate(params(0, 0xDEADBEEF, 32), tu)
	peak := Generate(params(1, 0xDEADBEEF, 32), tu)
	if peak.Masks[Anchor].Count() <= minimal.Masks[Anchor].Count() {
		t.Errorf("peak anchor %d hits should exceed minimal", peak.Masks[Anchor].Count())
	}
}

func TestGenerateInterlock(t *testing.T) {
	tu := DefaultTuning()
	for seed := uint32(0); seed < 50; seed++ {
		p := params(0.7, seed, 32)
		p.Coupling = Interlock
		p.Genre = IDM
		r := Generate(p, tu)
		if r.Masks[Anchor]&r.Masks[Shimmer] != 0 {
			t.Fatalf("seed %d: interlock collision", seed)
		}
	}
}

func TestGenerateVelocities(t *testing.T) {
	tu := DefaultTuning()
	r := Generate(params(0.8, 3, 64), tu)
	for v := Voice(0); v < NumVoices; v++ {
		for i := 0; i < MaxSteps; i++ {
			vel := r.Velocity[v][i]
			if r.Fires(v, i) {
				if vel < 0.3 || vel > 1 {
					t.Errorf("voice %v step %d velocity %v", v, i, vel)
				}
			} else if vel != 0 {
				t.Errorf("voice %v step %d is silent but has velocity %v", v, i, vel)
			}
		}
		if r.Accents[v]&^r.Masks[v] != 0 {
			t.Errorf("voice %v accents a silent step", v)
		}
	}
}

func TestGenerateFillBurst(t *testing.T) {
	tu := DefaultTuning()
	for seed := uint32(0); seed < 30; seed++ {
		p := params(0.8, seed, 32)
		plain := Generate(p, tu)
		p.FillSteps = 8
		filled := Generate(p, tu)

		if filled.Masks[Anchor] != plain.Masks[Anchor] || filled.Masks[Shimmer] != plain.Masks[Shimmer] {
			t.Fatalf("seed %d: the burst touched the main voices", seed)
		}
		// eight hits at this energy fill all eight steps
		tail := LengthMask(32) &^ LengthMask(24)
		if filled.Masks[Aux]&tail != tail {
			t.Fatalf("seed %d: fill not covered: %s", seed, filled.Masks[Aux].Grid(32))
		}
		if extra := filled.Masks[Aux] &^ plain.Masks[Aux]; extra&^tail != 0 {
			t.Fatalf("seed %d: burst outside the last 8 steps: %s", seed, extra.Grid(32))
		}
		if plain.Masks[Aux]&^filled.Masks[Aux] != 0 {
			t.Fatalf("seed %d: the burst dropped aux hits", seed)
		}
		for i := 0; i < 32; i++ {
			if filled.Fires(Aux, i) && filled.Velocity[Aux][i] <= 0 {
				t.Fatalf("seed %d step %d: silent burst hit", seed, i)
			}
		}
	}
}

func TestGenerateFillForcesAccents(t *testing.T) {
	tu := DefaultTuning()
	p := params(0.6, 11, 32)
	p.Build = 1
	p.PhraseProgress = 0.95
	r := Generate(p, tu)
	if r.Phase != PhaseFill {
		t.Fatalf("phase = %v", r.Phase)
	}
	if r.Accents[Anchor] != r.Masks[Anchor] {
		t.Errorf("every anchor hit should be accented in a full fill")
	}
	plain := Generate(params(0.6, 11, 32), tu)
	if r.Budget.Anchor < plain.Budget.Anchor {
		t.Errorf("fill budget %d below groove budget %d", r.Budget.Anchor, plain.Budget.Anchor)
	}
}

func TestDriftZeroIgnoresPhraseSeed(t *testing.T) {
	tu := DefaultTuning()
	base := params(0.6, 77, 32)
	base.Drift = 0
	want := Generate(base, tu)
	for ps := uint32(1); ps < 20; ps++ {
		p := base
		p.PhraseSeed = ps * 0x1001
		if got := Generate(p, tu); got.Masks != want.Masks {
			t.Fatalf("phrase seed %x changed a locked pattern", p.PhraseSeed)
		}
	}
}

func TestDriftOneVariesWithPhraseSeed(t *testing.T) {
	tu := DefaultTuning()
	seen := map[[NumVoices]Mask]bool{}
	for ps := uint32(1); ps <= 20; ps++ {
		p := params(0.6, 77, 32)
		p.Drift = 1
		p.PhraseSeed = PhraseSeed(77, ps)
		seen[Generate(p, tu).Masks] = true
	}
	if len(seen) < 2 {
		t.Error("full drift should let phrases differ")
	}
}

func TestSeedsChangeOutput(t *testing.T) {
	tu := DefaultTuning()
	seen := map[[NumVoices]Mask]bool{}
	for seed := uint32(0); seed < 20; seed++ {
		seen[Generate(params(0.6, seed, 32), tu).Masks] = true
	}
	if len(seen) < 2 {
		t.Error("different seeds should give different bars")
	}
}

func TestParamsClamp(t *testing.T) {
	p := Params{Energy: 3, Shape: -1, Length: 20, Genre: 9, Coupling: -1, AuxDensity: 7}.Clamp()
	if p.Energy != 1 || p.Shape != 0 {
		t.Errorf("continuous fields not clamped: %+v", p)
	}
	if p.Length != 16 {
		t.Errorf("length 20 should snap to 16 (tie goes shorter), got %d", p.Length)
	}
	if p.Genre != Techno || p.Coupling != Independent || p.AuxDensity != AuxNormal {
		t.Errorf("enums not reset: %+v", p)
	}
	if SnapLength(28) != 24 || SnapLength(50) != 64 || SnapLength(1000) != 64 {
		t.Error("SnapLength picks the wrong neighbor")
	}
}

func BenchmarkGenerate(b *testing.B) {
	tu := DefaultTuning()
	p := params(0.7, 1, 64)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		p.Seed = uint32(i)
		_ = Generate(p, tu)
	}
}

func TestGenerateDoesNotAllocate(t *testing.T) {
	tu := DefaultTuning()
	p := params(0.7, 1, 64)
	allocs := testing.AllocsPerRun(50, func() {
		p.Seed++
		_ = Generate(p, tu)
	})
	if allocs != 0 {
		t.Errorf("Generate allocated %v times per call", allocs)
	}
}
