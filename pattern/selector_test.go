package pattern

import "testing"

func uniform(length int) Weights {
	var w Weights
	for i := 0; i < length; i++ {
		w[i] = 0.5
	}
	return w
}

func TestSelectTopKDeterministic(t *testing.T) {
	w := uniform(32)
	for seed := uint32(0); seed < 50; seed++ {
		a := SelectTopK(&w, LengthMask(32), 7, seed, 2, 32)
		b := SelectTopK(&w, LengthMask(32), 7, seed, 2, 32)
		if a != b {
			t.Fatalf("seed %d: %s != %s", seed, a.Grid(32), b.Grid(32))
		}
	}
}

func TestSelectTopKCountAndEligibility(t *testing.T) {
	w := uniform(16)
	eligible := Mask(0x00FF)
	for seed := uint32(0); seed < 50; seed++ {
		m := SelectTopK(&w, eligible, 4, seed, 0, 16)
		if m.Count() != 4 {
			t.Fatalf("seed %d: %d hits, want 4", seed, m.Count())
		}
		if m&^eligible != 0 {
			t.Fatalf("seed %d: picked ineligible steps %s", seed, m.Grid(16))
		}
	}
}

func TestSelectTopKSpacing(t *testing.T) {
	w := uniform(16)
	for seed := uint32(0); seed < 100; seed++ {
		m := SelectTopK(&w, LengthMask(16), 16, seed, 4, 16)
		if m.Count() > 4 {
			t.Fatalf("seed %d: spacing 4 in 16 steps allows at most 4 hits, got %s", seed, m.Grid(16))
		}
		for i := 0; i < 16; i++ {
			for j := i + 1; j < 16; j++ {
				if m.Has(i) && m.Has(j) && circularDistance(i, j, 16) < 4 {
					t.Fatalf("seed %d: steps %d and %d too close in %s", seed, i, j, m.Grid(16))
				}
			}
		}
	}
}

func TestSelectTopKShortfallIsNotAnError(t *testing.T) {
	w := uniform(16)
	m := SelectTopK(&w, Mask(0b111), 5, 1, 0, 16)
	if m != 0b111 {
		t.Errorf("only three eligible steps, want all of them, got %s", m.Grid(16))
	}
	if SelectTopK(&w, LengthMask(16), 0, 1, 0, 16) != 0 {
		t.Error("k=0 should select nothing")
	}
	if SelectTopK(&w, 0, 3, 1, 0, 16) != 0 {
		t.Error("empty eligibility should select nothing")
	}
}

func TestSelectTopKFollowsWeights(t *testing.T) {
	var w Weights
	for i := 0; i < 16; i++ {
		w[i] = 1e-9
	}
	heavy := Mask(0)
	for _, i := range []int{0, 4, 8, 12} {
		w[i] = 1
		heavy = heavy.Set(i)
	}
	for seed := uint32(0); seed < 20; seed++ {
		if m := SelectTopK(&w, LengthMask(16), 4, seed, 0, 16); m != heavy {
			t.Errorf("seed %d: got %s, want the heavy steps", seed, m.Grid(16))
		}
	}
}

func TestSelectTopKPreAcceptedSpacing(t *testing.T) {
	w := uniform(16)
	pre := Mask(1) // step 0 already taken
	for seed := uint32(0); seed < 50; seed++ {
		m := selectTopK(&w, LengthMask(16), pre, 3, FixedSeed(seed), 4, 16)
		if m.Has(0) {
			t.Fatal("pre-accepted step returned again")
		}
		for _, s := range []int{1, 2, 3, 13, 14, 15} {
			if m.Has(s) {
				t.Fatalf("seed %d: step %d is within spacing of step 0: %s", seed, s, m.Grid(16))
			}
		}
	}
}

func TestSeedsDrift(t *testing.T) {
	s := Seeds{Pattern: 1, Phrase: 2, Drift: 0}
	for i := 0; i < 32; i++ {
		if s.At(i, 32) != 1 {
			t.Fatalf("drift 0 should lock step %d to the pattern seed", i)
		}
	}
	s.Drift = 1
	for i := 0; i < 32; i++ {
		if s.At(i, 32) != 2 {
			t.Fatalf("drift 1 should free step %d", i)
		}
	}
	s.Drift = 0.5
	if s.At(0, 32) != 1 || s.At(1, 32) != 2 {
		t.Error("mid drift should lock the downbeat and free weak steps")
	}
}
