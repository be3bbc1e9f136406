package pattern

import "testing"

func TestInterlockNeverCollides(t *testing.T) {
	tu := DefaultTuning()
	for _, length := range Lengths {
		w := uniform(length)
		for seed := uint32(0); seed < 50; seed++ {
			anchor := Mask(uint64(Hash(seed, 9))) & LengthMask(length)
			sh := DeriveShimmer(anchor, &w, 0.5, Interlock, FixedSeed(seed), length/2, length, tu)
			if sh&anchor != 0 {
				t.Fatalf("length %d seed %d: interlock shimmer overlaps anchor", length, seed)
			}
			if sh&^LengthMask(length) != 0 {
				t.Fatalf("length %d seed %d: bits past the bar", length, seed)
			}
		}
	}
}

func TestShadowEchoesAnchor(t *testing.T) {
	tu := DefaultTuning()
	w := uniform(16)
	anchor := Mask(0).Set(0).Set(8).Set(15)
	got := DeriveShimmer(anchor, &w, 0, Shadow, FixedSeed(1), 4, 16, tu)
	want := Mask(0).Set(1).Set(9).Set(0)
	if got != want {
		t.Errorf("shadow = %s, want %s", got.Grid(16), want.Grid(16))
	}
}

func TestComplementFillsGaps(t *testing.T) {
	tu := DefaultTuning()
	w := ComputeWeights(DefaultParams(), tu)
	anchor := Euclidean(4, 32)
	for _, drift := range []float64{0, 0.5, 0.9} {
		for budget := 0; budget <= 28; budget += 4 {
			sh := DeriveShimmer(anchor, &w[Shimmer], drift, Independent, FixedSeed(3), budget, 32, tu)
			if sh&anchor != 0 {
				t.Fatalf("drift %v budget %d: complement lands on the anchor", drift, budget)
			}
			if sh.Count() != budget {
				t.Fatalf("drift %v budget %d: got %d hits (%s)", drift, budget, sh.Count(), sh.Grid(32))
			}
		}
	}
}

func TestComplementEvenAtZeroDrift(t *testing.T) {
	tu := DefaultTuning()
	tu.PhasedComplement = false
	w := uniform(16)
	// one gap of 15 steps after the downbeat, three hits spread across it
	got := DeriveShimmer(1, &w, 0, Independent, FixedSeed(1), 3, 16, tu)
	want := Mask(0).Set(1).Set(6).Set(11)
	if got != want {
		t.Errorf("got %s, want %s", got.Grid(16), want.Grid(16))
	}
}

func TestFindGapsWraps(t *testing.T) {
	g := findGaps(Mask(0).Set(2).Set(10), 16)
	if g.n != 2 {
		t.Fatalf("want 2 gaps, got %d", g.n)
	}
	if g.start[0] != 3 || g.size[0] != 7 {
		t.Errorf("first gap = %d+%d", g.start[0], g.size[0])
	}
	if g.start[1] != 11 || g.size[1] != 7 {
		t.Errorf("wrapping gap = %d+%d", g.start[1], g.size[1])
	}
	if g := findGaps(LengthMask(8), 8); g.n != 0 {
		t.Errorf("a full bar has no gaps, got %d", g.n)
	}
}

func TestShareOut(t *testing.T) {
	g := gaps{n: 3}
	g.size[0], g.size[1], g.size[2] = 6, 3, 3
	s := shareOut(&g, 5)
	if s[0]+s[1]+s[2] != 5 {
		t.Fatalf("shares %v do not sum to 5", s[:3])
	}
	if s[0] < s[1] || s[0] < s[2] {
		t.Errorf("the larger gap should get the larger share: %v", s[:3])
	}
	s = shareOut(&g, 100)
	if s[0] != 6 || s[1] != 3 || s[2] != 3 {
		t.Errorf("budget beyond capacity should fill every gap: %v", s[:3])
	}
}

func TestDeriveAuxAvoidsTakenSteps(t *testing.T) {
	tu := DefaultTuning()
	tu.AuxCollision = 0
	w := uniform(16)
	anchor := Euclidean(4, 16)
	shimmer := Rotate(anchor, 2, 16)
	aux := DeriveAux(anchor, shimmer, &w, 8, FixedSeed(5), 16, tu)
	if aux.Count() != 8 {
		t.Fatalf("want 8 aux hits, got %s", aux.Grid(16))
	}
	if aux&(anchor|shimmer) != 0 {
		t.Errorf("with zero collision weight aux should stay off taken steps: %s", aux.Grid(16))
	}
}
