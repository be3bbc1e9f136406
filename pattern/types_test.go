package pattern

import (
	"reflect"
	"testing"
)

func TestMaskSteps(t *testing.T) {
	m := Mask(0).Set(0).Set(5).Set(15).Set(40)
	if got := m.Steps(16); !reflect.DeepEqual(got, []int{0, 5, 15}) {
		t.Errorf("Steps(16) = %v", got)
	}
	if got := m.Steps(64); !reflect.DeepEqual(got, []int{0, 5, 15, 40}) {
		t.Errorf("Steps(64) = %v", got)
	}
	if got := Mask(0).Steps(16); len(got) != 0 {
		t.Errorf("empty mask steps = %v", got)
	}
}

func TestRotateLeftWraps(t *testing.T) {
	m := Mask(0).Set(0).Set(14)
	if got := RotateLeft(m, 3, 16).Grid(16); got != ".x.x............" {
		t.Errorf("RotateLeft = %s", got)
	}
	if RotateLeft(m, -13, 16) != RotateLeft(m, 3, 16) {
		t.Error("negative rotation should wrap")
	}
	if RotateLeft(^Mask(0), 5, 64) != ^Mask(0) {
		t.Error("full 64-step mask should survive rotation")
	}
}

func TestParseEnums(t *testing.T) {
	for g := Genre(0); g < NumGenres; g++ {
		if got, ok := ParseGenre(g.String()); !ok || got != g {
			t.Errorf("ParseGenre(%q) = %v, %v", g.String(), got, ok)
		}
	}
	for c := Coupling(0); c < NumCouplings; c++ {
		if got, ok := ParseCoupling(c.String()); !ok || got != c {
			t.Errorf("ParseCoupling(%q) = %v, %v", c.String(), got, ok)
		}
	}
	for d := AuxDensity(0); d < NumAuxDensities; d++ {
		if got, ok := ParseAuxDensity(d.String()); !ok || got != d {
			t.Errorf("ParseAuxDensity(%q) = %v, %v", d.String(), got, ok)
		}
	}
	if _, ok := ParseGenre("polka"); ok {
		t.Error("unknown genre parsed")
	}
}
