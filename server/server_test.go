package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-rhythm/pattern"
	"go-rhythm/sequencer"
)

type fixedLive struct{ snap sequencer.Snapshot }

func (f fixedLive) Snapshot() sequencer.Snapshot { return f.snap }

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func quiet(live LiveSource) http.Handler {
	return New(Config{Quiet: true}, live).Handler()
}

func TestHealth(t *testing.T) {
	rec := get(t, quiet(nil), "/health")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("health = %d %s", rec.Code, rec.Body)
	}
}

func TestPatternMatchesGenerate(t *testing.T) {
	rec := get(t, quiet(nil), "/pattern?energy=0&seed=0xDEADBEEF&length=32&drift=0")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	var view PatternView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatal(err)
	}

	p := pattern.DefaultParams()
	p.Energy = 0
	p.Seed = 0xDEADBEEF
	p.Length = 32
	want := pattern.Generate(p, pattern.DefaultTuning())

	if view.Result.Masks != want.Masks {
		t.Errorf("masks = %v, want %v", view.Result.Masks, want.Masks)
	}
	if view.Result.Zone != pattern.ZoneMinimal {
		t.Errorf("zone = %v", view.Result.Zone)
	}
	a := view.Voices[pattern.Anchor]
	if a.Name != "anchor" || len(a.Steps) != want.Masks[pattern.Anchor].Count() || a.Steps[0] != 0 {
		t.Errorf("anchor view = %+v", a)
	}
	if len(a.Velocity) != len(a.Steps) {
		t.Errorf("velocity per hit: %d for %d steps", len(a.Velocity), len(a.Steps))
	}
}

func TestPatternQueryErrors(t *testing.T) {
	h := quiet(nil)
	for _, q := range []string{"energy=loud", "seed=-1", "genre=polka", "coupling=x", "auxDensity=x", "length=long", "fillSteps=x"} {
		rec := get(t, h, "/pattern?"+q)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status %d", q, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "error") {
			t.Errorf("%s: body %s", q, rec.Body)
		}
	}
}

func TestPatternClampsValues(t *testing.T) {
	p, err := parseParams(map[string][]string{"energy": {"3"}, "length": {"50"}, "genre": {"IDM"}, "fillSteps": {"100"}})
	if err != nil {
		t.Fatal(err)
	}
	if p.Energy != 1 || p.Length != 64 || p.Genre != pattern.IDM || p.FillSteps != 64 {
		t.Errorf("params = %+v", p)
	}
}

func TestPatternText(t *testing.T) {
	rec := get(t, quiet(nil), "/pattern.txt?length=16&energy=0.9")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"zone PEAK", "anchor", "shimmer", "aux"} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %q in\n%s", want, body)
		}
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain") {
		t.Errorf("content type %q", rec.Header().Get("Content-Type"))
	}
}

func TestLive(t *testing.T) {
	if rec := get(t, quiet(nil), "/live"); rec.Code != http.StatusNotFound {
		t.Errorf("/live without a source = %d", rec.Code)
	}

	snap := sequencer.Snapshot{
		Result:      pattern.Generate(pattern.DefaultParams(), pattern.DefaultTuning()),
		Position:    sequencer.PhrasePosition{Step: 5, Bar: 1},
		Running:     true,
		BPM:         128,
		Generations: 7,
	}
	rec := get(t, quiet(fixedLive{snap}), "/live")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if rec.Header().Get("Cache-Control") == "" {
		t.Error("live responses should not be cached")
	}
	var view LiveView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatal(err)
	}
	if view.Position.Step != 5 || view.BPM != 128 || view.Generations != 7 {
		t.Errorf("live = %+v", view.Snapshot)
	}
	if view.Voices[pattern.Shimmer].Grid != snap.Result.Masks[pattern.Shimmer].Grid(snap.Result.Length) {
		t.Error("shimmer grid mismatch")
	}
}
