package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go-rhythm/pattern"
	"go-rhythm/sequencer"
)

// VoiceView is one voice of a bar, spelled out for clients
type VoiceView struct {
	Name     string    `json:"name"`
	Grid     string    `json:"grid"`
	Steps    []int     `json:"steps"`
	Accents  []int     `json:"accents"`
	Velocity []float32 `json:"velocity"` // one per step in Steps
	Timing   []float32 `json:"timing"`   // delay per step in Steps, fraction of a step
}

// PatternView is the /pattern response
type PatternView struct {
	Params pattern.Params                `json:"params"`
	Result pattern.Result                `json:"result"`
	Voices [pattern.NumVoices]VoiceView `json:"voices"`
}

// LiveView is the /live response
type LiveView struct {
	sequencer.Snapshot
	Voices [pattern.NumVoices]VoiceView `json:"voices"`
}

func voices(r *pattern.Result) [pattern.NumVoices]VoiceView {
	var out [pattern.NumVoices]VoiceView
	for v := pattern.Voice(0); v < pattern.NumVoices; v++ {
		steps := r.Masks[v].Steps(r.Length)
		vv := VoiceView{
			Name:     v.String(),
			Grid:     r.Masks[v].Grid(r.Length),
			Steps:    steps,
			Accents:  r.Accents[v].Steps(r.Length),
			Velocity: make([]float32, len(steps)),
			Timing:   make([]float32, len(steps)),
		}
		for i, s := range steps {
			vv.Velocity[i] = r.Velocity[v][s]
			vv.Timing[i] = r.Timing[s]
		}
		out[v] = vv
	}
	return out
}

// parseParams reads generation parameters from a query, starting from the
// defaults. Unknown keys are ignored.
func parseParams(q url.Values) (pattern.Params, error) {
	p := pattern.DefaultParams()
	floats := map[string]*float64{
		"shape":          &p.Shape,
		"energy":         &p.Energy,
		"axisX":          &p.AxisX,
		"axisY":          &p.AxisY,
		"drift":          &p.Drift,
		"accent":         &p.Accent,
		"balance":        &p.Balance,
		"build":          &p.Build,
		"phraseProgress": &p.PhraseProgress,
		"swing":          &p.Swing,
	}
	for name, dst := range floats {
		s := q.Get(name)
		if s == "" {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return p, fmt.Errorf("%s: %w", name, err)
		}
		*dst = v
	}

	seeds := map[string]*uint32{"seed": &p.Seed, "phraseSeed": &p.PhraseSeed}
	for name, dst := range seeds {
		s := q.Get(name)
		if s == "" {
			continue
		}
		v, err := strconv.ParseUint(s, 0, 32)
		if err != nil {
			return p, fmt.Errorf("%s: %w", name, err)
		}
		*dst = uint32(v)
	}

	ints := map[string]*int{"length": &p.Length, "fillSteps": &p.FillSteps}
	for name, dst := range ints {
		s := q.Get(name)
		if s == "" {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return p, fmt.Errorf("%s: %w", name, err)
		}
		*dst = n
	}

	var ok bool
	if s := q.Get("genre"); s != "" {
		if p.Genre, ok = pattern.ParseGenre(s); !ok {
			return p, fmt.Errorf("unknown genre %q", s)
		}
	}
	if s := q.Get("coupling"); s != "" {
		if p.Coupling, ok = pattern.ParseCoupling(s); !ok {
			return p, fmt.Errorf("unknown coupling %q", s)
		}
	}
	if s := q.Get("auxDensity"); s != "" {
		if p.AuxDensity, ok = pattern.ParseAuxDensity(s); !ok {
			return p, fmt.Errorf("unknown aux density %q", s)
		}
	}
	return p.Clamp(), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request) (pattern.Params, pattern.Result, bool) {
	p, err := parseParams(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return p, pattern.Result{}, false
	}
	return p, pattern.Generate(p, s.config.Tuning), true
}

// handlePattern generates one bar from query parameters
func (s *Server) handlePattern(w http.ResponseWriter, r *http.Request) {
	p, res, ok := s.generate(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, PatternView{Params: p, Result: res, Voices: voices(&res)})
}

// handlePatternText is handlePattern as a text grid
func (s *Server) handlePatternText(w http.ResponseWriter, r *http.Request) {
	_, res, ok := s.generate(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "zone %s  phase %s  swing %.2f  budget %d/%d/%d\n",
		res.Zone, res.Phase, res.Swing, res.Budget.Anchor, res.Budget.Shimmer, res.Budget.Aux)
	for v := pattern.Voice(0); v < pattern.NumVoices; v++ {
		fmt.Fprintf(w, "%-8s %s\n", v, res.Masks[v].Grid(res.Length))
	}
	fmt.Fprintf(w, "%-8s %s\n", "accents", accentRow(&res))
}

// accentRow marks steps where any voice accents
func accentRow(r *pattern.Result) string {
	var b strings.Builder
	all := r.Accents[0] | r.Accents[1] | r.Accents[2]
	for i := 0; i < r.Length; i++ {
		if all.Has(i) {
			b.WriteByte('^')
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.TrimRight(b.String(), " ")
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	snap := s.live.Snapshot()
	writeJSON(w, http.StatusOK, LiveView{Snapshot: snap, Voices: voices(&snap.Result)})
}
