package sequencer

import (
	"sync/atomic"

	"go-rhythm/pattern"
)

// Edges are the pulses seen during one block. Both act on the block's
// first sample.
type Edges struct {
	Clock bool
	Reset bool
}

// VoiceOut is one voice on one sample. Velocity is held between hits.
type VoiceOut struct {
	Gate     bool
	Velocity float32
	Fired    bool // rising edge on this sample
}

// Frame is the sequencer output for one sample
type Frame struct {
	Voices [pattern.NumVoices]VoiceOut
	Step   int16 // -1 before the first step
}

type gate struct {
	remaining int
	velocity  float32
}

// Sequencer is the real-time driver. Process belongs to a single audio
// goroutine and never allocates, locks or blocks; SetControls and
// RequestReseed may be called from any goroutine.
type Sequencer struct {
	sampleRate float64
	tuning     *pattern.Tuning

	controls    atomic.Pointer[Controls]
	reseeds     atomic.Uint32
	state       atomic.Int32
	source      atomic.Int32
	live        atomic.Int32
	generations atomic.Uint64

	// audio goroutine only
	results      [2]pattern.Result
	cur          *Controls
	built        Controls
	dirty        bool
	clk          clock
	started      bool
	step, bar    int
	phrase       uint32
	baseSeed     uint32
	patternSeed  uint32
	phraseSeed   uint32
	reseedsSeen  uint32
	pendingReset bool
	resetMode    ResetMode
	pendingStep  int
	pendingDelay float64
	gates        [pattern.NumVoices]gate
	auxEvent     bool
	auxHigh      bool
	pos          PhrasePosition
}

// New returns an idle sequencer running on DefaultControls. A nil tuning
// uses pattern.DefaultTuning.
func New(sampleRate float64, t *pattern.Tuning) *Sequencer {
	if t == nil {
		t = pattern.DefaultTuning()
	}
	s := &Sequencer{
		sampleRate:  sampleRate,
		tuning:      t,
		clk:         newClock(sampleRate),
		pendingStep: -1,
	}
	c := DefaultControls()
	s.controls.Store(&c)
	s.cur = &c
	s.built = c
	s.baseSeed = c.Seed
	s.patternSeed = c.Seed
	s.phraseSeed = pattern.PhraseSeed(c.Seed, 0)
	s.clk.restart(c.BPM)
	return s
}

// SetControls publishes a new control set. The value is clamped and then
// handed over whole; Process sees either the old set or the new one.
func (s *Sequencer) SetControls(c Controls) {
	c = c.Clamp()
	s.controls.Store(&c)
}

// Controls returns the most recently published control set
func (s *Sequencer) Controls() Controls {
	return *s.controls.Load()
}

// RequestReseed asks for a fresh pattern seed at the next phrase boundary
func (s *Sequencer) RequestReseed() {
	s.reseeds.Add(1)
}

// State is safe to call from any goroutine
func (s *Sequencer) State() State {
	return State(s.state.Load())
}

// ClockSource is safe to call from any goroutine
func (s *Sequencer) ClockSource() ClockSource {
	return ClockSource(s.source.Load())
}

// Generations counts pattern regenerations so far
func (s *Sequencer) Generations() uint64 {
	return s.generations.Load()
}

// Position is the playhead after the last processed block. Call it from
// the goroutine that runs Process.
func (s *Sequencer) Position() PhrasePosition {
	return s.pos
}

// Live is the bar currently playing. The pointed-to result stays intact
// until the next regeneration; copy it from the Process goroutine.
func (s *Sequencer) Live() *pattern.Result {
	return &s.results[s.live.Load()]
}

// EffectiveBPM is the tempo the active clock is running at
func (s *Sequencer) EffectiveBPM() float64 {
	c := s.cur
	sps := s.clk.samplesPerStep(c.BPM, c.ClockDivision)
	if sps <= 0 {
		return c.BPM
	}
	return s.sampleRate * 60 / (sps * 4)
}

// Halt stops the transport and rewinds to the top. The next clock edge
// plays step 0 of a freshly generated first bar. Call it from the goroutine
// that runs Process.
func (s *Sequencer) Halt() {
	s.state.Store(int32(Idle))
	s.started = false
	s.step, s.bar, s.phrase = 0, 0, 0
	s.phraseSeed = pattern.PhraseSeed(s.patternSeed, 0)
	s.pendingReset = false
	s.pendingStep = -1
	s.gates = [pattern.NumVoices]gate{}
	s.auxEvent, s.auxHigh = false, false
	s.pos = PhrasePosition{}
	s.clk.restart(s.cur.BPM)
}

// Process renders one block. Clock and reset edges act on out[0]; the
// internal clock, swing delays and gate timers run per sample.
func (s *Sequencer) Process(e Edges, out []Frame) {
	c := s.controls.Load()
	if c != s.cur {
		s.cur = c
		if s.started && c.PatternChanged(&s.built) {
			s.dirty = true
		}
	}

	for i := range out {
		f := &out[i]
		*f = Frame{}
		if i == 0 {
			if e.Reset {
				s.reset(c, f)
			}
			if e.Clock && s.clk.pulse(c.ClockDivision) {
				s.tick(c, f)
			}
		}
		if s.clk.sample(c.BPM) {
			s.tick(c, f)
		}
		if s.pendingStep >= 0 {
			s.pendingDelay--
			if s.pendingDelay <= 0 {
				s.fire(s.pendingStep, c, f)
				s.pendingStep = -1
			}
		}
		s.render(c, f)
	}
	s.source.Store(int32(s.clk.source))
}

func (s *Sequencer) length() int {
	return s.results[s.live.Load()].Length
}

// tick advances one step
func (s *Sequencer) tick(c *Controls, f *Frame) {
	if s.pendingStep >= 0 {
		s.fire(s.pendingStep, c, f)
		s.pendingStep = -1
	}

	switch {
	case !s.started:
		s.started = true
		s.state.Store(int32(Running))
		s.step, s.bar = 0, 0
		s.regenerate(c, true)
	case s.pendingReset:
		s.pendingReset = false
		s.step = 0
		if s.resetMode == ResetPhrase {
			s.bar = 0
		}
	default:
		s.step++
		if s.step >= s.length() {
			s.step = 0
			s.bar++
			if s.bar >= c.PhraseBars {
				s.bar = 0
				s.newPhrase()
			}
			s.regenerate(c, true)
		} else if s.step%BeatSteps == 0 && (s.dirty || s.phaseDue(c)) {
			s.regenerate(c, false)
		}
	}
	s.pos = positionAt(s.step, s.bar, c.PhraseBars, s.length(), s.phrase)

	delay := float64(s.Live().Timing[s.step]) * s.clk.samplesPerStep(c.BPM, c.ClockDivision)
	if delay < 1 {
		s.fire(s.step, c, f)
		return
	}
	s.pendingStep = s.step
	s.pendingDelay = delay
}

func (s *Sequencer) newPhrase() {
	s.phrase++
	if n := s.reseeds.Load(); n != s.reseedsSeen {
		s.reseedsSeen = n
		s.patternSeed = pattern.Reseed(s.patternSeed, n)
	}
	s.phraseSeed = pattern.PhraseSeed(s.patternSeed, s.phrase)
	s.auxEvent = true
}

// regenerate builds the next bar into the back slot and flips it live. A
// mid-bar rebuild keeps the playing length; length changes wait for the bar.
// phaseDue reports whether the beat starting now belongs to a different
// build phase than the live pattern
func (s *Sequencer) phaseDue(c *Controls) bool {
	if c.Build <= 0 {
		return false
	}
	bar := min(s.bar, c.PhraseBars-1)
	progress := GenerationProgress(s.step, bar, c.PhraseBars, s.length())
	return pattern.PhaseFor(progress, s.tuning) != s.Live().Phase
}

func (s *Sequencer) regenerate(c *Controls, barStart bool) {
	if c.Seed != s.baseSeed {
		s.baseSeed = c.Seed
		s.patternSeed = c.Seed
		s.phraseSeed = pattern.PhraseSeed(s.patternSeed, s.phrase)
	}
	p := c.Params
	if !barStart {
		p.Length = s.length()
	}
	p.Seed = s.patternSeed
	p.PhraseSeed = s.phraseSeed
	bar := s.bar
	if bar >= c.PhraseBars {
		bar = c.PhraseBars - 1
	}
	length := pattern.SnapLength(p.Length)
	p.PhraseProgress = GenerationProgress(s.step, bar, c.PhraseBars, length)
	p.FillSteps = 0
	if c.Build > 0 {
		p.FillSteps = FillSteps(bar, c.PhraseBars, length)
	}

	back := 1 - s.live.Load()
	s.results[back] = pattern.Generate(p, s.tuning)
	s.live.Store(back)

	s.built = *c
	s.dirty = false
	s.auxEvent = true
	s.generations.Add(1)
}

// reset handles a reset edge. Nothing moves before the first step.
func (s *Sequencer) reset(c *Controls, f *Frame) {
	if !s.started {
		return
	}
	if c.ResetMode != ResetStep {
		s.pendingReset = true
		s.resetMode = c.ResetMode
		return
	}
	s.pendingReset = false
	s.pendingStep = -1
	s.step = 0
	s.pos = positionAt(0, s.bar, c.PhraseBars, s.length(), s.phrase)
	s.clk.restart(c.BPM)
	s.clk.phase = -1 // this sample opens the step
	s.fire(0, c, f)
}

// fire opens the gates of every voice with a hit on step
func (s *Sequencer) fire(step int, c *Controls, f *Frame) {
	r := s.Live()
	n := int(c.GateMs * s.sampleRate / 1000)
	if n < 1 {
		n = 1
	}
	for v := pattern.Voice(0); v < pattern.NumVoices; v++ {
		if v == pattern.Aux && c.AuxMode != AuxHat {
			continue
		}
		if r.Masks[v].Has(step) {
			s.trigger(v, r.Velocity[v][step], n, f)
		}
	}
	if c.AuxMode == AuxEvent && s.auxEvent {
		s.trigger(pattern.Aux, 1, n, f)
	}
	s.auxEvent = false
}

func (s *Sequencer) trigger(v pattern.Voice, vel float32, samples int, f *Frame) {
	s.gates[v] = gate{remaining: samples, velocity: vel}
	f.Voices[v].Fired = true
}

// render writes gate levels for the current sample
func (s *Sequencer) render(c *Controls, f *Frame) {
	for v := range s.gates {
		g := &s.gates[v]
		o := &f.Voices[v]
		o.Velocity = g.velocity
		if g.remaining > 0 {
			o.Gate = true
			g.remaining--
		}
	}

	aux := &f.Voices[pattern.Aux]
	switch c.AuxMode {
	case AuxFillGate:
		high := s.started && s.pos.InFillZone
		aux.Fired = high && !s.auxHigh
		aux.Gate = high
		aux.Velocity = 0
		if high {
			aux.Velocity = 1
		}
		s.auxHigh = high
	case AuxPhraseCV:
		aux.Gate = s.started
		aux.Fired = false
		aux.Velocity = float32(s.pos.Progress)
	}

	f.Step = -1
	if s.started {
		f.Step = int16(s.step)
	}
}
