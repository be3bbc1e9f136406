package sequencer

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go-rhythm/debug"
	"go-rhythm/midi"
	"go-rhythm/pattern"
)

// TriggerOutput receives voice triggers. midi.Output is one.
type TriggerOutput interface {
	Send(midi.Trigger) error
}

// Snapshot is what the UI and HTTP side see of the running sequencer
type Snapshot struct {
	Result      pattern.Result `json:"result"`
	Position    PhrasePosition `json:"position"`
	Controls    Controls       `json:"controls"`
	State       State          `json:"state"`
	Running     bool           `json:"running"`
	Source      ClockSource    `json:"source"`
	BPM         float64        `json:"bpm"`
	Generations uint64         `json:"generations"`
	Dropped     uint64         `json:"dropped"`
}

// DefaultBlockSize is the number of samples processed per block
const DefaultBlockSize = 256

// UI refresh rate
const uiFPS = 30

// snapKey is what has to change before a new snapshot is worth copying
type snapKey struct {
	stepInPhrase int
	phrase       uint32
	generations  uint64
	state        State
	source       ClockSource
	running      bool
}

// Manager drives a Sequencer in real time. Control goroutines (MIDI, UI,
// HTTP) talk to it through methods; one block goroutine runs Block, either
// from Run's wall clock or from an audio callback.
type Manager struct {
	seq        *Sequencer
	sampleRate float64
	frames     []Frame

	mu       sync.Mutex // guards controls and tap
	controls Controls
	tap      TapTempo

	// handed from control goroutines to the block goroutine
	pulses  atomic.Int32
	reset   atomic.Bool
	halt    atomic.Bool
	rewind  atomic.Bool
	running atomic.Bool

	// block goroutine only
	prevGate [pattern.NumVoices]bool
	last     snapKey

	snapMu    sync.Mutex
	snapshot  Snapshot
	snapDirty bool

	out      TriggerOutput
	outMu    sync.RWMutex
	triggers chan midi.Trigger
	dropped  atomic.Uint64

	stopChan chan struct{}
	stopOnce sync.Once

	// Notify UI of updates
	UpdateChan chan struct{}
}

// NewManager creates a running manager with controls c. blockSize <= 0
// uses DefaultBlockSize, a nil tuning the default one.
func NewManager(sampleRate float64, blockSize int, t *pattern.Tuning, c Controls) *Manager {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	m := &Manager{
		seq:        New(sampleRate, t),
		sampleRate: sampleRate,
		frames:     make([]Frame, blockSize),
		controls:   c.Clamp(),
		triggers:   make(chan midi.Trigger, 256),
		stopChan:   make(chan struct{}),
		UpdateChan: make(chan struct{}, 1),
	}
	m.seq.SetControls(m.controls)
	m.running.Store(true)
	m.last.stepInPhrase = -1
	return m
}

// Sequencer returns the driven sequencer
func (m *Manager) Sequencer() *Sequencer {
	return m.seq
}

// BlockSize is the number of frames Run processes at a time
func (m *Manager) BlockSize() int {
	return len(m.frames)
}

// SetOutput sets where triggers go (nil to mute)
func (m *Manager) SetOutput(out TriggerOutput) {
	m.outMu.Lock()
	m.out = out
	m.outMu.Unlock()
}

func (m *Manager) output() TriggerOutput {
	m.outMu.RLock()
	defer m.outMu.RUnlock()
	return m.out
}

// StartRuntime starts the UI notifier and MIDI output goroutines
func (m *Manager) StartRuntime() {
	go m.uiLoop()
	go m.midiOutputLoop()
}

// Close stops the runtime goroutines and Run
func (m *Manager) Close() {
	m.stopOnce.Do(func() { close(m.stopChan) })
}

// Run processes blocks against the wall clock until ctx is done or the
// manager is closed. Use it when no audio device is pulling blocks.
func (m *Manager) Run(ctx context.Context) {
	block := len(m.frames)
	interval := time.Duration(float64(block) / m.sampleRate * float64(time.Second))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	t0 := time.Now()
	var done int64
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stopChan:
			return
		case now := <-ticker.C:
			due := int64(now.Sub(t0).Seconds()*m.sampleRate) / int64(block)
			if due-done > 32 {
				// stalled; skip ahead rather than burst
				debug.Log("block", "skipped %d blocks", due-done-1)
				done = due - 1
			}
			for ; done < due; done++ {
				m.Block(m.frames)
			}
		}
	}
}

// Block processes one block of frames and fans the result out. It does
// not allocate and never waits on a lock.
func (m *Manager) Block(frames []Frame) {
	if m.halt.Swap(false) {
		m.seq.Halt()
		m.releaseAll()
	}
	if m.rewind.Swap(false) {
		m.seq.Halt()
	}
	if !m.running.Load() {
		clear(frames)
		m.publish()
		return
	}

	var e Edges
	if m.pulses.Load() > 0 {
		m.pulses.Add(-1)
		e.Clock = true
	}
	e.Reset = m.reset.Swap(false)
	m.seq.Process(e, frames)

	for i := range frames {
		for v := range frames[i].Voices {
			o := &frames[i].Voices[v]
			switch {
			case o.Fired:
				if m.prevGate[v] {
					m.emit(midi.Trigger{Voice: v})
				}
				m.emit(midi.Trigger{Voice: v, Velocity: velocity7(o.Velocity), On: true})
			case m.prevGate[v] && !o.Gate:
				m.emit(midi.Trigger{Voice: v})
			}
			m.prevGate[v] = o.Gate
		}
	}
	m.publish()
}

func velocity7(v float32) uint8 {
	n := int(v*127 + 0.5)
	if n < 1 {
		n = 1
	}
	if n > 127 {
		n = 127
	}
	return uint8(n)
}

// emit queues a trigger for the MIDI goroutine, dropping it when full
func (m *Manager) emit(t midi.Trigger) {
	select {
	case m.triggers <- t:
	default:
		m.dropped.Add(1)
	}
}

func (m *Manager) releaseAll() {
	for v := range m.prevGate {
		if m.prevGate[v] {
			m.emit(midi.Trigger{Voice: v})
			m.prevGate[v] = false
		}
	}
}

// publish copies a new snapshot when something visible changed. If a
// reader holds the lock the copy is retried on the next block.
func (m *Manager) publish() {
	pos := m.seq.Position()
	key := snapKey{
		stepInPhrase: pos.StepInPhrase,
		phrase:       pos.Phrase,
		generations:  m.seq.Generations(),
		state:        m.seq.State(),
		source:       m.seq.ClockSource(),
		running:      m.running.Load(),
	}
	if key == m.last {
		return
	}
	if !m.snapMu.TryLock() {
		return
	}
	s := &m.snapshot
	s.Result = *m.seq.Live()
	s.Position = pos
	s.Controls = m.seq.Controls()
	s.State = key.state
	s.Running = key.running
	s.Source = key.source
	s.BPM = m.seq.EffectiveBPM()
	s.Generations = key.generations
	s.Dropped = m.dropped.Load()
	m.snapDirty = true
	m.snapMu.Unlock()
	m.last = key
}

// Snapshot returns the latest published state
func (m *Manager) Snapshot() Snapshot {
	m.snapMu.Lock()
	defer m.snapMu.Unlock()
	return m.snapshot
}

// uiLoop notifies the UI at a fixed rate and logs what changed
func (m *Manager) uiLoop() {
	ticker := time.NewTicker(time.Second / uiFPS)
	defer ticker.Stop()

	var source ClockSource
	var gens uint64
	for {
		select {
		case <-m.stopChan:
			return
		case <-ticker.C:
			m.snapMu.Lock()
			dirty := m.snapDirty
			m.snapDirty = false
			s := m.snapshot.Source
			g := m.snapshot.Generations
			zone := m.snapshot.Result.Zone
			m.snapMu.Unlock()

			if s != source {
				debug.Log("clock", "source %s -> %s", source, s)
				source = s
			}
			if g != gens {
				debug.LogEvery(8, "regen", "generation %d zone=%s", g, zone)
				gens = g
			}
			if dirty {
				m.notifyUpdate()
			}
		}
	}
}

// midiOutputLoop sends queued triggers to the output
func (m *Manager) midiOutputLoop() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for {
		select {
		case <-m.stopChan:
			return
		case t := <-m.triggers:
			out := m.output()
			if out == nil {
				continue
			}
			if err := out.Send(t); err != nil {
				debug.Log("dispatch", "voice=%d on=%v: %v", t.Voice, t.On, err)
			}
		}
	}
}

// notifyUpdate pokes the UI without blocking
func (m *Manager) notifyUpdate() {
	select {
	case m.UpdateChan <- struct{}{}:
	default:
	}
}

// Transport

// Play rewinds to the top and starts
func (m *Manager) Play() {
	m.rewind.Store(true)
	m.running.Store(true)
	m.notifyUpdate()
}

// Continue resumes from where Stop left off
func (m *Manager) Continue() {
	m.running.Store(true)
	m.notifyUpdate()
}

// Stop halts playback and releases held notes
func (m *Manager) Stop() {
	m.running.Store(false)
	m.halt.Store(true)
	m.notifyUpdate()
}

// TogglePlay stops when running and plays from the top otherwise
func (m *Manager) TogglePlay() {
	if m.running.Load() {
		m.Stop()
	} else {
		m.Play()
	}
}

// Playing reports whether blocks are being processed
func (m *Manager) Playing() bool {
	return m.running.Load()
}

// Reset sends a reset edge on the next block
func (m *Manager) Reset() {
	m.reset.Store(true)
}

// Reseed asks for a new pattern seed at the next phrase
func (m *Manager) Reseed() {
	m.seq.RequestReseed()
}

// Pulse delivers one external clock pulse
func (m *Manager) Pulse() {
	m.pulses.Add(1)
}

// Controls

// Controls returns the control-rate copy of the controls
func (m *Manager) Controls() Controls {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.controls
}

// UpdateControls edits the controls under the lock and publishes the result
func (m *Manager) UpdateControls(fn func(*Controls)) Controls {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.controls
	fn(&c)
	m.controls = c.Clamp()
	m.seq.SetControls(m.controls)
	return m.controls
}

// SetParam sets a continuous control by name
func (m *Manager) SetParam(name string, v float64) bool {
	ok := false
	m.UpdateControls(func(c *Controls) { ok = c.Set(name, v) })
	return ok
}

// NudgeParam moves a continuous control by delta
func (m *Manager) NudgeParam(name string, delta float64) bool {
	ok := false
	m.UpdateControls(func(c *Controls) {
		if v, found := c.Get(name); found {
			ok = c.Set(name, v+delta)
		}
	})
	return ok
}

// SetTempo sets the internal clock BPM
func (m *Manager) SetTempo(bpm float64) {
	m.UpdateControls(func(c *Controls) { c.BPM = bpm })
}

// Tap feeds tap tempo and applies the tempo once it settles
func (m *Manager) Tap(now time.Time) (float64, bool) {
	m.mu.Lock()
	bpm, ok := m.tap.Tap(now)
	m.mu.Unlock()
	if ok {
		m.SetTempo(bpm)
		debug.Log("tempo", "tap %.1f bpm", bpm)
	}
	return bpm, ok
}

// MIDI input

// HandleClock applies a clock-port message
func (m *Manager) HandleClock(ev midi.ClockEvent) {
	switch ev.Kind {
	case midi.ClockTick:
		m.Pulse()
	case midi.ClockStart:
		debug.Log("clock", "start")
		m.Play()
	case midi.ClockContinue:
		m.Continue()
	case midi.ClockStop:
		debug.Log("clock", "stop")
		m.Stop()
	}
}

// HandleControl applies a knob or pad event
func (m *Manager) HandleControl(ev midi.ControlEvent) {
	switch ev.Kind {
	case midi.ControlParam:
		if !m.SetParam(ev.Param, ev.Value) {
			debug.Log("control", "unknown param %q", ev.Param)
		}
	case midi.ControlReset:
		m.Reset()
	case midi.ControlReseed:
		m.Reseed()
	case midi.ControlTap:
		m.Tap(time.Now())
	}
	m.notifyUpdate()
}

// SetMIDIInput consumes a controller's events until its channels close
func (m *Manager) SetMIDIInput(ctrl midi.Controller) {
	if ctrl == nil {
		return
	}
	go func() {
		for ev := range ctrl.ClockEvents() {
			m.HandleClock(ev)
		}
	}()
	go func() {
		for ev := range ctrl.ControlEvents() {
			m.HandleControl(ev)
		}
	}()
}
