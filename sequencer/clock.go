package sequencer

import (
	"fmt"
	"time"
)

// State is the transport state of the sequencer
type State int32

const (
	Idle    State = iota // waiting for the first clock edge
	Running              // stepping
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ClockSource says which clock is advancing the steps
type ClockSource int32

const (
	ClockInternal ClockSource = iota
	ClockExternal
)

func (c ClockSource) String() string {
	switch c {
	case ClockInternal:
		return "internal"
	case ClockExternal:
		return "external"
	}
	return fmt.Sprintf("clock(%d)", int(c))
}

const (
	// LockPulses is how many external pulses in a row it takes to follow them
	LockPulses = 2
	// ClockTimeout is the external silence after which the internal clock takes over
	ClockTimeout = 2 * time.Second
)

// clock turns samples and external pulses into step ticks. It belongs to
// the audio goroutine.
type clock struct {
	sampleRate float64
	source     ClockSource

	// internal
	phase float64 // samples since the last internal step

	// external
	pulses    int     // consecutive pulses inside the timeout
	since     int64   // samples since the last external pulse
	interval  float64 // smoothed samples between pulses
	divCount  int
	timeout   int64
	heardOnce bool
}

func newClock(sampleRate float64) clock {
	return clock{
		sampleRate: sampleRate,
		timeout:    int64(ClockTimeout.Seconds() * sampleRate),
	}
}

// samplesPerStep is the step period under the active source
func (c *clock) samplesPerStep(bpm float64, division int) float64 {
	if c.source == ClockExternal && c.interval > 0 {
		return c.interval * float64(division)
	}
	return c.sampleRate * 60 / (bpm * 4)
}

// pulse registers an external clock edge and reports whether it starts a step
func (c *clock) pulse(division int) bool {
	if c.heardOnce && c.since <= c.timeout {
		c.pulses++
		if c.interval == 0 {
			c.interval = float64(c.since)
		} else {
			c.interval = 0.75*c.interval + 0.25*float64(c.since)
		}
	} else {
		c.pulses = 1
		c.interval = 0
	}
	c.heardOnce = true
	c.since = 0

	if c.source == ClockInternal {
		if c.pulses < LockPulses {
			return false
		}
		c.source = ClockExternal
		c.divCount = 0
	}
	tick := c.divCount == 0
	c.divCount++
	if c.divCount >= division {
		c.divCount = 0
	}
	return tick
}

// sample advances one sample and reports whether the internal clock steps
func (c *clock) sample(bpm float64) bool {
	c.since++
	if c.source == ClockExternal {
		if c.since > c.timeout {
			c.source = ClockInternal
			c.pulses = 0
			c.phase = 0
		}
		return false
	}
	c.phase++
	period := c.sampleRate * 60 / (bpm * 4)
	if c.phase >= period {
		c.phase -= period
		if c.phase >= period {
			c.phase = 0
		}
		return true
	}
	return false
}

// restart lines the internal clock up so the next sample steps
func (c *clock) restart(bpm float64) {
	c.phase = c.sampleRate*60/(bpm*4) - 1
	c.divCount = 0
}

// TapTempo turns taps into a tempo. Taps further apart than MaxTap or
// closer than MinTap start a new sequence.
type TapTempo struct {
	last      time.Time
	intervals [3]time.Duration
	n         int
}

const (
	MinTap = 100 * time.Millisecond
	MaxTap = 2000 * time.Millisecond
)

// Tap records a tap at now and returns the averaged tempo once two taps
// in range have been seen
func (t *TapTempo) Tap(now time.Time) (float64, bool) {
	if t.last.IsZero() {
		t.last = now
		return 0, false
	}
	d := now.Sub(t.last)
	t.last = now
	if d < MinTap || d > MaxTap {
		t.n = 0
		return 0, false
	}
	copy(t.intervals[1:], t.intervals[:len(t.intervals)-1])
	t.intervals[0] = d
	if t.n < len(t.intervals) {
		t.n++
	}
	var sum time.Duration
	for _, iv := range t.intervals[:t.n] {
		sum += iv
	}
	avg := sum / time.Duration(t.n)
	bpm := 60 / avg.Seconds()
	if bpm < MinBPM {
		bpm = MinBPM
	}
	if bpm > MaxBPM {
		bpm = MaxBPM
	}
	return bpm, true
}
