package render

import (
	"github.com/gopxl/beep"

	"go-rhythm/pattern"
	"go-rhythm/sequencer"
)

// Source fills a block of sequencer frames. *sequencer.Manager is one.
type Source interface {
	Block(frames []sequencer.Frame)
}

// SourceFunc adapts a function to Source
type SourceFunc func(frames []sequencer.Frame)

func (f SourceFunc) Block(frames []sequencer.Frame) { f(frames) }

// FreeRunning drives seq from its internal clock with no edges
func FreeRunning(seq *sequencer.Sequencer) Source {
	return SourceFunc(func(frames []sequencer.Frame) {
		seq.Process(sequencer.Edges{}, frames)
	})
}

// Streamer is a beep.Streamer that pulls frames from a Source one block at
// a time and plays a click for every fired trigger. It never ends.
type Streamer struct {
	src    Source
	frames []sequencer.Frame
	voices [pattern.NumVoices]click
	pan    [pattern.NumVoices][2]float64
	gain   [pattern.NumVoices]float64
}

// NewStreamer creates a streamer processing at most blockSize samples per
// Source call
func NewStreamer(src Source, rate beep.SampleRate, blockSize int) *Streamer {
	if blockSize <= 0 {
		blockSize = sequencer.DefaultBlockSize
	}
	s := &Streamer{
		src:    src,
		frames: make([]sequencer.Frame, blockSize),
		pan: [pattern.NumVoices][2]float64{
			{1, 1},
			{0.8, 1},
			{1, 0.7},
		},
		gain: [pattern.NumVoices]float64{0.9, 0.5, 0.3},
	}
	for v := range s.voices {
		s.voices[v] = newClick(pattern.Voice(v), rate)
	}
	return s
}

func (s *Streamer) Stream(samples [][2]float64) (n int, ok bool) {
	for done := 0; done < len(samples); {
		frames := s.frames
		if left := len(samples) - done; left < len(frames) {
			frames = frames[:left]
		}
		s.src.Block(frames)
		for i := range frames {
			var l, r float64
			for v := range s.voices {
				o := &frames[i].Voices[v]
				if o.Fired {
					s.voices[v].trigger(o.Velocity)
				}
				x := s.voices[v].next() * s.gain[v]
				l += x * s.pan[v][0]
				r += x * s.pan[v][1]
			}
			samples[done+i] = [2]float64{l, r}
		}
		done += len(frames)
	}
	return len(samples), true
}

func (s *Streamer) Err() error { return nil }
