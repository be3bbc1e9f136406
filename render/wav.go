package render

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/wav"

	"go-rhythm/pattern"
	"go-rhythm/sequencer"
)

// Options describes an offline render
type Options struct {
	Controls   sequencer.Controls
	Tuning     *pattern.Tuning // nil for the default
	Bars       int
	SampleRate beep.SampleRate
	Volume     float64 // 0..1
}

// withVolume scales s by a linear volume. Zero is silent.
func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// BarSamples is the length of one bar at the controls' tempo
func BarSamples(c sequencer.Controls, rate beep.SampleRate) int {
	c = c.Clamp()
	perStep := float64(rate) * 60 / (c.BPM * 4)
	return int(math.Round(perStep * float64(c.Length)))
}

// Offline returns a finite streamer rendering o.Bars bars from a fresh
// sequencer on its internal clock
func Offline(o Options) beep.Streamer {
	seq := sequencer.New(float64(o.SampleRate), o.Tuning)
	seq.SetControls(o.Controls)
	s := NewStreamer(FreeRunning(seq), o.SampleRate, sequencer.DefaultBlockSize)
	bars := o.Bars
	if bars < 1 {
		bars = 1
	}
	return beep.Take(bars*BarSamples(o.Controls, o.SampleRate), withVolume(s, o.Volume))
}

// WriteWAV encodes an offline render as 16-bit stereo WAV
func WriteWAV(w io.WriteSeeker, o Options) error {
	format := beep.Format{SampleRate: o.SampleRate, NumChannels: 2, Precision: 2}
	if err := wav.Encode(w, Offline(o), format); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	return nil
}

// WriteWAVFile renders to a new file at path
func WriteWAVFile(path string, o Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteWAV(f, o); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
