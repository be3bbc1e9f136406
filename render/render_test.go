package render

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/gopxl/beep"

	"go-rhythm/pattern"
	"go-rhythm/sequencer"
)

// fireOnce fires the given voice on the first frame it is asked for
type fireOnce struct {
	voice  pattern.Voice
	fired  bool
	blocks []int
}

func (f *fireOnce) Block(frames []sequencer.Frame) {
	f.blocks = append(f.blocks, len(frames))
	clear(frames)
	if !f.fired && len(frames) > 0 {
		frames[0].Voices[f.voice] = sequencer.VoiceOut{Gate: true, Velocity: 1, Fired: true}
		f.fired = true
	}
}

func peak(samples [][2]float64) float64 {
	var p float64
	for _, s := range samples {
		for _, x := range s {
			if x < 0 {
				x = -x
			}
			if x > p {
				p = x
			}
		}
	}
	return p
}

func TestStreamerClicksOnTrigger(t *testing.T) {
	for v := pattern.Voice(0); v < pattern.NumVoices; v++ {
		t.Run(v.String(), func(t *testing.T) {
			src := &fireOnce{voice: v}
			s := NewStreamer(src, 44100, 64)
			buf := make([][2]float64, 2000)
			n, ok := s.Stream(buf)
			if n != len(buf) || !ok {
				t.Fatalf("Stream = %d, %v", n, ok)
			}
			if p := peak(buf[:500]); p < 0.01 || p > 2 {
				t.Errorf("peak after trigger = %f", p)
			}
			if s.Err() != nil {
				t.Error(s.Err())
			}
		})
	}
}

func TestStreamerSilentWithoutTriggers(t *testing.T) {
	src := &fireOnce{fired: true}
	s := NewStreamer(src, 44100, 64)
	buf := make([][2]float64, 512)
	s.Stream(buf)
	if p := peak(buf); p != 0 {
		t.Errorf("peak = %f without triggers", p)
	}
}

func TestStreamerSplitsIntoBlocks(t *testing.T) {
	src := &fireOnce{}
	s := NewStreamer(src, 44100, 256)
	s.Stream(make([][2]float64, 600))
	want := []int{256, 256, 88}
	if len(src.blocks) != len(want) {
		t.Fatalf("blocks = %v", src.blocks)
	}
	for i := range want {
		if src.blocks[i] != want[i] {
			t.Errorf("blocks = %v, want %v", src.blocks, want)
		}
	}
}

func TestStreamDoesNotAllocate(t *testing.T) {
	seq := sequencer.New(48000, nil)
	c := sequencer.DefaultControls()
	c.BPM = 200
	c.Energy = 0.9
	seq.SetControls(c)
	s := NewStreamer(FreeRunning(seq), 48000, 256)
	buf := make([][2]float64, 1024)
	s.Stream(buf)
	allocs := testing.AllocsPerRun(200, func() {
		s.Stream(buf)
	})
	if allocs != 0 {
		t.Errorf("Stream allocated %v times", allocs)
	}
}

func TestBarSamples(t *testing.T) {
	c := sequencer.DefaultControls()
	c.BPM = 120
	c.Length = 16
	if got := BarSamples(c, 48000); got != 96000 {
		t.Errorf("BarSamples = %d", got)
	}
}

func testOptions(volume float64) Options {
	c := sequencer.DefaultControls()
	c.Energy = 0.7
	return Options{Controls: c, Bars: 1, SampleRate: 8000, Volume: volume}
}

func TestOfflineLength(t *testing.T) {
	o := testOptions(1)
	o.Bars = 2
	s := Offline(o)
	buf := make([][2]float64, 4096)
	total := 0
	for {
		n, ok := s.Stream(buf)
		total += n
		if !ok {
			break
		}
	}
	if want := 2 * BarSamples(o.Controls, o.SampleRate); total != want {
		t.Errorf("rendered %d samples, want %d", total, want)
	}
}

func TestOfflineVolume(t *testing.T) {
	loud := make([][2]float64, 2000)
	Offline(testOptions(1)).Stream(loud)
	if peak(loud) == 0 {
		t.Fatal("render is silent")
	}
	quiet := make([][2]float64, 2000)
	Offline(testOptions(0)).Stream(quiet)
	if p := peak(quiet); p != 0 {
		t.Errorf("zero volume peak = %f", p)
	}
}

func TestWriteWAVFile(t *testing.T) {
	o := testOptions(0.8)
	path := filepath.Join(t.TempDir(), "bar.wav")
	if err := WriteWAVFile(path, o); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data[0:4], []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WAVE")) {
		t.Errorf("bad header % x", data[:12])
	}
	want := 44 + BarSamples(o.Controls, o.SampleRate)*4
	if len(data) != want {
		t.Errorf("file is %d bytes, want %d", len(data), want)
	}
}

func TestWriteWAVFileBadPath(t *testing.T) {
	err := WriteWAVFile(filepath.Join(t.TempDir(), "missing", "x.wav"), testOptions(1))
	if err == nil {
		t.Error("expected an error for a missing directory")
	}
}

var _ beep.Streamer = (*Streamer)(nil)
