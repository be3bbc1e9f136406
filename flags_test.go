package main

import (
	"errors"
	"testing"

	"github.com/spf13/cobra"

	"go-rhythm/config"
	"go-rhythm/pattern"
	"go-rhythm/sequencer"
)

func TestKebab(t *testing.T) {
	for in, want := range map[string]string{"axisX": "axis-x", "energy": "energy", "axisY": "axis-y"} {
		if got := kebab(in); got != want {
			t.Errorf("kebab(%q) = %q", in, got)
		}
	}
}

func parse(t *testing.T, args ...string) (sequencer.Controls, error) {
	t.Helper()
	cmd := &cobra.Command{Use: "x"}
	f := addControlFlags(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatal(err)
	}
	c := sequencer.DefaultControls()
	err := f.apply(cmd, &c)
	return c, err
}

func TestApplyOnlyChangedFlags(t *testing.T) {
	c, err := parse(t, "--energy", "0.9", "--axis-x", "2", "--genre", "IDM", "--seed", "0x10", "--length", "20", "--aux-mode", "phrase_cv")
	if err != nil {
		t.Fatal(err)
	}
	def := sequencer.DefaultControls()
	if c.Energy != 0.9 || c.AxisX != 1 || c.Genre != pattern.IDM || c.Seed != 16 || c.Length != 16 {
		t.Errorf("controls = %+v", c)
	}
	if c.AuxMode != sequencer.AuxPhraseCV {
		t.Errorf("aux mode = %v", c.AuxMode)
	}
	if c.Shape != def.Shape || c.BPM != def.BPM || c.PhraseBars != def.PhraseBars {
		t.Error("unset flags overwrote controls")
	}
}

func TestApplyErrors(t *testing.T) {
	if _, err := parse(t, "--genre", "polka"); !errors.Is(err, config.ErrUnknownGenre) {
		t.Errorf("err = %v", err)
	}
	if _, err := parse(t, "--reset-mode", "song"); !errors.Is(err, config.ErrUnknownResetMode) {
		t.Errorf("err = %v", err)
	}
	if _, err := parse(t, "--seed", "banana"); err == nil {
		t.Error("bad seed accepted")
	}
}

func TestPhraseBar(t *testing.T) {
	c := sequencer.DefaultControls()
	c.PhraseBars = 4
	c.Length = 16
	c.Build = 1
	p0, p3, p4 := phraseBar(c, 0), phraseBar(c, 3), phraseBar(c, 4)
	if p0.PhraseProgress != 3.0/64 || p3.PhraseProgress != 51.0/64 || p4.PhraseProgress != p0.PhraseProgress {
		t.Errorf("progress %v %v %v", p0.PhraseProgress, p3.PhraseProgress, p4.PhraseProgress)
	}
	if p0.FillSteps != 0 || p3.FillSteps != 16 {
		t.Errorf("fill steps %d %d", p0.FillSteps, p3.FillSteps)
	}
	if p0.PhraseSeed != p3.PhraseSeed || p0.PhraseSeed == p4.PhraseSeed {
		t.Error("phrase seed should change only at the phrase boundary")
	}
}
