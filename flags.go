package main

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/spf13/cobra"

	"go-rhythm/config"
	"go-rhythm/pattern"
	"go-rhythm/sequencer"
)

// controlFlags are the command-line overrides for sequencer controls. Only
// flags the user actually set are applied.
type controlFlags struct {
	params map[string]*float64

	bpm        float64
	seed       string
	length     int
	phraseBars int
	division   int
	gateMs     float64

	genre, coupling, auxDensity string
	auxMode, resetMode          string
}

// kebab turns axisX into axis-x
func kebab(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsUpper(r) {
			b.WriteByte('-')
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func addControlFlags(cmd *cobra.Command) *controlFlags {
	f := &controlFlags{params: make(map[string]*float64)}
	fs := cmd.Flags()
	for _, name := range sequencer.ParamNames {
		v := new(float64)
		f.params[name] = v
		fs.Float64Var(v, kebab(name), 0, name+" control, 0-1")
	}
	fs.Float64Var(&f.bpm, "bpm", 120, "internal clock tempo")
	fs.StringVar(&f.seed, "seed", "", "pattern seed, decimal or 0x hex")
	fs.IntVar(&f.length, "length", 32, "bar length in steps (16, 24, 32 or 64)")
	fs.IntVar(&f.phraseBars, "phrase-bars", 4, "bars per phrase")
	fs.IntVar(&f.division, "division", 1, "external clock pulses per step")
	fs.Float64Var(&f.gateMs, "gate-ms", 10, "trigger length in milliseconds")
	fs.StringVar(&f.genre, "genre", "", "techno, tribal or idm")
	fs.StringVar(&f.coupling, "coupling", "", "independent (complement), interlock or shadow")
	fs.StringVar(&f.auxDensity, "aux-density", "", "sparse, normal, dense or busy")
	fs.StringVar(&f.auxMode, "aux-mode", "", "hat, fill-gate, phrase-cv or event")
	fs.StringVar(&f.resetMode, "reset-mode", "", "phrase, bar or step")
	return f
}

// apply writes every changed flag into c
func (f *controlFlags) apply(cmd *cobra.Command, c *sequencer.Controls) error {
	fs := cmd.Flags()
	for name, v := range f.params {
		if fs.Changed(kebab(name)) {
			c.Set(name, *v)
		}
	}
	if fs.Changed("bpm") {
		c.BPM = f.bpm
	}
	if fs.Changed("seed") {
		s, err := strconv.ParseUint(f.seed, 0, 32)
		if err != nil {
			return fmt.Errorf("--seed: %w", err)
		}
		c.Seed = uint32(s)
	}
	if fs.Changed("length") {
		c.Length = f.length
	}
	if fs.Changed("phrase-bars") {
		c.PhraseBars = f.phraseBars
	}
	if fs.Changed("division") {
		c.ClockDivision = f.division
	}
	if fs.Changed("gate-ms") {
		c.GateMs = f.gateMs
	}

	var ok bool
	if f.genre != "" {
		if c.Genre, ok = pattern.ParseGenre(f.genre); !ok {
			return fmt.Errorf("%w: %q", config.ErrUnknownGenre, f.genre)
		}
	}
	if f.coupling != "" {
		if c.Coupling, ok = pattern.ParseCoupling(f.coupling); !ok {
			return fmt.Errorf("%w: %q", config.ErrUnknownCoupling, f.coupling)
		}
	}
	if f.auxDensity != "" {
		if c.AuxDensity, ok = pattern.ParseAuxDensity(f.auxDensity); !ok {
			return fmt.Errorf("%w: %q", config.ErrUnknownAuxDensity, f.auxDensity)
		}
	}
	if f.auxMode != "" {
		if c.AuxMode, ok = sequencer.ParseAuxMode(f.auxMode); !ok {
			return fmt.Errorf("%w: %q", config.ErrUnknownAuxMode, f.auxMode)
		}
	}
	if f.resetMode != "" {
		if c.ResetMode, ok = sequencer.ParseResetMode(f.resetMode); !ok {
			return fmt.Errorf("%w: %q", config.ErrUnknownResetMode, f.resetMode)
		}
	}
	*c = c.Clamp()
	return nil
}

// controls starts from the saved state, or the defaults with --fresh
func (f *controlFlags) controls(cmd *cobra.Command, cfg *config.Config, fresh bool) (sequencer.Controls, error) {
	c := sequencer.DefaultControls()
	if !fresh {
		var err error
		if c, err = cfg.Controls(); err != nil {
			return c, err
		}
	}
	if err := f.apply(cmd, &c); err != nil {
		return c, err
	}
	return c, nil
}
