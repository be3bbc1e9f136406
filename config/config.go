package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go-rhythm/midi"
	"go-rhythm/pattern"
	"go-rhythm/sequencer"
)

var (
	ErrUnknownGenre      = errors.New("unknown genre")
	ErrUnknownCoupling   = errors.New("unknown coupling")
	ErrUnknownResetMode  = errors.New("unknown reset mode")
	ErrUnknownAuxMode    = errors.New("unknown aux mode")
	ErrUnknownAuxDensity = errors.New("unknown aux density")
	ErrUnknownKit        = errors.New("unknown kit")
)

// PatternConfig is the saved control state. Enums are stored by name.
type PatternConfig struct {
	Length        int     `json:"length"`
	Genre         string  `json:"genre"`
	Coupling      string  `json:"coupling"`
	Swing         float64 `json:"swing"`
	ClockDivision int     `json:"clockDivision"`
	Seed          uint32  `json:"seed"`
	ResetMode     string  `json:"resetMode"`
	AuxMode       string  `json:"auxMode"`
	AuxDensity    string  `json:"auxDensity"`
	PhraseBars    int     `json:"phraseBars"`
	Balance       float64 `json:"balance"`
	Build         float64 `json:"build"`

	Shape  float64 `json:"shape"`
	Energy float64 `json:"energy"`
	AxisX  float64 `json:"axisX"`
	AxisY  float64 `json:"axisY"`
	Drift  float64 `json:"drift"`
	Accent float64 `json:"accent"`
}

// MIDIConfig names the ports to use. Empty names disable that port.
type MIDIConfig struct {
	OutPort       string   `json:"outPort,omitempty"`
	ClockInPort   string   `json:"clockInPort,omitempty"`
	ControlInPort string   `json:"controlInPort,omitempty"`
	Channel       int      `json:"channel"`
	Kit           string   `json:"kit,omitempty"` // overrides Notes
	Notes         [3]uint8 `json:"notes"`         // anchor, shimmer, aux
	GateMs        float64  `json:"gateMs"`
}

// AudioConfig controls the built-in click voices
type AudioConfig struct {
	Enabled    bool    `json:"enabled"`
	SampleRate int     `json:"sampleRate"`
	BlockSize  int     `json:"blockSize"`
	Volume     float64 `json:"volume"` // 0..1
}

// ServerConfig controls the HTTP interface
type ServerConfig struct {
	Addr string `json:"addr,omitempty"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	LastTempo int `json:"lastTempo,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Pattern PatternConfig `json:"pattern"`
	MIDI    MIDIConfig    `json:"midi"`
	Audio   AudioConfig   `json:"audio"`
	Server  ServerConfig  `json:"server,omitempty"`
	UI      UIConfig      `json:"ui,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	c := &Config{
		MIDI: MIDIConfig{
			Channel: 10,
			Notes:   [3]uint8{36, 38, 42},
		},
		Audio: AudioConfig{
			SampleRate: 44100,
			BlockSize:  sequencer.DefaultBlockSize,
			Volume:     0.7,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8420",
		},
		UI: UIConfig{
			LastTempo: 120,
		},
	}
	c.Apply(sequencer.DefaultControls())
	return c
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-rhythm"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. Fields missing from the file keep
// their defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// VoiceNotes returns the note for each voice, from the kit when one is set
func (m MIDIConfig) VoiceNotes() ([3]uint8, error) {
	if m.Kit == "" {
		return m.Notes, nil
	}
	k, ok := midi.FindKit(m.Kit)
	if !ok {
		return m.Notes, fmt.Errorf("%w: %q", ErrUnknownKit, m.Kit)
	}
	return k.Notes, nil
}

// Controls converts the saved state into sequencer controls. Unknown enum
// names are errors; out-of-range numbers are clamped.
func (c *Config) Controls() (sequencer.Controls, error) {
	p := c.Pattern
	ctl := sequencer.DefaultControls()

	var ok bool
	if ctl.Genre, ok = pattern.ParseGenre(p.Genre); !ok {
		return ctl, fmt.Errorf("%w: %q", ErrUnknownGenre, p.Genre)
	}
	if ctl.Coupling, ok = pattern.ParseCoupling(p.Coupling); !ok {
		return ctl, fmt.Errorf("%w: %q", ErrUnknownCoupling, p.Coupling)
	}
	if ctl.AuxDensity, ok = pattern.ParseAuxDensity(p.AuxDensity); !ok {
		return ctl, fmt.Errorf("%w: %q", ErrUnknownAuxDensity, p.AuxDensity)
	}
	if ctl.ResetMode, ok = sequencer.ParseResetMode(p.ResetMode); !ok {
		return ctl, fmt.Errorf("%w: %q", ErrUnknownResetMode, p.ResetMode)
	}
	if ctl.AuxMode, ok = sequencer.ParseAuxMode(p.AuxMode); !ok {
		return ctl, fmt.Errorf("%w: %q", ErrUnknownAuxMode, p.AuxMode)
	}

	ctl.Shape, ctl.Energy = p.Shape, p.Energy
	ctl.AxisX, ctl.AxisY = p.AxisX, p.AxisY
	ctl.Drift, ctl.Accent = p.Drift, p.Accent
	ctl.Balance, ctl.Build = p.Balance, p.Build
	ctl.Swing = p.Swing
	ctl.Seed = p.Seed
	ctl.Length = p.Length
	ctl.ClockDivision = p.ClockDivision
	ctl.PhraseBars = p.PhraseBars
	if c.UI.LastTempo > 0 {
		ctl.BPM = float64(c.UI.LastTempo)
	}
	if c.MIDI.GateMs > 0 {
		ctl.GateMs = c.MIDI.GateMs
	}
	return ctl.Clamp(), nil
}

// Apply stores ctl as the state to restore next time
func (c *Config) Apply(ctl sequencer.Controls) {
	c.Pattern = PatternConfig{
		Length:        ctl.Length,
		Genre:         ctl.Genre.String(),
		Coupling:      ctl.Coupling.String(),
		Swing:         ctl.Swing,
		ClockDivision: ctl.ClockDivision,
		Seed:          ctl.Seed,
		ResetMode:     ctl.ResetMode.String(),
		AuxMode:       ctl.AuxMode.String(),
		AuxDensity:    ctl.AuxDensity.String(),
		PhraseBars:    ctl.PhraseBars,
		Balance:       ctl.Balance,
		Build:         ctl.Build,
		Shape:         ctl.Shape,
		Energy:        ctl.Energy,
		AxisX:         ctl.AxisX,
		AxisY:         ctl.AxisY,
		Drift:         ctl.Drift,
		Accent:        ctl.Accent,
	}
	c.UI.LastTempo = int(ctl.BPM + 0.5)
	c.MIDI.GateMs = ctl.GateMs
}
