package theme

import (
	"github.com/charmbracelet/lipgloss"

	"go-rhythm/pattern"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	StepEmpty    rune // · no hit
	StepHit      rune // ● hit
	StepAccent   rune // ◆ accented hit
	StepPlayhead rune // ▶ current step, no hit
	StepBeyond   rune // - past bar length

	MeterFill  rune // █
	MeterEmpty rune // ░
	Selected   rune // ▸ selected control
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			StepEmpty:    '·',
			StepHit:      '●',
			StepAccent:   '◆',
			StepPlayhead: '▶',
			StepBeyond:   '-',

			MeterFill:  '█',
			MeterEmpty: '░',
			Selected:   '▸',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0 // deep purple
	RoleSurface = 0.1 // dark purple
	RoleMuted   = 0.2 // purple-magenta
	RoleFG      = 0.4 // pink-purple (readable)
	RoleAccent  = 0.5 // vivid magenta
	RoleCursor  = 0.6 // rose pink
	RoleActive  = 0.7 // soft red
	RoleWarning = 0.8 // orange
	RoleSuccess = 1.0 // bright yellow
)

// voiceRoles places each voice on the palette
var voiceRoles = [pattern.NumVoices]float64{0.55, 0.75, 0.95}

// Style helpers

func (t *Theme) BG() lipgloss.Color      { return t.Color(RoleBG) }
func (t *Theme) FG() lipgloss.Color      { return t.Color(RoleFG) }
func (t *Theme) Accent() lipgloss.Color  { return t.Color(RoleAccent) }
func (t *Theme) Muted() lipgloss.Color   { return t.Color(RoleMuted) }
func (t *Theme) Active() lipgloss.Color  { return t.Color(RoleActive) }
func (t *Theme) Cursor() lipgloss.Color  { return t.Color(RoleCursor) }
func (t *Theme) Warning() lipgloss.Color { return t.Color(RoleWarning) }
func (t *Theme) Success() lipgloss.Color { return t.Color(RoleSuccess) }

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return lipgloss.Color(t.Palette.Lookup(norm).Hex())
}

// RGB returns raw RGB for any normalized value
func (t *Theme) RGB(norm float64) RGB {
	return t.Palette.Lookup(norm)
}

// Voice is the colour of a voice's hits at full velocity
func (t *Theme) Voice(v pattern.Voice) RGB {
	return t.Palette.Lookup(voiceRoles[v])
}

// Velocity dims a voice's colour toward the muted role as velocity drops
func (t *Theme) Velocity(v pattern.Voice, vel float32) RGB {
	if vel >= 1 {
		return t.Voice(v)
	}
	lo := RoleMuted
	hi := voiceRoles[v]
	return t.Palette.Lookup(lo + (hi-lo)*float64(vel))
}
