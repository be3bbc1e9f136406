package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-rhythm/midi"
	"go-rhythm/pattern"
	"go-rhythm/sequencer"
	"go-rhythm/theme"
	"go-rhythm/widgets"
)

// layoutBounds holds cached layout info
type layoutBounds struct {
	gridTop int
	length  int
}

type Model struct {
	Manager   *sequencer.Manager
	DeviceMgr *midi.DeviceManager // may be nil
	Theme     *theme.Theme

	// OnQuit receives the final controls, for persisting them
	OnQuit func(sequencer.Controls)

	selected int // index into sequencer.ParamNames
	inputs   map[string]bool
	quitting bool
	tooltip  string
	bounds   *layoutBounds
	now      func() time.Time
}

type UpdateMsg struct{}

type DeviceEventMsg midi.DeviceEvent

// devicesClosedMsg ends device listening when the manager shuts down
type devicesClosedMsg struct{}

func NewModel(manager *sequencer.Manager, deviceMgr *midi.DeviceManager, th *theme.Theme) Model {
	return Model{
		Manager:   manager,
		DeviceMgr: deviceMgr,
		Theme:     th,
		inputs:    make(map[string]bool),
		bounds:    &layoutBounds{},
		now:       time.Now,
	}
}

func ListenForUpdates(manager *sequencer.Manager) tea.Cmd {
	return func() tea.Msg {
		<-manager.UpdateChan
		return UpdateMsg{}
	}
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	if deviceMgr == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return devicesClosedMsg{}
		}
		return DeviceEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		ListenForUpdates(m.Manager),
		ListenForDevices(m.DeviceMgr),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.handleKey(msg.String()) {
			m.quitting = true
			if m.OnQuit != nil {
				m.OnQuit(m.Manager.Controls())
			}
			m.Manager.Stop()
			return m, tea.Quit
		}

	case tea.MouseMsg:
		m.tooltip = m.hitTest(msg.X, msg.Y)

	case UpdateMsg:
		return m, ListenForUpdates(m.Manager)

	case DeviceEventMsg:
		event := midi.DeviceEvent(msg)
		switch event.Type {
		case midi.DeviceConnected:
			m.inputs[event.ID] = true
			m.Manager.SetMIDIInput(event.Controller)
		case midi.DeviceDisconnected:
			delete(m.inputs, event.ID)
		}
		return m, ListenForDevices(m.DeviceMgr)
	}

	return m, nil
}

// cycle steps an enum value by one, wrapping at n
func cycle[T ~int](v T, n T) T {
	return (v + 1) % n
}

// handleKey applies one key press and reports whether to quit
func (m *Model) handleKey(key string) bool {
	mgr := m.Manager
	switch key {
	case "q", "ctrl+c":
		return true
	case " ", "p":
		mgr.TogglePlay()
	case "r":
		mgr.Reset()
	case "n":
		mgr.Reseed()
	case "t":
		mgr.Tap(m.now())
	case "+", "=":
		mgr.SetTempo(mgr.Controls().BPM + 1)
	case "-", "_":
		mgr.SetTempo(mgr.Controls().BPM - 1)
	case "j", "down":
		m.selected = (m.selected + 1) % len(sequencer.ParamNames)
	case "k", "up":
		m.selected = (m.selected + len(sequencer.ParamNames) - 1) % len(sequencer.ParamNames)
	case "l", "right":
		mgr.NudgeParam(sequencer.ParamNames[m.selected], 0.05)
	case "h", "left":
		mgr.NudgeParam(sequencer.ParamNames[m.selected], -0.05)
	case "L", "shift+right":
		mgr.NudgeParam(sequencer.ParamNames[m.selected], 0.01)
	case "H", "shift+left":
		mgr.NudgeParam(sequencer.ParamNames[m.selected], -0.01)
	case "g":
		mgr.UpdateControls(func(c *sequencer.Controls) { c.Genre = cycle(c.Genre, pattern.NumGenres) })
	case "c":
		mgr.UpdateControls(func(c *sequencer.Controls) { c.Coupling = cycle(c.Coupling, pattern.NumCouplings) })
	case "d":
		mgr.UpdateControls(func(c *sequencer.Controls) { c.AuxDensity = cycle(c.AuxDensity, pattern.NumAuxDensities) })
	case "a":
		mgr.UpdateControls(func(c *sequencer.Controls) { c.AuxMode = cycle(c.AuxMode, sequencer.NumAuxModes) })
	case "m":
		mgr.UpdateControls(func(c *sequencer.Controls) { c.ResetMode = cycle(c.ResetMode, sequencer.NumResetModes) })
	case "]":
		mgr.UpdateControls(func(c *sequencer.Controls) { c.Length = nextLength(c.Length, 1) })
	case "[":
		mgr.UpdateControls(func(c *sequencer.Controls) { c.Length = nextLength(c.Length, -1) })
	case ">", ".":
		mgr.UpdateControls(func(c *sequencer.Controls) { c.PhraseBars++ })
	case "<", ",":
		mgr.UpdateControls(func(c *sequencer.Controls) { c.PhraseBars-- })
	}
	return false
}

// nextLength moves through the supported bar lengths, stopping at the ends
func nextLength(cur, dir int) int {
	i := 0
	for j, l := range pattern.Lengths {
		if l == cur {
			i = j
		}
	}
	i += dir
	if i < 0 {
		i = 0
	}
	if i >= len(pattern.Lengths) {
		i = len(pattern.Lengths) - 1
	}
	return pattern.Lengths[i]
}

func (m Model) hitTest(x, y int) string {
	row, step, ok := widgets.HitTest(x, y-m.bounds.gridTop, int(pattern.NumVoices), m.bounds.length)
	if !ok {
		return ""
	}
	snap := m.Manager.Snapshot()
	r := &snap.Result
	v := pattern.Voice(row)
	if step >= r.Length {
		return ""
	}
	if !r.Masks[v].Has(step) {
		return fmt.Sprintf("%s step %d: rest", v, step+1)
	}
	accent := ""
	if r.Accents[v].Has(step) {
		accent = " accent"
	}
	return fmt.Sprintf("%s step %d: vel %.2f%s  delay %.2f", v, step+1, r.Velocity[v][step], accent, r.Timing[step])
}

// gridRow renders one voice with the playhead at step (-1 for none)
func gridRow(th *theme.Theme, r *pattern.Result, v pattern.Voice, step int) string {
	sym := th.Symbols
	muted := th.RGB(theme.RoleMuted)
	cells := make([]widgets.Cell, r.Length)
	for i := range cells {
		c := widgets.Cell{Glyph: sym.StepEmpty, Color: muted}
		switch {
		case r.Masks[v].Has(i) && r.Accents[v].Has(i):
			c = widgets.Cell{Glyph: sym.StepAccent, Color: th.Velocity(v, r.Velocity[v][i])}
		case r.Masks[v].Has(i):
			c = widgets.Cell{Glyph: sym.StepHit, Color: th.Velocity(v, r.Velocity[v][i])}
		case i == step:
			c = widgets.Cell{Glyph: sym.StepPlayhead, Color: th.RGB(theme.RoleCursor)}
		}
		if i == step && c.Glyph != sym.StepPlayhead {
			c.Color = th.RGB(theme.RoleSuccess)
		}
		cells[i] = c
	}
	return widgets.RenderRow(v.String(), cells)
}

// Grid renders all voices of a bar, one row each
func Grid(th *theme.Theme, r *pattern.Result, step int) string {
	rows := make([]string, pattern.NumVoices)
	for v := pattern.Voice(0); v < pattern.NumVoices; v++ {
		rows[v] = gridRow(th, r, v, step)
	}
	return strings.Join(rows, "\n")
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	snap := m.Manager.Snapshot()
	ctl := m.Manager.Controls()
	r := &snap.Result
	pos := snap.Position

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	warnStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())
	tooltipStyle := lipgloss.NewStyle().
		Foreground(m.Theme.FG()).
		Background(m.Theme.Muted()).
		Padding(0, 1)

	playState := "STOP"
	if snap.Running {
		playState = "PLAY"
	}
	header := headerStyle.Render(fmt.Sprintf("go-rhythm  %s  %5.1fbpm %-8s  bar %d/%d  step %02d  phrase %d",
		playState, snap.BPM, snap.Source, pos.Bar+1, ctl.PhraseBars, pos.Step+1, pos.Phrase+1))

	status := fmt.Sprintf("zone %-7s phase %-7s swing %.2f  gen %d", r.Zone, r.Phase, r.Swing, snap.Generations)
	if pos.InFillZone {
		status += "  " + warnStyle.Render("FILL")
	} else if pos.InBuildZone {
		status += "  " + warnStyle.Render("BUILD")
	}
	if snap.Dropped > 0 {
		status += "  " + warnStyle.Render(fmt.Sprintf("dropped %d", snap.Dropped))
	}

	step := -1
	if snap.State == sequencer.Running {
		step = pos.Step
	}
	grid := Grid(m.Theme, r, step)

	sym := m.Theme.Symbols
	fill := widgets.Cell{Glyph: sym.MeterFill, Color: m.Theme.RGB(theme.RoleActive)}
	empty := widgets.Cell{Glyph: sym.MeterEmpty, Color: m.Theme.RGB(theme.RoleSurface)}
	var meters []string
	for i, name := range sequencer.ParamNames {
		v, _ := ctl.Get(name)
		mark := " "
		if i == m.selected {
			mark = string(sym.Selected)
		}
		meters = append(meters, mark+widgets.RenderMeter(name, v, 20, fill, empty))
	}

	modes := fmt.Sprintf("genre %s  coupling %s  aux %s/%s  reset %s  length %d  seed %08x",
		ctl.Genre, ctl.Coupling, ctl.AuxMode, ctl.AuxDensity, ctl.ResetMode, ctl.Length, ctl.Seed)

	inputs := "midi in: none"
	if len(m.inputs) > 0 {
		ids := make([]string, 0, len(m.inputs))
		for id := range m.inputs {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		inputs = "midi in: " + strings.Join(ids, ", ")
	}

	help := dimStyle.Render(widgets.RenderKeyHelp([]widgets.KeySection{{Keys: []widgets.KeyBinding{
		{Key: "space", Desc: "play/stop   r reset   n reseed next phrase   t tap   +/- tempo"},
		{Key: "j/k h/l", Desc: "select/adjust control (H/L fine)"},
		{Key: "g c d a m", Desc: "genre, coupling, aux density, aux mode, reset mode"},
		{Key: "[ ] < >", Desc: "bar length, phrase bars   q quit"},
	}}}))

	// Compute layout bounds
	headerHeight := lipgloss.Height(header)
	m.bounds.gridTop = 1 + headerHeight + 1 + 1 + 1
	m.bounds.length = r.Length

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(status)
	out.WriteString("\n\n")
	out.WriteString(grid)
	out.WriteString("\n\n")
	out.WriteString(strings.Join(meters, "\n"))
	out.WriteString("\n\n")
	out.WriteString(modes)
	out.WriteString("\n")
	out.WriteString(dimStyle.Render(inputs))
	out.WriteString("\n\n")
	out.WriteString(help)

	if m.tooltip != "" {
		out.WriteString("\n")
		out.WriteString(tooltipStyle.Render(m.tooltip))
	}

	return out.String()
}
