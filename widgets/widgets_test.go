package widgets

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestRenderRowWidth(t *testing.T) {
	cells := make([]Cell, 16)
	for i := range cells {
		cells[i] = Cell{Glyph: '·', Color: [3]uint8{200, 10, 10}}
	}
	row := RenderRow("anchor", cells)
	if w := lipgloss.Width(row); w != LabelWidth+16 {
		t.Errorf("row width = %d", w)
	}
}

func TestHitTest(t *testing.T) {
	tests := []struct {
		x, y     int
		row, col int
		ok       bool
	}{
		{LabelWidth, 0, 0, 0, true},
		{LabelWidth + 15, 2, 2, 15, true},
		{LabelWidth - 1, 0, 0, 0, false},
		{LabelWidth + 16, 0, 0, 0, false},
		{LabelWidth, 3, 0, 0, false},
		{LabelWidth, -1, 0, 0, false},
	}
	for _, tt := range tests {
		row, col, ok := HitTest(tt.x, tt.y, 3, 16)
		if ok != tt.ok || (ok && (row != tt.row || col != tt.col)) {
			t.Errorf("HitTest(%d,%d) = %d,%d,%v", tt.x, tt.y, row, col, ok)
		}
	}
}

func TestRenderMeter(t *testing.T) {
	fill := Cell{Glyph: '#'}
	empty := Cell{Glyph: '.'}
	m := RenderMeter("energy", 0.5, 10, fill, empty)
	if !strings.HasSuffix(m, "0.50") {
		t.Errorf("meter = %q", m)
	}
	if n := strings.Count(m, "#"); n != 5 {
		t.Errorf("filled cells = %d", n)
	}
	if n := strings.Count(RenderMeter("x", 7, 10, fill, empty), "#"); n != 10 {
		t.Errorf("over-range meter filled %d", n)
	}
}

func TestRenderKeyHelp(t *testing.T) {
	out := RenderKeyHelp([]KeySection{{Title: "Transport", Keys: []KeyBinding{{Key: "space", Desc: "play/stop"}}}})
	if out != "Transport\n  space        play/stop" {
		t.Errorf("help = %q", out)
	}
}
