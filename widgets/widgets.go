package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Cell is one coloured glyph
type Cell struct {
	Glyph rune
	Color [3]uint8
}

// RenderCell renders a single coloured glyph
func RenderCell(c Cell) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(rgbToHex(c.Color)))
	return style.Render(string(c.Glyph))
}

// LabelWidth is the column taken by row labels in RenderRow
const LabelWidth = 9

// RenderRow renders a labelled row of cells, one column per cell
func RenderRow(label string, cells []Cell) string {
	var out strings.Builder
	fmt.Fprintf(&out, "%-*s", LabelWidth, label)
	for _, c := range cells {
		out.WriteString(RenderCell(c))
	}
	return out.String()
}

// HitTest maps a position relative to the first RenderRow line to a row
// and cell index
func HitTest(x, y, rows, cols int) (row, col int, ok bool) {
	col = x - LabelWidth
	if y < 0 || y >= rows || col < 0 || col >= cols {
		return 0, 0, false
	}
	return y, col, true
}

// RenderMeter renders "label ████░░░░ 0.50"
func RenderMeter(label string, value float64, width int, fill, empty Cell) string {
	if value < 0 {
		value = 0
	}
	if value > 1 {
		value = 1
	}
	n := int(value*float64(width) + 0.5)
	var out strings.Builder
	fmt.Fprintf(&out, "%-8s ", label)
	for i := 0; i < width; i++ {
		if i < n {
			out.WriteString(RenderCell(fill))
		} else {
			out.WriteString(RenderCell(empty))
		}
	}
	fmt.Fprintf(&out, " %.2f", value)
	return out.String()
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}

func rgbToHex(c [3]uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}
