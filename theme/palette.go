package theme

import (
	"bufio"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

//go:embed palettes/*.gpl
var palettesFS embed.FS

type RGB [3]uint8

type Palette struct {
	Name   string
	Colors []RGB
}

// ErrBadPalette wraps every palette parse failure
var ErrBadPalette = errors.New("bad palette")

// ParseGPL reads a GIMP palette. Each colour line starts with its red,
// green and blue components; anything after them is the colour's name.
func ParseGPL(r io.Reader) (*Palette, error) {
	p := &Palette{}
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		switch {
		case n == 1 && line != "GIMP Palette":
			return nil, fmt.Errorf("%w: missing GIMP Palette header", ErrBadPalette)
		case n == 1, line == "", line[0] == '#', strings.HasPrefix(line, "Columns:"):
			continue
		case strings.HasPrefix(line, "Name:"):
			p.Name = strings.TrimSpace(line[len("Name:"):])
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, fmt.Errorf("%w: line %d: want R G B", ErrBadPalette, n)
		}
		var c RGB
		for i := range c {
			v, err := strconv.ParseUint(fields[i], 10, 8)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrBadPalette, n, err)
			}
			c[i] = uint8(v)
		}
		p.Colors = append(p.Colors, c)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(p.Colors) == 0 {
		return nil, fmt.Errorf("%w: %q has no colours", ErrBadPalette, p.Name)
	}
	return p, nil
}

// LoadGPL reads a palette file from disk
func LoadGPL(path string) (*Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	p, err := ParseGPL(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Builtin loads a palette shipped in the binary, e.g. "plasma"
func Builtin(name string) (*Palette, error) {
	f, err := palettesFS.Open("palettes/" + name + ".gpl")
	if err != nil {
		return nil, fmt.Errorf("palette %q: %w", name, err)
	}
	defer f.Close()
	return ParseGPL(f)
}

// Default is the built-in plasma palette
func Default() *Palette {
	p, err := Builtin("plasma")
	if err != nil {
		panic(fmt.Sprintf("built-in palette: %v", err))
	}
	return p
}

// Lookup returns the palette at norm in 0-1, blending neighbouring stops
// in Lab space
func (p *Palette) Lookup(norm float64) RGB {
	if norm <= 0 {
		return p.Colors[0]
	}
	if norm >= 1 {
		return p.Colors[len(p.Colors)-1]
	}

	pos := norm * float64(len(p.Colors)-1)
	i := int(pos)
	frac := pos - float64(i)
	if frac == 0 {
		return p.Colors[i]
	}

	c := p.Colors[i].color().BlendLab(p.Colors[i+1].color(), frac).Clamped()
	r, g, b := c.RGB255()
	return RGB{r, g, b}
}

func (c RGB) color() colorful.Color {
	return colorful.Color{R: float64(c[0]) / 255, G: float64(c[1]) / 255, B: float64(c[2]) / 255}
}

// Hex formats c as #rrggbb
func (c RGB) Hex() string {
	return c.color().Hex()
}

// Index returns color at specific index (no interpolation)
func (p *Palette) Index(i int) RGB {
	if i < 0 {
		return p.Colors[0]
	}
	if i >= len(p.Colors) {
		return p.Colors[len(p.Colors)-1]
	}
	return p.Colors[i]
}
