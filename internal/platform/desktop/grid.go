// Package desktop hosts the driver in an Ebitengine window.
// The surface is a character grid drawn with the built-in debug font, one
// tinted layer per palette color. Cursor positions are reported in cells so
// applications see the same units as in the terminal.
package desktop

import (
	"errors"
	"image/color"
	"strings"

	"github.com/vovakirdan/steploop/internal/core"
)

// ErrUnavailable is returned by Run in builds without cgo.
var ErrUnavailable = errors.New("desktop: window support requires a cgo build")

// Debug font glyph size in pixels.
const (
	CellWidth  = 6
	CellHeight = 16
)

// GridSize returns how many whole cells fit in a window of the given pixel size.
func GridSize(width, height int) (cols, rows int) {
	return max(width/CellWidth, 1), max(height/CellHeight, 1)
}

// CellPosition converts a pixel position to fractional cell coordinates.
func CellPosition(x, y int) core.Vec2 {
	return core.Vec2{X: float64(x) / CellWidth, Y: float64(y) / CellHeight}
}

// palette maps core colors to window colors. The default color is light gray
// on the black background.
var palette = map[core.Color]color.RGBA{
	core.ColorDefault: {0xcc, 0xcc, 0xcc, 0xff},
	core.ColorRed:     {0xe0, 0x40, 0x40, 0xff},
	core.ColorGreen:   {0x40, 0xd0, 0x40, 0xff},
	core.ColorYellow:  {0xe0, 0xd0, 0x40, 0xff},
	core.ColorBlue:    {0x50, 0x70, 0xe0, 0xff},
	core.ColorMagenta: {0xd0, 0x50, 0xd0, 0xff},
	core.ColorCyan:    {0x40, 0xd0, 0xd0, 0xff},
	core.ColorWhite:   {0xff, 0xff, 0xff, 0xff},
	core.ColorGray:    {0x8a, 0x8a, 0x8a, 0xff},
}

// RGBA returns the window color for c.
func RGBA(c core.Color) color.RGBA {
	if rgba, ok := palette[c]; ok {
		return rgba
	}
	return palette[core.ColorDefault]
}

// asciiFallback replaces glyphs the debug font cannot draw.
func asciiFallback(r rune) rune {
	if r < 0x80 {
		return r
	}
	switch {
	case r == '─' || r == '━' || r == '═':
		return '-'
	case r == '│' || r == '┃' || r == '║':
		return '|'
	case r >= 0x2500 && r <= 0x257f: // Remaining box drawing: corners and joins
		return '+'
	case r == '●' || r == '○' || r == '•':
		return 'o'
	case r >= 0x2580 && r <= 0x259f: // Block elements
		return '#'
	}
	return '?'
}

// layerText renders the cells of one color as plain text, with every other
// cell blanked, so the layer can be tinted as a whole.
func layerText(s *core.Screen, c core.Color) (string, bool) {
	var sb strings.Builder
	sb.Grow((s.Width() + 1) * s.Height())

	found := false
	for y := range s.Height() {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := range s.Width() {
			cell := s.GetCell(x, y)
			if cell.Color != c || cell.Rune == ' ' {
				sb.WriteByte(' ')
				continue
			}
			found = true
			sb.WriteRune(asciiFallback(cell.Rune))
		}
	}
	return sb.String(), found
}
