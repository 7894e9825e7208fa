package core

// Color represents a foreground color for a screen cell.
// Values follow the ANSI palette order so terminal adapters can map them
// directly; desktop adapters translate them to RGB.
type Color uint8

// Palette used by applications.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorGray
)

// ANSI returns the terminal color code for c, or "" for the default color.
func (c Color) ANSI() string {
	switch c {
	case ColorRed:
		return "1"
	case ColorGreen:
		return "2"
	case ColorYellow:
		return "3"
	case ColorBlue:
		return "4"
	case ColorMagenta:
		return "5"
	case ColorCyan:
		return "6"
	case ColorWhite:
		return "15"
	case ColorGray:
		return "245"
	default:
		return ""
	}
}
