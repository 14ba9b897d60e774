package ui

import "github.com/charmbracelet/lipgloss"

// Corner is a screen-corner placement for the legend overlay. Placement is
// purely cosmetic and never feeds back into classification.
type Corner int

const (
	NorthWest Corner = iota
	NorthEast
	SouthWest
	SouthEast
)

// ParseCorner maps a config value onto a corner, defaulting to NorthWest.
// The numeric spellings are the 0-3 selector older configs used.
func ParseCorner(s string) Corner {
	switch s {
	case "ne", "1":
		return NorthEast
	case "sw", "2":
		return SouthWest
	case "se", "3":
		return SouthEast
	default:
		return NorthWest
	}
}

// String returns the config spelling of the corner.
func (c Corner) String() string {
	switch c {
	case NorthEast:
		return "ne"
	case SouthWest:
		return "sw"
	case SouthEast:
		return "se"
	default:
		return "nw"
	}
}

func (c Corner) north() bool { return c == NorthWest || c == NorthEast }
func (c Corner) west() bool  { return c == NorthWest || c == SouthWest }

// PlaceLegend attaches the legend line to the body in the given corner,
// padded to width.
func PlaceLegend(body, legend string, c Corner, width int) string {
	align := lipgloss.Right
	if c.west() {
		align = lipgloss.Left
	}
	line := lipgloss.NewStyle().Width(width).Align(align).Render(legend)
	if c.north() {
		return lipgloss.JoinVertical(lipgloss.Left, line, body)
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, line)
}
