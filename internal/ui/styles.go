// Package ui renders freshness badges and places the legend overlay.
package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ember-tui/ember/internal/freshness"
)

// Palette holds the colors used for freshness rendering.
type Palette struct {
	Hot   string
	Warm  string
	Cold  string
	Muted string
}

// DefaultPalette mirrors the hot/warm/cold decorator colors.
func DefaultPalette() Palette {
	return Palette{
		Hot:   "196", // red
		Warm:  "208", // orange
		Cold:  "39",  // blue
		Muted: "241",
	}
}

// badgeGlyph is the per-file freshness marker.
const badgeGlyph = "●"

// Styles holds the pre-built lipgloss styles for one palette.
type Styles struct {
	Hot      lipgloss.Style
	Warm     lipgloss.Style
	Cold     lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
}

// NewStyles builds the style set for a palette.
func NewStyles(p Palette) Styles {
	return Styles{
		Hot:      lipgloss.NewStyle().Foreground(lipgloss.Color(p.Hot)),
		Warm:     lipgloss.NewStyle().Foreground(lipgloss.Color(p.Warm)),
		Cold:     lipgloss.NewStyle().Foreground(lipgloss.Color(p.Cold)),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color(p.Muted)),
		Selected: lipgloss.NewStyle().Bold(true),
	}
}

// Badge returns the colored freshness marker for a bucket. The result is
// always one cell wide so rows stay aligned; None renders as a blank cell.
func (s Styles) Badge(b freshness.Bucket) string {
	switch b {
	case freshness.Hot:
		return s.Hot.Render(badgeGlyph)
	case freshness.Warm:
		return s.Warm.Render(badgeGlyph)
	case freshness.Cold:
		return s.Cold.Render(badgeGlyph)
	default:
		return " "
	}
}

// Legend returns the one-line freshness key shown in the configured corner.
func (s Styles) Legend() string {
	return s.Hot.Render(badgeGlyph+" hot") + "  " +
		s.Warm.Render(badgeGlyph+" warm") + "  " +
		s.Cold.Render(badgeGlyph+" cold")
}
