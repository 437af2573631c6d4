package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

const fadeRows = 6

// fadeColor blends from toward to in LCh space, t clamped to [0,1].
// Colors that fail to parse fall back to from.
func fadeColor(from, to lipgloss.Color, t float64) lipgloss.Color {
	a, err := colorful.Hex(string(from))
	if err != nil {
		return from
	}
	b, err := colorful.Hex(string(to))
	if err != nil {
		return from
	}

	switch {
	case t <= 0:
		return from
	case t >= 1:
		return to
	}
	return lipgloss.Color(a.BlendHcl(b, t).Clamped().Hex())
}

// lineColor colors a lyric row by its distance from the highlighted line.
func (m Model) lineColor(idx int) lipgloss.Color {
	if m.index < 0 {
		return m.palette.Text
	}
	dist := idx - m.index
	if dist < 0 {
		// sung lines start dimmer than upcoming ones
		return fadeColor(m.palette.Text, m.palette.Dim, 0.5+float64(-dist)/fadeRows)
	}
	return fadeColor(m.palette.Text, m.palette.Dim, float64(dist-1)/fadeRows)
}
