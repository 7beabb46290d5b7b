package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// styles are rebuilt whenever the theme changes.
type styles struct {
	header  lipgloss.Style
	panel   lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	running lipgloss.Style
	paused  lipgloss.Style
	graph   lipgloss.Style
	help    lipgloss.Style
	cursor  lipgloss.Style
	muted   lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		header: lipgloss.NewStyle().Bold(true).Foreground(t.Primary).
			BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(t.Muted),
		panel: lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Muted).Padding(0, 2).Width(42),
		label:   lipgloss.NewStyle().Foreground(t.Muted).Width(11),
		value:   lipgloss.NewStyle().Foreground(t.Text),
		running: lipgloss.NewStyle().Bold(true).Foreground(t.Success),
		paused:  lipgloss.NewStyle().Bold(true).Foreground(t.Warning),
		graph:   lipgloss.NewStyle().Foreground(t.Secondary),
		help:    lipgloss.NewStyle().Foreground(t.Muted).Italic(true).MarginTop(1),
		cursor:  lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		muted:   lipgloss.NewStyle().Foreground(t.Muted),
	}
}

// RateBar draws a centred bar for a value in [lo, hi]; the marker sits at
// the value and zero is the midpoint tick.
func RateBar(v, lo, hi float64, width int) string {
	if width < 3 {
		width = 3
	}
	pos := int((v - lo) / (hi - lo) * float64(width-1))
	if pos < 0 {
		pos = 0
	}
	if pos > width-1 {
		pos = width - 1
	}
	cells := []rune(strings.Repeat("─", width))
	cells[width/2] = '┼'
	cells[pos] = '●'
	return "[" + string(cells) + "]"
}

// Separator is a thin rule with a centre mark.
func Separator(width int) string {
	if width < 8 {
		return strings.Repeat("─", width)
	}
	mid := width / 2
	return strings.Repeat("─", mid-2) + " ◆ " + strings.Repeat("─", width-mid-1)
}
