package viz

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Theme defines the panel colors and the backdrop the field is composited
// over.
type Theme struct {
	Name       string
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Accent     lipgloss.Color
	Background lipgloss.Color
	Text       lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
}

var (
	ThemeMidnight = Theme{
		Name:       "midnight",
		Primary:    lipgloss.Color("#00e633"),
		Secondary:  lipgloss.Color("#4dd2ff"),
		Accent:     lipgloss.Color("#ff4d6d"),
		Background: lipgloss.Color("#0a0a14"),
		Text:       lipgloss.Color("#e8e8f0"),
		Muted:      lipgloss.Color("#666688"),
		Success:    lipgloss.Color("#00ff88"),
		Warning:    lipgloss.Color("#ffaa00"),
	}

	ThemePaper = Theme{
		Name:       "paper",
		Primary:    lipgloss.Color("#1b7f3a"),
		Secondary:  lipgloss.Color("#2b5f8f"),
		Accent:     lipgloss.Color("#c0392b"),
		Background: lipgloss.Color("#f4f1e8"),
		Text:       lipgloss.Color("#222222"),
		Muted:      lipgloss.Color("#8a8577"),
		Success:    lipgloss.Color("#1b7f3a"),
		Warning:    lipgloss.Color("#b36b00"),
	}

	ThemePhosphor = Theme{
		Name:       "phosphor",
		Primary:    lipgloss.Color("#00ff00"),
		Secondary:  lipgloss.Color("#00cc00"),
		Accent:     lipgloss.Color("#88ff88"),
		Background: lipgloss.Color("#001100"),
		Text:       lipgloss.Color("#00ff00"),
		Muted:      lipgloss.Color("#005500"),
		Success:    lipgloss.Color("#88ff88"),
		Warning:    lipgloss.Color("#ffff00"),
	}

	Themes = []Theme{ThemeMidnight, ThemePaper, ThemePhosphor}
)

// GetTheme returns a theme by name, falling back to midnight.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeMidnight
}

func HasTheme(name string) bool {
	for _, t := range Themes {
		if t.Name == name {
			return true
		}
	}
	return false
}

// NextTheme cycles through Themes.
func NextTheme(name string) Theme {
	for i, t := range Themes {
		if t.Name == name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// Backdrop is the theme background as a blendable color.
func (t Theme) Backdrop() colorful.Color {
	c, err := colorful.Hex(string(t.Background))
	if err != nil {
		return colorful.Color{}
	}
	return c
}
