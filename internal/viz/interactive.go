package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/metaball/internal/config"
	"github.com/san-kum/metaball/internal/driver"
	"github.com/san-kum/metaball/internal/shade"
)

var presetInfo = map[string]string{
	"classic":   "banded contours, reference look",
	"soft":      "smooth 1/(1+d) falloff, k=4",
	"threshold": "single hard iso-line, k=20",
	"still":     "banded, no rotation",
	"poster":    "one large frame",
}

// Picker lists the presets and hands the chosen one to a live Model.
type Picker struct {
	presets []string
	cursor  int
	seed    int64
	opts    Options
	err     error
	live    *Model
	width   int
	height  int
}

// NewPicker builds the preset menu. A non-zero seed overrides the presets';
// a set Theme or positive FPS in opts overrides the chosen preset's.
func NewPicker(seed int64, opts Options) Picker {
	return Picker{presets: config.ListPresets(), seed: seed, opts: opts}
}

func (p Picker) Init() tea.Cmd { return nil }

func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p.live != nil {
		next, cmd := p.live.Update(msg)
		live := next.(Model)
		p.live = &live
		return p, cmd
	}
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width, p.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return p, tea.Quit
		case "up", "k":
			if p.cursor > 0 {
				p.cursor--
			}
		case "down", "j":
			if p.cursor < len(p.presets)-1 {
				p.cursor++
			}
		case "enter", " ":
			return p.launch()
		}
	}
	return p, nil
}

func (p Picker) launch() (tea.Model, tea.Cmd) {
	cfg := config.GetPreset(p.presets[p.cursor])
	if p.seed != 0 {
		cfg.Seed = p.seed
	}
	rng := cfg.NewRand()
	drv, err := driver.FromConfig(cfg, shade.NewRegistry(), rng)
	if err != nil {
		p.err = err
		return p, nil
	}
	opts := p.opts
	if opts.FPS <= 0 {
		opts.FPS = cfg.FPS
	}
	if opts.Theme == "" {
		opts.Theme = cfg.Theme
	}
	live := NewModel(drv, rng, opts)
	if p.width > 0 {
		next, _ := live.Update(tea.WindowSizeMsg{Width: p.width, Height: p.height})
		live = next.(Model)
	}
	p.live = &live
	return p, live.Init()
}

// Selected returns the highlighted preset name.
func (p Picker) Selected() string { return p.presets[p.cursor] }

func (p Picker) View() string {
	if p.live != nil {
		return p.live.View()
	}
	title := lipgloss.NewStyle().Foreground(lipgloss.Color("#00e633")).Bold(true)
	sub := lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	pick := lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	desc := lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4d6d"))
	key := lipgloss.NewStyle().Foreground(lipgloss.Color("#4dd2ff")).Bold(true)

	var b strings.Builder
	b.WriteString("\n\n    " + title.Render("METABALL") + "\n    " + sub.Render("choose a preset") + "\n\n")
	for i, name := range p.presets {
		if i == p.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", key.Render("▸"), pick.Render(fmt.Sprintf("%-12s", name)), desc.Render(presetInfo[name])))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", sub.Render(fmt.Sprintf("%-12s", name)), sub.Render(presetInfo[name])))
		}
	}
	if p.err != nil {
		b.WriteString("\n    " + desc.Render(p.err.Error()) + "\n")
	}
	b.WriteString("\n    " + key.Render("j/k") + sub.Render(" navigate  ") + key.Render("enter") + sub.Render(" start  ") + key.Render("q") + sub.Render(" quit") + "\n")
	return b.String()
}

// RunPicker starts the preset menu in the alternate screen.
func RunPicker(seed int64, opts Options) error {
	_, err := tea.NewProgram(NewPicker(seed, opts), tea.WithAltScreen()).Run()
	return err
}
