package viz

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/metaball/internal/driver"
	"github.com/san-kum/metaball/internal/export"
	"github.com/san-kum/metaball/internal/metrics"
	"github.com/san-kum/metaball/internal/shade"
)

const (
	defaultCols     = 64
	defaultRows     = 32
	panelWidth      = 46
	historyCapacity = 120
	rateStep        = 0.05
)

type TickMsg time.Time

// Options configure the terminal host.
type Options struct {
	FPS        int
	Theme      string
	Cols, Rows int
	RecordPath string
}

// Model is the terminal host: it forwards keys to the driver and draws the
// current frame next to a status panel.
type Model struct {
	drv       *driver.Driver
	registry  *shade.Registry
	collector *metrics.Collector
	peak      *metrics.FieldPeak
	coverage  *metrics.Coverage
	rng       *rand.Rand
	canvas    *Canvas
	theme     Theme
	styles    styles
	fps       int

	history    []float64
	recorder   *export.GIFRecorder
	recordPath string
	showHelp   bool
	message    string
}

// NewModel wraps a driver. rng is used when the sources are redrawn.
func NewModel(drv *driver.Driver, rng *rand.Rand, opts Options) Model {
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	if opts.Cols <= 0 {
		opts.Cols = defaultCols
	}
	if opts.Rows <= 0 {
		opts.Rows = defaultRows
	}
	if opts.RecordPath == "" {
		opts.RecordPath = "metaball-live.gif"
	}
	cov := metrics.NewCoverage()
	peak := metrics.NewFieldPeak(drv.Mapping(), 16)
	collector := metrics.NewCollector(metrics.NewExcursion(), cov, peak)
	drv.AddObserver(collector)

	theme := GetTheme(opts.Theme)
	return Model{
		drv:        drv,
		registry:   shade.NewRegistry(),
		collector:  collector,
		peak:       peak,
		coverage:   cov,
		rng:        rng,
		canvas:     NewCanvas(opts.Cols, opts.Rows),
		theme:      theme,
		styles:     newStyles(theme),
		fps:        opts.FPS,
		history:    make([]float64, 0, historyCapacity),
		recordPath: opts.RecordPath,
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

// Update handles input events and advances the driver on every tick.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.finishRecording()
			return m, tea.Quit
		case " ":
			m.drv.Toggle()
		case "left", "h":
			m.drv.SetRate(m.drv.Rate() - rateStep)
		case "right", "l":
			m.drv.SetRate(m.drv.Rate() + rateStep)
		case "m":
			m.drv.SetMapping(m.registry.Next(m.drv.Mapping().Name()))
			m.peak.SetMapping(m.drv.Mapping())
			m.peak.Observe(m.drv.Snapshot(), nil)
			m.message = "mapping " + m.drv.Mapping().Name()
		case "r":
			m.drv.Reset(m.rng)
			m.collector.Reset()
			m.history = m.history[:0]
			m.message = "sources redrawn"
		case "t":
			m.theme = NextTheme(m.theme.Name)
			m.styles = newStyles(m.theme)
		case "g":
			if m.recorder == nil {
				m.recorder = export.NewGIFRecorder(0, 2)
				m.message = "recording"
			} else {
				m.finishRecording()
			}
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		cols := msg.Width - panelWidth
		rows := msg.Height - 2
		if cols > 0 && rows > 0 {
			m.canvas.Resize(cols, rows)
		}
	case TickMsg:
		if m.drv.Tick() {
			if m.recorder != nil {
				m.recorder.OnFrame(m.drv.Snapshot(), m.drv.Frame())
			}
			m.history = append(m.history, m.coverage.Last())
			if len(m.history) > historyCapacity {
				m.history = m.history[len(m.history)-historyCapacity:]
			}
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) finishRecording() {
	if m.recorder == nil {
		return
	}
	if err := m.recorder.Save(m.recordPath, m.fps); err != nil {
		m.message = "recording failed: " + err.Error()
		slog.Error("saving recording", "path", m.recordPath, "err", err)
	} else {
		m.message = "saved " + m.recordPath
		slog.Info("recording saved", "path", m.recordPath, "frames", len(m.recorder.Frames()))
	}
	m.recorder = nil
}

// View draws the field and the status panel.
func (m Model) View() string {
	m.canvas.Sample(m.drv.Frame(), m.theme.Backdrop())

	var s strings.Builder
	st := m.styles
	s.WriteString(st.header.Render("METABALL") + "\n")

	status := st.running.Render("RUNNING")
	if !m.drv.Running() {
		status = st.paused.Render("STOPPED")
	}
	if m.recorder != nil {
		status += st.cursor.Render("  ● REC")
	}
	s.WriteString(status + "\n\n")

	snap := m.drv.Snapshot()
	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Frame", fmt.Sprintf("%d", m.drv.Frames()))
	row("Clock", fmt.Sprintf("%.2fs", snap.Time))
	row("Rate", fmt.Sprintf("%s %+.2f", RateBar(m.drv.Rate(), driver.MinRate, driver.MaxRate, 15), m.drv.Rate()))
	row("Rotation", fmt.Sprintf("%.2f rad", m.drv.Rotation()))
	row("Mapping", m.drv.Mapping().Name())
	row("Theme", m.theme.Name)

	s.WriteString("\n" + st.muted.Render(Separator(36)) + "\n")
	values := m.collector.Values()
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		row(name, fmt.Sprintf("%.4f", values[name]))
	}

	if len(m.history) > 1 {
		chart := asciigraph.Plot(m.history, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("coverage"))
		s.WriteString("\n" + st.graph.Render(chart) + "\n")
	}
	if m.message != "" {
		s.WriteString("\n" + st.muted.Render(m.message) + "\n")
	}
	s.WriteString(st.help.Render("SP:Start/Stop ←→:Rate M:Mapping\nR:Reseed T:Theme G:Record ?:Help Q:Quit"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, m.canvas.String(), st.panel.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Start/Stop animation     ║
║  Left/H   - Rate -0.05               ║
║  Right/L  - Rate +0.05               ║
║  M        - Cycle color mapping      ║
║  R        - Redraw random sources    ║
║  T        - Cycle themes             ║
║  G        - Toggle GIF recording     ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`

// Run starts the terminal host in the alternate screen.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
