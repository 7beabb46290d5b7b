package viz

import (
	"math"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/metaball/internal/config"
	"github.com/san-kum/metaball/internal/driver"
	"github.com/san-kum/metaball/internal/metrics"
	"github.com/san-kum/metaball/internal/shade"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Width, cfg.Height, cfg.Seed, cfg.Rate = 24, 24, 5, 0
	drv, err := driver.FromConfig(cfg, shade.NewRegistry(), nil)
	if err != nil {
		t.Fatal(err)
	}
	return NewModel(drv, rand.New(rand.NewSource(9)), Options{
		Cols: 12, Rows: 6, RecordPath: filepath.Join(t.TempDir(), "rec.gif"),
	})
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestSpaceTogglesAnimation(t *testing.T) {
	m := newTestModel(t)
	if !m.drv.Running() {
		t.Fatal("model should start running")
	}
	m = press(m, runes(" "))
	if m.drv.Running() {
		t.Error("space should stop the animation")
	}

	m = press(m, TickMsg(time.Now()))
	if m.drv.Frames() != 0 {
		t.Errorf("stopped model advanced to frame %d", m.drv.Frames())
	}

	m = press(m, runes(" "))
	m = press(m, TickMsg(time.Now()))
	if m.drv.Frames() != 1 {
		t.Errorf("frames = %d, want 1", m.drv.Frames())
	}
	if len(m.history) != 1 {
		t.Errorf("coverage history length %d, want 1", len(m.history))
	}
}

func TestRateKeys(t *testing.T) {
	m := newTestModel(t)
	m = press(m, tea.KeyMsg{Type: tea.KeyRight})
	m = press(m, runes("l"))
	if got := m.drv.Rate(); math.Abs(got-0.1) > 1e-12 {
		t.Errorf("rate = %v, want 0.1", got)
	}
	m = press(m, tea.KeyMsg{Type: tea.KeyLeft})
	if got := m.drv.Rate(); math.Abs(got-0.05) > 1e-12 {
		t.Errorf("rate = %v, want 0.05", got)
	}
	for i := 0; i < 50; i++ {
		m = press(m, runes("h"))
	}
	if got := m.drv.Rate(); got != driver.MinRate {
		t.Errorf("rate = %v, want clamp at %v", got, driver.MinRate)
	}
}

func TestMappingAndThemeCycle(t *testing.T) {
	m := newTestModel(t)
	m = press(m, runes("m"))
	if got := m.drv.Mapping().Name(); got != "unbanded-k20" {
		t.Errorf("mapping = %s, want unbanded-k20", got)
	}
	m = press(m, runes("t"))
	if m.theme.Name != "paper" {
		t.Errorf("theme = %s, want paper", m.theme.Name)
	}
}

func TestReseedClearsHistory(t *testing.T) {
	m := newTestModel(t)
	for i := 0; i < 3; i++ {
		m = press(m, TickMsg(time.Now()))
	}
	before := m.drv.Snapshot()
	m = press(m, runes("r"))
	if m.drv.Frames() != 0 || len(m.history) != 0 {
		t.Errorf("reset left frames=%d history=%d", m.drv.Frames(), len(m.history))
	}
	if m.drv.Snapshot().Positions == before.Positions {
		t.Error("reseed should draw new sources")
	}
}

func TestRecordingWritesGIF(t *testing.T) {
	m := newTestModel(t)
	m = press(m, runes("g"))
	for i := 0; i < 4; i++ {
		m = press(m, TickMsg(time.Now()))
	}
	m = press(m, runes("g"))
	if m.recorder != nil {
		t.Fatal("second g should stop recording")
	}
	if !strings.HasPrefix(m.message, "saved") {
		t.Errorf("unexpected message %q", m.message)
	}
}

func TestQuitCommand(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestViewShowsPanel(t *testing.T) {
	m := newTestModel(t)
	view := m.View()
	for _, want := range []string{"METABALL", "RUNNING", "banded", "midnight"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	m = press(m, runes("?"))
	if !strings.Contains(m.View(), "KEYBOARD SHORTCUTS") {
		t.Error("help overlay not shown")
	}
}

func TestPickerLaunchesPreset(t *testing.T) {
	p := NewPicker(3, Options{Cols: 8, Rows: 4})
	next, _ := p.Update(tea.KeyMsg{Type: tea.KeyDown})
	p = next.(Picker)
	if p.Selected() != config.ListPresets()[1] {
		t.Fatalf("cursor on %s", p.Selected())
	}
	next, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	p = next.(Picker)
	if p.live == nil || cmd == nil {
		t.Fatal("enter should start the live view")
	}
	if p.live.drv.Mapping().Name() != config.GetPreset(p.Selected()).Mapping {
		t.Error("live view does not use the preset mapping")
	}
}

func TestPickerKeepsThemeAndFPSOverrides(t *testing.T) {
	p := NewPicker(3, Options{Cols: 8, Rows: 4, Theme: "paper", FPS: 12})
	next, _ := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	p = next.(Picker)
	if p.live == nil {
		t.Fatal("enter should start the live view")
	}
	if p.live.theme.Name != "paper" {
		t.Errorf("theme = %s, want paper", p.live.theme.Name)
	}
	if p.live.fps != 12 {
		t.Errorf("fps = %d, want 12", p.live.fps)
	}
}

func TestMappingKeyRepointsFieldPeak(t *testing.T) {
	m := newTestModel(t)
	m = press(m, TickMsg(time.Now()))
	m = press(m, TickMsg(time.Now()))

	for m.drv.Mapping().Name() != "unbanded-k4" {
		m = press(m, runes("m"))
	}

	want := metrics.NewFieldPeak(m.drv.Mapping(), 16)
	want.Observe(m.drv.Snapshot(), nil)
	if got := m.collector.Values()["field_peak"]; got != want.Value() {
		t.Errorf("field_peak = %.4f, want %.4f under %s", got, want.Value(), m.drv.Mapping().Name())
	}

	m = press(m, TickMsg(time.Now()))
	if got := m.collector.Values()["field_peak"]; got > 1 {
		t.Errorf("field_peak = %.4f exceeds the unbanded-k4 range", got)
	}
}
