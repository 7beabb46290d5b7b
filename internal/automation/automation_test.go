package automation

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/metaball/internal/driver"
	"github.com/san-kum/metaball/internal/field"
	"github.com/san-kum/metaball/internal/shade"
)

func newDriver(t *testing.T) *driver.Driver {
	t.Helper()
	d, err := driver.New(field.New(rand.New(rand.NewSource(4))), shade.NewRenderer(shade.Banded{}, 1), driver.Config{
		Width: 8, Height: 8, TimeIncrement: 0.1,
	})
	if err != nil {
		t.Fatal(err)
	}
	return d
}

const scenarioYAML = `
name: pause-and-swap
description: stop for a while, then switch mapping
events:
  - tick: 5
    action: mapping
    mapping: unbanded-k4
  - tick: 2
    action: stop
  - tick: 2
    action: rate
    rate: -0.5
  - tick: 6
    action: start
`

func TestLoadAndRunScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(scenarioYAML), 0644); err != nil {
		t.Fatal(err)
	}
	reg := shade.NewRegistry()
	sc, err := LoadScenario(path, reg)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if sc.Name != "pause-and-swap" || len(sc.Events) != 4 {
		t.Fatalf("unexpected scenario %+v", sc)
	}

	d := newDriver(t)
	rendered, err := RunScenario(context.Background(), d, sc, 10, reg, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	// ticks 2..5 are stopped
	if rendered != 6 {
		t.Errorf("rendered %d frames, want 6", rendered)
	}
	if d.Simulation().Steps() != 6 {
		t.Errorf("steps = %d, want 6", d.Simulation().Steps())
	}
	if d.Rate() != -0.5 {
		t.Errorf("rate = %v, want -0.5", d.Rate())
	}
	if d.Mapping().Name() != "unbanded-k4" {
		t.Errorf("mapping = %s, want unbanded-k4", d.Mapping().Name())
	}
}

func TestScenarioValidation(t *testing.T) {
	reg := shade.NewRegistry()
	tests := []struct {
		name string
		ev   Event
	}{
		{"unknown action", Event{Action: "explode"}},
		{"rate out of range", Event{Action: ActionRate, Rate: 2}},
		{"unknown mapping", Event{Action: ActionMapping, Mapping: "plasma"}},
		{"negative tick", Event{Tick: -1, Action: ActionStart}},
	}
	for _, tt := range tests {
		sc := &Scenario{Events: []Event{tt.ev}}
		if err := sc.Validate(reg); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestRunScenarioCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RunScenario(ctx, newDriver(t), &Scenario{}, 5, shade.NewRegistry(), nil)
	if err == nil {
		t.Error("expected context error")
	}
}

func TestMonteCarloContainment(t *testing.T) {
	results, err := RunMonteCarlo(context.Background(), &MonteCarloConfig{
		Trials: 8, Steps: 2000, TimeIncrement: 1.0 / 60, Seed: 100,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 8 {
		t.Fatalf("got %d results, want 8", len(results))
	}
	contained, escaped := MonteCarloStats(results)
	if contained != 8 || escaped != 0 {
		t.Errorf("contained=%d escaped=%d", contained, escaped)
	}
	for _, r := range results {
		if r.Bound > field.SpeedScale/2 {
			t.Errorf("seed %d: bound %v above %v", r.Seed, r.Bound, field.SpeedScale/2)
		}
	}
}
