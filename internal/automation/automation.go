package automation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/metaball/internal/driver"
	"github.com/san-kum/metaball/internal/field"
	"github.com/san-kum/metaball/internal/shade"
)

// Actions understood by a scenario event.
const (
	ActionStart   = "start"
	ActionStop    = "stop"
	ActionToggle  = "toggle"
	ActionRate    = "rate"
	ActionMapping = "mapping"
	ActionReseed  = "reseed"
)

// Scenario is a scripted sequence of control changes applied to a driver.
type Scenario struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Events      []Event `yaml:"events"`
}

// Event fires before the tick with the given index. Ticks count loop
// iterations, including ones made while the animation is stopped.
type Event struct {
	Tick    int     `yaml:"tick"`
	Action  string  `yaml:"action"`
	Rate    float64 `yaml:"rate,omitempty"`
	Mapping string  `yaml:"mapping,omitempty"`
}

// LoadScenario loads and validates a scenario from a YAML file.
func LoadScenario(path string, reg *shade.Registry) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if err := scenario.Validate(reg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &scenario, nil
}

func (s *Scenario) Validate(reg *shade.Registry) error {
	for i, ev := range s.Events {
		if ev.Tick < 0 {
			return fmt.Errorf("event %d: negative tick %d", i+1, ev.Tick)
		}
		switch ev.Action {
		case ActionStart, ActionStop, ActionToggle, ActionReseed:
		case ActionRate:
			if ev.Rate < driver.MinRate || ev.Rate > driver.MaxRate {
				return fmt.Errorf("event %d: rate %g outside [%g, %g]", i+1, ev.Rate, driver.MinRate, driver.MaxRate)
			}
		case ActionMapping:
			if !reg.Has(ev.Mapping) {
				return fmt.Errorf("event %d: unknown mapping %q", i+1, ev.Mapping)
			}
		default:
			return fmt.Errorf("event %d: unknown action %q", i+1, ev.Action)
		}
	}
	return nil
}

// RunScenario ticks the driver ticks times, applying events as their tick
// comes up. It returns the number of frames rendered.
func RunScenario(ctx context.Context, drv *driver.Driver, scenario *Scenario, ticks int, reg *shade.Registry, rng *rand.Rand) (int, error) {
	events := append([]Event(nil), scenario.Events...)
	sort.SliceStable(events, func(i, j int) bool { return events[i].Tick < events[j].Tick })

	rendered, next := 0, 0
	for tick := 0; tick < ticks; tick++ {
		if err := ctx.Err(); err != nil {
			return rendered, err
		}
		for next < len(events) && events[next].Tick == tick {
			if err := apply(drv, events[next], reg, rng); err != nil {
				return rendered, fmt.Errorf("tick %d: %w", tick, err)
			}
			next++
		}
		if drv.Tick() {
			rendered++
		}
	}
	return rendered, nil
}

func apply(drv *driver.Driver, ev Event, reg *shade.Registry, rng *rand.Rand) error {
	switch ev.Action {
	case ActionStart:
		drv.Start()
	case ActionStop:
		drv.Stop()
	case ActionToggle:
		drv.Toggle()
	case ActionRate:
		drv.SetRate(ev.Rate)
	case ActionMapping:
		m, err := reg.Get(ev.Mapping)
		if err != nil {
			return err
		}
		drv.SetMapping(m)
	case ActionReseed:
		drv.Reset(rng)
	default:
		return fmt.Errorf("unknown action %q", ev.Action)
	}
	return nil
}

// MonteCarloConfig runs many randomly seeded simulations.
type MonteCarloConfig struct {
	Trials        int
	Steps         int
	TimeIncrement float64
	Seed          int64
}

// MonteCarloResult is the outcome of one trial. Bound is the largest single
// velocity component in the trial; the reflection rule keeps every source
// within that distance of the box.
type MonteCarloResult struct {
	Seed         int64
	MaxExcursion float64
	Bound        float64
	Contained    bool
}

// RunMonteCarlo executes the trials and records how far sources overshoot
// the walls.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) ([]MonteCarloResult, error) {
	results := make([]MonteCarloResult, 0, cfg.Trials)
	for trial := 0; trial < cfg.Trials; trial++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		seed := cfg.Seed + int64(trial)
		sim := field.New(rand.New(rand.NewSource(seed)))

		bound := 0.0
		for _, src := range sim.Sources() {
			bound = math.Max(bound, math.Max(math.Abs(src.Velocity.X), math.Abs(src.Velocity.Y)))
		}

		worst := 0.0
		for i := 0; i < cfg.Steps; i++ {
			sim.Step(cfg.TimeIncrement)
			worst = math.Max(worst, sim.MaxExcursion())
		}
		results = append(results, MonteCarloResult{
			Seed:         seed,
			MaxExcursion: worst,
			Bound:        bound,
			Contained:    worst <= bound+1e-12,
		})
	}
	return results, nil
}

// MonteCarloStats counts trials that stayed within their bound.
func MonteCarloStats(results []MonteCarloResult) (contained int, escaped int) {
	for _, r := range results {
		if r.Contained {
			contained++
		} else {
			escaped++
		}
	}
	return
}
