package field

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
)

// Simulation advances a fixed set of sources inside the unit square.
type Simulation struct {
	sources [SourceCount]Source
	time    float64
	steps   int
	running bool
}

// New draws SourceCount random sources from rng and returns a running simulation.
func New(rng *rand.Rand) *Simulation {
	s := &Simulation{running: true}
	for i := range s.sources {
		s.sources[i] = randomSource(rng)
	}
	return s
}

// NewWithCount is New for callers that carry a configured source count.
// Any count other than SourceCount is rejected.
func NewWithCount(n int, rng *rand.Rand) (*Simulation, error) {
	if n != SourceCount {
		return nil, fmt.Errorf("%w: got %d", ErrSourceCount, n)
	}
	return New(rng), nil
}

// NewFromSources builds a running simulation from explicit sources.
func NewFromSources(sources []Source) (*Simulation, error) {
	if len(sources) != SourceCount {
		return nil, fmt.Errorf("%w: got %d", ErrSourceCount, len(sources))
	}
	s := &Simulation{running: true}
	for i, src := range sources {
		if math.IsNaN(src.size) || src.size < MinSize || src.size >= MaxSize {
			return nil, fmt.Errorf("%w: source %d has size %g", ErrSourceSize, i, src.size)
		}
		s.sources[i] = src
	}
	return s, nil
}

func randomSource(rng *rand.Rand) Source {
	pos := r2.Vec{X: rng.Float64(), Y: rng.Float64()}
	vel := r2.Scale(SpeedScale, r2.Vec{X: rng.Float64() - 0.5, Y: rng.Float64() - 0.5})
	return Source{Position: pos, Velocity: vel, size: rng.Float64() + MinSize}
}

// Step moves every source by its velocity, reflects velocities at the walls
// and advances the clock by timeIncrement. Positions are not clamped.
func (s *Simulation) Step(timeIncrement float64) {
	for i := range s.sources {
		src := &s.sources[i]
		src.Position = r2.Add(src.Position, src.Velocity)
		if src.Position.X >= 1 || src.Position.X <= 0 {
			src.Velocity.X = -src.Velocity.X
		}
		if src.Position.Y >= 1 || src.Position.Y <= 0 {
			src.Velocity.Y = -src.Velocity.Y
		}
	}
	s.time += timeIncrement
	s.steps++
}

// Advance calls Step n times.
func (s *Simulation) Advance(n int, timeIncrement float64) {
	for i := 0; i < n; i++ {
		s.Step(timeIncrement)
	}
}

// Start marks the simulation as running.
func (s *Simulation) Start() { s.running = true }

// Stop marks the simulation as stopped. Step itself ignores the flag;
// hosts check Running before stepping.
func (s *Simulation) Stop() { s.running = false }

// Toggle flips between running and stopped.
func (s *Simulation) Toggle() { s.running = !s.running }

// Running reports whether hosts should keep stepping.
func (s *Simulation) Running() bool { return s.running }

// Time returns the accumulated clock.
func (s *Simulation) Time() float64 { return s.time }

// Steps returns the number of steps taken since construction.
func (s *Simulation) Steps() int { return s.steps }

// Sources returns a copy of the sources.
func (s *Simulation) Sources() [SourceCount]Source { return s.sources }

// Snapshot copies the current positions and clock.
func (s *Simulation) Snapshot() Snapshot {
	snap := Snapshot{Time: s.time, Step: s.steps}
	for i := range s.sources {
		snap.Positions[i] = s.sources[i].Position
	}
	return snap
}

// MaxExcursion returns the furthest any source currently lies outside the box.
func (s *Simulation) MaxExcursion() float64 {
	worst := 0.0
	for i := range s.sources {
		worst = math.Max(worst, Excursion(s.sources[i].Position))
	}
	return worst
}
