// Package driver runs the per-frame loop: step the simulation, then render
// the frozen snapshot.
package driver

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/san-kum/metaball/internal/field"
	"github.com/san-kum/metaball/internal/shade"
)

const (
	// RotationDivisor converts the rate control into radians per frame.
	RotationDivisor = 70.0

	MinRate = -1.0
	MaxRate = 1.0
)

// Observer is notified after every rendered frame. The frame buffer is
// reused; observers must copy anything they keep.
type Observer interface {
	OnFrame(snap field.Snapshot, frame *shade.Frame)
}

type Config struct {
	Width, Height int
	TimeIncrement float64
	Rate          float64
}

// Driver owns the simulation, the renderer and the single frame buffer.
type Driver struct {
	sim       *field.Simulation
	renderer  *shade.Renderer
	frame     *shade.Frame
	observers []Observer

	timeIncrement float64
	rate          float64
	rotation      float64
	frames        int
}

func New(sim *field.Simulation, renderer *shade.Renderer, cfg Config) (*Driver, error) {
	frame, err := shade.NewFrame(cfg.Width, cfg.Height)
	if err != nil {
		return nil, err
	}
	d := &Driver{
		sim:           sim,
		renderer:      renderer,
		frame:         frame,
		observers:     make([]Observer, 0),
		timeIncrement: cfg.TimeIncrement,
	}
	d.SetRate(cfg.Rate)
	return d, nil
}

func (d *Driver) AddObserver(o Observer) { d.observers = append(d.observers, o) }

// Tick advances one frame if running and reports whether it did. The frame
// is rendered only after every source has moved.
func (d *Driver) Tick() bool {
	if !d.sim.Running() {
		return false
	}
	d.sim.Step(d.timeIncrement)
	d.rotation += d.rate / RotationDivisor

	snap := d.sim.Snapshot()
	d.renderer.Render(d.frame, snap)
	d.frames++

	for _, obs := range d.observers {
		obs.OnFrame(snap, d.frame)
	}
	return true
}

// Run ticks at fps until ctx is done, callback returns false or maxFrames
// frames have rendered (maxFrames <= 0 means no limit). Stopped ticks still
// invoke the callback so hosts keep redrawing.
func (d *Driver) Run(ctx context.Context, fps, maxFrames int, callback func(rendered bool) bool) error {
	if fps <= 0 {
		return fmt.Errorf("fps must be positive, got %d", fps)
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	slog.Debug("driver loop started", "fps", fps, "max_frames", maxFrames)
	start := d.frames
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		rendered := d.Tick()
		if callback != nil && !callback(rendered) {
			return nil
		}
		if maxFrames > 0 && d.frames-start >= maxFrames {
			return nil
		}
	}
}

// RunFrames renders n frames back to back without pacing.
func (d *Driver) RunFrames(n int) int {
	rendered := 0
	for i := 0; i < n; i++ {
		if d.Tick() {
			rendered++
		}
	}
	return rendered
}

func (d *Driver) Start() {
	d.sim.Start()
	slog.Debug("simulation started", "frame", d.frames)
}

func (d *Driver) Stop() {
	d.sim.Stop()
	slog.Debug("simulation stopped", "frame", d.frames)
}

func (d *Driver) Toggle() {
	if d.sim.Running() {
		d.Stop()
	} else {
		d.Start()
	}
}

func (d *Driver) Running() bool { return d.sim.Running() }

// SetRate clamps r into [MinRate, MaxRate]. The rate only drives the
// auxiliary rotation; the simulation step size is fixed.
func (d *Driver) SetRate(r float64) {
	if r < MinRate {
		r = MinRate
	} else if r > MaxRate {
		r = MaxRate
	}
	d.rate = r
}

func (d *Driver) Rate() float64     { return d.rate }
func (d *Driver) Rotation() float64 { return d.rotation }
func (d *Driver) Frames() int       { return d.frames }

func (d *Driver) Frame() *shade.Frame           { return d.frame }
func (d *Driver) Snapshot() field.Snapshot      { return d.sim.Snapshot() }
func (d *Driver) Simulation() *field.Simulation { return d.sim }
func (d *Driver) Mapping() shade.Mapping        { return d.renderer.Mapping() }

// SetMapping swaps the color mapping and re-renders the current snapshot.
func (d *Driver) SetMapping(m shade.Mapping) {
	d.renderer.SetMapping(m)
	d.Redraw()
	slog.Debug("mapping changed", "mapping", m.Name())
}

// Redraw renders the current snapshot without stepping.
func (d *Driver) Redraw() {
	d.renderer.Render(d.frame, d.sim.Snapshot())
}

// Reset replaces the simulation with freshly drawn sources, keeping the
// running state, rate and mapping.
func (d *Driver) Reset(rng *rand.Rand) {
	running := d.sim.Running()
	d.sim = field.New(rng)
	if !running {
		d.sim.Stop()
	}
	d.rotation = 0
	d.frames = 0
	d.Redraw()
	slog.Debug("simulation reset")
}

// Stats summarises the driver for structured logs.
type Stats struct {
	Frames   int
	Time     float64
	Rate     float64
	Rotation float64
	Mapping  string
	Running  bool
}

func (d *Driver) Stats() Stats {
	return Stats{
		Frames:   d.frames,
		Time:     d.sim.Time(),
		Rate:     d.rate,
		Rotation: d.rotation,
		Mapping:  d.renderer.Mapping().Name(),
		Running:  d.sim.Running(),
	}
}

// LogValue implements slog.LogValuer.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("frames", s.Frames),
		slog.Float64("time", s.Time),
		slog.Float64("rate", s.Rate),
		slog.Float64("rotation", s.Rotation),
		slog.String("mapping", s.Mapping),
		slog.Bool("running", s.Running),
	)
}
