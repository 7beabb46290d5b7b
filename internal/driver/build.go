package driver

import (
	"math/rand"
	"runtime"

	"github.com/san-kum/metaball/internal/config"
	"github.com/san-kum/metaball/internal/field"
	"github.com/san-kum/metaball/internal/shade"
)

// FromConfig wires a simulation, renderer and driver for cfg and renders the
// initial frame. The sources are drawn from rng, or from cfg.NewRand when rng
// is nil. Zero workers means one per available CPU. The returned
// driver is running.
func FromConfig(cfg *config.Config, reg *shade.Registry, rng *rand.Rand) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	mapping, err := reg.Get(cfg.Mapping)
	if err != nil {
		return nil, err
	}
	if rng == nil {
		rng = cfg.NewRand()
	}
	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	d, err := New(field.New(rng), shade.NewRenderer(mapping, workers), Config{
		Width:         cfg.Width,
		Height:        cfg.Height,
		TimeIncrement: cfg.TimeIncrement,
		Rate:          cfg.Rate,
	})
	if err != nil {
		return nil, err
	}
	d.Redraw()
	return d, nil
}
