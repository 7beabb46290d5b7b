package metrics

import (
	"github.com/san-kum/metaball/internal/field"
	"github.com/san-kum/metaball/internal/shade"
)

type Metric interface {
	Name() string
	Observe(snap field.Snapshot, frame *shade.Frame)
	Value() float64
	Reset()
}

// Collector fans rendered frames out to a set of metrics.
type Collector struct {
	metrics []Metric
}

func NewCollector(ms ...Metric) *Collector {
	return &Collector{metrics: ms}
}

// Defaults returns the metrics every host shows.
func Defaults() []Metric {
	return []Metric{NewExcursion(), NewCoverage(), NewFieldPeak(shade.Banded{}, 16)}
}

func (c *Collector) OnFrame(snap field.Snapshot, frame *shade.Frame) {
	for _, m := range c.metrics {
		m.Observe(snap, frame)
	}
}

func (c *Collector) Values() map[string]float64 {
	out := make(map[string]float64, len(c.metrics))
	for _, m := range c.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

func (c *Collector) Metrics() []Metric { return c.metrics }

func (c *Collector) Reset() {
	for _, m := range c.metrics {
		m.Reset()
	}
}
