package metrics

import (
	"github.com/san-kum/metaball/internal/field"
	"github.com/san-kum/metaball/internal/shade"
)

// Coverage is the running mean of frame coverage, with the latest value kept
// for live plots.
type Coverage struct {
	name    string
	sum     float64
	last    float64
	samples int
}

func NewCoverage() *Coverage {
	return &Coverage{name: "coverage"}
}

func (c *Coverage) Name() string {
	return c.name
}

func (c *Coverage) Observe(_ field.Snapshot, frame *shade.Frame) {
	c.last = frame.Coverage()
	c.sum += c.last
	c.samples++
}

func (c *Coverage) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *Coverage) Last() float64 {
	return c.last
}

func (c *Coverage) Reset() {
	c.sum = 0
	c.last = 0
	c.samples = 0
}
