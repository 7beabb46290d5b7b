package metrics

import (
	"math"

	"github.com/san-kum/metaball/internal/field"
	"github.com/san-kum/metaball/internal/shade"
)

// FieldPeak records the largest field value seen on a coarse grid of cell
// centres. Sampling its own grid keeps it independent of the frame size.
type FieldPeak struct {
	name     string
	renderer *shade.Renderer
	grid     int
	peak     float64
}

func NewFieldPeak(m shade.Mapping, grid int) *FieldPeak {
	if grid < 1 {
		grid = 1
	}
	return &FieldPeak{name: "field_peak", renderer: shade.NewRenderer(m, 1), grid: grid}
}

func (p *FieldPeak) Name() string {
	return p.name
}

func (p *FieldPeak) Observe(snap field.Snapshot, _ *shade.Frame) {
	for y := 0; y < p.grid; y++ {
		for x := 0; x < p.grid; x++ {
			sum := p.renderer.FieldSum(shade.PixelCoord(x, y, p.grid, p.grid), snap)
			p.peak = math.Max(p.peak, sum)
		}
	}
}

// SetMapping switches the falloff used for sampling. Peaks seen under the
// previous mapping are dropped.
func (p *FieldPeak) SetMapping(m shade.Mapping) {
	p.renderer.SetMapping(m)
	p.peak = 0
}

func (p *FieldPeak) Value() float64 {
	return p.peak
}

func (p *FieldPeak) Reset() {
	p.peak = 0
}
