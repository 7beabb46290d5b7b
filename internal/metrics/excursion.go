package metrics

import (
	"math"

	"github.com/san-kum/metaball/internal/field"
	"github.com/san-kum/metaball/internal/shade"
)

// Excursion tracks the furthest any source has strayed outside the unit square.
type Excursion struct {
	name  string
	worst float64
}

func NewExcursion() *Excursion {
	return &Excursion{name: "excursion"}
}

func (e *Excursion) Name() string {
	return e.name
}

func (e *Excursion) Observe(snap field.Snapshot, _ *shade.Frame) {
	for _, p := range snap.Positions {
		e.worst = math.Max(e.worst, field.Excursion(p))
	}
}

func (e *Excursion) Value() float64 {
	return e.worst
}

func (e *Excursion) Reset() {
	e.worst = 0
}
