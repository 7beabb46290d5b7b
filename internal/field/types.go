package field

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// SourceCount is the number of sources in every simulation. The field
// formula sums exactly this many terms.
const SourceCount = 4

const (
	// MinSize and MaxSize bound a source's influence weight, [MinSize, MaxSize).
	MinSize = 0.1
	MaxSize = 1.1

	// SpeedScale scales the centred uniform draw of each velocity component.
	SpeedScale = 0.01
)

// Source is a point that drives the field.
type Source struct {
	Position r2.Vec
	Velocity r2.Vec
	size     float64
}

// NewSource builds a source. Size is not validated here; simulations reject
// out-of-range sizes at construction.
func NewSource(pos, vel r2.Vec, size float64) Source {
	return Source{Position: pos, Velocity: vel, size: size}
}

// Size returns the influence weight. It is carried for forward
// compatibility; no current color mapping reads it.
func (s Source) Size() float64 { return s.size }

// Snapshot is the frozen state a renderer reads for one frame.
type Snapshot struct {
	Positions [SourceCount]r2.Vec
	Time      float64
	Step      int
}

// Excursion returns how far p lies outside the unit square, per axis maximum.
func Excursion(p r2.Vec) float64 {
	return math.Max(axisExcursion(p.X), axisExcursion(p.Y))
}

func axisExcursion(v float64) float64 {
	switch {
	case v < 0:
		return -v
	case v > 1:
		return v - 1
	}
	return 0
}
