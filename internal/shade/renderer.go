package shade

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/metaball/internal/field"
)

const (
	// MinDistance floors the source distance so a pixel that lands exactly
	// on a source yields a large finite field value instead of +Inf.
	MinDistance = 1e-6

	// EdgeWidth is the border of parameter space painted with EdgeColor.
	EdgeWidth = 0.01

	// minRowsPerWorker keeps tiny frames on one goroutine.
	minRowsPerWorker = 8
)

// Sample is the field value and color at one coordinate.
type Sample struct {
	Sum   float64
	Color Color
}

// Renderer evaluates a Mapping over parameter space. It holds no per-frame
// state; the snapshot is passed into every call.
type Renderer struct {
	mapping Mapping
	workers int
}

func NewRenderer(m Mapping, workers int) *Renderer {
	if workers < 1 {
		workers = 1
	}
	return &Renderer{mapping: m, workers: workers}
}

func (r *Renderer) Mapping() Mapping     { return r.mapping }
func (r *Renderer) SetMapping(m Mapping) { r.mapping = m }
func (r *Renderer) Workers() int         { return r.workers }

// FieldSum returns the normalised falloff sum of all sources at coord.
func (r *Renderer) FieldSum(coord r2.Vec, snap field.Snapshot) float64 {
	return r.fieldSum(coord, &snap)
}

func (r *Renderer) fieldSum(coord r2.Vec, snap *field.Snapshot) float64 {
	sum := 0.0
	for i := range snap.Positions {
		d := r2.Norm(r2.Sub(snap.Positions[i], coord))
		sum += r.mapping.Falloff(math.Max(d, MinDistance))
	}
	return sum / r.mapping.Normalization()
}

// Sample evaluates the field and color at coord. Border coordinates take
// EdgeColor but still report their field value.
func (r *Renderer) Sample(coord r2.Vec, snap field.Snapshot) Sample {
	return r.sample(coord, &snap)
}

func (r *Renderer) sample(coord r2.Vec, snap *field.Snapshot) Sample {
	sum := r.fieldSum(coord, snap)
	if OnEdge(coord) {
		return Sample{Sum: sum, Color: EdgeColor}
	}
	return Sample{Sum: sum, Color: r.mapping.Color(sum)}
}

// Evaluate returns the color at coord.
func (r *Renderer) Evaluate(coord r2.Vec, snap field.Snapshot) Color {
	return r.sample(coord, &snap).Color
}

// OnEdge reports whether coord lies in the painted border.
func OnEdge(coord r2.Vec) bool {
	return coord.X < EdgeWidth || coord.X > 1-EdgeWidth ||
		coord.Y < EdgeWidth || coord.Y > 1-EdgeWidth
}

// PixelCoord maps a pixel centre to parameter space with v increasing upward.
func PixelCoord(x, y, w, h int) r2.Vec {
	return r2.Vec{
		X: (float64(x) + 0.5) / float64(w),
		Y: 1 - (float64(y)+0.5)/float64(h),
	}
}

// Render evaluates every pixel of frame from snap.
func (r *Renderer) Render(frame *Frame, snap field.Snapshot) {
	if r.workers <= 1 || frame.Height <= minRowsPerWorker {
		r.renderRows(frame, &snap, 0, frame.Height)
		return
	}
	r.renderParallel(frame, snap)
}

// renderParallel is split from Render so the serial path keeps snap on the stack.
func (r *Renderer) renderParallel(frame *Frame, snap field.Snapshot) {
	ParallelFor(frame.Height, minRowsPerWorker, r.workers, func(start, end int) {
		r.renderRows(frame, &snap, start, end)
	})
}

func (r *Renderer) renderRows(frame *Frame, snap *field.Snapshot, y0, y1 int) {
	w, h := frame.Width, frame.Height
	for y := y0; y < y1; y++ {
		row := frame.Pix[y*w : (y+1)*w]
		for x := range row {
			row[x] = r.sample(PixelCoord(x, y, w, h), snap).Color
		}
	}
}
