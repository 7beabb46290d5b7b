package shade

import "math"

// Color is a floating-point RGBA color. Channels are not clamped; the
// display stage clamps when converting to 8-bit.
type Color struct {
	R, G, B, A float64
}

// Fixed colors: the mapping endpoints and the border override.
var (
	TransparentRed = Color{1, 0, 0, 0}
	OpaqueGreen    = Color{0, 1, 0, 1}
	EdgeColor      = Color{0, 0.9, 0.2, 1}
)

// Smoothstep is the Hermite ease 3t²−2t³ on t = clamp((x−e0)/(e1−e0), 0, 1).
func Smoothstep(edge0, edge1, x float64) float64 {
	t := (x - edge0) / (edge1 - edge0)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return t * t * (3 - 2*t)
}

// Mix interpolates a and b per channel; t is not clamped.
func Mix(a, b Color, t float64) Color {
	s := 1 - t
	return Color{
		R: a.R*s + b.R*t,
		G: a.G*s + b.G*t,
		B: a.B*s + b.B*t,
		A: a.A*s + b.A*t,
	}
}

// Mod is x − y·floor(x/y), which keeps the sign of y.
func Mod(x, y float64) float64 {
	return x - y*math.Floor(x/y)
}

// IsFinite reports whether every channel is a finite number.
func (c Color) IsFinite() bool {
	for _, v := range [4]float64{c.R, c.G, c.B, c.A} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
