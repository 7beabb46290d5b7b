package shade

// Mapping turns source distances into a field value and the field value
// into a color.
type Mapping interface {
	Name() string
	Falloff(dist float64) float64
	Normalization() float64
	Color(sum float64) Color
}

// Bands holds the intermediates of the banding transform for one field value.
type Bands struct {
	Sum          float64
	Thresholded  float64
	Sawtooth     float64
	MiddleFiller float64
	Attenuator   float64
	V            float64
}

// BandsFor evaluates the banding transform. V is not clamped: inside the
// filled core it reaches up to 2.
func BandsFor(sum float64) Bands {
	b := Bands{
		Sum:          sum,
		Thresholded:  Smoothstep(0.0, 0.2, sum),
		Sawtooth:     Mod(sum, 0.1) - 0.05,
		MiddleFiller: Smoothstep(0.9, 0.92, sum),
		Attenuator:   Smoothstep(0.4, 0.5, sum),
	}
	abs := b.Sawtooth
	if abs < 0 {
		abs = -abs
	}
	b.V = Smoothstep(0.02, 0.03, abs)*b.Attenuator + b.MiddleFiller
	return b
}

// Banded is the reference mapping: 1/d falloff normalised by 20, drawn as
// bands that fade in past 0.4 with a solid core past 0.9.
type Banded struct{}

func (Banded) Name() string                 { return "banded" }
func (Banded) Falloff(dist float64) float64 { return 1 / dist }
func (Banded) Normalization() float64       { return 20 }

func (Banded) Color(sum float64) Color {
	return Mix(TransparentRed, OpaqueGreen, BandsFor(sum).V)
}

// Unbanded colors with a single smoothstep threshold.
type Unbanded struct {
	Label  string
	K      float64
	Offset float64 // added to the distance before inverting
	Edge0  float64
	Edge1  float64
}

func (u Unbanded) Name() string                 { return u.Label }
func (u Unbanded) Falloff(dist float64) float64 { return 1 / (u.Offset + dist) }
func (u Unbanded) Normalization() float64       { return u.K }

func (u Unbanded) Color(sum float64) Color {
	return Mix(TransparentRed, OpaqueGreen, Smoothstep(u.Edge0, u.Edge1, sum))
}

// UnbandedK4 is the soft preset: 1/(1+d) falloff over 4.
func UnbandedK4() Unbanded {
	return Unbanded{Label: "unbanded-k4", K: 4, Offset: 1, Edge0: 0.72, Edge1: 0.74}
}

// UnbandedK20 is the hard-edged preset: 1/d falloff over 20.
func UnbandedK20() Unbanded {
	return Unbanded{Label: "unbanded-k20", K: 20, Edge0: 0.72, Edge1: 0.74}
}
