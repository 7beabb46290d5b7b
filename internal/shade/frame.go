package shade

import (
	"fmt"
	"image"
	"image/color"
)

// Frame is a preallocated row-major pixel buffer, row 0 at the top.
type Frame struct {
	Width, Height int
	Pix           []Color
}

func NewFrame(w, h int) (*Frame, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrFrameSize, w, h)
	}
	return &Frame{Width: w, Height: h, Pix: make([]Color, w*h)}, nil
}

func (f *Frame) At(x, y int) Color { return f.Pix[y*f.Width+x] }

// Coverage returns the mean display alpha of the frame.
func (f *Frame) Coverage() float64 {
	if len(f.Pix) == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range f.Pix {
		sum += clamp01(c.A)
	}
	return sum / float64(len(f.Pix))
}

// CopyTo clamps every channel into img, which must match the frame bounds.
func (f *Frame) CopyTo(img *image.NRGBA) {
	for y := 0; y < f.Height; y++ {
		row := f.Pix[y*f.Width : (y+1)*f.Width]
		for x, c := range row {
			img.SetNRGBA(x, y, c.NRGBA8())
		}
	}
}

// Image converts the frame into a new image.
func (f *Frame) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))
	f.CopyTo(img)
	return img
}

// NRGBA8 clamps c to [0, 1] and scales it to 8-bit.
func (c Color) NRGBA8() color.NRGBA {
	return color.NRGBA{
		R: to8(c.R),
		G: to8(c.G),
		B: to8(c.B),
		A: to8(c.A),
	}
}

func to8(v float64) uint8 {
	return uint8(clamp01(v)*255 + 0.5)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
