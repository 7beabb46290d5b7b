package export

import (
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/san-kum/metaball/internal/field"
	"github.com/san-kum/metaball/internal/shade"
)

// Background is what transparent field pixels are composited over when a
// format has no alpha channel.
var Background = color.RGBA{A: 255}

// WritePNG writes the frame with its alpha channel intact.
func WritePNG(path string, frame *shade.Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := png.Encode(f, frame.Image()); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}

// Flatten composites img over bg.
func Flatten(img image.Image, bg color.Color) *image.RGBA {
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Over)
	return out
}

// Paletted flattens the frame and dithers it onto the Plan 9 palette.
func Paletted(frame *shade.Frame) *image.Paletted {
	flat := Flatten(frame.Image(), Background)
	out := image.NewPaletted(flat.Bounds(), palette.Plan9)
	draw.FloydSteinberg.Draw(out, out.Bounds(), flat, image.Point{})
	return out
}

// WriteGIF encodes frames as a looping animation; delay is in 1/100 s.
func WriteGIF(w io.Writer, frames []*image.Paletted, delay int) error {
	if len(frames) == 0 {
		return fmt.Errorf("no frames to encode")
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, delay)
	}
	return gif.EncodeAll(w, &anim)
}

// GIFRecorder captures rendered frames as paletted images.
type GIFRecorder struct {
	frames    []*image.Paletted
	maxFrames int
	every     int
	seen      int
}

// NewGIFRecorder keeps every n-th frame, up to maxFrames (0 means no limit).
func NewGIFRecorder(maxFrames, every int) *GIFRecorder {
	if every < 1 {
		every = 1
	}
	return &GIFRecorder{frames: make([]*image.Paletted, 0), maxFrames: maxFrames, every: every}
}

func (g *GIFRecorder) OnFrame(_ field.Snapshot, frame *shade.Frame) {
	g.seen++
	if (g.seen-1)%g.every != 0 {
		return
	}
	if g.maxFrames > 0 && len(g.frames) >= g.maxFrames {
		return
	}
	g.frames = append(g.frames, Paletted(frame))
}

func (g *GIFRecorder) Frames() []*image.Paletted { return g.frames }

// Save writes the captured animation to path.
func (g *GIFRecorder) Save(path string, fps int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	delay := 100 * g.every / max(fps, 1)
	if delay < 2 {
		delay = 2
	}
	if err := WriteGIF(f, g.frames, delay); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}

// PNGSequence writes every observed frame to its own numbered file next to
// path: out.png becomes out-0001.png, out-0002.png, ... Numbers count frames
// written, so a driver reset never reuses a name.
type PNGSequence struct {
	base, ext string
	written   int
	err       error
}

func NewPNGSequence(path string) *PNGSequence {
	ext := filepath.Ext(path)
	return &PNGSequence{base: strings.TrimSuffix(path, ext), ext: ext}
}

// Path returns the file name used for the given frame number.
func (p *PNGSequence) Path(frame int) string {
	return fmt.Sprintf("%s-%04d%s", p.base, frame, p.ext)
}

func (p *PNGSequence) OnFrame(_ field.Snapshot, frame *shade.Frame) {
	if p.err != nil {
		return
	}
	if err := WritePNG(p.Path(p.written+1), frame); err != nil {
		p.err = err
		return
	}
	p.written++
}

// Written reports how many files were written.
func (p *PNGSequence) Written() int { return p.written }

// Err returns the first write error; later frames are skipped after it.
func (p *PNGSequence) Err() error { return p.err }
