package gui

import (
	"image/color"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/metaball/internal/shade"
)

// fillPixels converts a frame to straight-alpha texels for rl.UpdateTexture.
// Row 0 of the frame is the top of the image, as in a texture.
func fillPixels(dst []color.RGBA, frame *shade.Frame) {
	for i, c := range frame.Pix {
		n := c.NRGBA8()
		dst[i] = color.RGBA{R: n.R, G: n.G, B: n.B, A: n.A}
	}
}

// uploadFrame refreshes the field texture from the driver's frame.
func (a *App) uploadFrame() {
	fillPixels(a.pixels, a.drv.Frame())
	rl.UpdateTexture(a.fieldTex, a.pixels)
}

// drawField stretches the field texture into the preview square. The
// backdrop shows through transparent pixels.
func (a *App) drawField() {
	f := a.drv.Frame()
	rl.DrawRectangle(fieldX, fieldY, fieldSize, fieldSize, ColBackdrop)
	rl.DrawTexturePro(
		a.fieldTex,
		rl.Rectangle{X: 0, Y: 0, Width: float32(f.Width), Height: float32(f.Height)},
		rl.Rectangle{X: fieldX, Y: fieldY, Width: fieldSize, Height: fieldSize},
		rl.Vector2{X: 0, Y: 0},
		0,
		rl.White,
	)
	rl.DrawRectangleLines(fieldX, fieldY, fieldSize, fieldSize, ColTextDim)
}

// RenderSphere draws the auxiliary scene into its render texture: a
// flat-shaded sphere turned about the vertical axis by the driver's
// rotation angle.
func (a *App) RenderSphere() {
	rl.BeginTextureMode(a.sceneTex)
	rl.ClearBackground(ColBg)
	rl.BeginMode3D(a.Camera)

	angle := float32(a.drv.Rotation() * 180 / math.Pi)
	axis := rl.NewVector3(0, 1, 0)
	scale := rl.NewVector3(1, 1, 1)
	rl.DrawModelEx(a.sphere, rl.NewVector3(0, 0, 0), axis, angle, scale, ColSphere)
	rl.DrawModelWiresEx(a.sphere, rl.NewVector3(0, 0, 0), axis, angle, rl.NewVector3(1.01, 1.01, 1.01), ColAccent)
	rl.DrawGrid(10, 0.5)

	rl.EndMode3D()
	rl.EndTextureMode()

	// render textures are stored upside down
	src := rl.Rectangle{X: 0, Y: 0, Width: float32(a.sceneTex.Texture.Width), Height: -float32(a.sceneTex.Texture.Height)}
	rl.DrawTextureRec(a.sceneTex.Texture, src, rl.NewVector2(panelX, sceneY), rl.White)
	rl.DrawRectangleLines(panelX, sceneY, sceneW, sceneH, ColTextDim)
}

// DrawTelemetry plots the coverage history under the field.
func (a *App) DrawTelemetry() {
	if len(a.Telemetry) < 2 {
		return
	}

	rectX, rectY := float32(fieldX), float32(fieldY+fieldSize+20)
	width, height := float32(fieldSize), float32(60)

	minVal, maxVal := a.Telemetry[0], a.Telemetry[0]
	for _, v := range a.Telemetry {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, len(a.Telemetry))
	for i, val := range a.Telemetry {
		px := rectX + float32(i)/float32(len(a.Telemetry))*width
		norm := (val - minVal) / (maxVal - minVal)
		py := rectY + height - float32(norm)*height
		points[i] = rl.NewVector2(px, py)
	}

	rl.DrawLineStrip(points, ColAccent)
	a.drawText("coverage", int(rectX), int(rectY+height+4), 14, ColTextDim)
	a.drawText(formatFloat(a.Telemetry[len(a.Telemetry)-1]), int(rectX+width-60), int(rectY+height+4), 14, ColText)
}
