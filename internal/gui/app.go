package gui

import (
	"fmt"
	"image/color"
	"log/slog"
	"math/rand"
	"strconv"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/metaball/internal/driver"
	"github.com/san-kum/metaball/internal/metrics"
	"github.com/san-kum/metaball/internal/shade"
)

const (
	windowW   = 1100
	windowH   = 720
	fieldX    = 30
	fieldY    = 70
	fieldSize = 512
	panelX    = 580
	panelW    = 480
	sceneY    = 380
	sceneW    = 480
	sceneH    = 300

	maxTelemetry = 200
)

var (
	ColBg       = rl.NewColor(10, 10, 10, 255)
	ColBackdrop = rl.NewColor(22, 22, 28, 255)
	ColAccent   = rl.NewColor(180, 180, 180, 255)
	ColSelect   = rl.NewColor(255, 255, 255, 255)
	ColText     = rl.NewColor(140, 140, 140, 255)
	ColTextDim  = rl.NewColor(60, 60, 60, 255)
	ColSphere   = rl.NewColor(0, 230, 51, 255)
)

// App is the windowed host. All state other than widget layout lives in the
// driver.
type App struct {
	drv       *driver.Driver
	registry  *shade.Registry
	collector *metrics.Collector
	coverage  *metrics.Coverage
	rng       *rand.Rand

	Camera    rl.Camera3D
	Font      rl.Font
	Telemetry []float64

	fieldTex rl.Texture2D
	sceneTex rl.RenderTexture2D
	sphere   rl.Model
	pixels   []color.RGBA
	quit     bool
}

func initWindow(fps int) {
	rl.InitWindow(windowW, windowH, "metaball")
	rl.SetTargetFPS(int32(fps))
	rl.SetExitKey(0)
}

// NewApp loads the GPU resources for drv. The window must already be open.
func NewApp(drv *driver.Driver, rng *rand.Rand) *App {
	f := drv.Frame()
	img := rl.GenImageColor(f.Width, f.Height, rl.Blank)
	fieldTex := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)

	cov := metrics.NewCoverage()
	collector := metrics.NewCollector(metrics.NewExcursion(), cov)
	drv.AddObserver(collector)

	app := &App{
		drv:       drv,
		registry:  shade.NewRegistry(),
		collector: collector,
		coverage:  cov,
		rng:       rng,
		Camera: rl.NewCamera3D(
			rl.NewVector3(0, 1.5, 3.5),
			rl.NewVector3(0, 0, 0),
			rl.NewVector3(0, 1, 0),
			45.0,
			rl.CameraPerspective,
		),
		Font:      rl.GetFontDefault(),
		Telemetry: make([]float64, 0, maxTelemetry),
		fieldTex:  fieldTex,
		sceneTex:  rl.LoadRenderTexture(sceneW, sceneH),
		sphere:    rl.LoadModelFromMesh(rl.GenMeshSphere(1, 12, 16)),
		pixels:    make([]color.RGBA, f.Width*f.Height),
	}
	app.uploadFrame()
	return app
}

func (a *App) Unload() {
	rl.UnloadModel(a.sphere)
	rl.UnloadRenderTexture(a.sceneTex)
	rl.UnloadTexture(a.fieldTex)
}

// Run opens the window and blocks until it is closed.
func Run(drv *driver.Driver, rng *rand.Rand, fps int) {
	initWindow(fps)
	defer rl.CloseWindow()
	app := NewApp(drv, rng)
	defer app.Unload()
	slog.Info("window opened", "stats", drv.Stats())
	app.RunLoop()
	slog.Info("window closed", "stats", drv.Stats())
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() && !a.quit {
		a.Update()
		a.Draw()
	}
}

// Update handles keys and advances one frame when running.
func (a *App) Update() {
	if rl.IsKeyPressed(rl.KeyQ) {
		a.quit = true
		return
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		a.drv.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyM) {
		a.drv.SetMapping(a.registry.Next(a.drv.Mapping().Name()))
		a.uploadFrame()
	}
	if rl.IsKeyPressed(rl.KeyR) {
		a.reset()
	}

	if a.drv.Tick() {
		a.uploadFrame()
		a.Telemetry = append(a.Telemetry, a.coverage.Last())
		if len(a.Telemetry) > maxTelemetry {
			a.Telemetry = a.Telemetry[1:]
		}
	}
}

func (a *App) reset() {
	a.drv.Reset(a.rng)
	a.collector.Reset()
	a.Telemetry = a.Telemetry[:0]
	a.uploadFrame()
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	a.drawField()
	a.DrawTelemetry()
	a.DrawPanel()
	a.RenderSphere()

	rl.EndDrawing()
}

// DrawPanel draws the status text and the immediate-mode controls.
func (a *App) DrawPanel() {
	a.drawText("metaball", fieldX, 24, 24, ColSelect)
	a.drawText(":: "+a.drv.Mapping().Name(), fieldX+130, 30, 16, ColText)

	status, col := "RUNNING", ColSelect
	if !a.drv.Running() {
		status, col = "STOPPED", ColTextDim
	}
	a.drawText(status, panelX+panelW-90, 30, 16, col)

	y := float32(fieldY)
	a.drawText("Rate", panelX, int(y), 16, ColText)
	y += 22
	rate := gui.SliderBar(
		rl.Rectangle{X: panelX + 30, Y: y, Width: panelW - 130, Height: 20},
		"-1", "1",
		float32(a.drv.Rate()), driver.MinRate, driver.MaxRate,
	)
	a.drawText(fmt.Sprintf("%+.2f", a.drv.Rate()), panelX+panelW-80, int(y+2), 16, ColText)
	if float64(rate) != a.drv.Rate() {
		a.drv.SetRate(float64(rate))
	}
	y += 40

	if gui.Button(rl.Rectangle{X: panelX, Y: y, Width: 120, Height: 30}, toggleText(a.drv.Running(), "Stop", "Start")) {
		a.drv.Toggle()
	}
	if gui.Button(rl.Rectangle{X: panelX + 130, Y: y, Width: 120, Height: 30}, "Mapping") {
		a.drv.SetMapping(a.registry.Next(a.drv.Mapping().Name()))
		a.uploadFrame()
	}
	if gui.Button(rl.Rectangle{X: panelX + 260, Y: y, Width: 120, Height: 30}, "Reseed") {
		a.reset()
	}
	y += 50

	snap := a.drv.Snapshot()
	lines := []string{
		fmt.Sprintf("frame     %d", a.drv.Frames()),
		fmt.Sprintf("clock     %.2fs", snap.Time),
		fmt.Sprintf("rotation  %.2f rad", a.drv.Rotation()),
	}
	for _, m := range a.collector.Metrics() {
		lines = append(lines, fmt.Sprintf("%-9s %.4f", m.Name(), m.Value()))
	}
	for _, line := range lines {
		a.drawText(line, panelX, int(y), 16, ColText)
		y += 22
	}

	a.drawText("[SPACE] START/STOP  [M] MAPPING  [R] RESEED  [Q] QUIT", fieldX, windowH-30, 14, ColTextDim)
	a.drawText(fmt.Sprintf("%d FPS", int32(rl.GetFPS())), panelX+panelW-60, windowH-30, 14, ColTextDim)
}

func (a *App) drawText(text string, x, y int, size int, col rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, col)
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', 3, 64) }
