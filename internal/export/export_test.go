package export

import (
	"bytes"
	"image/gif"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/metaball/internal/field"
	"github.com/san-kum/metaball/internal/shade"
)

func testFrame(t *testing.T) *shade.Frame {
	t.Helper()
	frame, err := shade.NewFrame(8, 4)
	if err != nil {
		t.Fatal(err)
	}
	for i := range frame.Pix {
		frame.Pix[i] = shade.OpaqueGreen
	}
	frame.Pix[0] = shade.TransparentRed
	return frame
}

func TestWritePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	if err := WritePNG(path, testFrame(t)); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 4 {
		t.Errorf("unexpected bounds %v", b)
	}
	if _, _, _, a := img.At(0, 0).RGBA(); a != 0 {
		t.Errorf("expected transparent first pixel, alpha %d", a)
	}
}

func TestFlattenOverBackground(t *testing.T) {
	flat := Flatten(testFrame(t).Image(), Background)
	if c := flat.RGBAAt(0, 0); c.R != 0 || c.G != 0 || c.A != 255 {
		t.Errorf("transparent pixel should show background, got %v", c)
	}
	if c := flat.RGBAAt(1, 0); c.G != 255 || c.A != 255 {
		t.Errorf("opaque pixel should survive, got %v", c)
	}
}

func TestGIFRecorder(t *testing.T) {
	rec := NewGIFRecorder(2, 2)
	frame := testFrame(t)
	for i := 0; i < 6; i++ {
		rec.OnFrame(field.Snapshot{Step: i + 1}, frame)
	}
	if got := len(rec.Frames()); got != 2 {
		t.Fatalf("expected 2 captured frames, got %d", got)
	}

	path := filepath.Join(t.TempDir(), "anim.gif")
	if err := rec.Save(path, 30); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	anim, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(anim.Image) != 2 {
		t.Errorf("expected 2 gif frames, got %d", len(anim.Image))
	}
	if anim.Delay[0] != 6 {
		t.Errorf("expected delay 6, got %d", anim.Delay[0])
	}
}

func TestWriteGIFEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteGIF(&buf, nil, 2); err == nil {
		t.Error("expected error for empty animation")
	}
}

func TestTrajectoryCSV(t *testing.T) {
	rec := NewTrajectoryRecorder()
	snap := field.Snapshot{Step: 3, Time: 0.05}
	snap.Positions[2] = r2.Vec{X: 1.002, Y: 0.25}
	rec.OnFrame(snap, nil)

	if len(rec.Records()) != field.SourceCount {
		t.Fatalf("expected %d records, got %d", field.SourceCount, len(rec.Records()))
	}

	var buf bytes.Buffer
	if err := rec.WriteCSV(&buf); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "frame,time,source,x,y\n") {
		t.Errorf("unexpected header: %q", strings.SplitN(buf.String(), "\n", 2)[0])
	}

	records, err := ReadTrajectoryCSV(&buf)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(records) != field.SourceCount {
		t.Fatalf("expected %d records back, got %d", field.SourceCount, len(records))
	}
	got := records[2]
	if got.Frame != 3 || got.Source != 2 || got.X != 1.002 || got.Y != 0.25 {
		t.Errorf("unexpected record %+v", got)
	}
}

func TestTrajectorySVG(t *testing.T) {
	sim := field.New(rand.New(rand.NewSource(3)))
	rec := NewTrajectoryRecorder()
	for i := 0; i < 10; i++ {
		sim.Step(1.0 / 60)
		rec.Record(sim.Snapshot())
	}

	svg := TrajectorySVG(rec.Records(), 200)
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatal("output is not a complete svg document")
	}
	if got := strings.Count(svg, "<path"); got != field.SourceCount {
		t.Errorf("expected %d paths, got %d", field.SourceCount, got)
	}
	if got := strings.Count(svg, " L"); got != field.SourceCount*9 {
		t.Errorf("expected %d line segments, got %d", field.SourceCount*9, got)
	}
}

func TestPNGSequence(t *testing.T) {
	dir := t.TempDir()
	seq := NewPNGSequence(filepath.Join(dir, "out.png"))
	frame := testFrame(t)
	for step := 1; step <= 3; step++ {
		seq.OnFrame(field.Snapshot{Step: step}, frame)
	}
	if seq.Err() != nil {
		t.Fatalf("unexpected error: %v", seq.Err())
	}
	if seq.Written() != 3 {
		t.Errorf("written = %d, want 3", seq.Written())
	}
	for _, name := range []string{"out-0001.png", "out-0002.png", "out-0003.png"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	// A reseed restarts the step count; files keep counting up.
	seq.OnFrame(field.Snapshot{Step: 0}, frame)
	seq.OnFrame(field.Snapshot{Step: 1}, frame)
	if seq.Written() != 5 {
		t.Errorf("written after reset = %d, want 5", seq.Written())
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 5 {
		t.Errorf("files on disk = %d, want 5", len(entries))
	}
	for _, name := range []string{"out-0004.png", "out-0005.png"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	bad := NewPNGSequence(filepath.Join(dir, "missing", "out.png"))
	bad.OnFrame(field.Snapshot{Step: 1}, frame)
	bad.OnFrame(field.Snapshot{Step: 2}, frame)
	if bad.Err() == nil || bad.Written() != 0 {
		t.Error("expected the first write error to stick")
	}
}
