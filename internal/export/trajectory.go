package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/san-kum/metaball/internal/field"
	"github.com/san-kum/metaball/internal/shade"
)

// TrajectoryRecord is one source position at one frame.
type TrajectoryRecord struct {
	Frame  int     `csv:"frame"`
	Time   float64 `csv:"time"`
	Source int     `csv:"source"`
	X      float64 `csv:"x"`
	Y      float64 `csv:"y"`
}

// TrajectoryRecorder collects source positions from every rendered frame.
type TrajectoryRecorder struct {
	records []TrajectoryRecord
}

func NewTrajectoryRecorder() *TrajectoryRecorder {
	return &TrajectoryRecorder{records: make([]TrajectoryRecord, 0)}
}

func (r *TrajectoryRecorder) OnFrame(snap field.Snapshot, _ *shade.Frame) {
	r.Record(snap)
}

func (r *TrajectoryRecorder) Record(snap field.Snapshot) {
	for i, p := range snap.Positions {
		r.records = append(r.records, TrajectoryRecord{
			Frame:  snap.Step,
			Time:   snap.Time,
			Source: i,
			X:      p.X,
			Y:      p.Y,
		})
	}
}

func (r *TrajectoryRecorder) Records() []TrajectoryRecord { return r.records }

// WriteCSV writes all records with a header row.
func (r *TrajectoryRecorder) WriteCSV(w io.Writer) error {
	if err := gocsv.Marshal(r.records, w); err != nil {
		return fmt.Errorf("writing trajectory: %w", err)
	}
	return nil
}

// ReadTrajectoryCSV parses records written by WriteCSV.
func ReadTrajectoryCSV(rd io.Reader) ([]TrajectoryRecord, error) {
	var records []TrajectoryRecord
	if err := gocsv.Unmarshal(rd, &records); err != nil {
		return nil, fmt.Errorf("reading trajectory: %w", err)
	}
	return records, nil
}

var sourceStrokes = [field.SourceCount]string{"#ff4d6d", "#4dd2ff", "#ffd84d", "#7dff4d"}

// TrajectorySVG draws each source's path over the unit square, padded so
// boundary overshoot stays visible.
func TrajectorySVG(records []TrajectoryRecord, size int) string {
	const pad = 0.05
	scale := float64(size) / (1 + 2*pad)
	project := func(x, y float64) (float64, float64) {
		return (x + pad) * scale, float64(size) - (y+pad)*scale
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, size, size, size, size))

	x0, y0 := project(0, 1)
	sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="none" stroke="#00e633" stroke-width="1"/>
`, x0, y0, scale, scale))

	for src := 0; src < field.SourceCount; src++ {
		started := false
		for _, rec := range records {
			if rec.Source != src {
				continue
			}
			x, y := project(rec.X, rec.Y)
			if !started {
				sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M%.1f,%.1f`, sourceStrokes[src], x, y))
				started = true
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		if started {
			sb.WriteString("\"/>\n")
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}
