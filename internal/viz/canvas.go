package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/metaball/internal/shade"
)

// upperHalf shows the top pixel as foreground and the bottom as background.
const upperHalf = "▀"

// Canvas samples a frame into terminal cells, two pixels per cell.
type Canvas struct {
	Cols, Rows int
	cells      [][2]colorful.Color
}

func NewCanvas(cols, rows int) *Canvas {
	c := &Canvas{}
	c.Resize(cols, rows)
	return c
}

func (c *Canvas) Resize(cols, rows int) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	c.Cols, c.Rows = cols, rows
	c.cells = make([][2]colorful.Color, cols*rows)
}

// Composite converts a floating color to an opaque terminal color over bg.
// Components outside [0, 1] are clamped here and nowhere earlier.
func Composite(col shade.Color, bg colorful.Color) colorful.Color {
	fg := colorful.Color{R: col.R, G: col.G, B: col.B}.Clamped()
	a := col.A
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	return bg.BlendRgb(fg, a)
}

// Sample picks the nearest frame pixel for every half cell.
func (c *Canvas) Sample(frame *shade.Frame, bg colorful.Color) {
	ph := c.Rows * 2
	for row := 0; row < c.Rows; row++ {
		for half := 0; half < 2; half++ {
			py := (row*2 + half) * frame.Height / ph
			for col := 0; col < c.Cols; col++ {
				px := col * frame.Width / c.Cols
				c.cells[row*c.Cols+col][half] = Composite(frame.At(px, py), bg)
			}
		}
	}
}

// Cell returns the top and bottom colors of a cell.
func (c *Canvas) Cell(col, row int) (top, bottom colorful.Color) {
	cell := c.cells[row*c.Cols+col]
	return cell[0], cell[1]
}

// String renders the sampled cells, merging runs of identical cells into
// one styled span.
func (c *Canvas) String() string {
	var b strings.Builder
	for row := 0; row < c.Rows; row++ {
		start := 0
		for col := 1; col <= c.Cols; col++ {
			if col < c.Cols && c.cells[row*c.Cols+col] == c.cells[row*c.Cols+start] {
				continue
			}
			top, bottom := c.Cell(start, row)
			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(top.Hex())).
				Background(lipgloss.Color(bottom.Hex()))
			b.WriteString(style.Render(strings.Repeat(upperHalf, col-start)))
			start = col
		}
		if row < c.Rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
