package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	gcode "github.com/leftmike/gcsim"
)

// Terminal cells are about twice as tall as they are wide.
const cellAspect = 2.0

// plot is a top down (XY) raster of a program's toolpath. Each cell holds
// the index of the first command that crosses it, so drawing a frame only
// compares cells against the executed boundary.
type plot struct {
	width, height int
	cells         []int
	minX, maxY    float64
	colMM         float64 // mm per column; a row is cellAspect columns
}

type plotOptions struct {
	tessellate bool
	step       float64
}

func newPlot(p *gcode.Program, width, height int, opts plotOptions) *plot {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	pl := &plot{
		width:  width,
		height: height,
		cells:  make([]int, width*height),
	}
	for idx := range pl.cells {
		pl.cells[idx] = -1
	}
	if p == nil || p.Bounds.Empty() {
		return pl
	}

	size := p.Bounds.Size()
	pl.minX = p.Bounds.Min.X
	pl.maxY = p.Bounds.Max.Y
	pl.colMM = math.Max(size.X/float64(max(width-1, 1)),
		size.Y/(cellAspect*float64(max(height-1, 1))))
	if pl.colMM == 0.0 {
		pl.colMM = 1.0
	}

	for n, cmd := range p.Commands {
		prev := cmd.Start
		if opts.tessellate && cmd.Kind.IsArc() {
			for _, pos := range gcode.Tessellate(cmd, opts.step) {
				pl.line(n, prev, pos)
				prev = pos
			}
		} else {
			pl.line(n, prev, cmd.End)
		}
	}
	return pl
}

func (pl *plot) cell(pos gcode.Position) (int, int) {
	col := int(math.Round((pos.X - pl.minX) / pl.colMM))
	row := int(math.Round((pl.maxY - pos.Y) / (pl.colMM * cellAspect)))
	return col, row
}

func (pl *plot) set(col, row, n int) {
	if col < 0 || col >= pl.width || row < 0 || row >= pl.height {
		return
	}
	idx := row*pl.width + col
	if pl.cells[idx] < 0 || n < pl.cells[idx] {
		pl.cells[idx] = n
	}
}

func (pl *plot) line(n int, from, to gcode.Position) {
	c1, r1 := pl.cell(from)
	c2, r2 := pl.cell(to)
	steps := max(abs(c2-c1), abs(r2-r1))
	if steps == 0 {
		pl.set(c1, r1, n)
		return
	}
	for s := 0; s <= steps; s++ {
		f := float64(s) / float64(steps)
		pl.set(c1+int(math.Round(f*float64(c2-c1))), r1+int(math.Round(f*float64(r2-r1))), n)
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

const (
	cellEmpty = iota
	cellExecuted
	cellPending
	cellTool
)

func (pl *plot) class(col, row, boundary int) int {
	v := pl.cells[row*pl.width+col]
	if v < 0 {
		return cellEmpty
	} else if v < boundary {
		return cellExecuted
	}
	return cellPending
}

var cellGlyphs = [...]string{
	cellEmpty:    " ",
	cellExecuted: "█",
	cellPending:  "·",
	cellTool:     "@",
}

// render draws the plot with Commands[:boundary] executed and the tool at
// pos. Runs of one class are styled together.
func (pl *plot) render(boundary int, pos gcode.Position, styles [4]lipgloss.Style) string {
	toolCol, toolRow := -1, -1
	if pl.colMM > 0.0 {
		toolCol, toolRow = pl.cell(pos)
	}

	var b strings.Builder
	for row := 0; row < pl.height; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		runClass := -1
		var run strings.Builder
		for col := 0; col < pl.width; col++ {
			class := pl.class(col, row, boundary)
			if col == toolCol && row == toolRow {
				class = cellTool
			}
			if class != runClass && run.Len() > 0 {
				b.WriteString(styles[runClass].Render(run.String()))
				run.Reset()
			}
			runClass = class
			run.WriteString(cellGlyphs[class])
		}
		if run.Len() > 0 {
			b.WriteString(styles[runClass].Render(run.String()))
		}
	}
	return b.String()
}
