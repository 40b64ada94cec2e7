// ABOUTME: Terminal renderers for projections: braille scatter and character canvas.
// ABOUTME: Braille is the primary view (2D and rotatable 3D); Canvas is the 2D fallback.
package viz

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/2389-research/asksee/internal/projector"
)

// Renderer draws a projection into a width x height block of terminal cells.
type Renderer interface {
	Render(p *projector.Projection, width, height int) (string, error)
}

// ErrTooSmall is returned when the drawing area cannot hold a plot.
var ErrTooSmall = errors.New("plot area too small")

// SelectedMark marks the highlighted point.
const SelectedMark = '◆'

const brailleBase = 0x2800

// brailleBits maps a dot position (col 0-1, row 0-3) within a cell to its bit.
var brailleBits = [2][4]rune{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// Braille renders points on a 2x4-dots-per-cell braille grid. 3D projections
// are drawn with an orthographic camera rotated by Yaw around the vertical
// axis and tilted by Pitch.
type Braille struct {
	Yaw      float64
	Pitch    float64
	Selected int
}

// NewBraille returns a braille renderer with a default 3D camera and no
// selection.
func NewBraille() Braille {
	return Braille{Yaw: math.Pi / 6, Pitch: math.Pi / 8, Selected: -1}
}

// Render implements Renderer.
func (b Braille) Render(p *projector.Projection, width, height int) (string, error) {
	if p == nil || p.Len() == 0 {
		return "", fmt.Errorf("nothing to plot")
	}
	if width < 10 || height < 4 {
		return "", fmt.Errorf("%w: %dx%d", ErrTooSmall, width, height)
	}

	dotsW, dotsH := width*2, height*4
	cells := make([][]rune, height)
	for i := range cells {
		cells[i] = make([]rune, width)
	}
	marks := make(map[[2]int]bool)

	for i, pt := range p.Points {
		sx, sy := b.screen(p, pt)
		if math.IsNaN(sx) || math.IsNaN(sy) {
			return "", fmt.Errorf("point %d is not finite", i)
		}
		dx := clampInt(int(math.Round(sx*float64(dotsW-1))), 0, dotsW-1)
		dy := clampInt(int(math.Round((1-sy)*float64(dotsH-1))), 0, dotsH-1)
		cx, cy := dx/2, dy/4
		cells[cy][cx] |= brailleBits[dx%2][dy%4]
		if i == b.Selected {
			marks[[2]int{cy, cx}] = true
		}
	}

	var sb strings.Builder
	for y, row := range cells {
		for x, bits := range row {
			switch {
			case marks[[2]int{y, x}]:
				sb.WriteRune(SelectedMark)
			case bits == 0:
				sb.WriteRune(' ')
			default:
				sb.WriteRune(brailleBase + bits)
			}
		}
		if y < len(cells)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String(), nil
}

// screen maps a point to [0,1]x[0,1] screen space.
func (b Braille) screen(p *projector.Projection, pt projector.Point) (float64, float64) {
	if p.Dims != 3 {
		return unit(pt.X, p.X), unit(pt.Y, p.Y)
	}
	// Normalize each axis to [-1, 1] using the padded ranges.
	nx := unit(pt.X, p.X)*2 - 1
	ny := unit(pt.Y, p.Y)*2 - 1
	nz := unit(pt.Z, p.Z)*2 - 1

	cy, sy := math.Cos(b.Yaw), math.Sin(b.Yaw)
	rx := nx*cy - ny*sy
	depth := nx*sy + ny*cy

	cp, sp := math.Cos(b.Pitch), math.Sin(b.Pitch)
	up := nz*cp + depth*sp

	// The rotated cube fits within radius sqrt(3).
	const r = 1.7320508075688772
	return (rx + r) / (2 * r), (up + r) / (2 * r)
}

// Canvas is the minimal fallback: a 2D character grid using the projection's
// X and Y ranges. It never returns an error for a non-empty projection.
type Canvas struct {
	Selected int
}

// Render implements Renderer.
func (c Canvas) Render(p *projector.Projection, width, height int) (string, error) {
	if p == nil || p.Len() == 0 {
		return "", nil
	}
	width = maxInt(width, 2)
	height = maxInt(height, 2)

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}
	for i, pt := range p.Points {
		sx, sy := unit(pt.X, p.X), unit(pt.Y, p.Y)
		if math.IsNaN(sx) || math.IsNaN(sy) {
			continue
		}
		x := clampInt(int(math.Round(sx*float64(width-1))), 0, width-1)
		y := clampInt(int(math.Round((1-sy)*float64(height-1))), 0, height-1)
		if i == c.Selected {
			grid[y][x] = SelectedMark
		} else if grid[y][x] != SelectedMark {
			grid[y][x] = '•'
		}
	}

	lines := make([]string, height)
	for i, row := range grid {
		lines[i] = string(row)
	}
	return strings.Join(lines, "\n"), nil
}

// AxesLabel describes the axis ranges under a plot.
func AxesLabel(p *projector.Projection) string {
	if p == nil {
		return ""
	}
	label := fmt.Sprintf("PC1 [%.3g, %.3g]  PC2 [%.3g, %.3g]", p.X.Min, p.X.Max, p.Y.Min, p.Y.Max)
	if p.Dims == 3 {
		label += fmt.Sprintf("  PC3 [%.3g, %.3g]", p.Z.Min, p.Z.Max)
	}
	return label
}

// unit maps v into [0,1] over r.
func unit(v float64, r projector.Range) float64 {
	span := r.Span()
	if span == 0 {
		return 0.5
	}
	return (v - r.Min) / span
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
