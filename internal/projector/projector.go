// ABOUTME: Reduces a batch of embedding vectors to 2D or 3D points for plotting.
// ABOUTME: PCA projection with a raw-component fallback for degenerate batches.
package projector

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/2389-research/asksee/internal/models"
)

// MinPoints is the smallest batch a projection is defined for.
const MinPoints = 2

// PaddingRatio is the margin added on each side of an axis range.
const PaddingRatio = 0.1

// spreadTolerance is the relative spread below which an axis counts as collapsed.
const spreadTolerance = 1e-9

// ErrNeedMoreData is returned when fewer than MinPoints usable vectors exist.
var ErrNeedMoreData = errors.New("need at least 2 points")

// Point is a projected coordinate. Z is zero for 2D projections.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Range is an inclusive axis range.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Span returns Max - Min.
func (r Range) Span() float64 {
	return r.Max - r.Min
}

// Projection is the result of projecting a batch of embeddings.
type Projection struct {
	Dims     int
	Points   []Point
	Items    []models.EmbeddingItem
	Hover    []string
	X        Range
	Y        Range
	Z        Range
	Fallback bool
	Total    int
}

// Len returns the number of projected points.
func (p *Projection) Len() int {
	return len(p.Points)
}

// Valid filters items to those with usable vectors, preserving order.
func Valid(items []models.EmbeddingItem) []models.EmbeddingItem {
	valid := make([]models.EmbeddingItem, 0, len(items))
	for _, it := range items {
		if it.Usable() {
			valid = append(valid, it)
		}
	}
	return valid
}

// NormalizeDims maps anything other than 3 to 2.
func NormalizeDims(dims int) int {
	if dims == 3 {
		return 3
	}
	return 2
}

// Project filters items, runs PCA and falls back to raw components when the
// PCA output is degenerate. It returns ErrNeedMoreData when fewer than
// MinPoints usable vectors remain.
func Project(items []models.EmbeddingItem, dims int) (*Projection, error) {
	k := NormalizeDims(dims)
	valid := Valid(items)
	if len(valid) < MinPoints {
		return nil, fmt.Errorf("%w: have %d", ErrNeedMoreData, len(valid))
	}

	matrix := make([][]float64, len(valid))
	for i, it := range valid {
		matrix[i] = it.Embedding
	}

	coords, ok := PCA(matrix, k)
	fallback := !ok || Degenerate(coords)
	if fallback {
		coords = Raw(matrix, k)
	}

	p := &Projection{
		Dims:     k,
		Points:   make([]Point, len(coords)),
		Items:    valid,
		Hover:    make([]string, len(valid)),
		Fallback: fallback,
		Total:    len(items),
	}
	xs := make([]float64, len(coords))
	ys := make([]float64, len(coords))
	zs := make([]float64, len(coords))
	for i, row := range coords {
		pt := Point{X: row[0], Y: row[1]}
		if k == 3 {
			pt.Z = row[2]
		}
		p.Points[i] = pt
		xs[i], ys[i], zs[i] = pt.X, pt.Y, pt.Z
		p.Hover[i] = HoverText(valid[i])
	}
	p.X = AxisRange(xs)
	p.Y = AxisRange(ys)
	p.Z = AxisRange(zs)
	return p, nil
}

// PCA projects the rows of matrix onto their first k principal components
// (mean-centered, unscaled). Rows longer than the shortest row are truncated.
// Components beyond those the data supports are left at zero. ok is false
// when the decomposition fails.
func PCA(matrix [][]float64, k int) (coords [][]float64, ok bool) {
	n := len(matrix)
	if n == 0 {
		return nil, false
	}
	d := len(matrix[0])
	for _, row := range matrix[1:] {
		if len(row) < d {
			d = len(row)
		}
	}
	if d == 0 {
		return nil, false
	}

	defer func() {
		if r := recover(); r != nil {
			coords, ok = nil, false
		}
	}()

	means := make([]float64, d)
	for _, row := range matrix {
		for j := 0; j < d; j++ {
			means[j] += row[j]
		}
	}
	for j := range means {
		means[j] /= float64(n)
	}

	centered := mat.NewDense(n, d, nil)
	for i, row := range matrix {
		for j := 0; j < d; j++ {
			centered.Set(i, j, row[j]-means[j])
		}
	}

	var pc stat.PC
	if !pc.PrincipalComponents(centered, nil) {
		return nil, false
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	_, nvec := vecs.Dims()

	kk := k
	if kk > nvec {
		kk = nvec
	}
	var proj mat.Dense
	proj.Mul(centered, vecs.Slice(0, d, 0, kk))

	coords = make([][]float64, n)
	for i := range coords {
		coords[i] = make([]float64, k)
		for j := 0; j < kk; j++ {
			coords[i][j] = proj.At(i, j)
		}
	}
	return coords, true
}

// Degenerate reports whether coords contain non-finite values or have no
// spread on the first or second axis.
func Degenerate(coords [][]float64) bool {
	if len(coords) == 0 {
		return true
	}
	var maxAbs float64
	for _, row := range coords {
		if len(row) < 2 {
			return true
		}
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return true
			}
			if a := math.Abs(v); a > maxAbs {
				maxAbs = a
			}
		}
	}
	for axis := 0; axis < 2; axis++ {
		lo, hi := coords[0][axis], coords[0][axis]
		for _, row := range coords[1:] {
			lo = math.Min(lo, row[axis])
			hi = math.Max(hi, row[axis])
		}
		spread := hi - lo
		if spread == 0 || spread <= spreadTolerance*maxAbs {
			return true
		}
	}
	return false
}

// Raw is the fallback projection: each vector's first two components, with
// the third forced to zero when k is 3.
func Raw(matrix [][]float64, k int) [][]float64 {
	out := make([][]float64, len(matrix))
	for i, row := range matrix {
		out[i] = make([]float64, k)
		out[i][0] = row[0]
		out[i][1] = row[1]
	}
	return out
}

// AxisRange returns [min - pad, max + pad] where pad is PaddingRatio of the
// spread, or of 1 when the spread is zero.
func AxisRange(vals []float64) Range {
	if len(vals) == 0 {
		return Range{Min: -PaddingRatio, Max: PaddingRatio}
	}
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	spread := hi - lo
	if spread == 0 {
		spread = 1
	}
	pad := spread * PaddingRatio
	return Range{Min: lo - pad, Max: hi + pad}
}

// HoverText builds the label shown for a point: title or source, then the
// text preview on its own line.
func HoverText(it models.EmbeddingItem) string {
	label := it.Label()
	if it.Text != "" {
		return label + "\n" + it.Text
	}
	return label
}

// Summary is a short human-readable description of the projection.
func (p *Projection) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d points (%dD", len(p.Points), p.Dims)
	if p.Fallback {
		b.WriteString(", raw-component fallback")
	} else {
		b.WriteString(", PCA")
	}
	b.WriteString(")")
	if p.Total > len(p.Points) {
		fmt.Fprintf(&b, ", %d skipped", p.Total-len(p.Points))
	}
	return b.String()
}
