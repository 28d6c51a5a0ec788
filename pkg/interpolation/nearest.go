// Package interpolation provides initial guesses for masked pixels before
// relaxation starts.
package interpolation

import (
	"gonum.org/v1/gonum/spatial/kdtree"

	"diffinpaint/pkg/imagebuf"
)

// Point2D is a pixel position plus its plane index.
type Point2D struct {
	X, Y  float64
	Index int
}

// Compare implements the kdtree.Comparable interface
func (p Point2D) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(Point2D)
	switch d {
	case 0:
		return p.X - q.X
	case 1:
		return p.Y - q.Y
	default:
		panic("illegal dimension")
	}
}

// Dims returns the number of dimensions for the KD-tree
func (p Point2D) Dims() int { return 2 }

// Distance returns the squared Euclidean distance between two points
func (p Point2D) Distance(c kdtree.Comparable) float64 {
	q := c.(Point2D)
	dx := p.X - q.X
	dy := p.Y - q.Y
	return dx*dx + dy*dy
}

// Points2D is a collection of Point2D that satisfies kdtree.Interface
type Points2D []Point2D

func (p Points2D) Index(i int) kdtree.Comparable         { return p[i] }
func (p Points2D) Len() int                              { return len(p) }
func (p Points2D) Slice(start, end int) kdtree.Interface { return p[start:end] }

// Pivot uses median of medians so that equal inputs always build the same
// tree and distance ties resolve the same way.
func (p Points2D) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(pointPlane{Points2D: p, Dim: d}, kdtree.MedianOfMedians(pointPlane{Points2D: p, Dim: d}))
}

// pointPlane implements sort.Interface and kdtree.SortSlicer for Points2D
type pointPlane struct {
	Points2D
	kdtree.Dim
}

func (p pointPlane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.Points2D[i].X < p.Points2D[j].X
	case 1:
		return p.Points2D[i].Y < p.Points2D[j].Y
	default:
		panic("illegal dimension")
	}
}

func (p pointPlane) Slice(start, end int) kdtree.SortSlicer {
	return pointPlane{Points2D: p.Points2D[start:end], Dim: p.Dim}
}

func (p pointPlane) Swap(i, j int) {
	p.Points2D[i], p.Points2D[j] = p.Points2D[j], p.Points2D[i]
}

// NearestFixed indexes the fixed (unmasked) pixels of a buffer.
type NearestFixed struct {
	tree  *kdtree.Tree
	count int
}

// NewNearestFixed builds the spatial index. It returns nil when buf has no
// fixed pixels.
func NewNearestFixed(buf *imagebuf.Buffer) *NearestFixed {
	points := make(Points2D, 0, buf.Len()-buf.MaskedCount())
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			i := y*buf.Width + x
			if !buf.Mask[i] {
				points = append(points, Point2D{X: float64(x), Y: float64(y), Index: i})
			}
		}
	}
	if len(points) == 0 {
		return nil
	}
	return &NearestFixed{tree: kdtree.New(points, false), count: len(points)}
}

// Len returns the number of indexed pixels.
func (n *NearestFixed) Len() int { return n.count }

// Nearest returns the plane index of the fixed pixel closest to (x, y) and
// its squared distance.
func (n *NearestFixed) Nearest(x, y int) (int, float64) {
	got, dist := n.tree.Nearest(Point2D{X: float64(x), Y: float64(y)})
	return got.(Point2D).Index, dist
}

// SeedNearest copies into every masked pixel the color of its nearest fixed
// pixel, giving the relaxation a warm start instead of black. Fixed pixels
// and the mask are untouched. It returns the number of seeded pixels.
func SeedNearest(buf *imagebuf.Buffer) int {
	idx := NewNearestFixed(buf)
	if idx == nil {
		return 0
	}

	seeded := 0
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			i := y*buf.Width + x
			if !buf.Mask[i] {
				continue
			}
			src, _ := idx.Nearest(x, y)
			buf.SetPixel(i, buf.Pixel(src))
			seeded++
		}
	}
	return seeded
}
