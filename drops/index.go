package drops

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// IndexKind selects the nearest-anchor search structure.
type IndexKind string

const (
	// IndexBrute scans every anchor; ties go to the last registered anchor.
	IndexBrute IndexKind = "brute"
	// IndexKDTree uses a 2-d tree with the same tie rule.
	IndexKDTree IndexKind = "kdtree"
)

// Index finds the anchor nearest to a pixel by flat Euclidean distance.
// Implementations must be safe for concurrent reads.
type Index interface {
	Nearest(x, y float64) Anchor
}

// NewIndex builds an index over anchors. anchors must not be empty.
func NewIndex(kind IndexKind, anchors []Anchor) (Index, error) {
	if len(anchors) == 0 {
		return nil, fmt.Errorf("no anchors to index")
	}
	switch kind {
	case IndexBrute, "":
		return BruteIndex(anchors), nil
	case IndexKDTree:
		return NewKDIndex(anchors), nil
	default:
		return nil, fmt.Errorf("unknown index kind %q", kind)
	}
}

// BruteIndex is the O(anchors) reference search.
type BruteIndex []Anchor

// Nearest implements Index.
func (b BruteIndex) Nearest(x, y float64) Anchor {
	best := math.Inf(1)
	var found Anchor
	for i := len(b) - 1; i >= 0; i-- {
		dx, dy := x-b[i].X, y-b[i].Y
		if d := dx*dx + dy*dy; d < best {
			best = d
			found = b[i]
		}
	}
	return found
}

// KDIndex answers nearest queries with a gonum k-d tree. Ties resolve the
// same way as BruteIndex, so the two produce identical fields.
type KDIndex struct {
	tree *kdtree.Tree
}

// NewKDIndex builds a tree over a copy of anchors.
func NewKDIndex(anchors []Anchor) *KDIndex {
	pts := make(anchorPoints, len(anchors))
	for i, a := range anchors {
		pts[i] = anchorPoint{Anchor: a, order: i}
	}
	return &KDIndex{tree: kdtree.New(pts, false)}
}

// Nearest implements Index.
func (k *KDIndex) Nearest(x, y float64) Anchor {
	q := anchorPoint{Anchor: Anchor{X: x, Y: y}}
	c, d := k.tree.Nearest(q)
	if c == nil {
		return Anchor{}
	}

	// Collect every anchor at the best distance and keep the last
	// registered one.
	keep := kdtree.NewDistKeeper(d)
	k.tree.NearestSet(keep, q)
	best := c.(anchorPoint)
	for _, cd := range keep.Heap {
		if cd.Comparable == nil {
			continue
		}
		if p := cd.Comparable.(anchorPoint); cd.Dist == d && p.order > best.order {
			best = p
		}
	}
	return best.Anchor
}

// anchorPoint is an anchor with its registration order.
type anchorPoint struct {
	Anchor
	order int
}

func (p anchorPoint) coord(d kdtree.Dim) float64 {
	if d == 0 {
		return p.X
	}
	return p.Y
}

// Compare implements kdtree.Comparable.
func (p anchorPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return p.coord(d) - c.(anchorPoint).coord(d)
}

// Dims implements kdtree.Comparable.
func (p anchorPoint) Dims() int { return 2 }

// Distance implements kdtree.Comparable; it is the squared distance.
func (p anchorPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(anchorPoint)
	dx, dy := p.X-q.X, p.Y-q.Y
	return dx*dx + dy*dy
}
type anchorPoints []anchorPoint

func (p anchorPoints) Index(i int) kdtree.Comparable { return p[i] }
func (p anchorPoints) Len() int                      { return len(p) }
func (p anchorPoints) Slice(start, end int) kdtree.Interface {
	return p[start:end]
}
func (p anchorPoints) Pivot(d kdtree.Dim) int {
	return anchorPlane{dim: d, pts: p}.Pivot()
}

// anchorPlane orders anchors along one dimension for median partitioning.
type anchorPlane struct {
	dim kdtree.Dim
	pts anchorPoints
}

func (p anchorPlane) Len() int { return len(p.pts) }
func (p anchorPlane) Less(i, j int) bool {
	return p.pts[i].coord(p.dim) < p.pts[j].coord(p.dim)
}
func (p anchorPlane) Swap(i, j int) { p.pts[i], p.pts[j] = p.pts[j], p.pts[i] }
func (p anchorPlane) Slice(start, end int) kdtree.SortSlicer {
	return anchorPlane{dim: p.dim, pts: p.pts[start:end]}
}
func (p anchorPlane) Pivot() int {
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}
