package layout

import (
	"math"

	"github.com/matzehuels/flowlayout/pkg/dag"
)

// parallelEpsilon is the determinant below which two segments are treated
// as parallel and therefore non-intersecting.
const parallelEpsilon = 1e-10

// SegmentsIntersect reports whether segment a1-a2 intersects segment b1-b2,
// endpoints included. Parallel and collinear segments never intersect.
func SegmentsIntersect(a1, a2, b1, b2 dag.Point) bool {
	x1, y1 := a1.X, a1.Y
	x2, y2 := a2.X, a2.Y
	x3, y3 := b1.X, b1.Y
	x4, y4 := b2.X, b2.Y

	denom := (x1-x2)*(y3-y4) - (y1-y2)*(x3-x4)
	if math.Abs(denom) < parallelEpsilon {
		return false
	}

	t := ((x1-x3)*(y3-y4) - (y1-y3)*(x3-x4)) / denom
	u := -((x1-x2)*(y1-y3) - (y1-y2)*(x1-x3)) / denom

	return t >= 0 && t <= 1 && u >= 0 && u <= 1
}

// Rect is an axis-aligned box with its top-left corner at (X, Y).
type Rect struct {
	X, Y, W, H float64
}

// NodeRect returns the box of a node of the given size.
func NodeRect(n *dag.Node, w, h float64) Rect {
	return Rect{X: n.X, Y: n.Y, W: w, H: h}
}

// Center returns the center of the box.
func (r Rect) Center() dag.Point {
	return dag.Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// sides returns the four sides clockwise from the top.
func (r Rect) sides() [4][2]dag.Point {
	tl := dag.Point{X: r.X, Y: r.Y}
	tr := dag.Point{X: r.X + r.W, Y: r.Y}
	br := dag.Point{X: r.X + r.W, Y: r.Y + r.H}
	bl := dag.Point{X: r.X, Y: r.Y + r.H}
	return [4][2]dag.Point{{tl, tr}, {tr, br}, {br, bl}, {bl, tl}}
}

// EdgeCrossesRect reports whether the segment start-end touches any side
// of r. A segment lying entirely inside r does not count.
func EdgeCrossesRect(start, end dag.Point, r Rect) bool {
	for _, side := range r.sides() {
		if SegmentsIntersect(start, end, side[0], side[1]) {
			return true
		}
	}
	return false
}

// Box is the bounding box of a set of nodes.
type Box struct {
	MinX   float64 `json:"min_x"`
	MinY   float64 `json:"min_y"`
	MaxX   float64 `json:"max_x"`
	MaxY   float64 `json:"max_y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Bounds returns the bounding box of nodes sized w×h. An empty slice has
// an all-zero box.
func Bounds(nodes []*dag.Node, w, h float64) Box {
	if len(nodes) == 0 {
		return Box{}
	}
	b := Box{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
	for _, n := range nodes {
		b.MinX = min(b.MinX, n.X)
		b.MinY = min(b.MinY, n.Y)
		b.MaxX = max(b.MaxX, n.X+w)
		b.MaxY = max(b.MaxY, n.Y+h)
	}
	b.Width = b.MaxX - b.MinX
	b.Height = b.MaxY - b.MinY
	return b
}

// roundHalfUp rounds to the nearest integer with halves rounded toward
// positive infinity, so -2.5 becomes -2. Browser clients round the same
// way, which keeps server and client snapping identical.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
