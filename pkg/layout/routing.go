package layout

import (
	"math"

	"github.com/matzehuels/flowlayout/pkg/dag"
	"github.com/matzehuels/flowlayout/pkg/palette"
)

// Side is a connection side of a node box.
type Side string

const (
	SideTop    Side = "top"
	SideBottom Side = "bottom"
	SideLeft   Side = "left"
	SideRight  Side = "right"
)

// Sides returns the source and target sides edges use in a layout
// direction: bottom to top for TB, right to left for LR.
func Sides(dir Direction) (source, target Side) {
	if dir == LeftRight {
		return SideRight, SideLeft
	}
	return SideBottom, SideTop
}

// ConnectionPoint returns the midpoint of the given side of a w×h box at
// the node's position. Unknown sides yield the box center.
func ConnectionPoint(n *dag.Node, side Side, w, h float64) dag.Point {
	switch side {
	case SideTop:
		return dag.Point{X: n.X + w/2, Y: n.Y}
	case SideBottom:
		return dag.Point{X: n.X + w/2, Y: n.Y + h}
	case SideLeft:
		return dag.Point{X: n.X, Y: n.Y + h/2}
	case SideRight:
		return dag.Point{X: n.X + w, Y: n.Y + h/2}
	}
	return dag.Point{X: n.X + w/2, Y: n.Y + h/2}
}

// curveIntensity scales the control-point offset of smooth paths.
const curveIntensity = 0.3

// SmoothPath returns a cubic Bézier from start to end as four points:
// start, two control points, end. Control points leave and enter along the
// connection sides for right→left and bottom→top connections.
func SmoothPath(start, end dag.Point, from, to Side) []dag.Point {
	dx, dy := end.X-start.X, end.Y-start.Y
	offset := max(math.Abs(dx), math.Abs(dy)) * curveIntensity

	var c1, c2 dag.Point
	switch {
	case from == SideRight && to == SideLeft:
		c1 = dag.Point{X: start.X + offset, Y: start.Y}
		c2 = dag.Point{X: end.X - offset, Y: end.Y}
	case from == SideBottom && to == SideTop:
		c1 = dag.Point{X: start.X, Y: start.Y + offset}
		c2 = dag.Point{X: end.X, Y: end.Y - offset}
	default:
		c1 = dag.Point{X: start.X + dx*curveIntensity, Y: start.Y + dy*0.1}
		c2 = dag.Point{X: end.X - dx*curveIntensity, Y: end.Y - dy*0.1}
	}
	return []dag.Point{start, c1, c2, end}
}

// MidPoint approximates the middle of a path. Two- and four-point paths
// use the midpoint of their endpoints; longer paths use the middle vertex.
func MidPoint(path []dag.Point) dag.Point {
	switch len(path) {
	case 0:
		return dag.Point{}
	case 2:
		return dag.Point{X: (path[0].X + path[1].X) / 2, Y: (path[0].Y + path[1].Y) / 2}
	case 4:
		return dag.Point{X: (path[0].X + path[3].X) / 2, Y: (path[0].Y + path[3].Y) / 2}
	}
	return path[len(path)/2]
}

// PathsOverlap reports whether the midpoints of two paths are closer than
// threshold.
func PathsOverlap(a, b []dag.Point, threshold float64) bool {
	ma, mb := MidPoint(a), MidPoint(b)
	return math.Hypot(ma.X-mb.X, ma.Y-mb.Y) < threshold
}

// OffsetPath shifts a path perpendicular to its start-end direction so
// that count parallel paths fan out symmetrically, spaced distance apart.
// Degenerate paths are returned unchanged.
func OffsetPath(path []dag.Point, distance float64, index, count int) []dag.Point {
	if len(path) < 2 {
		return path
	}
	start, end := path[0], path[len(path)-1]
	dx, dy := end.X-start.X, end.Y-start.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return path
	}
	perpX, perpY := -dy/length, dx/length
	shift := (float64(index) - float64(count-1)/2) * distance

	out := make([]dag.Point, len(path))
	for i, p := range path {
		out[i] = dag.Point{X: p.X + perpX*shift, Y: p.Y + perpY*shift}
	}
	return out
}

// EdgeOptions configures [RouteEdges].
type EdgeOptions struct {
	Direction  Direction `json:"direction"`
	Offset     float64   `json:"offset"`
	Threshold  float64   `json:"threshold"`
	Enhance    bool      `json:"enhance"`
	NodeWidth  float64   `json:"node_width"`
	NodeHeight float64   `json:"node_height"`
}

// DefaultEdgeOptions returns the editor's edge routing defaults.
func DefaultEdgeOptions() EdgeOptions {
	return EdgeOptions{
		Direction:  TopBottom,
		Offset:     30,
		Threshold:  15,
		Enhance:    true,
		NodeWidth:  DefaultNodeWidth,
		NodeHeight: DefaultNodeHeight,
	}
}

// RoutedEdge is a drawing hint for one edge.
type RoutedEdge struct {
	EdgeID      string      `json:"edge_id"`
	Source      string      `json:"source"`
	Target      string      `json:"target"`
	Path        []dag.Point `json:"path"`
	Overlapping bool        `json:"overlapping"`
	GroupIndex  int         `json:"group_index"`
	GroupSize   int         `json:"group_size"`
	Stroke      string      `json:"stroke"`
	StrokeWidth float64     `json:"stroke_width"`
	Opacity     float64     `json:"opacity"`
	Dashed      bool        `json:"dashed"`
}

// RouteEdges computes a smooth path for every edge and fans out edges
// whose midpoints nearly coincide. Groups form greedily in edge order:
// each ungrouped edge collects every later ungrouped edge overlapping it.
// With Enhance set, grouped edges also get distinct colors, growing
// stroke widths and dashes after the first.
func RouteEdges(g *dag.DAG, opts EdgeOptions) []RoutedEdge {
	d := DefaultEdgeOptions()
	if opts.NodeWidth <= 0 {
		opts.NodeWidth = d.NodeWidth
	}
	if opts.NodeHeight <= 0 {
		opts.NodeHeight = d.NodeHeight
	}
	from, to := Sides(opts.Direction)

	var routes []RoutedEdge
	for _, e := range g.Edges() {
		src, okS := g.Node(e.From)
		dst, okD := g.Node(e.To)
		if !okS || !okD {
			continue
		}
		start := ConnectionPoint(src, from, opts.NodeWidth, opts.NodeHeight)
		end := ConnectionPoint(dst, to, opts.NodeWidth, opts.NodeHeight)
		routes = append(routes, RoutedEdge{
			EdgeID:      e.ID,
			Source:      e.From,
			Target:      e.To,
			Path:        SmoothPath(start, end, from, to),
			GroupSize:   1,
			Stroke:      palette.EdgeColor(0),
			StrokeWidth: 2,
			Opacity:     0.8,
		})
	}

	grouped := make([]bool, len(routes))
	for i := range routes {
		if grouped[i] {
			continue
		}
		group := []int{i}
		for j := i + 1; j < len(routes); j++ {
			if !grouped[j] && PathsOverlap(routes[i].Path, routes[j].Path, opts.Threshold) {
				group = append(group, j)
				grouped[j] = true
			}
		}
		grouped[i] = true
		if len(group) < 2 {
			continue
		}

		for k, idx := range group {
			r := &routes[idx]
			r.Path = OffsetPath(r.Path, opts.Offset, k, len(group))
			r.Overlapping = true
			r.GroupIndex = k
			r.GroupSize = len(group)
			if opts.Enhance {
				r.Stroke = palette.EdgeColor(k)
				r.StrokeWidth = 2.5 + float64(k)*0.5
				r.Opacity = 0.9
				r.Dashed = k > 0
			}
		}
	}
	return routes
}
