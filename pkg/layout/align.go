package layout

import (
	"math"
	"slices"

	"github.com/matzehuels/flowlayout/pkg/dag"
	"github.com/matzehuels/flowlayout/pkg/errors"
)

// Default snapping parameters.
const (
	DefaultGridSize     = 20
	DefaultSnapDistance = 10
)

// AlignOptions configures [Snap].
type AlignOptions struct {
	SnapToGrid    bool    `json:"snap_to_grid" toml:"snap_to_grid"`
	GridSize      float64 `json:"grid_size" toml:"grid_size"`
	SnapToNodes   bool    `json:"snap_to_nodes" toml:"snap_to_nodes"`
	SnapDistance  float64 `json:"snap_distance" toml:"snap_distance"`
	AlignToEdges  bool    `json:"align_to_edges" toml:"align_to_edges"`
	AlignToCenter bool    `json:"align_to_center" toml:"align_to_center"`
	NodeWidth     float64 `json:"node_width" toml:"node_width"`
	NodeHeight    float64 `json:"node_height" toml:"node_height"`
}

// DefaultAlignOptions enables every snap target.
func DefaultAlignOptions() AlignOptions {
	return AlignOptions{
		SnapToGrid:    true,
		GridSize:      DefaultGridSize,
		SnapToNodes:   true,
		SnapDistance:  DefaultSnapDistance,
		AlignToEdges:  true,
		AlignToCenter: true,
		NodeWidth:     DefaultNodeWidth,
		NodeHeight:    DefaultNodeHeight,
	}
}

func (o AlignOptions) withDefaults() AlignOptions {
	if o.GridSize <= 0 {
		o.GridSize = DefaultGridSize
	}
	if o.SnapDistance < 0 {
		o.SnapDistance = 0
	}
	if o.NodeWidth <= 0 {
		o.NodeWidth = DefaultNodeWidth
	}
	if o.NodeHeight <= 0 {
		o.NodeHeight = DefaultNodeHeight
	}
	return o
}

// Alignment is where a dragged node should land.
type Alignment struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`

	// AlignedTo names the winning snap target: "grid", or
	// "<kind>-<node id>" with kind one of center, top, bottom, left or
	// right. When both axes snap to nodes the closer match wins; ties go
	// to the vertical axis. Empty when nothing snapped.
	AlignedTo string `json:"aligned_to,omitempty"`

	// AlignedX and AlignedY name the node target of each axis.
	AlignedX string `json:"aligned_x,omitempty"`
	AlignedY string `json:"aligned_y,omitempty"`
}

// candidate is one snap target on one axis.
type candidate struct {
	label  string
	offset float64
	value  float64
}

// Snap computes the landing position of dragged among others.
//
// With grid snapping enabled both coordinates are first rounded to the
// nearest grid line. With node snapping enabled, every other node then
// offers candidates per axis (its center, top and bottom edges for y; its
// center, left and right edges for x). A candidate within SnapDistance of
// the dragged node's original position replaces the grid value on that
// axis, and the smallest offset wins per axis. The node itself is skipped
// when it appears in others.
func Snap(dragged *dag.Node, others []*dag.Node, opts AlignOptions) Alignment {
	opts = opts.withDefaults()
	out := Alignment{X: dragged.X, Y: dragged.Y}

	if opts.SnapToGrid {
		out.X = snapValue(out.X, opts.GridSize)
		out.Y = snapValue(out.Y, opts.GridSize)
		out.AlignedTo = "grid"
	}
	if !opts.SnapToNodes {
		return out
	}

	w, h := opts.NodeWidth, opts.NodeHeight
	bestX := candidate{offset: math.Inf(1)}
	bestY := candidate{offset: math.Inf(1)}
	consider := func(best *candidate, label string, offset, value float64) {
		if offset <= opts.SnapDistance && offset < best.offset {
			*best = candidate{label: label, offset: offset, value: value}
		}
	}

	for _, n := range others {
		if n.ID == dragged.ID {
			continue
		}
		if opts.AlignToCenter {
			consider(&bestY, "center-"+n.ID, math.Abs((dragged.Y+h/2)-(n.Y+h/2)), n.Y)
		}
		if opts.AlignToEdges {
			consider(&bestY, "top-"+n.ID, math.Abs(dragged.Y-n.Y), n.Y)
			consider(&bestY, "bottom-"+n.ID, math.Abs((dragged.Y+h)-(n.Y+h)), n.Y)
		}
		if opts.AlignToCenter {
			consider(&bestX, "center-"+n.ID, math.Abs((dragged.X+w/2)-(n.X+w/2)), n.X)
		}
		if opts.AlignToEdges {
			consider(&bestX, "left-"+n.ID, math.Abs(dragged.X-n.X), n.X)
			consider(&bestX, "right-"+n.ID, math.Abs((dragged.X+w)-(n.X+w)), n.X)
		}
	}

	if bestY.label != "" {
		out.Y = bestY.value
		out.AlignedY = bestY.label
		out.AlignedTo = bestY.label
	}
	if bestX.label != "" {
		out.X = bestX.value
		out.AlignedX = bestX.label
		if bestY.label == "" || bestX.offset < bestY.offset {
			out.AlignedTo = bestX.label
		}
	}
	return out
}

func snapValue(v, grid float64) float64 {
	return roundHalfUp(v/grid) * grid
}

// SnapToGrid rounds every node position of g to the nearest multiple of
// size. A non-positive size uses [DefaultGridSize].
func SnapToGrid(g *dag.DAG, size float64) {
	if size <= 0 {
		size = DefaultGridSize
	}
	for _, n := range g.Nodes() {
		n.X = snapValue(n.X, size)
		n.Y = snapValue(n.Y, size)
	}
}

// AlignType selects a bulk alignment.
type AlignType string

const (
	AlignLeft        AlignType = "left"
	AlignRight       AlignType = "right"
	AlignTop         AlignType = "top"
	AlignBottom      AlignType = "bottom"
	AlignCenterX     AlignType = "centerX"
	AlignCenterY     AlignType = "centerY"
	AlignDistributeX AlignType = "distributeX"
	AlignDistributeY AlignType = "distributeY"
)

// AlignTypes lists every supported alignment.
var AlignTypes = []AlignType{
	AlignLeft, AlignRight, AlignTop, AlignBottom,
	AlignCenterX, AlignCenterY, AlignDistributeX, AlignDistributeY,
}

// ParseAlignType validates an alignment name.
func ParseAlignType(s string) (AlignType, error) {
	t := AlignType(s)
	if slices.Contains(AlignTypes, t) {
		return t, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown alignment %q", s)
}

// AlignNodes moves nodes in place. Edge and center alignments line nodes
// up on the selection's extreme or mean; distributions keep the two
// outermost nodes and space the rest evenly between them. Fewer than two
// nodes are left untouched. w and h size the node boxes.
func AlignNodes(nodes []*dag.Node, how AlignType, w, h float64) error {
	if _, err := ParseAlignType(string(how)); err != nil {
		return err
	}
	if len(nodes) < 2 {
		return nil
	}

	switch how {
	case AlignLeft:
		x := math.Inf(1)
		for _, n := range nodes {
			x = min(x, n.X)
		}
		for _, n := range nodes {
			n.X = x
		}
	case AlignRight:
		right := math.Inf(-1)
		for _, n := range nodes {
			right = max(right, n.X+w)
		}
		for _, n := range nodes {
			n.X = right - w
		}
	case AlignTop:
		y := math.Inf(1)
		for _, n := range nodes {
			y = min(y, n.Y)
		}
		for _, n := range nodes {
			n.Y = y
		}
	case AlignBottom:
		bottom := math.Inf(-1)
		for _, n := range nodes {
			bottom = max(bottom, n.Y+h)
		}
		for _, n := range nodes {
			n.Y = bottom - h
		}
	case AlignCenterX:
		sum := 0.0
		for _, n := range nodes {
			sum += n.X + w/2
		}
		avg := sum / float64(len(nodes))
		for _, n := range nodes {
			n.X = avg - w/2
		}
	case AlignCenterY:
		sum := 0.0
		for _, n := range nodes {
			sum += n.Y + h/2
		}
		avg := sum / float64(len(nodes))
		for _, n := range nodes {
			n.Y = avg - h/2
		}
	case AlignDistributeX:
		distribute(nodes, func(n *dag.Node) *float64 { return &n.X })
	case AlignDistributeY:
		distribute(nodes, func(n *dag.Node) *float64 { return &n.Y })
	}
	return nil
}

func distribute(nodes []*dag.Node, coord func(*dag.Node) *float64) {
	sorted := slices.Clone(nodes)
	slices.SortStableFunc(sorted, func(a, b *dag.Node) int {
		av, bv := *coord(a), *coord(b)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	})
	first, last := *coord(sorted[0]), *coord(sorted[len(sorted)-1])
	step := (last - first) / float64(len(sorted)-1)
	for i := 1; i < len(sorted)-1; i++ {
		*coord(sorted[i]) = first + step*float64(i)
	}
}
