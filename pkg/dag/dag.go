package dag

import (
	"errors"
	"maps"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [DAG.AddNode] and [DAG.RenameNode] when
	// the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [DAG.AddNode] and [DAG.RenameNode] when
	// a node with the same ID already exists in the graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [DAG.AddEdge] when the From node
	// does not exist, or by [DAG.RenameNode] when the old ID is not found.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [DAG.AddEdge] when the To node
	// does not exist in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrDuplicateEdge is returned by [DAG.AddEdge] when the same
	// dependency is added twice.
	ErrDuplicateEdge = errors.New("duplicate edge")

	// ErrGraphHasCycle is returned by [DAG.Validate] when a cycle is detected.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// Metadata stores arbitrary key-value pairs attached to nodes or the graph.
// Metadata maps are never nil after AddNode or New.
type Metadata map[string]any

// Point is a position on the canvas. Y grows downward.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Node is the visual counterpart of a task.
//
// X and Y are the node's top-left corner on the canvas. Index is the
// node's position in document order and is maintained by the graph.
type Node struct {
	ID          string
	Label       string
	ActionName  string
	Color       string
	TextColor   string
	X, Y        float64
	InputCount  int
	OutputCount int
	TimeoutSecs int
	Index       int
	Meta        Metadata
}

// Pos returns the node position as a [Point].
func (n *Node) Pos() Point { return Point{X: n.X, Y: n.Y} }

// EdgeType distinguishes plain dependencies from gated ones.
type EdgeType string

const (
	EdgeNormal      EdgeType = "normal"
	EdgeConditional EdgeType = "conditional"
)

// Condition annotates an edge whose target task is gated by a pre-check.
type Condition struct {
	Type         EdgeType         `json:"type" bson:"type"`
	Label        string           `json:"label,omitempty" bson:"label,omitempty"`
	CheckName    string           `json:"check_name,omitempty" bson:"check_name,omitempty"`
	ActiveAction string           `json:"active_action,omitempty" bson:"active_action,omitempty"`
	Conditions   []map[string]any `json:"conditions,omitempty" bson:"conditions,omitempty"`
}

// Edge is a directed dependency edge. From is the dependency and To is the
// dependent task, so edges point in execution order.
type Edge struct {
	ID        string
	From      string
	To        string
	Label     string
	Condition *Condition
}

// EdgeID returns the canonical id of the edge from -> to.
func EdgeID(from, to string) string { return from + "->" + to }

// Conditional reports whether the edge is gated by a pre-check.
func (e Edge) Conditional() bool {
	return e.Condition != nil && e.Condition.Type == EdgeConditional
}

// DAG is a directed graph of workflow nodes. Despite the name it may
// contain cycles when the source document does; [DAG.Validate] and
// [DAG.FindCycle] report them.
//
// Nodes and edges keep insertion order, so every traversal (and therefore
// every layout) is deterministic for a given document.
//
// The zero value is not usable - use New to create a valid DAG instance.
// DAG is not safe for concurrent use without external synchronization.
type DAG struct {
	order    []*Node
	nodes    map[string]*Node
	edges    []Edge
	outgoing map[string][]string // nodeID -> children IDs
	incoming map[string][]string // nodeID -> parent IDs
	meta     Metadata
}

// New creates an empty DAG with optional graph-level metadata.
func New(meta Metadata) *DAG {
	if meta == nil {
		meta = Metadata{}
	}
	return &DAG{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		meta:     meta,
	}
}

// Clone returns an independent copy of the graph. Node metadata maps are
// copied shallowly.
func (d *DAG) Clone() *DAG {
	c := New(maps.Clone(d.meta))
	for _, n := range d.order {
		cp := *n
		cp.Meta = maps.Clone(n.Meta)
		_ = c.AddNode(cp)
	}
	for _, e := range d.edges {
		if e.Condition != nil {
			cond := *e.Condition
			e.Condition = &cond
		}
		_ = c.AddEdge(e)
	}
	return c
}

// Meta returns the graph-level metadata map.
func (d *DAG) Meta() Metadata { return d.meta }

// AddNode appends a node. Returns ErrInvalidNodeID if the node ID is
// empty, or ErrDuplicateNodeID if a node with the same ID already exists.
func (d *DAG) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := d.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	n.Index = len(d.order)
	node := &n
	d.nodes[node.ID] = node
	d.order = append(d.order, node)
	return nil
}

// AddEdge adds a directed edge between two existing nodes. An empty ID is
// filled in with [EdgeID]. Returns ErrUnknownSourceNode or
// ErrUnknownTargetNode for missing endpoints and ErrDuplicateEdge when the
// pair is already connected.
func (d *DAG) AddEdge(e Edge) error {
	if _, ok := d.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := d.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	if slices.Contains(d.outgoing[e.From], e.To) {
		return ErrDuplicateEdge
	}
	if e.ID == "" {
		e.ID = EdgeID(e.From, e.To)
	}
	d.edges = append(d.edges, e)
	d.outgoing[e.From] = append(d.outgoing[e.From], e.To)
	d.incoming[e.To] = append(d.incoming[e.To], e.From)
	return nil
}

// RemoveEdge removes the edge from→to if it exists.
func (d *DAG) RemoveEdge(from, to string) {
	d.edges = slices.DeleteFunc(d.edges, func(e Edge) bool { return e.From == from && e.To == to })
	d.outgoing[from] = slices.DeleteFunc(d.outgoing[from], func(s string) bool { return s == to })
	d.incoming[to] = slices.DeleteFunc(d.incoming[to], func(s string) bool { return s == from })
}

// RemoveNode deletes a node and every edge touching it. It reports whether
// the node existed.
func (d *DAG) RemoveNode(id string) bool {
	if _, ok := d.nodes[id]; !ok {
		return false
	}
	for _, child := range slices.Clone(d.outgoing[id]) {
		d.RemoveEdge(id, child)
	}
	for _, parent := range slices.Clone(d.incoming[id]) {
		d.RemoveEdge(parent, id)
	}
	delete(d.nodes, id)
	delete(d.outgoing, id)
	delete(d.incoming, id)
	d.order = slices.DeleteFunc(d.order, func(n *Node) bool { return n.ID == id })
	for i, n := range d.order {
		n.Index = i
	}
	return true
}

// RenameNode changes a node's ID, updating all edges and indices. Edge IDs
// derived from the old node ID are regenerated.
func (d *DAG) RenameNode(oldID, newID string) error {
	if newID == "" {
		return ErrInvalidNodeID
	}
	node, ok := d.nodes[oldID]
	if !ok {
		return ErrUnknownSourceNode
	}
	if oldID == newID {
		return nil
	}
	if _, exists := d.nodes[newID]; exists {
		return ErrDuplicateNodeID
	}

	node.ID = newID
	delete(d.nodes, oldID)
	d.nodes[newID] = node

	for i := range d.edges {
		e := &d.edges[i]
		if e.From != oldID && e.To != oldID {
			continue
		}
		derived := e.ID == EdgeID(e.From, e.To)
		if e.From == oldID {
			e.From = newID
		}
		if e.To == oldID {
			e.To = newID
		}
		if derived {
			e.ID = EdgeID(e.From, e.To)
		}
	}

	d.outgoing[newID] = d.outgoing[oldID]
	delete(d.outgoing, oldID)
	for id, targets := range d.outgoing {
		for i, t := range targets {
			if t == oldID {
				d.outgoing[id][i] = newID
			}
		}
	}

	d.incoming[newID] = d.incoming[oldID]
	delete(d.incoming, oldID)
	for id, sources := range d.incoming {
		for i, s := range sources {
			if s == oldID {
				d.incoming[id][i] = newID
			}
		}
	}

	return nil
}

// Nodes returns all nodes in insertion order. The slice is a copy but the
// nodes are the graph's own, so modifications affect the graph.
func (d *DAG) Nodes() []*Node { return slices.Clone(d.order) }

// Edges returns a copy of all edges in insertion order.
func (d *DAG) Edges() []Edge { return slices.Clone(d.edges) }

// Edge returns the edge from -> to.
func (d *DAG) Edge(from, to string) (Edge, bool) {
	for _, e := range d.edges {
		if e.From == from && e.To == to {
			return e, true
		}
	}
	return Edge{}, false
}

// NodeCount returns the number of nodes in the graph.
func (d *DAG) NodeCount() int { return len(d.order) }

// EdgeCount returns the number of edges in the graph.
func (d *DAG) EdgeCount() int { return len(d.edges) }

// Children returns the IDs of the dependent nodes (edge targets).
// The returned slice should not be modified.
func (d *DAG) Children(id string) []string { return d.outgoing[id] }

// Parents returns the IDs of the node's dependencies (edge sources).
// The returned slice should not be modified.
func (d *DAG) Parents(id string) []string { return d.incoming[id] }

// OutDegree returns the number of outgoing edges from the node.
func (d *DAG) OutDegree(id string) int { return len(d.outgoing[id]) }

// InDegree returns the number of incoming edges to the node.
func (d *DAG) InDegree(id string) int { return len(d.incoming[id]) }

// Node returns the node with the given ID and true, or nil and false if not found.
func (d *DAG) Node(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// Sources returns nodes with no incoming edges, in insertion order.
func (d *DAG) Sources() []*Node {
	var sources []*Node
	for _, n := range d.order {
		if len(d.incoming[n.ID]) == 0 {
			sources = append(sources, n)
		}
	}
	return sources
}

// Sinks returns nodes with no outgoing edges, in insertion order.
func (d *DAG) Sinks() []*Node {
	var sinks []*Node
	for _, n := range d.order {
		if len(d.outgoing[n.ID]) == 0 {
			sinks = append(sinks, n)
		}
	}
	return sinks
}

// Positions returns every node's position keyed by ID.
func (d *DAG) Positions() map[string]Point {
	m := make(map[string]Point, len(d.order))
	for _, n := range d.order {
		m[n.ID] = n.Pos()
	}
	return m
}

// SetPositions moves the nodes named in pos. Unknown IDs are ignored.
func (d *DAG) SetPositions(pos map[string]Point) {
	for id, p := range pos {
		if n, ok := d.nodes[id]; ok {
			n.X, n.Y = p.X, p.Y
		}
	}
}

// Validate returns ErrGraphHasCycle if the graph contains a directed
// cycle and nil otherwise.
func (d *DAG) Validate() error {
	if d.FindCycle() != nil {
		return ErrGraphHasCycle
	}
	return nil
}

// FindCycle returns the node IDs of one directed cycle, starting and
// ending at the same node, or nil if the graph is acyclic. The search is a
// depth-first traversal with white/gray/black coloring in insertion order.
func (d *DAG) FindCycle() []string {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(d.nodes))
	var stack []string
	var cycle []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		color[id] = gray
		stack = append(stack, id)
		for _, child := range d.outgoing[id] {
			switch color[child] {
			case white:
				if dfs(child) {
					return true
				}
			case gray:
				start := slices.Index(stack, child)
				cycle = append(slices.Clone(stack[start:]), child)
				return true
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
		return false
	}

	for _, n := range d.order {
		if color[n.ID] == white && dfs(n.ID) {
			return cycle
		}
	}
	return nil
}

// PosMap creates a position lookup map from a slice of node IDs.
// The returned map maps each ID to its index in the slice.
func PosMap(ids []string) map[string]int {
	m := make(map[string]int, len(ids))
	for i, id := range ids {
		m[id] = i
	}
	return m
}

// NodeIDs extracts the ID from each node in a slice.
func NodeIDs(nodes []*Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
