package graph

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/flowlayout/pkg/dag"
	"github.com/matzehuels/flowlayout/pkg/workflow"
)

// Node types as seen by the browser editor.
const (
	NodeTypeTask = "task"
	EdgeTypeStep = "smoothstep"
)

// =============================================================================
// Graph - Visual Graph Serialization
// =============================================================================

// Graph is the canonical serialization format for visual workflow graphs.
// It is what the HTTP API returns and what the layout cache stores.
//
// Nodes and edges keep document order, so the same document always
// serializes to the same bytes (apart from Metadata.ProcessedAt).
type Graph struct {
	Nodes    []Node      `json:"nodes" bson:"nodes"`
	Edges    []Edge      `json:"edges" bson:"edges"`
	Metadata dag.Summary `json:"metadata" bson:"metadata"`
}

// =============================================================================
// Node
// =============================================================================

// Node is a positioned task box.
type Node struct {
	ID          string         `json:"id" bson:"id"`
	Type        string         `json:"type" bson:"type"`
	Position    dag.Point      `json:"position" bson:"position"`
	Label       string         `json:"label" bson:"label"`
	ActionName  string         `json:"action_name" bson:"action_name"`
	Color       string         `json:"color,omitempty" bson:"color,omitempty"`
	TextColor   string         `json:"text_color,omitempty" bson:"text_color,omitempty"`
	InputCount  int            `json:"input_count" bson:"input_count"`
	OutputCount int            `json:"output_count" bson:"output_count"`
	TimeoutSecs int            `json:"timeout_secs,omitempty" bson:"timeout_secs,omitempty"`
	Task        *workflow.Task `json:"task,omitempty" bson:"task,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// =============================================================================
// Edge
// =============================================================================

// Edge is a dependency between two nodes. Source is the dependency and
// Target the dependent task.
type Edge struct {
	ID        string         `json:"id" bson:"id"`
	Source    string         `json:"source" bson:"source"`
	Target    string         `json:"target" bson:"target"`
	Type      string         `json:"type" bson:"type"`
	Animated  bool           `json:"animated,omitempty" bson:"animated,omitempty"`
	Label     string         `json:"label,omitempty" bson:"label,omitempty"`
	Condition *dag.Condition `json:"condition,omitempty" bson:"condition,omitempty"`
}

// =============================================================================
// DAG ↔ Graph Conversion
// =============================================================================

// FromDAG converts a DAG to its serialization format. Conditional edges
// are marked animated so editors can tell them apart.
func FromDAG(g *dag.DAG) Graph {
	nodes := g.Nodes()
	edges := g.Edges()

	out := Graph{
		Nodes:    make([]Node, len(nodes)),
		Edges:    make([]Edge, len(edges)),
		Metadata: g.Summary(),
	}
	for i, n := range nodes {
		out.Nodes[i] = nodeFromDAG(n)
	}
	for i, e := range edges {
		out.Edges[i] = Edge{
			ID:        e.ID,
			Source:    e.From,
			Target:    e.To,
			Type:      EdgeTypeStep,
			Animated:  e.Conditional(),
			Label:     e.Label,
			Condition: e.Condition,
		}
	}
	return out
}

// ToDAG converts a Graph back to a DAG.
// Returns an error if a node id repeats or an edge names a missing node.
func ToDAG(gj Graph) (*dag.DAG, error) {
	d := dag.New(nil)

	for _, nj := range gj.Nodes {
		n := dag.Node{
			ID:          nj.ID,
			Label:       nj.DisplayLabel(),
			ActionName:  nj.ActionName,
			Color:       nj.Color,
			TextColor:   nj.TextColor,
			X:           nj.Position.X,
			Y:           nj.Position.Y,
			InputCount:  nj.InputCount,
			OutputCount: nj.OutputCount,
			TimeoutSecs: nj.TimeoutSecs,
		}
		if nj.Task != nil {
			n.Meta = dag.Metadata{dag.MetaTask: *nj.Task}
		}
		if err := d.AddNode(n); err != nil {
			return nil, fmt.Errorf("add node %s: %w", nj.ID, err)
		}
	}

	for _, ej := range gj.Edges {
		e := dag.Edge{ID: ej.ID, From: ej.Source, To: ej.Target, Label: ej.Label, Condition: ej.Condition}
		if err := d.AddEdge(e); err != nil {
			return nil, fmt.Errorf("add edge %s→%s: %w", ej.Source, ej.Target, err)
		}
	}

	return d, nil
}

// UnmarshalGraph deserializes JSON bytes to a Graph.
func UnmarshalGraph(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, err
	}
	return g, nil
}

// Positions returns every node's position keyed by id.
func (g Graph) Positions() map[string]dag.Point {
	out := make(map[string]dag.Point, len(g.Nodes))
	for _, n := range g.Nodes {
		out[n.ID] = n.Position
	}
	return out
}

// nodeFromDAG converts a dag.Node to a serialization Node.
func nodeFromDAG(n *dag.Node) Node {
	node := Node{
		ID:          n.ID,
		Type:        NodeTypeTask,
		Position:    n.Pos(),
		Label:       n.Label,
		ActionName:  n.ActionName,
		Color:       n.Color,
		TextColor:   n.TextColor,
		InputCount:  n.InputCount,
		OutputCount: n.OutputCount,
		TimeoutSecs: n.TimeoutSecs,
	}
	if t, ok := n.Task(); ok {
		node.Task = &t
	}
	return node
}
