package dag

import (
	"slices"
	"time"

	"github.com/matzehuels/flowlayout/pkg/palette"
	"github.com/matzehuels/flowlayout/pkg/workflow"
)

// Metadata keys set by FromDocument.
const (
	MetaTask      = "task"       // node: the source workflow.Task
	MetaPreChecks = "pre_checks" // node: the task's pre-checks, when present
	MetaDagID     = "dag_id"     // graph: the document's dag id
	MetaName      = "name"       // graph: the document's name
)

// Initial placement used when a document carries no positions.
const (
	InitialLayerHeight       = 120
	InitialHorizontalSpacing = 250
	fallbackRowHeight        = 100
)

// DefaultConditionLabel labels conditional edges whose pre-check is unnamed.
const DefaultConditionLabel = "conditional"

// FromDocument builds the visual graph of a validated workflow document.
//
// Each task becomes a node labelled with its name (or id) and colored by
// its action name. Each dependency on an existing task becomes an edge
// dependency -> task; dependencies on unknown tasks and repeated
// dependencies produce no edge. When a task has pre-checks, all of its
// incoming edges are conditional and labelled with the first pre-check.
//
// Node positions come from the tasks' persisted positions when present and
// from a simple layered placement otherwise (see [InitialPositions]).
func FromDocument(doc *workflow.Document) (*DAG, error) {
	if err := workflow.Validate(doc); err != nil {
		return nil, err
	}

	g := New(Metadata{MetaDagID: doc.DagID, MetaName: doc.Name})
	initial := InitialPositions(doc.Tasks)

	for i, t := range doc.Tasks {
		pos, ok := initial[t.ID]
		if t.Position != nil {
			pos, ok = Point{X: t.Position.X, Y: t.Position.Y}, true
		}
		if !ok {
			pos = Point{X: 0, Y: float64(i * fallbackRowHeight)}
		}

		color := palette.ForAction(t.ActionName)
		n := Node{
			ID:          t.ID,
			Label:       t.Label(),
			ActionName:  t.ActionName,
			Color:       color,
			TextColor:   palette.TextColor(color),
			X:           pos.X,
			Y:           pos.Y,
			InputCount:  len(t.Params),
			OutputCount: len(t.Outputs),
			TimeoutSecs: t.TimeoutSecs,
			Meta:        Metadata{MetaTask: t},
		}
		if len(t.PreChecks) > 0 {
			n.Meta[MetaPreChecks] = t.PreChecks
		}
		if err := g.AddNode(n); err != nil {
			return nil, err
		}
	}

	for _, t := range doc.Tasks {
		cond := conditionFor(t)
		for _, dep := range t.DependOn {
			if _, ok := g.Node(dep); !ok {
				continue
			}
			e := Edge{ID: EdgeID(dep, t.ID), From: dep, To: t.ID}
			if cond != nil {
				c := *cond
				e.Condition = &c
				e.Label = c.Label
				if e.Label == "" {
					e.Label = DefaultConditionLabel
				}
			}
			if err := g.AddEdge(e); err != nil && err != ErrDuplicateEdge {
				return nil, err
			}
		}
	}
	return g, nil
}

func conditionFor(t workflow.Task) *Condition {
	if len(t.PreChecks) == 0 {
		return nil
	}
	pc := t.PreChecks[0]
	c := &Condition{Type: EdgeConditional, Label: pc.Name, CheckName: pc.Name}
	if pc.Check != nil {
		c.ActiveAction = pc.Check.ActiveAction
		c.Conditions = pc.Check.Conditions
	}
	return c
}

// InitialPositions places tasks layer by layer. A task's in-degree is the
// length of its depend_on list, so a task depending on an unknown id never
// becomes ready and gets no position. Each layer sits
// [InitialLayerHeight] below the previous one, with its tasks spaced
// [InitialHorizontalSpacing] apart and centered on x = 0.
func InitialPositions(tasks []workflow.Task) map[string]Point {
	inDegree := make(map[string]int, len(tasks))
	dependents := make(map[string][]string, len(tasks))
	for _, t := range tasks {
		inDegree[t.ID] = len(t.DependOn)
		for _, dep := range t.DependOn {
			if !slices.Contains(dependents[dep], t.ID) {
				dependents[dep] = append(dependents[dep], t.ID)
			}
		}
	}

	var layer []string
	for _, t := range tasks {
		if inDegree[t.ID] == 0 {
			layer = append(layer, t.ID)
		}
	}

	positions := make(map[string]Point, len(tasks))
	for depth := 0; len(layer) > 0; depth++ {
		startX := -float64(len(layer)-1) * InitialHorizontalSpacing / 2
		for i, id := range layer {
			positions[id] = Point{
				X: startX + float64(i)*InitialHorizontalSpacing,
				Y: float64(depth * InitialLayerHeight),
			}
		}

		var next []string
		for _, id := range layer {
			for _, child := range dependents[id] {
				inDegree[child]--
				if inDegree[child] == 0 {
					next = append(next, child)
				}
			}
		}
		layer = next
	}
	return positions
}

// Summary describes a built graph.
type Summary struct {
	TotalNodes  int       `json:"total_nodes"`
	TotalEdges  int       `json:"total_edges"`
	ProcessedAt time.Time `json:"processed_at"`
}

// Summary returns node and edge counts stamped with the current time.
func (d *DAG) Summary() Summary {
	return Summary{
		TotalNodes:  d.NodeCount(),
		TotalEdges:  d.EdgeCount(),
		ProcessedAt: time.Now().UTC(),
	}
}

// Task returns the workflow task a node was built from.
func (n *Node) Task() (workflow.Task, bool) {
	t, ok := n.Meta[MetaTask].(workflow.Task)
	return t, ok
}

// TaskPositions returns node positions in workflow form, ready for
// [workflow.Document.SetPositions].
func (d *DAG) TaskPositions() map[string]workflow.Position {
	ps := make(map[string]workflow.Position, len(d.order))
	for _, n := range d.order {
		ps[n.ID] = workflow.Position{X: n.X, Y: n.Y}
	}
	return ps
}
