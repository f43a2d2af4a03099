package layout

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/matzehuels/flowlayout/pkg/dag"
	"github.com/matzehuels/flowlayout/pkg/dag/transform"
)

// Severity grades how badly an edge cuts through other nodes.
type Severity int

const (
	SeverityLow Severity = iota + 1
	SeverityMedium
	SeverityHigh
)

// SeverityFor classifies a crossing by the number of nodes crossed:
// 1 is low, 2 is medium and 3 or more is high. Zero has no severity.
func SeverityFor(crossed int) Severity {
	switch {
	case crossed >= 3:
		return SeverityHigh
	case crossed == 2:
		return SeverityMedium
	case crossed == 1:
		return SeverityLow
	}
	return 0
}

// String returns "low", "medium" or "high".
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	}
	return "none"
}

// MarshalJSON encodes the severity as its name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a severity name.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "low":
		*s = SeverityLow
	case "medium":
		*s = SeverityMedium
	case "high":
		*s = SeverityHigh
	case "none", "":
		*s = 0
	default:
		return fmt.Errorf("unknown severity %q", name)
	}
	return nil
}

// Crossing is an edge that passes through the boxes of unrelated nodes.
type Crossing struct {
	EdgeID       string   `json:"edge_id"`
	Source       string   `json:"source"`
	Target       string   `json:"target"`
	CrossedNodes []string `json:"crossed_nodes"`
	Severity     Severity `json:"severity"`
}

// DetectCrossings reports every edge that spans at least two levels and
// whose center-to-center segment touches the box of a node on a level
// strictly between its endpoints. Edges between adjacent levels are never
// reported. Levels are recomputed from g the way [Arrange] computes them, so
// with BreakCycles set the removed back edges are neither leveled nor
// checked; otherwise unleveled nodes count as level 0. Crossed nodes are
// listed in graph order.
func DetectCrossings(g *dag.DAG, opts Options) []Crossing {
	opts = opts.withDefaults()
	work, levels := levelsFor(g, opts)
	return detectCrossings(work, levels, opts)
}

func detectCrossings(g *dag.DAG, levels Levels, opts Options) []Crossing {
	var crossings []Crossing
	nodes := g.Nodes()

	for _, e := range g.Edges() {
		src, okS := g.Node(e.From)
		dst, okD := g.Node(e.To)
		if !okS || !okD {
			continue
		}

		srcLevel, dstLevel := levels.Of(e.From), levels.Of(e.To)
		lo, hi := min(srcLevel, dstLevel), max(srcLevel, dstLevel)
		if hi-lo <= 1 {
			continue
		}

		start := NodeRect(src, opts.NodeWidth, opts.NodeHeight).Center()
		end := NodeRect(dst, opts.NodeWidth, opts.NodeHeight).Center()

		var crossed []string
		for _, n := range nodes {
			if n.ID == e.From || n.ID == e.To {
				continue
			}
			if l := levels.Of(n.ID); l <= lo || l >= hi {
				continue
			}
			if EdgeCrossesRect(start, end, NodeRect(n, opts.NodeWidth, opts.NodeHeight)) {
				crossed = append(crossed, n.ID)
			}
		}

		if len(crossed) > 0 {
			crossings = append(crossings, Crossing{
				EdgeID:       e.ID,
				Source:       e.From,
				Target:       e.To,
				CrossedNodes: crossed,
				Severity:     SeverityFor(len(crossed)),
			})
		}
	}
	return crossings
}

// SeveritySummary counts crossings per severity.
type SeveritySummary struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// Thresholds for layout suggestions.
const (
	crossingRatioThreshold = 0.3
	largeGraphThreshold    = 20
)

// Analysis is a report on the current node positions of a graph.
type Analysis struct {
	TotalNodes int             `json:"total_nodes"`
	TotalEdges int             `json:"total_edges"`
	Crossings  []Crossing      `json:"crossings"`
	Summary    SeveritySummary `json:"summary"`

	// LayerCrossings counts pairs of edges between adjacent levels that
	// cross each other, with nodes ordered along the level axis.
	LayerCrossings int `json:"layer_crossings"`

	// Cycle is one dependency cycle, when the graph has any.
	Cycle []string `json:"cycle,omitempty"`

	// Unleveled lists nodes left out of level assignment.
	Unleveled []string `json:"unleveled,omitempty"`

	// Redundant lists dependency edges implied by another path.
	Redundant []string `json:"redundant,omitempty"`

	Bounds      Box      `json:"bounds"`
	Suggestions []string `json:"suggestions"`
}

// Analyze inspects g at its current node positions.
func Analyze(g *dag.DAG, opts Options) Analysis {
	opts = opts.withDefaults()
	work, levels := levelsFor(g, opts)
	crossings := detectCrossings(work, levels, opts)

	a := Analysis{
		TotalNodes:  g.NodeCount(),
		TotalEdges:  g.EdgeCount(),
		Crossings:   crossings,
		Cycle:       g.FindCycle(),
		Unleveled:   levels.Unleveled,
		Bounds:      Bounds(g.Nodes(), opts.NodeWidth, opts.NodeHeight),
		Suggestions: []string{},
	}
	if a.Crossings == nil {
		a.Crossings = []Crossing{}
	}
	for _, c := range crossings {
		switch c.Severity {
		case SeverityHigh:
			a.Summary.High++
		case SeverityMedium:
			a.Summary.Medium++
		case SeverityLow:
			a.Summary.Low++
		}
	}
	a.LayerCrossings = dag.CountCrossings(work, levelOrders(work, levels, opts.Direction))
	for _, e := range transform.RedundantEdges(g) {
		a.Redundant = append(a.Redundant, e.ID)
	}

	if a.Summary.High > 0 {
		a.Suggestions = append(a.Suggestions,
			fmt.Sprintf("found %d severe edge crossings; try the other layout direction or move the crossed nodes", a.Summary.High))
	}
	if float64(len(crossings)) > float64(a.TotalNodes)*crossingRatioThreshold {
		a.Suggestions = append(a.Suggestions, "many edges cross nodes; re-run the layered layout or increase node spacing")
	}
	if a.TotalNodes > largeGraphThreshold {
		a.Suggestions = append(a.Suggestions, "the workflow has many nodes; consider splitting it into sub-workflows")
	}
	if a.Cycle != nil {
		a.Suggestions = append(a.Suggestions,
			fmt.Sprintf("dependency cycle %v: these tasks can never run", a.Cycle))
	}
	if len(a.Redundant) > 0 {
		a.Suggestions = append(a.Suggestions,
			fmt.Sprintf("%d dependencies are implied by other paths and can be removed", len(a.Redundant)))
	}
	return a
}

// levelOrders lists each level's nodes sorted along the axis siblings are
// spread on: x for TB, y for LR. Ties keep graph order.
func levelOrders(g *dag.DAG, levels Levels, dir Direction) map[int][]string {
	groups := GroupByLevel(g, levels)
	orders := make(map[int][]string, len(groups))
	for level, nodes := range groups {
		sorted := slices.Clone(nodes)
		slices.SortStableFunc(sorted, func(a, b *dag.Node) int {
			av, bv := a.X, b.X
			if dir == LeftRight {
				av, bv = a.Y, b.Y
			}
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		})
		orders[level] = dag.NodeIDs(sorted)
	}
	return orders
}
