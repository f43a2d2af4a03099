package layout

import (
	"slices"

	"github.com/matzehuels/flowlayout/pkg/dag"
	"github.com/matzehuels/flowlayout/pkg/dag/transform"
)

// Arrange computes a position for every node of g without modifying it.
// Zero-valued numeric options fall back to [DefaultOptions].
func Arrange(g *dag.DAG, opts Options) (map[string]dag.Point, Levels) {
	opts = opts.withDefaults()
	positions := make(map[string]dag.Point, g.NodeCount())
	if g.NodeCount() == 0 {
		return positions, Levels{ByNode: map[string]int{}}
	}

	work, levels := levelsFor(g, opts)
	groups := GroupByLevel(work, levels)

	if opts.Direction == LeftRight {
		arrangeLR(groups, opts, positions)
	} else {
		arrangeTB(work, groups, opts, positions)
	}
	return positions, levels
}

// levelsFor returns the graph that layout and analysis level: g itself, or
// a copy with its back edges removed when opts.BreakCycles is set and g has
// a cycle.
func levelsFor(g *dag.DAG, opts Options) (*dag.DAG, Levels) {
	work := g
	if opts.BreakCycles && g.FindCycle() != nil {
		work = g.Clone()
		transform.BreakCycles(work)
	}
	return work, AssignLevels(work)
}

// Apply arranges g and writes the positions into its nodes.
func Apply(g *dag.DAG, opts Options) Levels {
	positions, levels := Arrange(g, opts)
	g.SetPositions(positions)
	return levels
}

// arrangeLR turns each level into a column at x = level * NodeSpacing.X
// and stacks its nodes NodeSpacing.Y apart.
func arrangeLR(groups map[int][]*dag.Node, opts Options, positions map[string]dag.Point) {
	for _, level := range sortedLevels(groups) {
		nodes := groups[level]
		x := float64(level) * opts.NodeSpacing.X

		startY := 0.0
		if opts.CenterNodes {
			startY = -float64(len(nodes)-1) * opts.NodeSpacing.Y / 2
		}
		for i, n := range nodes {
			positions[n.ID] = dag.Point{X: x, Y: startY + float64(i)*opts.NodeSpacing.Y}
		}
	}
}

// arrangeTB places levels LevelSpacing apart. Level 0 is spread evenly;
// deeper nodes start at the mean x of their already placed parents (or 0)
// and are then pushed right until siblings are NodeSpacing.X apart.
func arrangeTB(g *dag.DAG, groups map[int][]*dag.Node, opts Options, positions map[string]dag.Point) {
	for _, level := range sortedLevels(groups) {
		nodes := groups[level]
		y := float64(level) * opts.LevelSpacing

		if level == 0 {
			startX := 0.0
			if opts.CenterNodes {
				startX = -float64(len(nodes)-1) * opts.NodeSpacing.X / 2
			}
			for i, n := range nodes {
				positions[n.ID] = dag.Point{X: startX + float64(i)*opts.NodeSpacing.X, Y: y}
			}
			continue
		}

		type placed struct {
			id string
			x  float64
		}
		row := make([]placed, len(nodes))
		for i, n := range nodes {
			sum, count := 0.0, 0
			for _, parent := range g.Parents(n.ID) {
				if p, ok := positions[parent]; ok {
					sum += p.X
					count++
				}
			}
			x := 0.0
			if count > 0 {
				x = sum / float64(count)
			}
			row[i] = placed{id: n.ID, x: x}
		}

		slices.SortStableFunc(row, func(a, b placed) int {
			switch {
			case a.x < b.x:
				return -1
			case a.x > b.x:
				return 1
			}
			return 0
		})
		for i := 1; i < len(row); i++ {
			if row[i].x-row[i-1].x < opts.NodeSpacing.X {
				row[i].x = row[i-1].x + opts.NodeSpacing.X
			}
		}
		for _, p := range row {
			positions[p.id] = dag.Point{X: p.x, Y: y}
		}
	}
}
