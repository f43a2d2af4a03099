package layout

import (
	"maps"
	"slices"

	"github.com/matzehuels/flowlayout/pkg/dag"
)

// Levels is the result of level assignment.
type Levels struct {
	// ByNode maps every leveled node to its depth.
	ByNode map[string]int `json:"by_node"`

	// Unleveled lists, in graph order, the nodes that never reached zero
	// in-degree because they sit on or behind a dependency cycle.
	Unleveled []string `json:"unleveled,omitempty"`
}

// Level returns the level of id and whether it was leveled.
func (l Levels) Level(id string) (int, bool) {
	v, ok := l.ByNode[id]
	return v, ok
}

// Of returns the level of id, or 0 for unleveled nodes.
func (l Levels) Of(id string) int { return l.ByNode[id] }

// Max returns the deepest level, or 0 when nothing is leveled.
func (l Levels) Max() int {
	m := 0
	for _, v := range l.ByNode {
		m = max(m, v)
	}
	return m
}

// AssignLevels computes node depths with Kahn's algorithm. Nodes with no
// incoming edges start on level 0 in graph order; when a node is dequeued,
// each child whose remaining in-degree drops to zero is placed one level
// below it and enqueued.
//
// For acyclic graphs every node is leveled and each node's level exceeds
// all of its parents' levels. Nodes that never reach zero in-degree are
// left out of ByNode and listed in Unleveled.
//
// Time complexity is O(V + E).
func AssignLevels(g *dag.DAG) Levels {
	nodes := g.Nodes()
	inDegree := make(map[string]int, len(nodes))
	levels := make(map[string]int, len(nodes))
	queue := make([]string, 0, len(nodes))

	for _, n := range nodes {
		degree := g.InDegree(n.ID)
		inDegree[n.ID] = degree
		if degree == 0 {
			levels[n.ID] = 0
			queue = append(queue, n.ID)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, child := range g.Children(curr) {
			inDegree[child]--
			if inDegree[child] == 0 {
				levels[child] = levels[curr] + 1
				queue = append(queue, child)
			}
		}
	}

	out := Levels{ByNode: levels}
	for _, n := range nodes {
		if _, ok := levels[n.ID]; !ok {
			out.Unleveled = append(out.Unleveled, n.ID)
		}
	}
	return out
}

// GroupByLevel buckets the graph's nodes by level, keeping graph order
// within a bucket. Unleveled nodes land in level 0.
func GroupByLevel(g *dag.DAG, levels Levels) map[int][]*dag.Node {
	groups := make(map[int][]*dag.Node)
	for _, n := range g.Nodes() {
		l := levels.Of(n.ID)
		groups[l] = append(groups[l], n)
	}
	return groups
}

// Groups returns node IDs bucketed by level. Unleveled nodes are not
// included.
func (l Levels) Groups() map[int][]string {
	groups := make(map[int][]string)
	for id, lvl := range l.ByNode {
		groups[lvl] = append(groups[lvl], id)
	}
	for _, ids := range groups {
		slices.Sort(ids)
	}
	return groups
}

func sortedLevels[V any](groups map[int]V) []int {
	return slices.Sorted(maps.Keys(groups))
}
