package transform

import "github.com/matzehuels/flowlayout/pkg/dag"

// BreakCycles removes every back edge discovered by a depth-first search
// and returns how many edges were removed. The search starts from source
// nodes in graph order, then from any node not yet visited, so the edges
// removed are the ones closing a cycle in document order.
func BreakCycles(g *dag.DAG) int {
	return len(removeEdges(g, BackEdges(g)))
}

// BackEdges returns the edges BreakCycles would remove.
func BackEdges(g *dag.DAG) []dag.Edge {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int)
	var back []dag.Edge

	var dfs func(node string)
	dfs = func(node string) {
		color[node] = gray
		for _, child := range g.Children(node) {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				if e, ok := g.Edge(node, child); ok {
					back = append(back, e)
				}
			}
		}
		color[node] = black
	}

	for _, n := range g.Sources() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}
	for _, n := range g.Nodes() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}
	return back
}

func removeEdges(g *dag.DAG, edges []dag.Edge) []dag.Edge {
	for _, e := range edges {
		g.RemoveEdge(e.From, e.To)
	}
	return edges
}
