package transform

import "github.com/matzehuels/flowlayout/pkg/dag"

// RedundantEdges returns, in graph order, every edge (u, v) for which v is
// also reachable from u through another child of u.
//
// Reachability is computed once per node with a depth-first search, so the
// cost is O(V·E) for sparse workflow graphs and O(V²) memory.
func RedundantEdges(g *dag.DAG) []dag.Edge {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return nil
	}

	index := dag.PosMap(dag.NodeIDs(nodes))
	adjacency := make([][]int, len(nodes))
	for _, e := range g.Edges() {
		adjacency[index[e.From]] = append(adjacency[index[e.From]], index[e.To])
	}
	reach := computeReachability(adjacency)

	var redundant []dag.Edge
	for _, e := range g.Edges() {
		src, dst := index[e.From], index[e.To]
		for _, mid := range adjacency[src] {
			if mid != dst && mid != src && reach[mid][dst] {
				redundant = append(redundant, e)
				break
			}
		}
	}
	return redundant
}

// TransitiveReduction removes the edges reported by [RedundantEdges] and
// returns how many were removed. On a cyclic graph the result depends on
// which edges close the cycles; break cycles first for a canonical result.
func TransitiveReduction(g *dag.DAG) int {
	return len(removeEdges(g, RedundantEdges(g)))
}

func computeReachability(adjacency [][]int) [][]bool {
	n := len(adjacency)
	reachable := make([][]bool, n)
	for i := range reachable {
		reachable[i] = make([]bool, n)
	}

	var dfs func(source, current int)
	dfs = func(source, current int) {
		for _, next := range adjacency[current] {
			if !reachable[source][next] {
				reachable[source][next] = true
				dfs(source, next)
			}
		}
	}
	for i := range adjacency {
		dfs(i, i)
	}
	return reachable
}
