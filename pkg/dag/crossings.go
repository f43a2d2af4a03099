package dag

import (
	"maps"
	"slices"
)

// CountCrossings returns the total number of edge-edge crossings for the
// given level orderings. orders maps a level to its node IDs in visual
// order (left to right for top-to-bottom layouts). Only edges between
// consecutive levels are counted; levels without entries are empty.
//
//	orders := map[int][]string{
//	    0: {"extract"},
//	    1: {"clean", "enrich"},
//	    2: {"load"},
//	}
//	n := dag.CountCrossings(g, orders)
func CountCrossings(g *DAG, orders map[int][]string) int {
	levels := slices.Sorted(maps.Keys(orders))
	crossings := 0
	for _, l := range levels {
		if next, ok := orders[l+1]; ok {
			crossings += CountLayerCrossings(g, orders[l], next)
		}
	}
	return crossings
}

// CountLayerCrossings counts edge crossings between two adjacent levels using a
// Fenwick tree (binary indexed tree) for O(E log V) performance where E is the
// number of edges between the levels and V is the number of nodes in the lower one.
//
// Two edges (u1,v1) and (u2,v2) cross if and only if:
//
//	pos(u1) < pos(u2) AND pos(v1) > pos(v2)
//
// This is the number of inversions in the sequence of target positions when
// edges are sorted by source position.
//
// Returns 0 if either level is empty.
func CountLayerCrossings(g *DAG, upper, lower []string) int {
	if len(upper) == 0 || len(lower) == 0 {
		return 0
	}

	lowerPos := PosMap(lower)

	type edge struct{ upper, lower int }
	edges := make([]edge, 0, len(upper)*2)
	for i, nodeID := range upper {
		for _, child := range g.Children(nodeID) {
			if pos, ok := lowerPos[child]; ok {
				edges = append(edges, edge{i, pos})
			}
		}
	}
	if len(edges) < 2 {
		return 0
	}

	slices.SortFunc(edges, func(a, b edge) int {
		if a.upper != b.upper {
			return a.upper - b.upper
		}
		return a.lower - b.lower
	})

	fenwick := make([]int, len(lower)+1)
	crossings, total := 0, 0
	for _, e := range edges {
		// edges seen so far with target <= e.lower
		lessOrEqual := 0
		for q := e.lower + 1; q > 0; q -= q & (-q) {
			lessOrEqual += fenwick[q]
		}
		crossings += total - lessOrEqual

		total++
		for idx := e.lower + 1; idx < len(fenwick); idx += idx & (-idx) {
			fenwick[idx]++
		}
	}
	return crossings
}
