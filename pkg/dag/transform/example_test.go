package transform_test

import (
	"fmt"

	"github.com/matzehuels/flowlayout/pkg/dag"
	"github.com/matzehuels/flowlayout/pkg/dag/transform"
)

func ExampleRedundantEdges() {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "extract"})
	_ = g.AddNode(dag.Node{ID: "clean"})
	_ = g.AddNode(dag.Node{ID: "load"})
	_ = g.AddEdge(dag.Edge{From: "extract", To: "clean"})
	_ = g.AddEdge(dag.Edge{From: "clean", To: "load"})
	_ = g.AddEdge(dag.Edge{From: "extract", To: "load"}) // implied by extract -> clean -> load

	for _, e := range transform.RedundantEdges(g) {
		fmt.Println(e.ID)
	}
	// Output:
	// extract->load
}

func ExampleBreakCycles() {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "a"})
	_ = g.AddNode(dag.Node{ID: "b"})
	_ = g.AddEdge(dag.Edge{From: "a", To: "b"})
	_ = g.AddEdge(dag.Edge{From: "b", To: "a"})

	fmt.Println("removed:", transform.BreakCycles(g))
	fmt.Println("acyclic:", g.Validate() == nil)
	// Output:
	// removed: 1
	// acyclic: true
}
