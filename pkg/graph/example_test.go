package graph_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/flowlayout/pkg/dag"
	"github.com/matzehuels/flowlayout/pkg/graph"
)

func ExampleFromDAG() {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "extract", Label: "Extract", X: 0, Y: 0})
	_ = g.AddNode(dag.Node{ID: "load", Label: "Load", X: 0, Y: 120})
	_ = g.AddEdge(dag.Edge{From: "extract", To: "load"})

	out := graph.FromDAG(g)
	for _, n := range out.Nodes {
		fmt.Printf("%s %q at %v\n", n.ID, n.Label, n.Position)
	}
	for _, e := range out.Edges {
		fmt.Println(e.ID, e.Type)
	}
	// Output:
	// extract "Extract" at {0 0}
	// load "Load" at {0 120}
	// extract->load smoothstep
}

func ExampleReadGraph() {
	data := `{
		"nodes": [
			{"id": "fetch", "position": {"x": 0, "y": 0}},
			{"id": "parse", "position": {"x": 0, "y": 120}}
		],
		"edges": [
			{"id": "fetch->parse", "source": "fetch", "target": "parse"}
		]
	}`

	g, err := graph.ReadGraph(strings.NewReader(data))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Children of fetch:", g.Children("fetch"))
	// Output:
	// Nodes: 2
	// Children of fetch: [parse]
}
