// Package dag provides the visual graph model of a workflow: one node per
// task and one directed edge per dependency, pointing from the dependency
// to the dependent task.
//
// # Basic Usage
//
// Most callers build a graph from a parsed document with [FromDocument]:
//
//	doc, _ := workflow.Parse(data)
//	g, _ := dag.FromDocument(doc)
//
// Graphs can also be assembled by hand with [New], [DAG.AddNode] and
// [DAG.AddEdge]. Nodes keep insertion order, which is document order when
// built from a workflow, so layouts derived from a graph are stable.
//
// # Cycles
//
// Workflow documents may contain dependency cycles. The graph accepts
// them; [DAG.FindCycle] returns one cycle path for diagnostics and
// [DAG.Validate] reports [ErrGraphHasCycle]. Level assignment simply
// leaves nodes on a cycle unleveled.
//
// # Edge Crossings
//
// [CountCrossings] and [CountLayerCrossings] count edge-edge crossings
// between adjacent levels with a Fenwick tree in O(E log V).
//
// # Concurrency
//
// DAG is not safe for concurrent use. Build one graph per request.
package dag
