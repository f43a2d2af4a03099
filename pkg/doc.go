// Package pkg provides the core libraries for Flowlayout workflow layout.
//
// # Overview
//
// Flowlayout turns a workflow definition (tasks plus their depend_on lists)
// into a positioned graph: every task gets a level, levels are laid out left
// to right or top to bottom, and edges that cut through unrelated tasks are
// reported. The pkg directory is organized into four areas:
//
//  1. Domain - [workflow] documents, the [dag] graph and its [dag/transform]
//     passes, and the [layout] engine
//  2. Serialization - [graph] node-link output and the [palette] of task
//     colors
//  3. Infrastructure - [cache], [history], [config] and [observability]
//  4. Entry points - [pipeline] (shared by the CLI and API) and [server]
//
// # Architecture
//
// The typical data flow:
//
//	JSON or YAML document
//	         ↓
//	    [workflow] package (decode + validate)
//	         ↓
//	    [dag] package (visual graph with edge conditions)
//	         ↓
//	    [layout] package (levels, positions, crossings)
//	         ↓
//	    document with positions, or [graph] JSON
//
// # Quick Start
//
//	doc, _ := workflow.ParseFile("etl.json")
//	g, _ := dag.FromDocument(doc)
//
//	opts := layout.DefaultOptions()
//	opts.Direction = layout.LeftRight
//	layout.Apply(g, opts)
//
//	for _, c := range layout.DetectCrossings(g, opts) {
//	    fmt.Printf("%s crosses %v (%s)\n", c.EdgeID, c.CrossedNodes, c.Severity)
//	}
//
// # Main Packages
//
// [workflow] - The document model: tasks, parameters, outputs and
// pre-checks, with lenient decoding (object, bare array or single task) and
// editing helpers.
//
// [dag] - Directed graph built from a document. Pre-checked dependencies
// become conditional edges. Keeps insertion order so layouts are
// deterministic.
//
// [dag/transform] - Cycle breaking and transitive reduction.
//
// [layout] - Level assignment, positioning, edge crossing analysis, snapping
// and bulk alignment, and overlap-aware edge routing.
//
// [pipeline] - Load → layout → analyze with caching and observability hooks.
// Used by both the CLI and the HTTP API.
//
// [server] - The HTTP API.
//
// [cache] - Layout cache with file, Redis and null backends.
//
// [history] - Recently laid-out documents in a JSON file, SQL database or
// MongoDB.
//
// # Testing
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/layout/...   # Specific package
//	go test -run Example       # Examples only
//
// [workflow]: https://pkg.go.dev/github.com/matzehuels/flowlayout/pkg/workflow
// [dag]: https://pkg.go.dev/github.com/matzehuels/flowlayout/pkg/dag
// [dag/transform]: https://pkg.go.dev/github.com/matzehuels/flowlayout/pkg/dag/transform
// [layout]: https://pkg.go.dev/github.com/matzehuels/flowlayout/pkg/layout
// [graph]: https://pkg.go.dev/github.com/matzehuels/flowlayout/pkg/graph
// [palette]: https://pkg.go.dev/github.com/matzehuels/flowlayout/pkg/palette
// [cache]: https://pkg.go.dev/github.com/matzehuels/flowlayout/pkg/cache
// [history]: https://pkg.go.dev/github.com/matzehuels/flowlayout/pkg/history
// [config]: https://pkg.go.dev/github.com/matzehuels/flowlayout/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/flowlayout/pkg/observability
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/flowlayout/pkg/pipeline
// [server]: https://pkg.go.dev/github.com/matzehuels/flowlayout/pkg/server
package pkg
