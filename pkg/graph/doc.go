// Package graph provides the wire format of laid-out workflow graphs.
//
// It sits at the serialization boundary between [dag.DAG] and the outside
// world: JSON files, HTTP responses and cache entries all carry a [Graph].
//
// # Format
//
// Nodes carry their top-left position, display label, colors and the task
// they were built from; edges point from a dependency to its dependent:
//
//	{
//	  "nodes": [{"id": "extract", "type": "task", "position": {"x": 0, "y": 0}, ...}],
//	  "edges": [{"id": "extract->load", "source": "extract", "target": "load", "type": "smoothstep"}],
//	  "metadata": {"total_nodes": 2, "total_edges": 1, "processed_at": "..."}
//	}
//
// Edges into a task with pre-checks carry a condition and are animated.
//
// Common operations:
//
//	data, _ := graph.MarshalGraph(g)           // DAG → []byte
//	graph.WriteGraphFile(g, "graph.json")      // DAG → file
//	g2, _ := graph.ReadGraphFile("graph.json") // file → DAG
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
