// Package transform provides structural graph transformations used by the
// layout and by document tidying.
//
// # Cycle Breaking
//
// [BreakCycles] removes back edges found by a depth-first search so that
// level assignment can place every node. It is applied to a copy of the
// graph when the layout is asked to level cyclic workflows.
//
// # Transitive Reduction
//
// [RedundantEdges] finds dependencies that are already implied by another
// path: if load depends on clean, clean on extract, and load also lists
// extract, the load -> extract dependency adds nothing to the execution
// order. [TransitiveReduction] removes them from a graph.
package transform
