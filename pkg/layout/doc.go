// Package layout arranges workflow graphs on a 2D canvas and analyzes the
// result.
//
// # Levels
//
// [AssignLevels] peels zero in-degree nodes off the graph in waves: nodes
// without dependencies sit on level 0 and a node joins the level after the
// one that released its last dependency. Nodes on a dependency cycle never
// become free; they are reported in [Levels.Unleveled] and grouped with
// level 0 when positioning.
//
// # Positions
//
// [Arrange] supports two directions. Top-to-bottom ([TopBottom]) spreads
// level 0 evenly, then places every other node under the mean x of its
// parents and pushes overlapping siblings apart. Left-to-right
// ([LeftRight]) turns each level into a column and stacks its nodes.
// Neither direction minimizes crossings.
//
// # Analysis
//
// [DetectCrossings] finds edges that span two or more levels and pass
// through the box of a node on an intermediate level. [Analyze] summarizes
// them by severity and adds layout suggestions.
//
// # Alignment
//
// [Snap] computes where a dragged node should land given a grid pitch and
// the edges and centers of the other nodes. [AlignNodes] lines up or
// distributes a selection.
package layout
