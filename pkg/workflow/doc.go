// Package workflow models DAG workflow definitions as they are stored and
// exchanged by the workflow engine: a document with a dag id, optional
// variables and a list of tasks whose depend_on lists form the graph.
//
// # Input Forms
//
// [Parse] accepts JSON or YAML and three document shapes:
//
//   - an object with a "tasks" array (the canonical form)
//   - a bare array of tasks
//   - a single task object, treated as a one-element array
//
// The shape is remembered in [Document.Bare] and [Document.Single] so that
// [Marshal] writes the document back the way it came in.
//
// # Validation
//
// [Validate] enforces the minimum needed to build a graph: at least one
// task, every task has an id and an action_name, and ids are unique. It
// does not reject dependencies on unknown tasks (they simply produce no
// edge) or cycles (the layout reports them instead).
//
// # Editing
//
// The editor operations on [Document] ([Document.AddTask],
// [Document.RenameTask], [Document.RemoveTasks], [Document.Connect],
// [Document.Disconnect], [Document.SetPosition]) are atomic: they validate
// their arguments first and leave the document untouched on error.
package workflow
