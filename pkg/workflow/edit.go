package workflow

import (
	"slices"

	"github.com/matzehuels/flowlayout/pkg/errors"
)

// DefaultActionName is assigned to tasks created without an action.
const DefaultActionName = "default"

// AddTask appends t to the document. The id must be well-formed and unused.
// An empty name defaults to the id and an empty action to
// [DefaultActionName]. Dependencies must refer to existing tasks.
func (d *Document) AddTask(t Task) error {
	if err := errors.ValidateTaskID(t.ID); err != nil {
		return err
	}
	if d.index(t.ID) >= 0 {
		return errors.New(errors.ErrCodeDuplicateTaskID, "task id %q already exists", t.ID)
	}
	for _, dep := range t.DependOn {
		if dep == t.ID {
			return errors.New(errors.ErrCodeInvalidEdge, "task %q cannot depend on itself", t.ID)
		}
		if d.index(dep) < 0 {
			return errors.New(errors.ErrCodeTaskNotFound, "dependency %q does not exist", dep)
		}
	}
	if t.Name == "" {
		t.Name = t.ID
	}
	if t.ActionName == "" {
		t.ActionName = DefaultActionName
	}
	if t.DependOn == nil {
		t.DependOn = []string{}
	}
	d.Tasks = append(d.Tasks, t)
	return nil
}

// RenameTask changes a task id and rewrites every dependency that
// referred to the old id. Renaming a task to its current id is a no-op.
func (d *Document) RenameTask(oldID, newID string) error {
	i := d.index(oldID)
	if i < 0 {
		return errors.New(errors.ErrCodeTaskNotFound, "task %q does not exist", oldID)
	}
	if oldID == newID {
		return nil
	}
	if err := errors.ValidateTaskID(newID); err != nil {
		return err
	}
	if d.index(newID) >= 0 {
		return errors.New(errors.ErrCodeDuplicateTaskID, "task id %q already exists", newID)
	}

	d.Tasks[i].ID = newID
	for j := range d.Tasks {
		for k, dep := range d.Tasks[j].DependOn {
			if dep == oldID {
				d.Tasks[j].DependOn[k] = newID
			}
		}
	}
	return nil
}

// RemoveTasks deletes the named tasks and strips them from every remaining
// task's dependencies. It returns the number of tasks removed; unknown ids
// are ignored.
func (d *Document) RemoveTasks(ids ...string) int {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	before := len(d.Tasks)
	d.Tasks = slices.DeleteFunc(d.Tasks, func(t Task) bool {
		_, ok := drop[t.ID]
		return ok
	})
	removed := before - len(d.Tasks)
	if removed == 0 {
		return 0
	}
	for i := range d.Tasks {
		d.Tasks[i].DependOn = slices.DeleteFunc(d.Tasks[i].DependOn, func(dep string) bool {
			_, ok := drop[dep]
			return ok
		})
	}
	return removed
}

// Connect makes target depend on source. Connecting an already connected
// pair is a no-op.
func (d *Document) Connect(source, target string) error {
	if source == target {
		return errors.New(errors.ErrCodeInvalidEdge, "task %q cannot depend on itself", source)
	}
	if d.index(source) < 0 {
		return errors.New(errors.ErrCodeTaskNotFound, "task %q does not exist", source)
	}
	ti := d.index(target)
	if ti < 0 {
		return errors.New(errors.ErrCodeTaskNotFound, "task %q does not exist", target)
	}
	if !d.Tasks[ti].DependsOn(source) {
		d.Tasks[ti].DependOn = append(d.Tasks[ti].DependOn, source)
	}
	return nil
}

// Disconnect removes the dependency of target on source. It reports
// whether a dependency was removed.
func (d *Document) Disconnect(source, target string) bool {
	ti := d.index(target)
	if ti < 0 || !d.Tasks[ti].DependsOn(source) {
		return false
	}
	d.Tasks[ti].DependOn = slices.DeleteFunc(d.Tasks[ti].DependOn, func(dep string) bool { return dep == source })
	return true
}

// SetPosition records the canvas position of a task.
func (d *Document) SetPosition(id string, p Position) error {
	i := d.index(id)
	if i < 0 {
		return errors.New(errors.ErrCodeTaskNotFound, "task %q does not exist", id)
	}
	d.Tasks[i].Position = &p
	return nil
}

// SetPositions records canvas positions for every known id in ps and
// ignores the rest.
func (d *Document) SetPositions(ps map[string]Position) {
	for i := range d.Tasks {
		if p, ok := ps[d.Tasks[i].ID]; ok {
			d.Tasks[i].Position = &p
		}
	}
}
