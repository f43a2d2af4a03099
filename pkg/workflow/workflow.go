package workflow

import "slices"

// Document is a complete workflow definition.
type Document struct {
	DagID string `json:"dag_id,omitempty" yaml:"dag_id,omitempty"`
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Desc  string `json:"desc,omitempty" yaml:"desc,omitempty"`
	Vars  []Var  `json:"vars,omitempty" yaml:"vars,omitempty"`
	Tasks []Task `json:"tasks" yaml:"tasks"`

	// Bare is set when the document was read as a task array (or a single
	// task) rather than an object with a tasks field.
	Bare bool `json:"-" yaml:"-"`

	// Single is set when the document was read as one task object. It is
	// written back as that object while it still holds exactly one task.
	Single bool `json:"-" yaml:"-"`
}

// Var is a workflow-level variable.
type Var struct {
	Name         string `json:"name" yaml:"name"`
	Desc         string `json:"desc,omitempty" yaml:"desc,omitempty"`
	DefaultValue any    `json:"default_value,omitempty" yaml:"default_value,omitempty"`
}

// Task is a single unit of work. DependOn lists the ids of the tasks that
// must finish first; each entry becomes an edge dependency -> task.
type Task struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name,omitempty" yaml:"name,omitempty"`
	ActionName  string     `json:"action_name" yaml:"action_name"`
	DependOn    []string   `json:"depend_on,omitempty" yaml:"depend_on,omitempty"`
	TimeoutSecs int        `json:"timeout_secs,omitempty" yaml:"timeout_secs,omitempty"`
	Params      []Param    `json:"params,omitempty" yaml:"params,omitempty"`
	Outputs     []Output   `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	PreChecks   []PreCheck `json:"pre_checks,omitempty" yaml:"pre_checks,omitempty"`
	Position    *Position  `json:"position,omitempty" yaml:"position,omitempty"`
}

// Label returns the display label of the task: its name, or its id when
// the name is empty.
func (t Task) Label() string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID
}

// DependsOn reports whether id is listed in the task's dependencies.
func (t Task) DependsOn(id string) bool {
	return slices.Contains(t.DependOn, id)
}

// Param is a task parameter. Nested parameters live in SubParams.
type Param struct {
	Key       string  `json:"key" yaml:"key"`
	Value     any     `json:"value,omitempty" yaml:"value,omitempty"`
	SubParams []Param `json:"sub_params,omitempty" yaml:"sub_params,omitempty"`
}

// Output is a named task output.
type Output struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
}

// PreCheck gates a task on a condition evaluated before it runs.
type PreCheck struct {
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Check *Check `json:"check,omitempty" yaml:"check,omitempty"`
}

// Check is the condition body of a [PreCheck].
type Check struct {
	ActiveAction string           `json:"active_action,omitempty" yaml:"active_action,omitempty"`
	Conditions   []map[string]any `json:"conditions,omitempty" yaml:"conditions,omitempty"`
}

// Position is a persisted canvas position.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Task returns a pointer to the task with the given id.
func (d *Document) Task(id string) (*Task, bool) {
	i := d.index(id)
	if i < 0 {
		return nil, false
	}
	return &d.Tasks[i], true
}

// TaskIDs returns the ids of all tasks in document order.
func (d *Document) TaskIDs() []string {
	ids := make([]string, len(d.Tasks))
	for i, t := range d.Tasks {
		ids[i] = t.ID
	}
	return ids
}

// Clone returns a deep copy of the document's task structure. Param
// values and check conditions are shared with the original.
func (d *Document) Clone() *Document {
	c := *d
	c.Vars = slices.Clone(d.Vars)
	c.Tasks = make([]Task, len(d.Tasks))
	for i, t := range d.Tasks {
		t.DependOn = slices.Clone(t.DependOn)
		t.Params = cloneParams(t.Params)
		t.Outputs = slices.Clone(t.Outputs)
		t.PreChecks = slices.Clone(t.PreChecks)
		if t.Position != nil {
			p := *t.Position
			t.Position = &p
		}
		c.Tasks[i] = t
	}
	return &c
}

func cloneParams(ps []Param) []Param {
	if ps == nil {
		return nil
	}
	out := make([]Param, len(ps))
	for i, p := range ps {
		p.SubParams = cloneParams(p.SubParams)
		out[i] = p
	}
	return out
}

func (d *Document) index(id string) int {
	return slices.IndexFunc(d.Tasks, func(t Task) bool { return t.ID == id })
}
