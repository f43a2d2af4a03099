package workflow

// Example returns a small two-task workflow: task_2 runs after task_1 and
// is skipped when the lyric_hash variable is empty.
func Example() *Document {
	return &Document{
		DagID: "example_dag",
		Name:  "Example workflow",
		Desc:  "An example DAG",
		Vars: []Var{
			{Name: "request_id", DefaultValue: "", Desc: "request id, attached to pushed messages"},
			{Name: "userid", DefaultValue: "", Desc: "user id"},
		},
		Tasks: []Task{
			{
				ID:          "task_1",
				Name:        "Task 1",
				ActionName:  "action_1",
				DependOn:    []string{},
				TimeoutSecs: 3600,
				Params:      []Param{{Key: "param1", Value: "value1"}},
				Outputs:     []Output{{Key: "output1", Value: "data.result"}},
			},
			{
				ID:          "task_2",
				Name:        "Task 2",
				ActionName:  "action_2",
				DependOn:    []string{"task_1"},
				TimeoutSecs: 1800,
				Params:      []Param{{Key: "param2", Value: "value2"}},
				Outputs:     []Output{{Key: "output2", Value: "data.result"}},
				PreChecks: []PreCheck{{
					Name: "run when user id is set",
					Check: &Check{
						ActiveAction: "skip",
						Conditions: []map[string]any{{
							"source":   "vars",
							"key":      "lyric_hash",
							"value":    []any{""},
							"operator": "in",
						}},
					},
				}},
			},
		},
	}
}
