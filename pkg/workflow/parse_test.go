package workflow

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/flowlayout/pkg/errors"
)

func TestParseForms(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantIDs  []string
		wantBare bool
	}{
		{
			name:    "object with tasks",
			input:   `{"dag_id":"d","tasks":[{"id":"a","action_name":"x"},{"id":"b","action_name":"y","depend_on":["a"]}]}`,
			wantIDs: []string{"a", "b"},
		},
		{
			name:     "bare array",
			input:    `[{"id":"a","action_name":"x"}]`,
			wantIDs:  []string{"a"},
			wantBare: true,
		},
		{
			name:     "single task object",
			input:    `{"id":"solo","action_name":"run"}`,
			wantIDs:  []string{"solo"},
			wantBare: true,
		},
		{
			name:    "yaml object",
			input:   "dag_id: d\ntasks:\n  - id: a\n    action_name: x\n  - id: b\n    action_name: y\n    depend_on: [a]\n",
			wantIDs: []string{"a", "b"},
		},
		{
			name:     "yaml list",
			input:    "- id: a\n  action_name: x\n",
			wantIDs:  []string{"a"},
			wantBare: true,
		},
		{
			name:    "leading whitespace json",
			input:   "\n\t  {\"tasks\":[{\"id\":\"a\",\"action_name\":\"x\"}]}",
			wantIDs: []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.input))
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			if got := doc.TaskIDs(); strings.Join(got, ",") != strings.Join(tt.wantIDs, ",") {
				t.Errorf("TaskIDs() = %v, want %v", got, tt.wantIDs)
			}
			if doc.Bare != tt.wantBare {
				t.Errorf("Bare = %v, want %v", doc.Bare, tt.wantBare)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantCode errors.Code
		wantMsg  string
	}{
		{"empty", "   ", errors.ErrCodeInvalidInput, "document is empty"},
		{"syntax", `{"tasks": [`, errors.ErrCodeInvalidJSON, "invalid JSON"},
		{"no tasks", `{"tasks": []}`, errors.ErrCodeInvalidSchema, "workflow has no tasks"},
		{"empty array", `[]`, errors.ErrCodeInvalidSchema, "workflow has no tasks"},
		{"missing id", `[{"action_name":"x"}]`, errors.ErrCodeInvalidSchema, "task 1 is missing the id field"},
		{"blank id", `[{"id":"  ","action_name":"x"}]`, errors.ErrCodeInvalidSchema, "task 1 has a blank id"},
		{"missing action", `[{"id":"a","action_name":"x"},{"id":"b"}]`, errors.ErrCodeInvalidSchema, "task 2 is missing the action_name field"},
		{"duplicate", `[{"id":"a","action_name":"x"},{"id":"a","action_name":"y"}]`, errors.ErrCodeDuplicateTaskID, `duplicate task id "a"`},
		{"wrong type", `[{"id":"a","action_name":"x","depend_on":"b"}]`, errors.ErrCodeInvalidSchema, ""},
		{"bad yaml", "tasks: [\n  - id: a\n", errors.ErrCodeInvalidYAML, "invalid YAML"},
		{"yaml scalar", "just text", errors.ErrCodeInvalidSchema, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			if err == nil {
				t.Fatal("Parse() expected error")
			}
			if got := errors.GetCode(err); got != tt.wantCode {
				t.Errorf("GetCode() = %v, want %v (err: %v)", got, tt.wantCode, err)
			}
			if tt.wantMsg != "" && !strings.HasPrefix(errors.UserMessage(err), tt.wantMsg) {
				t.Errorf("UserMessage() = %q, want prefix %q", errors.UserMessage(err), tt.wantMsg)
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "flow.yaml")
	if err := os.WriteFile(path, []byte("tasks:\n  - id: a\n    action_name: x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error: %v", err)
	}
	if len(doc.Tasks) != 1 {
		t.Errorf("len(Tasks) = %d, want 1", len(doc.Tasks))
	}

	_, err = ParseFile(filepath.Join(dir, "missing.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("ParseFile(missing) code = %v, want %v", errors.GetCode(err), errors.ErrCodeFileNotFound)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{"yml", FormatYAML, false},
		{"yaml", FormatYAML, false},
		{"toml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	doc := Example()
	if err := doc.SetPosition("task_1", Position{X: 10, Y: 20}); err != nil {
		t.Fatal(err)
	}

	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			data, err := Marshal(doc, format, ExportOptions{IncludePositions: true})
			if err != nil {
				t.Fatalf("Marshal() error: %v", err)
			}
			back, err := ParseAs(data, format)
			if err != nil {
				t.Fatalf("ParseAs() error: %v\n%s", err, data)
			}
			if back.DagID != doc.DagID {
				t.Errorf("DagID = %q, want %q", back.DagID, doc.DagID)
			}
			for i, task := range doc.Tasks {
				got := back.Tasks[i]
				if got.ID != task.ID {
					t.Errorf("task %d id = %q, want %q", i, got.ID, task.ID)
				}
				if strings.Join(got.DependOn, ",") != strings.Join(task.DependOn, ",") {
					t.Errorf("task %d depend_on = %v, want %v", i, got.DependOn, task.DependOn)
				}
			}
			p := back.Tasks[0].Position
			if p == nil || p.X != 10 || p.Y != 20 {
				t.Errorf("position = %v, want {10 20}", p)
			}
			if back.Tasks[1].Position != nil {
				t.Errorf("unpositioned task gained a position: %v", back.Tasks[1].Position)
			}
		})
	}
}

func TestMarshalOmitsPositions(t *testing.T) {
	doc := Example()
	_ = doc.SetPosition("task_1", Position{X: 1, Y: 2})

	data, err := Marshal(doc, FormatJSON, ExportOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), `"position"`) {
		t.Errorf("Marshal() output contains positions:\n%s", data)
	}
	if doc.Tasks[0].Position == nil {
		t.Error("Marshal() cleared positions on the source document")
	}
}

func TestMarshalKeepsBareShape(t *testing.T) {
	doc, err := Parse([]byte(`[{"id":"a","action_name":"x"}]`))
	if err != nil {
		t.Fatal(err)
	}
	data, err := Marshal(doc, FormatJSON, ExportOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "[") {
		t.Errorf("Marshal() = %s, want a JSON array", data)
	}
}

func TestMarshalKeepsSingleTaskShape(t *testing.T) {
	for _, input := range []string{
		`{"id":"solo","action_name":"run"}`,
		"id: solo\naction_name: run\n",
	} {
		doc, err := Parse([]byte(input))
		if err != nil {
			t.Fatal(err)
		}
		if !doc.Single {
			t.Errorf("Parse(%q).Single = false, want true", input)
		}
		data, err := Marshal(doc, FormatJSON, ExportOptions{})
		if err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(string(data), "{") || !strings.Contains(string(data), `"id": "solo"`) {
			t.Errorf("Marshal() = %s, want the task object", data)
		}

		if err := doc.AddTask(Task{ID: "extra"}); err != nil {
			t.Fatal(err)
		}
		data, err = Marshal(doc, FormatJSON, ExportOptions{})
		if err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(string(data), "[") {
			t.Errorf("Marshal() after AddTask = %s, want a JSON array", data)
		}
	}
}
