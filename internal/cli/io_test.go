package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/workflow"
)

func TestReadInput(t *testing.T) {
	got, err := readInput("-", strings.NewReader("from stdin"))
	if err != nil || string(got) != "from stdin" {
		t.Errorf("readInput(-) = %q, %v", got, err)
	}

	_, err = readInput(filepath.Join(t.TempDir(), "missing.json"), nil)
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("readInput(missing) error = %v, want %s", err, errors.ErrCodeFileNotFound)
	}
}

func TestWriteOutput(t *testing.T) {
	var stdout bytes.Buffer
	if err := writeOutput("", []byte("doc"), &stdout); err != nil {
		t.Fatal(err)
	}
	if stdout.String() != "doc" {
		t.Errorf("stdout = %q, want %q", stdout.String(), "doc")
	}

	path := filepath.Join(t.TempDir(), "nested", "out.json")
	if err := writeOutput(path, []byte("first"), nil); err != nil {
		t.Fatalf("writeOutput() error: %v", err)
	}
	if err := writeOutput(path, []byte("second"), nil); err != nil {
		t.Fatalf("writeOutput() error: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "second" {
		t.Errorf("file = %q, want %q", data, "second")
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want only the output file", len(entries))
	}
}

func TestOutputFormat(t *testing.T) {
	tests := []struct {
		flag, path, input string
		want              workflow.Format
	}{
		{"yaml", "out.json", "{}", workflow.FormatYAML},
		{"", "out.yml", "{}", workflow.FormatYAML},
		{"", "out.json", "tasks: []", workflow.FormatJSON},
		{"", "", "tasks: []", workflow.FormatYAML},
		{"", "-", `{"tasks": []}`, workflow.FormatJSON},
	}
	for _, tt := range tests {
		got, err := outputFormat(tt.flag, tt.path, []byte(tt.input))
		if err != nil {
			t.Errorf("outputFormat(%q, %q) error: %v", tt.flag, tt.path, err)
			continue
		}
		if got != tt.want {
			t.Errorf("outputFormat(%q, %q) = %v, want %v", tt.flag, tt.path, got, tt.want)
		}
	}

	if _, err := outputFormat("xml", "", nil); err == nil {
		t.Error("outputFormat(xml) error = nil, want an error")
	}
}

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"-":                  "stdin",
		"etl.json":           "etl",
		"/tmp/nightly.yaml":  "nightly",
		"dir/with.dots.json": "with.dots",
	}
	for in, want := range tests {
		if got := displayName(in); got != want {
			t.Errorf("displayName(%q) = %q, want %q", in, got, want)
		}
	}
}
