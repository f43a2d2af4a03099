package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/flowlayout/pkg/layout"
	"github.com/matzehuels/flowlayout/pkg/observability"
	"github.com/matzehuels/flowlayout/pkg/workflow"
)

const chainDoc = `{
  "name": "chain",
  "tasks": [
    {"id": "a", "action_name": "extract"},
    {"id": "b", "action_name": "clean", "depend_on": ["a"]},
    {"id": "c", "action_name": "report", "depend_on": ["a", "b"]}
  ]
}`

// isolate points every XDG directory at a fresh temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	return dir
}

func runCLI(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Cleanup(func() {
		statusOut = os.Stderr
		observability.Reset()
	})
	var out, errOut bytes.Buffer
	err = Execute(context.Background(), args, Streams{
		In:  strings.NewReader(stdin),
		Out: &out,
		Err: &errOut,
	})
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func parseDoc(t *testing.T, data string) *workflow.Document {
	t.Helper()
	doc, err := workflow.Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse() error: %v\n%s", err, data)
	}
	return doc
}

func TestVersion(t *testing.T) {
	isolate(t)
	out, _, err := runCLI(t, "", "--version")
	if err != nil {
		t.Fatalf("--version error: %v", err)
	}
	if !strings.Contains(out, "flowlayout version") {
		t.Errorf("--version output = %q, want it to contain %q", out, "flowlayout version")
	}
}

func TestValidate(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "chain.json", chainDoc)

	_, stderr, err := runCLI(t, "", "validate", path)
	if err != nil {
		t.Fatalf("validate error: %v", err)
	}
	if !strings.Contains(stderr, "chain is valid") {
		t.Errorf("stderr = %q, want a success line", stderr)
	}
}

func TestValidateInvalid(t *testing.T) {
	isolate(t)
	_, _, err := runCLI(t, `{"tasks": [{"id": "a", "action_name": "x"}, {"id": "a", "action_name": "y"}]}`, "validate", "-")
	if err == nil {
		t.Fatal("validate accepted duplicate task ids")
	}
}

func TestValidateCycleWarns(t *testing.T) {
	isolate(t)
	cyclic := `[{"id": "a", "action_name": "x", "depend_on": ["b"]}, {"id": "b", "action_name": "y", "depend_on": ["a"]}]`
	_, stderr, err := runCLI(t, cyclic, "validate", "-")
	if err != nil {
		t.Fatalf("validate error: %v", err)
	}
	if !strings.Contains(stderr, "dependency cycle") {
		t.Errorf("stderr = %q, want a cycle warning", stderr)
	}
}

func TestLayoutToStdout(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "chain.json", chainDoc)

	out, _, err := runCLI(t, "", "layout", path)
	if err != nil {
		t.Fatalf("layout error: %v", err)
	}
	doc := parseDoc(t, out)
	for _, task := range doc.Tasks {
		if task.Position == nil {
			t.Errorf("task %s has no position", task.ID)
		}
	}
	a, _ := doc.Task("a")
	c, _ := doc.Task("c")
	if a.Position.Y >= c.Position.Y {
		t.Errorf("a.Y = %v, c.Y = %v: want a above c in a TB layout", a.Position.Y, c.Position.Y)
	}
}

func TestLayoutDirectionLR(t *testing.T) {
	isolate(t)
	out, _, err := runCLI(t, chainDoc, "layout", "-", "-d", "LR")
	if err != nil {
		t.Fatalf("layout error: %v", err)
	}
	doc := parseDoc(t, out)
	a, _ := doc.Task("a")
	b, _ := doc.Task("b")
	if a.Position.X >= b.Position.X {
		t.Errorf("a.X = %v, b.X = %v: want a left of b in an LR layout", a.Position.X, b.Position.X)
	}
}

func TestLayoutYAMLOutput(t *testing.T) {
	isolate(t)
	out, _, err := runCLI(t, chainDoc, "layout", "-", "--format", "yaml")
	if err != nil {
		t.Fatalf("layout error: %v", err)
	}
	if workflow.DetectFormat([]byte(out)) != workflow.FormatYAML {
		t.Errorf("output is not YAML:\n%s", out)
	}
	parseDoc(t, out)
}

func TestLayoutInPlaceRemembers(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "chain.json", chainDoc)

	if _, _, err := runCLI(t, "", "layout", "-i", path); err != nil {
		t.Fatalf("layout error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	doc := parseDoc(t, string(data))
	if b, _ := doc.Task("b"); b.Position == nil {
		t.Error("layout -i did not write positions into the file")
	}

	out, _, err := runCLI(t, "", "history", "list")
	if err != nil {
		t.Fatalf("history list error: %v", err)
	}
	if !strings.Contains(out, "chain") {
		t.Errorf("history list = %q, want the laid-out document", out)
	}
}

func TestLayoutInPlaceRejectsStdin(t *testing.T) {
	isolate(t)
	if _, _, err := runCLI(t, chainDoc, "layout", "-i", "-"); err == nil {
		t.Error("layout -i - succeeded, want an error")
	}
}

func TestLayoutBadDirection(t *testing.T) {
	isolate(t)
	if _, _, err := runCLI(t, chainDoc, "layout", "-", "-d", "diagonal"); err == nil {
		t.Error("layout accepted an unknown direction")
	}
}

func TestAnalyzeJSON(t *testing.T) {
	isolate(t)
	out, _, err := runCLI(t, chainDoc, "analyze", "-", "--relayout", "--json")
	if err != nil {
		t.Fatalf("analyze error: %v", err)
	}
	var a layout.Analysis
	if err := json.Unmarshal([]byte(out), &a); err != nil {
		t.Fatalf("analysis is not JSON: %v\n%s", err, out)
	}
	if a.TotalNodes != 3 || a.TotalEdges != 3 {
		t.Errorf("analysis counts = %d nodes, %d edges, want 3, 3", a.TotalNodes, a.TotalEdges)
	}
	if len(a.Redundant) != 1 || a.Redundant[0] != "a->c" {
		t.Errorf("Redundant = %v, want [a->c]", a.Redundant)
	}
}

func TestAnalyzeReport(t *testing.T) {
	isolate(t)
	out, _, err := runCLI(t, chainDoc, "analyze", "-")
	if err != nil {
		t.Fatalf("analyze error: %v", err)
	}
	for _, want := range []string{"Layout analysis", "redundant dependencies", "a->c"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestSnap(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "chain.json", chainDoc)

	out, _, err := runCLI(t, "", "snap", path, "b", "13", "27", "--no-nodes", "--grid-size", "20")
	if err != nil {
		t.Fatalf("snap error: %v", err)
	}
	if got := strings.TrimSpace(out); got != "20 20" {
		t.Errorf("snap output = %q, want %q", got, "20 20")
	}
}

func TestSnapWrite(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "chain.json", chainDoc)

	if _, _, err := runCLI(t, "", "snap", path, "b", "41", "59", "--no-nodes", "--grid-size", "20", "-w"); err != nil {
		t.Fatalf("snap error: %v", err)
	}
	data, _ := os.ReadFile(path)
	b, _ := parseDoc(t, string(data)).Task("b")
	if b.Position == nil || b.Position.X != 40 || b.Position.Y != 60 {
		t.Errorf("b.Position = %+v, want (40, 60)", b.Position)
	}
}

func TestSnapErrors(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "chain.json", chainDoc)

	tests := []struct {
		name string
		args []string
	}{
		{"unknown task", []string{"snap", path, "ghost", "1", "2"}},
		{"bad x", []string{"snap", path, "a", "left", "2"}},
		{"write stdin", []string{"snap", "-", "a", "1", "2", "-w"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := runCLI(t, chainDoc, tt.args...); err == nil {
				t.Errorf("%v succeeded, want an error", tt.args)
			}
		})
	}
}

func TestTidyPruneRedundant(t *testing.T) {
	isolate(t)
	out, _, err := runCLI(t, chainDoc, "tidy", "-", "--prune-redundant")
	if err != nil {
		t.Fatalf("tidy error: %v", err)
	}
	c, _ := parseDoc(t, out).Task("c")
	if len(c.DependOn) != 1 || c.DependOn[0] != "b" {
		t.Errorf("c.DependOn = %v, want [b]", c.DependOn)
	}
}

func TestTidyAlign(t *testing.T) {
	isolate(t)
	doc := `[
  {"id": "a", "action_name": "x", "position": {"x": 10, "y": 0}},
  {"id": "b", "action_name": "y", "position": {"x": 50, "y": 100}},
  {"id": "c", "action_name": "z", "position": {"x": 30, "y": 200}}
]`
	out, _, err := runCLI(t, doc, "tidy", "-", "--align", "left", "--tasks", "a,b")
	if err != nil {
		t.Fatalf("tidy error: %v", err)
	}
	got := parseDoc(t, out)
	for id, want := range map[string]float64{"a": 10, "b": 10, "c": 30} {
		task, _ := got.Task(id)
		if task.Position.X != want {
			t.Errorf("%s.X = %v, want %v", id, task.Position.X, want)
		}
	}
}

func TestTidyNeedsAnEdit(t *testing.T) {
	isolate(t)
	if _, _, err := runCLI(t, chainDoc, "tidy", "-"); err == nil {
		t.Error("tidy without edits succeeded, want an error")
	}
}

func TestExample(t *testing.T) {
	dir := isolate(t)

	out, _, err := runCLI(t, "", "example")
	if err != nil {
		t.Fatalf("example error: %v", err)
	}
	if workflow.DetectFormat([]byte(out)) != workflow.FormatJSON {
		t.Errorf("example output is not JSON:\n%s", out)
	}
	parseDoc(t, out)

	path := filepath.Join(dir, "example.yaml")
	if _, _, err := runCLI(t, "", "example", "-o", path); err != nil {
		t.Fatalf("example -o error: %v", err)
	}
	data, _ := os.ReadFile(path)
	if workflow.DetectFormat(data) != workflow.FormatYAML {
		t.Errorf("example.yaml is not YAML:\n%s", data)
	}
}

func TestHistoryShowAndRemove(t *testing.T) {
	isolate(t)
	if _, _, err := runCLI(t, chainDoc, "layout", "-"); err != nil {
		t.Fatalf("layout error: %v", err)
	}

	store, err := New(os.Stderr, LogInfo).openHistory(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	entries, err := store.List(context.Background(), 0)
	store.Close()
	if err != nil || len(entries) != 1 {
		t.Fatalf("history entries = %v (err %v), want 1", entries, err)
	}
	prefix := entries[0].ID[:6]

	out, _, err := runCLI(t, "", "history", "show", prefix)
	if err != nil {
		t.Fatalf("history show error: %v", err)
	}
	if b, _ := parseDoc(t, out).Task("b"); b.Position == nil {
		t.Error("remembered document lost its positions")
	}

	if _, _, err := runCLI(t, "", "history", "rm", prefix); err != nil {
		t.Fatalf("history rm error: %v", err)
	}
	if _, _, err := runCLI(t, "", "history", "show", prefix); err == nil {
		t.Error("history show found a removed entry")
	}
}

func TestHistoryClear(t *testing.T) {
	isolate(t)
	for range 2 {
		if _, _, err := runCLI(t, chainDoc, "layout", "-", "--no-cache"); err != nil {
			t.Fatalf("layout error: %v", err)
		}
	}
	_, stderr, err := runCLI(t, "", "history", "clear")
	if err != nil {
		t.Fatalf("history clear error: %v", err)
	}
	if !strings.Contains(stderr, "Cleared history") {
		t.Errorf("stderr = %q, want a cleared message", stderr)
	}
	_, stderr, _ = runCLI(t, "", "history", "list")
	if !strings.Contains(stderr, "History is empty") {
		t.Errorf("stderr = %q, want an empty history", stderr)
	}
}

func TestCacheCommands(t *testing.T) {
	dir := isolate(t)

	out, _, err := runCLI(t, "", "cache", "path")
	if err != nil {
		t.Fatalf("cache path error: %v", err)
	}
	want := filepath.Join(dir, "cache", appName)
	if got := strings.TrimSpace(out); got != want {
		t.Errorf("cache path = %q, want %q", got, want)
	}

	if _, _, err := runCLI(t, chainDoc, "layout", "-"); err != nil {
		t.Fatalf("layout error: %v", err)
	}
	_, stderr, err := runCLI(t, "", "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear error: %v", err)
	}
	if !strings.Contains(stderr, "Cleared 1 cached layouts") {
		t.Errorf("stderr = %q, want one cleared layout", stderr)
	}
}

func TestConfigCommands(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.toml")

	if _, _, err := runCLI(t, "", "--config", path, "config", "init"); err != nil {
		t.Fatalf("config init error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config init did not write %s: %v", path, err)
	}
	if _, _, err := runCLI(t, "", "--config", path, "config", "init"); err == nil {
		t.Error("config init overwrote an existing file without --force")
	}

	out, _, err := runCLI(t, "", "--config", path, "config", "path")
	if err != nil {
		t.Fatalf("config path error: %v", err)
	}
	if strings.TrimSpace(out) != path {
		t.Errorf("config path = %q, want %q", out, path)
	}

	out, _, err = runCLI(t, "", "--config", path, "config", "show")
	if err != nil {
		t.Fatalf("config show error: %v", err)
	}
	if !strings.Contains(out, "[layout]") {
		t.Errorf("config show = %q, want a [layout] table", out)
	}
}

func TestConfigDirectionDefault(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "lr.toml", "[layout]\ndirection = \"LR\"\n")

	out, _, err := runCLI(t, chainDoc, "--config", path, "layout", "-")
	if err != nil {
		t.Fatalf("layout error: %v", err)
	}
	doc := parseDoc(t, out)
	a, _ := doc.Task("a")
	b, _ := doc.Task("b")
	if a.Position.X >= b.Position.X {
		t.Errorf("configured LR direction ignored: a.X = %v, b.X = %v", a.Position.X, b.Position.X)
	}
}

func TestConfigUnknownKey(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "bad.toml", "[layout]\ndirektion = \"LR\"\n")

	if _, _, err := runCLI(t, "", "--config", path, "example"); err == nil {
		t.Error("a config typo was accepted")
	}
}

func TestVerboseTracesPipeline(t *testing.T) {
	isolate(t)
	_, stderr, err := runCLI(t, chainDoc, "-v", "layout", "-", "--no-cache")
	if err != nil {
		t.Fatalf("layout error: %v", err)
	}
	if !strings.Contains(stderr, "direction=TB") {
		t.Errorf("stderr = %q, want pipeline tracing", stderr)
	}
}

func TestCompletion(t *testing.T) {
	isolate(t)
	out, _, err := runCLI(t, "", "completion", "bash")
	if err != nil {
		t.Fatalf("completion error: %v", err)
	}
	if !strings.Contains(out, "flowlayout") {
		t.Error("bash completion does not mention flowlayout")
	}
}

func TestShippedExamples(t *testing.T) {
	isolate(t)
	paths, err := filepath.Glob("../../examples/workflows/*")
	if err != nil || len(paths) == 0 {
		t.Fatalf("no example workflows found (err %v)", err)
	}
	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			if _, _, err := runCLI(t, "", "validate", path); err != nil {
				t.Errorf("validate %s: %v", path, err)
			}
		})
	}
}
