package pipeline

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowlayout/pkg/cache"
	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/observability"
	"github.com/matzehuels/flowlayout/pkg/workflow"
)

func quietRunner(c cache.Cache) *Runner {
	return NewRunner(c, nil, log.NewWithOptions(&bytes.Buffer{}, log.Options{}))
}

func forkDoc() *workflow.Document {
	return &workflow.Document{Tasks: []workflow.Task{
		{ID: "A", ActionName: "start"},
		{ID: "B", ActionName: "work", DependOn: []string{"A"}},
		{ID: "C", ActionName: "work", DependOn: []string{"A"}},
	}}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr errors.Code
	}{
		{"defaults", Options{}, ""},
		{"lowercase direction", Options{Direction: "lr"}, ""},
		{"yaml", Options{Format: "yml"}, ""},
		{"bad direction", Options{Direction: "diagonal"}, errors.ErrCodeInvalidDirection},
		{"bad format", Options{Format: "xml"}, errors.ErrCodeInvalidFormat},
		{"negative grid", Options{Grid: -5}, errors.ErrCodeInvalidInput},
		{"negative spacing", Options{NodeSpacingX: -1}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.SetDefaults()
			err := tt.opts.Validate()
			if got := errors.GetCode(err); got != tt.wantErr {
				t.Errorf("Validate() code = %q, want %q (err %v)", got, tt.wantErr, err)
			}
		})
	}
}

func TestSetDefaults(t *testing.T) {
	var o Options
	o.SetDefaults()
	if o.Direction != "TB" || o.NodeSpacingX != 300 || o.LevelSpacing != 120 || o.Format != "json" {
		t.Errorf("SetDefaults() = %+v", o)
	}
	if o.CenterNodes == nil || !*o.CenterNodes {
		t.Error("SetDefaults() should center nodes")
	}

	off := false
	o = Options{CenterNodes: &off}
	o.SetDefaults()
	if *o.CenterNodes {
		t.Error("SetDefaults() overrode an explicit CenterNodes")
	}
}

func TestLayout(t *testing.T) {
	doc := forkDoc()
	res, err := quietRunner(nil).Layout(context.Background(), doc, Options{IncludePositions: true})
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}

	want := map[string]workflow.Position{"A": {X: 0, Y: 0}, "B": {X: 0, Y: 120}, "C": {X: 300, Y: 120}}
	for id, p := range want {
		task, _ := res.Document.Task(id)
		if task.Position == nil || *task.Position != p {
			t.Errorf("position of %s = %v, want %v", id, task.Position, p)
		}
	}
	if got := res.Levels.Of("C"); got != 1 {
		t.Errorf("level of C = %d, want 1", got)
	}
	if !res.Stats.Arranged || res.CacheHit {
		t.Errorf("Stats = %+v, CacheHit = %v", res.Stats, res.CacheHit)
	}
	if len(res.Analysis.Crossings) != 0 {
		t.Errorf("Crossings = %v, want none", res.Analysis.Crossings)
	}
	if !strings.Contains(string(res.Output), `"position"`) {
		t.Errorf("Output lacks positions:\n%s", res.Output)
	}

	for _, task := range doc.Tasks {
		if task.Position != nil {
			t.Errorf("input task %s was modified", task.ID)
		}
	}
}

func TestLayoutCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := quietRunner(c)
	ctx := context.Background()

	first, err := r.Layout(ctx, forkDoc(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Layout(ctx, forkDoc(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheHit || !second.CacheHit {
		t.Errorf("CacheHit = %v, %v; want false, true", first.CacheHit, second.CacheHit)
	}
	if !bytes.Equal(first.Output, second.Output) {
		t.Errorf("cached output differs:\n%s\n%s", first.Output, second.Output)
	}
	if p, _ := second.Graph.Node("C"); p.X != 300 {
		t.Errorf("cached C.X = %v, want 300", p.X)
	}

	refreshed, err := r.Layout(ctx, forkDoc(), Options{Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.CacheHit {
		t.Error("Refresh should bypass the cache")
	}

	lr, err := r.Layout(ctx, forkDoc(), Options{Direction: "LR"})
	if err != nil {
		t.Fatal(err)
	}
	if lr.CacheHit {
		t.Error("a different direction must not hit the TB entry")
	}
}

func TestLayoutKeepPositions(t *testing.T) {
	doc := forkDoc()
	for i := range doc.Tasks {
		doc.Tasks[i].Position = &workflow.Position{X: float64(i) * 7, Y: 11}
	}
	res, err := quietRunner(nil).Layout(context.Background(), doc, Options{KeepPositions: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.Stats.Arranged {
		t.Error("fully positioned document was arranged")
	}
	if b, _ := res.Document.Task("B"); *b.Position != (workflow.Position{X: 7, Y: 11}) {
		t.Errorf("B position = %v, want {7 11}", *b.Position)
	}

	doc.Tasks[2].Position = nil
	res, err = quietRunner(nil).Layout(context.Background(), doc, Options{KeepPositions: true})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Stats.Arranged {
		t.Error("partially positioned document should be arranged")
	}
}

func TestLayoutGrid(t *testing.T) {
	res, err := quietRunner(nil).Layout(context.Background(), forkDoc(), Options{Grid: 50})
	if err != nil {
		t.Fatal(err)
	}
	if b, _ := res.Graph.Node("B"); b.Y != 100 {
		t.Errorf("B.Y = %v, want 100", b.Y)
	}
}

func TestLayoutYAMLOutput(t *testing.T) {
	res, err := quietRunner(nil).Layout(context.Background(), forkDoc(), Options{Format: "yaml"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(res.Output), "action_name: start") {
		t.Errorf("Output is not YAML:\n%s", res.Output)
	}
	if strings.Contains(string(res.Output), "position") {
		t.Errorf("Output should omit positions:\n%s", res.Output)
	}
}

func TestLayoutCycleWarning(t *testing.T) {
	var buf bytes.Buffer
	r := NewRunner(nil, nil, log.NewWithOptions(&buf, log.Options{}))
	doc := &workflow.Document{Tasks: []workflow.Task{
		{ID: "a", ActionName: "x", DependOn: []string{"b"}},
		{ID: "b", ActionName: "x", DependOn: []string{"a"}},
	}}
	res, err := r.Layout(context.Background(), doc, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Analysis.Cycle == nil {
		t.Error("Analysis.Cycle = nil, want the cycle")
	}
	if !strings.Contains(buf.String(), "dependency cycle") {
		t.Errorf("missing cycle warning in log:\n%s", buf.String())
	}
}

func TestLayoutInvalid(t *testing.T) {
	r := quietRunner(nil)
	if _, err := r.Layout(context.Background(), forkDoc(), Options{Direction: "up"}); !errors.Is(err, errors.ErrCodeInvalidDirection) {
		t.Errorf("Layout() error = %v, want INVALID_DIRECTION", err)
	}
	if _, err := r.Layout(context.Background(), &workflow.Document{}, Options{}); !errors.Is(err, errors.ErrCodeInvalidSchema) {
		t.Errorf("Layout() error = %v, want INVALID_SCHEMA", err)
	}
}

func TestLoad(t *testing.T) {
	r := quietRunner(nil)
	doc, g, err := r.Load(context.Background(), []byte("tasks:\n  - id: a\n    action_name: x\n  - id: b\n    action_name: y\n    depend_on: [a]\n"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(doc.Tasks) != 2 || g.EdgeCount() != 1 {
		t.Errorf("Load() = %d tasks, %d edges; want 2, 1", len(doc.Tasks), g.EdgeCount())
	}

	if _, _, err := r.Load(context.Background(), []byte(`{"tasks": [`)); !errors.Is(err, errors.ErrCodeInvalidJSON) {
		t.Errorf("Load() error = %v, want INVALID_JSON", err)
	}
}

func TestAnalyzeKeepsPositions(t *testing.T) {
	doc := &workflow.Document{Tasks: []workflow.Task{
		{ID: "a", ActionName: "x", Position: &workflow.Position{X: 0, Y: 0}},
		{ID: "b", ActionName: "x", DependOn: []string{"a"}, Position: &workflow.Position{X: 0, Y: 100}},
		{ID: "c", ActionName: "x", DependOn: []string{"b", "a"}, Position: &workflow.Position{X: 0, Y: 200}},
	}}
	g, a, err := quietRunner(nil).Analyze(context.Background(), doc, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := g.Node("c"); n.Y != 200 {
		t.Errorf("c.Y = %v, want 200", n.Y)
	}
	if len(a.Crossings) != 1 || a.Crossings[0].EdgeID != "a->c" {
		t.Errorf("Crossings = %+v, want a->c through b", a.Crossings)
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) record(e string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

func (h *recordingHooks) OnLoadComplete(context.Context, string, int, time.Duration, error) {
	h.record("load")
}

func (h *recordingHooks) OnLayoutComplete(context.Context, string, time.Duration, error) {
	h.record("layout")
}

func (h *recordingHooks) OnAnalysisComplete(context.Context, int, bool, time.Duration) {
	h.record("analysis")
}

func TestHooksFire(t *testing.T) {
	h := &recordingHooks{}
	observability.SetPipelineHooks(h)
	defer observability.Reset()

	r := quietRunner(nil)
	doc, _, err := r.Load(context.Background(), []byte(`[{"id":"a","action_name":"x"}]`))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Layout(context.Background(), doc, Options{}); err != nil {
		t.Fatal(err)
	}
	want := []string{"load", "layout", "analysis"}
	if strings.Join(h.events, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", h.events, want)
	}
}
