package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowlayout/pkg/cache"
	"github.com/matzehuels/flowlayout/pkg/dag"
	"github.com/matzehuels/flowlayout/pkg/layout"
	"github.com/matzehuels/flowlayout/pkg/observability"
	"github.com/matzehuels/flowlayout/pkg/workflow"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL is how long layout results stay cached. Zero selects
	// cache.TTLLayout.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Load decodes and validates a JSON or YAML document and builds its visual
// graph. Nodes take the persisted task positions where present.
func (r *Runner) Load(ctx context.Context, data []byte) (*workflow.Document, *dag.DAG, error) {
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, len(data))
	start := time.Now()
	format := workflow.DetectFormat(data)

	doc, err := workflow.ParseAs(data, format)
	if err != nil {
		hooks.OnLoadComplete(ctx, string(format), 0, time.Since(start), err)
		return nil, nil, err
	}
	g, err := dag.FromDocument(doc)
	hooks.OnLoadComplete(ctx, string(format), len(doc.Tasks), time.Since(start), err)
	if err != nil {
		return nil, nil, err
	}

	r.Logger.Debug("loaded workflow",
		"format", format,
		"tasks", len(doc.Tasks),
		"edges", g.EdgeCount())
	return doc, g, nil
}

// cachedLayout is the cache payload of a layout run.
type cachedLayout struct {
	Positions map[string]dag.Point `json:"positions"`
	Levels    layout.Levels        `json:"levels"`
	Analysis  layout.Analysis      `json:"analysis"`
	Arranged  bool                 `json:"arranged"`
}

// Layout positions every task of doc and analyzes the result. doc itself
// is not modified; Result.Document carries the positions.
func (r *Runner) Layout(ctx context.Context, doc *workflow.Document, opts Options) (*Result, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	g, err := dag.FromDocument(doc)
	if err != nil {
		return nil, err
	}
	result := &Result{
		Document: doc.Clone(),
		Graph:    g,
		Stats:    Stats{TaskCount: len(doc.Tasks), EdgeCount: g.EdgeCount()},
	}

	cacheKey := r.layoutKey(doc, opts)
	if cached, ok := r.lookup(ctx, cacheKey, opts); ok {
		g.SetPositions(cached.Positions)
		result.Levels = cached.Levels
		result.Analysis = cached.Analysis
		result.Stats.Arranged = cached.Arranged
		result.CacheHit = true
	} else {
		r.arrange(ctx, result, opts)
		r.analyze(ctx, result, opts)
		r.store(ctx, cacheKey, cachedLayout{
			Positions: g.Positions(),
			Levels:    result.Levels,
			Analysis:  result.Analysis,
			Arranged:  result.Stats.Arranged,
		})
	}

	result.Document.SetPositions(g.TaskPositions())
	if cycle := result.Analysis.Cycle; cycle != nil {
		r.Logger.Warn("dependency cycle", "path", strings.Join(cycle, " -> "))
	}

	out, err := workflow.Marshal(result.Document, opts.format(), workflow.ExportOptions{
		IncludePositions: opts.IncludePositions,
	})
	if err != nil {
		return nil, err
	}
	result.Output = out

	r.Logger.Info("computed layout",
		"tasks", result.Stats.TaskCount,
		"crossings", len(result.Analysis.Crossings),
		"cached", result.CacheHit,
		"duration", result.Stats.LayoutTime+result.Stats.AnalysisTime)
	return result, nil
}

// Analyze inspects doc at its persisted positions without arranging it.
// Tasks without a position are placed by [dag.InitialPositions].
func (r *Runner) Analyze(ctx context.Context, doc *workflow.Document, opts Options) (*dag.DAG, layout.Analysis, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, layout.Analysis{}, fmt.Errorf("invalid options: %w", err)
	}
	g, err := dag.FromDocument(doc)
	if err != nil {
		return nil, layout.Analysis{}, err
	}
	result := &Result{Graph: g}
	r.analyze(ctx, result, opts)
	return g, result.Analysis, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// arrange computes positions unless KeepPositions applies, then snaps
// them to the grid.
func (r *Runner) arrange(ctx context.Context, result *Result, opts Options) {
	hooks := observability.Pipeline()
	g := result.Graph
	lo := opts.LayoutOptions()
	start := time.Now()
	hooks.OnLayoutStart(ctx, string(lo.Direction), g.NodeCount())

	if opts.KeepPositions && allPositioned(result.Document) {
		result.Levels = layout.AssignLevels(g)
		r.Logger.Debug("kept saved positions", "tasks", g.NodeCount())
	} else {
		result.Levels = layout.Apply(g, lo)
		result.Stats.Arranged = true
	}
	if opts.Grid > 0 {
		layout.SnapToGrid(g, opts.Grid)
	}

	result.Stats.LayoutTime = time.Since(start)
	hooks.OnLayoutComplete(ctx, string(lo.Direction), result.Stats.LayoutTime, nil)
}

func (r *Runner) analyze(ctx context.Context, result *Result, opts Options) {
	start := time.Now()
	result.Analysis = layout.Analyze(result.Graph, opts.LayoutOptions())
	result.Stats.AnalysisTime = time.Since(start)
	observability.Pipeline().OnAnalysisComplete(ctx,
		len(result.Analysis.Crossings), result.Analysis.Cycle != nil, result.Stats.AnalysisTime)
}

// layoutKey hashes doc with its positions, so moving a task invalidates
// the entry.
func (r *Runner) layoutKey(doc *workflow.Document, opts Options) string {
	data, err := workflow.Marshal(doc, workflow.FormatJSON, workflow.ExportOptions{IncludePositions: true})
	if err != nil {
		return ""
	}
	return r.Keyer.LayoutKey(cache.Hash(data), opts.LayoutKeyOpts())
}

func (r *Runner) lookup(ctx context.Context, key string, opts Options) (cachedLayout, bool) {
	if key == "" || opts.Refresh {
		return cachedLayout{}, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "err", err)
		return cachedLayout{}, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, "layout")
		return cachedLayout{}, false
	}
	var cached cachedLayout
	if err := json.Unmarshal(data, &cached); err != nil {
		// If deserialization fails, fall through to recompute
		observability.Cache().OnCacheMiss(ctx, "layout")
		return cachedLayout{}, false
	}
	observability.Cache().OnCacheHit(ctx, "layout")
	return cached, true
}

func (r *Runner) store(ctx context.Context, key string, v cachedLayout) {
	if key == "" {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	ttl := r.TTL
	if ttl == 0 {
		ttl = cache.TTLLayout
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "layout", len(data))
}

func allPositioned(doc *workflow.Document) bool {
	for _, t := range doc.Tasks {
		if t.Position == nil {
			return false
		}
	}
	return true
}
