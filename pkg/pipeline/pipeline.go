// Package pipeline runs the load → layout → analyze flow shared by the CLI
// and the HTTP API.
//
// Centralizing the flow keeps both entry points consistent: the same
// defaults, the same cache keys and the same observability events.
//
// # Stages
//
//  1. Load: decode and validate a JSON or YAML workflow document
//  2. Layout: build the visual graph, assign levels and positions
//  3. Analyze: detect edge crossings, cycles and redundant dependencies
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	doc, _, err := runner.Load(ctx, data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := runner.Layout(ctx, doc, pipeline.Options{Direction: "LR"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.Stdout.Write(result.Output)
package pipeline

import (
	"time"

	"github.com/matzehuels/flowlayout/pkg/cache"
	"github.com/matzehuels/flowlayout/pkg/dag"
	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/layout"
	"github.com/matzehuels/flowlayout/pkg/workflow"
)

// Options configures a pipeline run. Zero values select the defaults of
// [layout.DefaultOptions]. It supports JSON for API requests.
type Options struct {
	Direction    string  `json:"direction,omitempty"`
	NodeSpacingX float64 `json:"node_spacing_x,omitempty"`
	NodeSpacingY float64 `json:"node_spacing_y,omitempty"`
	LevelSpacing float64 `json:"level_spacing,omitempty"`
	CenterNodes  *bool   `json:"center_nodes,omitempty"`
	NodeWidth    float64 `json:"node_width,omitempty"`
	NodeHeight   float64 `json:"node_height,omitempty"`
	BreakCycles  bool    `json:"break_cycles,omitempty"`

	// Grid snaps every computed position to a grid of this size. Zero
	// disables snapping.
	Grid float64 `json:"grid,omitempty"`

	// Format is the encoding of Result.Output: "json" (default) or "yaml".
	Format string `json:"format,omitempty"`

	// IncludePositions keeps task positions in Result.Output.
	IncludePositions bool `json:"include_positions,omitempty"`

	// KeepPositions skips arranging when every task already has a
	// position, so saved layouts are only analyzed.
	KeepPositions bool `json:"keep_positions,omitempty"`

	// Refresh bypasses the cache lookup. The fresh result is still stored.
	Refresh bool `json:"refresh,omitempty"`
}

// Result contains the outputs of a layout run.
type Result struct {
	// Document is a copy of the input with computed positions.
	Document *workflow.Document

	// Graph is the positioned visual graph.
	Graph *dag.DAG

	Levels   layout.Levels
	Analysis layout.Analysis

	// Output is Document serialized per Options.Format.
	Output []byte

	Stats Stats

	// CacheHit reports whether positions and analysis came from the cache.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	TaskCount    int
	EdgeCount    int
	Arranged     bool
	LayoutTime   time.Duration
	AnalysisTime time.Duration
}

// SetDefaults fills unset fields. It is idempotent.
func (o *Options) SetDefaults() {
	d := layout.DefaultOptions()
	if o.Direction == "" {
		o.Direction = string(d.Direction)
	}
	if o.NodeSpacingX == 0 {
		o.NodeSpacingX = d.NodeSpacing.X
	}
	if o.NodeSpacingY == 0 {
		o.NodeSpacingY = d.NodeSpacing.Y
	}
	if o.LevelSpacing == 0 {
		o.LevelSpacing = d.LevelSpacing
	}
	if o.CenterNodes == nil {
		center := d.CenterNodes
		o.CenterNodes = &center
	}
	if o.NodeWidth == 0 {
		o.NodeWidth = d.NodeWidth
	}
	if o.NodeHeight == 0 {
		o.NodeHeight = d.NodeHeight
	}
	if o.Format == "" {
		o.Format = string(workflow.FormatJSON)
	}
}

// Validate checks the direction, the output format and the sizes.
func (o *Options) Validate() error {
	if err := o.LayoutOptions().Validate(); err != nil {
		return err
	}
	if _, err := workflow.ParseFormat(o.Format); err != nil {
		return err
	}
	if o.Grid < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "grid size must not be negative")
	}
	return nil
}

// LayoutOptions converts o to layout options. Unknown directions are
// passed through so that Validate reports them.
func (o *Options) LayoutOptions() layout.Options {
	dir, err := layout.ParseDirection(o.Direction)
	if err != nil {
		dir = layout.Direction(o.Direction)
	}
	opts := layout.Options{
		Direction:    dir,
		NodeSpacing:  layout.Spacing{X: o.NodeSpacingX, Y: o.NodeSpacingY},
		LevelSpacing: o.LevelSpacing,
		CenterNodes:  layout.DefaultOptions().CenterNodes,
		NodeWidth:    o.NodeWidth,
		NodeHeight:   o.NodeHeight,
		BreakCycles:  o.BreakCycles,
	}
	if o.CenterNodes != nil {
		opts.CenterNodes = *o.CenterNodes
	}
	return opts
}

// LayoutKeyOpts returns cache key options for a layout run.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	lo := o.LayoutOptions()
	return cache.LayoutKeyOpts{
		Direction:        string(lo.Direction),
		NodeSpacingX:     lo.NodeSpacing.X,
		NodeSpacingY:     lo.NodeSpacing.Y,
		LevelSpacing:     lo.LevelSpacing,
		CenterNodes:      lo.CenterNodes,
		NodeWidth:        lo.NodeWidth,
		NodeHeight:       lo.NodeHeight,
		BreakCycles:      lo.BreakCycles,
		Grid:             o.Grid,
		Format:           o.Format,
		IncludePositions: o.IncludePositions,
		KeepPositions:    o.KeepPositions,
	}
}

// format returns the parsed output format; call after Validate.
func (o *Options) format() workflow.Format {
	f, _ := workflow.ParseFormat(o.Format)
	return f
}
