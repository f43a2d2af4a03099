package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlayout/pkg/pipeline"
)

// layoutFlags are the layout parameters shared by layout, analyze and
// serve. Flags the user did not set leave the configured value alone.
type layoutFlags struct {
	direction    string
	spacingX     float64
	spacingY     float64
	levelSpacing float64
	nodeWidth    float64
	nodeHeight   float64
	grid         float64
	noCenter     bool
	breakCycles  bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.direction, "direction", "d", "", "layout direction: TB (default) or LR")
	fs.Float64Var(&f.spacingX, "node-spacing-x", 0, "horizontal gap between sibling tasks")
	fs.Float64Var(&f.spacingY, "node-spacing-y", 0, "vertical gap between sibling tasks")
	fs.Float64Var(&f.levelSpacing, "level-spacing", 0, "gap between levels")
	fs.Float64Var(&f.nodeWidth, "node-width", 0, "task box width")
	fs.Float64Var(&f.nodeHeight, "node-height", 0, "task box height")
	fs.Float64Var(&f.grid, "grid", 0, "snap positions to a grid of this size")
	fs.BoolVar(&f.noCenter, "no-center", false, "left-align levels instead of centering them")
	fs.BoolVar(&f.breakCycles, "break-cycles", false, "ignore back edges of dependency cycles when leveling")
}

// apply overlays the flags that were set on opts.
func (f *layoutFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	fs := cmd.Flags()
	if fs.Changed("direction") {
		opts.Direction = f.direction
	}
	if fs.Changed("node-spacing-x") {
		opts.NodeSpacingX = f.spacingX
	}
	if fs.Changed("node-spacing-y") {
		opts.NodeSpacingY = f.spacingY
	}
	if fs.Changed("level-spacing") {
		opts.LevelSpacing = f.levelSpacing
	}
	if fs.Changed("node-width") {
		opts.NodeWidth = f.nodeWidth
	}
	if fs.Changed("node-height") {
		opts.NodeHeight = f.nodeHeight
	}
	if fs.Changed("grid") {
		opts.Grid = f.grid
	}
	if f.noCenter {
		center := false
		opts.CenterNodes = &center
	}
	if f.breakCycles {
		opts.BreakCycles = true
	}
}

// layoutOptions returns the configured defaults with the flags applied.
func (c *CLI) layoutOptions(cmd *cobra.Command, f *layoutFlags) pipeline.Options {
	opts := c.layoutDefaults()
	f.apply(cmd, &opts)
	return opts
}
