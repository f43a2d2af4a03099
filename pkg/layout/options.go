package layout

import (
	"strings"

	"github.com/matzehuels/flowlayout/pkg/errors"
)

// Direction selects the layout orientation.
type Direction string

const (
	TopBottom Direction = "TB"
	LeftRight Direction = "LR"
)

// ParseDirection parses "TB" or "LR" (case-insensitive). The empty string
// selects [TopBottom].
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "TB":
		return TopBottom, nil
	case "LR":
		return LeftRight, nil
	}
	return "", errors.New(errors.ErrCodeInvalidDirection, "unknown layout direction %q (want TB or LR)", s)
}

// Spacing is a pair of horizontal and vertical distances.
type Spacing struct {
	X float64 `json:"x" toml:"x"`
	Y float64 `json:"y" toml:"y"`
}

// Default layout parameters.
const (
	DefaultNodeWidth    = 180
	DefaultNodeHeight   = 40
	DefaultLevelSpacing = 120
	DefaultSpacingX     = 300
	DefaultSpacingY     = 180
)

// Options configures [Arrange] and the crossing analysis.
type Options struct {
	Direction Direction `json:"direction"`

	// NodeSpacing is the minimum distance between siblings. In TB layouts
	// X separates nodes on the same level; in LR layouts X separates
	// columns and Y separates stacked siblings.
	NodeSpacing Spacing `json:"node_spacing"`

	// LevelSpacing is the vertical distance between levels in TB layouts.
	LevelSpacing float64 `json:"level_spacing"`

	// CenterNodes centers level 0 (TB) or every column (LR) around zero.
	CenterNodes bool `json:"center_nodes"`

	// NodeWidth and NodeHeight size the node boxes used for crossing
	// tests, bounds and alignment.
	NodeWidth  float64 `json:"node_width"`
	NodeHeight float64 `json:"node_height"`

	// BreakCycles removes back edges before leveling so that nodes on a
	// cycle receive real levels instead of being grouped with level 0.
	BreakCycles bool `json:"break_cycles"`
}

// DefaultOptions returns the editor's default layout.
func DefaultOptions() Options {
	return Options{
		Direction:    TopBottom,
		NodeSpacing:  Spacing{X: DefaultSpacingX, Y: DefaultSpacingY},
		LevelSpacing: DefaultLevelSpacing,
		CenterNodes:  true,
		NodeWidth:    DefaultNodeWidth,
		NodeHeight:   DefaultNodeHeight,
	}
}

// withDefaults fills zero-valued numeric fields and the direction.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Direction == "" {
		o.Direction = d.Direction
	}
	if o.NodeSpacing.X == 0 {
		o.NodeSpacing.X = d.NodeSpacing.X
	}
	if o.NodeSpacing.Y == 0 {
		o.NodeSpacing.Y = d.NodeSpacing.Y
	}
	if o.LevelSpacing == 0 {
		o.LevelSpacing = d.LevelSpacing
	}
	if o.NodeWidth == 0 {
		o.NodeWidth = d.NodeWidth
	}
	if o.NodeHeight == 0 {
		o.NodeHeight = d.NodeHeight
	}
	return o
}

// Validate rejects unknown directions and negative sizes.
func (o Options) Validate() error {
	if _, err := ParseDirection(string(o.Direction)); err != nil {
		return err
	}
	if o.NodeSpacing.X < 0 || o.NodeSpacing.Y < 0 || o.LevelSpacing < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "spacing must not be negative")
	}
	if o.NodeWidth < 0 || o.NodeHeight < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "node size must not be negative")
	}
	return nil
}
