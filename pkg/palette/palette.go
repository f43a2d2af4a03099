// Package palette assigns display colors to workflow nodes and edges.
//
// Colors are hex strings ("#3b82f6") so they can be handed to a browser
// canvas or a terminal style without conversion.
package palette

import (
	"unicode/utf16"

	"github.com/lucasb-eyer/go-colorful"
)

// Node colors indexed by action-name hash.
var nodeColors = [...]string{
	"#3b82f6", // blue
	"#8b5cf6", // violet
	"#06b6d4", // cyan
	"#ec4899", // pink
	"#f59e0b", // amber
	"#10b981", // emerald
	"#ef4444", // red
	"#6366f1", // indigo
	"#eab308", // yellow
	"#f97316", // orange
	"#14b8a6", // teal
	"#a855f7", // purple
}

// Edge colors for parallel edges that share a route.
var edgeColors = [...]string{
	"#94a3b8",
	"#2563eb",
	"#16a34a",
	"#ea580c",
	"#dc2626",
	"#7c3aed",
	"#0891b2",
	"#d97706",
}

const (
	Start   = "#4CAF50"
	End     = "#FF5252"
	Neutral = "#757575"
)

// ForAction returns the node color for an action name. The same name
// always maps to the same color, and browser clients computing the color
// themselves agree with it.
func ForAction(actionName string) string {
	return nodeColors[hashIndex(actionName, len(nodeColors))]
}

// TypeColor returns the legacy node-type color: green for the start
// action, red for the end action, grey otherwise.
func TypeColor(actionName string) string {
	switch actionName {
	case "start":
		return Start
	case "end":
		return End
	}
	return Neutral
}

// EdgeColor returns the color for the i-th edge of a group of overlapping
// edges. Indices wrap around.
func EdgeColor(i int) string {
	if i < 0 {
		i = -i
	}
	return edgeColors[i%len(edgeColors)]
}

// TextColor returns black or white, whichever reads better on bg.
// Unparseable colors get white text.
func TextColor(bg string) string {
	c, err := colorful.Hex(bg)
	if err != nil {
		return "#ffffff"
	}
	r, g, b := c.RGB255()
	brightness := (float64(r)*299 + float64(g)*587 + float64(b)*114) / 1000
	if brightness > 128 {
		return "#000000"
	}
	return "#ffffff"
}

// Valid reports whether s is a #rrggbb color.
func Valid(s string) bool {
	_, err := colorful.Hex(s)
	return err == nil && len(s) == 7
}

// hashIndex reproduces the string hash the editor uses: h = h*31 + c over
// UTF-16 code units, where only the shift wraps to 32 bits.
func hashIndex(s string, n int) int {
	var h int64
	for _, c := range utf16.Encode([]rune(s)) {
		h = int64(int32(h)<<5) - h + int64(c)
	}
	if h < 0 {
		h = -h
	}
	return int(h % int64(n))
}
