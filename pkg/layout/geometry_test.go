package layout

import (
	"testing"

	"github.com/matzehuels/flowlayout/pkg/dag"
)

func TestSegmentsIntersect(t *testing.T) {
	p := func(x, y float64) dag.Point { return dag.Point{X: x, Y: y} }
	tests := []struct {
		name           string
		a1, a2, b1, b2 dag.Point
		want           bool
	}{
		{"cross", p(0, 0), p(10, 10), p(0, 10), p(10, 0), true},
		{"touching endpoint", p(0, 0), p(10, 0), p(10, 0), p(10, 10), true},
		{"disjoint", p(0, 0), p(1, 1), p(5, 5), p(6, 7), false},
		{"parallel", p(0, 0), p(10, 0), p(0, 1), p(10, 1), false},
		{"collinear overlap", p(0, 0), p(10, 0), p(5, 0), p(15, 0), false},
		{"would cross if extended", p(0, 0), p(1, 1), p(0, 10), p(10, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SegmentsIntersect(tt.a1, tt.a2, tt.b1, tt.b2); got != tt.want {
				t.Errorf("SegmentsIntersect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEdgeCrossesRect(t *testing.T) {
	r := Rect{X: 0, Y: 100, W: 180, H: 40}
	if !EdgeCrossesRect(dag.Point{X: 90, Y: 0}, dag.Point{X: 90, Y: 300}, r) {
		t.Error("vertical line through box: want crossing")
	}
	if EdgeCrossesRect(dag.Point{X: 500, Y: 0}, dag.Point{X: 500, Y: 300}, r) {
		t.Error("line beside box: want no crossing")
	}
	if EdgeCrossesRect(dag.Point{X: 10, Y: 110}, dag.Point{X: 20, Y: 120}, r) {
		t.Error("segment inside box: want no crossing")
	}
}

func TestBounds(t *testing.T) {
	nodes := []*dag.Node{{ID: "a", X: -100, Y: 0}, {ID: "b", X: 200, Y: 240}}
	got := Bounds(nodes, 180, 40)
	want := Box{MinX: -100, MinY: 0, MaxX: 380, MaxY: 280, Width: 480, Height: 280}
	if got != want {
		t.Errorf("Bounds() = %+v, want %+v", got, want)
	}
	if got := Bounds(nil, 180, 40); got != (Box{}) {
		t.Errorf("Bounds(nil) = %+v, want zero", got)
	}
}

func TestRoundHalfUp(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{2.5, 3},
		{-2.5, -2},
		{2.4, 2},
		{-2.6, -3},
	}
	for _, tt := range tests {
		if got := roundHalfUp(tt.in); got != tt.want {
			t.Errorf("roundHalfUp(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
