package layout

import (
	"reflect"
	"testing"
)

func TestLayered_Chain(t *testing.T) {
	nodes := sized("r", "c1", "c2")
	edges := []Edge{{Source: "r", Target: "c1"}, {Source: "r", Target: "c2"}}

	tests := []struct {
		dir  Direction
		want map[string][2]float64
	}{
		{TopBottom, map[string][2]float64{"r": {20, 20}, "c1": {20, 180}, "c2": {290, 180}}},
		{BottomTop, map[string][2]float64{"r": {20, 180}, "c1": {20, 20}, "c2": {290, 20}}},
		{LeftRight, map[string][2]float64{"r": {20, 20}, "c1": {320, 20}, "c2": {320, 150}}},
		{RightLeft, map[string][2]float64{"r": {320, 20}, "c1": {20, 20}, "c2": {20, 150}}},
	}
	for _, tt := range tests {
		t.Run(string(tt.dir), func(t *testing.T) {
			out, err := Layered{}.Layout(nodes, edges, Options{Direction: tt.dir})
			if err != nil {
				t.Fatalf("Layout() error: %v", err)
			}
			got := byID(out)
			for id, xy := range tt.want {
				if got[id].X != xy[0] || got[id].Y != xy[1] {
					t.Errorf("%s = (%v, %v), want (%v, %v)", id, got[id].X, got[id].Y, xy[0], xy[1])
				}
			}
		})
	}
}

func TestLayered_Align(t *testing.T) {
	nodes := sized("r", "c1", "c2")
	edges := []Edge{{Source: "r", Target: "c1"}, {Source: "r", Target: "c2"}}

	center := func(n Node) float64 { return n.X + n.Width/2 }
	tests := []struct {
		align Align
		check func(m map[string]Node) bool
	}{
		{AlignUL, func(m map[string]Node) bool { return m["r"].X == m["c1"].X }},
		{AlignUR, func(m map[string]Node) bool { return m["r"].X == m["c2"].X }},
		{AlignDL, func(m map[string]Node) bool {
			return center(m["r"]) == (center(m["c1"])+center(m["c2"]))/2
		}},
		{AlignDR, func(m map[string]Node) bool {
			return center(m["r"]) == (center(m["c1"])+center(m["c2"]))/2
		}},
	}
	for _, tt := range tests {
		t.Run(string(tt.align), func(t *testing.T) {
			out, err := Layered{}.Layout(nodes, edges, Options{Align: tt.align})
			if err != nil {
				t.Fatal(err)
			}
			if m := byID(out); !tt.check(m) {
				t.Errorf("align %s: unexpected positions %+v", tt.align, out)
			}
		})
	}
}

func TestLayered_RemovesCrossing(t *testing.T) {
	nodes := sized("a", "b", "x", "y")
	edges := []Edge{{Source: "a", Target: "y"}, {Source: "b", Target: "x"}}

	out, err := Layered{}.Layout(nodes, edges, Options{})
	if err != nil {
		t.Fatal(err)
	}
	m := byID(out)
	if m["a"].X != m["y"].X || m["b"].X != m["x"].X {
		t.Errorf("edges still cross: %+v", out)
	}
}

func TestLayered_NoOverlapWithinRank(t *testing.T) {
	nodes := sized("r", "a", "b", "c", "d", "e")
	edges := []Edge{
		{Source: "r", Target: "a"}, {Source: "r", Target: "b"}, {Source: "r", Target: "c"},
		{Source: "a", Target: "d"}, {Source: "c", Target: "d"}, {Source: "r", Target: "e"},
		{Source: "b", Target: "e"},
	}
	out, err := Layered{}.Layout(nodes, edges, Options{NodeSpacing: 30})
	if err != nil {
		t.Fatal(err)
	}
	for i := range out {
		for j := i + 1; j < len(out); j++ {
			a, b := out[i], out[j]
			overlapX := a.X < b.X+b.Width && b.X < a.X+a.Width
			overlapY := a.Y < b.Y+b.Height && b.Y < a.Y+a.Height
			if overlapX && overlapY {
				t.Errorf("%s and %s overlap: %+v %+v", a.ID, b.ID, a, b)
			}
		}
	}
	for _, n := range out {
		if n.X < DefaultPadding || n.Y < DefaultPadding {
			t.Errorf("%s at (%v, %v) is inside the padding", n.ID, n.X, n.Y)
		}
	}
}

func TestLayered_DeterministicAndPure(t *testing.T) {
	nodes := sized("scope", "subject_id", "window_type", "window_size", "unit", "note")
	edges := []Edge{
		{ID: "e1", Source: "scope", Target: "subject_id"},
		{ID: "e2", Source: "scope", Target: "window_type"},
		{ID: "e3", Source: "window_type", Target: "window_size"},
		{ID: "e4", Source: "scope", Target: "window_size"},
		{ID: "e5", Source: "unit", Target: "window_size"},
	}
	nodesBefore := append([]Node(nil), nodes...)
	edgesBefore := append([]Edge(nil), edges...)

	first, err := Layered{}.Layout(nodes, edges, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, err := Layered{}.Layout(nodes, edges, DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs:\n%+v\n%+v", i, first, again)
		}
	}
	if !reflect.DeepEqual(nodes, nodesBefore) || !reflect.DeepEqual(edges, edgesBefore) {
		t.Error("Layout() mutated its input")
	}
	for i, n := range first {
		if n.ID != nodes[i].ID || n.Width != nodes[i].Width || n.Height != nodes[i].Height {
			t.Errorf("node %d changed identity or size: %+v", i, n)
		}
	}
}

func TestLayered_CycleTolerated(t *testing.T) {
	nodes := sized("a", "b", "c")
	edges := []Edge{{Source: "a", Target: "b"}, {Source: "b", Target: "c"}, {Source: "c", Target: "a"}}
	out, err := Layered{}.Layout(nodes, edges, Options{})
	if err != nil {
		t.Fatalf("Layout() error on cyclic input: %v", err)
	}
	if len(out) != 3 {
		t.Errorf("len(out) = %d, want 3", len(out))
	}
}

func TestLayered_Empty(t *testing.T) {
	out, err := Layered{}.Layout(nil, nil, Options{})
	if err != nil || len(out) != 0 {
		t.Errorf("Layout(nil) = %v, %v", out, err)
	}
}
