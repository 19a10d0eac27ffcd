package transform

import (
	"testing"

	"github.com/matzehuels/cardgraph/pkg/dag"
)

func newGraph(ids []string, edges [][2]string) *dag.DAG {
	g := dag.New()
	for _, id := range ids {
		_ = g.AddNode(dag.Node{ID: id})
	}
	for _, e := range edges {
		_ = g.AddEdge(dag.Edge{From: e[0], To: e[1]})
	}
	return g
}

func TestBreakCycles(t *testing.T) {
	tests := []struct {
		name      string
		ids       []string
		edges     [][2]string
		wantBroke int
		wantEdges int
	}{
		{"no cycles", []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}}, 0, 2},
		{"two-cycle", []string{"a", "b"}, [][2]string{{"a", "b"}, {"b", "a"}}, 1, 1},
		{"triangle", []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}}, 1, 3},
		{"two cycles", []string{"a", "b", "c", "d"},
			[][2]string{{"a", "b"}, {"b", "a"}, {"c", "d"}, {"d", "c"}}, 2, 2},
		{"self loop", []string{"a"}, [][2]string{{"a", "a"}}, 1, 0},
		{"diamond", []string{"a", "b", "c", "d"},
			[][2]string{{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"}}, 0, 4},
		{"empty", nil, nil, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGraph(tt.ids, tt.edges)
			if got := BreakCycles(g); got != tt.wantBroke {
				t.Errorf("BreakCycles() = %d, want %d", got, tt.wantBroke)
			}
			if g.EdgeCount() != tt.wantEdges {
				t.Errorf("EdgeCount() = %d, want %d", g.EdgeCount(), tt.wantEdges)
			}
			if g.HasCycle() {
				t.Error("graph still cyclic")
			}
		})
	}
}

func TestBreakCycles_MarksReversed(t *testing.T) {
	g := newGraph([]string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}})
	BreakCycles(g)

	var reversed []dag.Edge
	for _, e := range g.Edges() {
		if e.Reversed {
			reversed = append(reversed, e)
		}
	}
	if len(reversed) != 1 || reversed[0].From != "a" || reversed[0].To != "c" {
		t.Errorf("reversed edges = %+v, want [a→c]", reversed)
	}
}

func TestAssignRanks(t *testing.T) {
	g := newGraph([]string{"a", "b", "c", "d"}, [][2]string{{"a", "b"}, {"b", "c"}, {"a", "c"}, {"d", "c"}})
	AssignRanks(g)

	want := map[string]int{"a": 0, "b": 1, "c": 2, "d": 0}
	for id, rank := range want {
		n, _ := g.Node(id)
		if n.Rank != rank {
			t.Errorf("%s.Rank = %d, want %d", id, n.Rank, rank)
		}
	}
}

func TestSubdivide(t *testing.T) {
	g := newGraph([]string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}, {"a", "c"}})
	AssignRanks(g)

	if added := Subdivide(g); added != 1 {
		t.Fatalf("Subdivide() added %d dummies, want 1", added)
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate() after Subdivide = %v", err)
	}
	d, ok := g.Node("a_d_1")
	if !ok || !d.IsDummy() || d.EffectiveID() != "a" {
		t.Errorf("dummy = %+v, want a_d_1 with master a", d)
	}
}

func TestSubdivide_IDCollision(t *testing.T) {
	g := newGraph([]string{"a", "a_d_1", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}, {"a", "c"}})
	AssignRanks(g)
	Subdivide(g)

	if _, ok := g.Node("a_d_1__1"); !ok {
		t.Errorf("expected suffixed dummy id, nodes = %v", dag.NodeIDs(g.Nodes()))
	}
}
