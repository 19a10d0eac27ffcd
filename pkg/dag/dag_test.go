package dag

import (
	"errors"
	"reflect"
	"testing"
)

func build(t *testing.T, ranks map[string]int, ids []string, edges [][2]string) *DAG {
	t.Helper()
	g := New()
	for _, id := range ids {
		if err := g.AddNode(Node{ID: id, Rank: ranks[id]}); err != nil {
			t.Fatalf("AddNode(%s): %v", id, err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(Edge{From: e[0], To: e[1]}); err != nil {
			t.Fatalf("AddEdge(%v): %v", e, err)
		}
	}
	return g
}

func TestAddNode_Errors(t *testing.T) {
	g := New()
	if err := g.AddNode(Node{}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("AddNode(empty) = %v, want ErrInvalidNodeID", err)
	}
	_ = g.AddNode(Node{ID: "a"})
	if err := g.AddNode(Node{ID: "a"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("AddNode(dup) = %v, want ErrDuplicateNodeID", err)
	}
}

func TestAddEdge_Errors(t *testing.T) {
	g := New()
	_ = g.AddNode(Node{ID: "a"})
	if err := g.AddEdge(Edge{From: "x", To: "a"}); !errors.Is(err, ErrUnknownSourceNode) {
		t.Errorf("AddEdge(unknown source) = %v", err)
	}
	if err := g.AddEdge(Edge{From: "a", To: "x"}); !errors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("AddEdge(unknown target) = %v", err)
	}
}

func TestNodes_InsertionOrder(t *testing.T) {
	ids := []string{"z", "m", "a", "q", "b", "y", "c"}
	for i := 0; i < 20; i++ {
		g := build(t, nil, ids, nil)
		if got := NodeIDs(g.Nodes()); !reflect.DeepEqual(got, ids) {
			t.Fatalf("Nodes() = %v, want %v", got, ids)
		}
		if got := NodeIDs(g.Sources()); !reflect.DeepEqual(got, ids) {
			t.Fatalf("Sources() = %v, want %v", got, ids)
		}
	}
}

func TestSetRanks(t *testing.T) {
	g := build(t, nil, []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}})
	g.SetRanks(map[string]int{"b": 1, "c": 2})

	if got := g.RankIDs(); !reflect.DeepEqual(got, []int{0, 1, 2}) {
		t.Errorf("RankIDs() = %v", got)
	}
	if g.MaxRank() != 2 {
		t.Errorf("MaxRank() = %d, want 2", g.MaxRank())
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestSetRankOrder(t *testing.T) {
	g := build(t, nil, []string{"a", "b", "c"}, nil)
	g.SetRankOrder(0, []string{"c", "a", "b", "missing"})
	if got := NodeIDs(g.NodesInRank(0)); !reflect.DeepEqual(got, []string{"c", "a", "b"}) {
		t.Errorf("NodesInRank(0) = %v", got)
	}
}

func TestRemoveEdge(t *testing.T) {
	g := build(t, nil, []string{"a", "b"}, [][2]string{{"a", "b"}})
	g.RemoveEdge("a", "b")
	if g.EdgeCount() != 0 || g.HasEdge("a", "b") || g.InDegree("b") != 0 {
		t.Errorf("edge still present after RemoveEdge")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		ranks map[string]int
		edges [][2]string
		want  error
	}{
		{"valid", map[string]int{"b": 1}, [][2]string{{"a", "b"}}, nil},
		{"skip rank", map[string]int{"b": 2}, [][2]string{{"a", "b"}}, ErrNonConsecutiveRanks},
		{"same rank", nil, [][2]string{{"a", "b"}}, ErrNonConsecutiveRanks},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := build(t, tt.ranks, []string{"a", "b"}, tt.edges)
			if err := g.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestHasCycle(t *testing.T) {
	g := build(t, nil, []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}})
	if g.HasCycle() {
		t.Error("HasCycle() = true on a chain")
	}
	_ = g.AddEdge(Edge{From: "c", To: "a"})
	if !g.HasCycle() {
		t.Error("HasCycle() = false on a triangle")
	}
}

func TestCountCrossings(t *testing.T) {
	ranks := map[string]int{"a": 0, "b": 0, "c": 1, "d": 1, "e": 2, "f": 2}
	g := build(t, ranks, []string{"a", "b", "c", "d", "e", "f"}, [][2]string{
		{"a", "d"}, {"b", "c"}, {"c", "f"}, {"d", "e"},
	})

	tests := []struct {
		name   string
		orders map[int][]string
		want   int
	}{
		{"both crossed", map[int][]string{0: {"a", "b"}, 1: {"c", "d"}, 2: {"e", "f"}}, 2},
		{"none", map[int][]string{0: {"a", "b"}, 1: {"d", "c"}, 2: {"e", "f"}}, 0},
		{"lower only", map[int][]string{0: {"b", "a"}, 1: {"c", "d"}, 2: {"e", "f"}}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountCrossings(g, tt.orders); got != tt.want {
				t.Errorf("CountCrossings() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCountPairCrossings(t *testing.T) {
	ranks := map[string]int{"c": 1, "d": 1}
	g := build(t, ranks, []string{"a", "b", "c", "d"}, [][2]string{{"a", "d"}, {"b", "c"}})

	if got := CountPairCrossings(g, "a", "b", []string{"c", "d"}, false); got != 1 {
		t.Errorf("CountPairCrossings(a, b) = %d, want 1", got)
	}
	if got := CountPairCrossings(g, "b", "a", []string{"c", "d"}, false); got != 0 {
		t.Errorf("CountPairCrossings(b, a) = %d, want 0", got)
	}
	if got := CountPairCrossings(g, "c", "d", []string{"a", "b"}, true); got != 1 {
		t.Errorf("CountPairCrossings(c, d, parents) = %d, want 1", got)
	}
}
