package transform

import (
	"fmt"

	"github.com/matzehuels/cardgraph/pkg/dag"
)

// Subdivide replaces every edge spanning more than one rank with a chain of
// [dag.NodeKindDummy] nodes, one per intermediate rank:
//
//	Before: scope (rank 0) → window_size (rank 3)
//	After:  scope → scope_d_1 → scope_d_2 → window_size
//
// Dummies carry the source as MasterID and zero size. Generated IDs never
// collide with existing ones; a numeric suffix is appended when needed.
// Edges are processed in insertion order, so the result is deterministic.
//
// It returns the number of dummies added.
func Subdivide(g *dag.DAG) int {
	gen := newIDGen(g.Nodes())
	added := 0

	var toRemove []dag.Edge
	for _, e := range g.Edges() {
		src, srcOK := g.Node(e.From)
		dst, dstOK := g.Node(e.To)
		if !srcOK || !dstOK || dst.Rank <= src.Rank+1 {
			continue
		}

		toRemove = append(toRemove, e)
		prevID := src.ID
		for rank := src.Rank + 1; rank < dst.Rank; rank++ {
			prevID = addDummy(g, gen, prevID, src.ID, rank, e.Reversed)
			added++
		}
		if err := g.AddEdge(dag.Edge{From: prevID, To: dst.ID, Reversed: e.Reversed}); err != nil {
			panic(err)
		}
	}

	for _, e := range toRemove {
		g.RemoveEdge(e.From, e.To)
	}
	return added
}

func addDummy(g *dag.DAG, gen *idGen, from, master string, rank int, reversed bool) string {
	id := gen.next(master, rank)
	if err := g.AddNode(dag.Node{
		ID:       id,
		Rank:     rank,
		Kind:     dag.NodeKindDummy,
		MasterID: master,
	}); err != nil {
		panic(err)
	}
	if err := g.AddEdge(dag.Edge{From: from, To: id, Reversed: reversed}); err != nil {
		panic(err)
	}
	return id
}

type idGen struct {
	used map[string]struct{}
}

func newIDGen(nodes []*dag.Node) *idGen {
	m := make(map[string]struct{}, len(nodes)*2)
	for _, n := range nodes {
		m[n.ID] = struct{}{}
	}
	return &idGen{used: m}
}

func (gen *idGen) next(base string, rank int) string {
	prefix := fmt.Sprintf("%s_d_%d", base, rank)
	id := prefix
	for i := 1; ; i++ {
		if _, exists := gen.used[id]; !exists {
			gen.used[id] = struct{}{}
			return id
		}
		id = fmt.Sprintf("%s__%d", prefix, i)
	}
}
