package transform

import "github.com/matzehuels/cardgraph/pkg/dag"

// BreakCycles makes g acyclic by reversing the back edges found by a
// depth-first search from the sources, then from any node still unvisited,
// both in insertion order. Self-loops are dropped, and a back edge whose
// reverse already exists is removed instead of duplicated. Reversed edges
// carry [dag.Edge.Reversed].
//
// It returns the number of edges reversed or removed.
func BreakCycles(g *dag.DAG) int {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int)
	var backEdges [][2]string

	var dfs func(node string)
	dfs = func(node string) {
		color[node] = gray
		for _, child := range g.Children(node) {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				backEdges = append(backEdges, [2]string{node, child})
			}
		}
		color[node] = black
	}

	for _, n := range g.Sources() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}
	for _, n := range g.Nodes() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}

	broken := 0
	for _, e := range backEdges {
		from, to := e[0], e[1]
		if !g.HasEdge(from, to) {
			continue
		}
		g.RemoveEdge(from, to)
		broken++
		if from == to || g.HasEdge(to, from) {
			continue
		}
		if err := g.AddEdge(dag.Edge{From: to, To: from, Reversed: true}); err != nil {
			panic(err)
		}
	}
	return broken
}
