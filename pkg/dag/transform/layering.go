package transform

import "github.com/matzehuels/cardgraph/pkg/dag"

// AssignRanks assigns every node the length of the longest path reaching it
// from a source, so sources sit on rank 0 and each parent is strictly above
// its children.
//
// The traversal is Kahn's topological sort seeded with the sources in
// insertion order. Nodes on a cycle never reach in-degree zero and keep
// rank 0; run [BreakCycles] first.
//
// Time complexity is O(V + E).
func AssignRanks(g *dag.DAG) {
	nodes := g.Nodes()
	inDegree := make(map[string]int, len(nodes))
	ranks := make(map[string]int, len(nodes))
	queue := make([]string, 0, len(nodes))

	for _, n := range nodes {
		degree := g.InDegree(n.ID)
		inDegree[n.ID] = degree
		ranks[n.ID] = 0
		if degree == 0 {
			queue = append(queue, n.ID)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, child := range g.Children(curr) {
			if r := ranks[curr] + 1; r > ranks[child] {
				ranks[child] = r
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	g.SetRanks(ranks)
}
