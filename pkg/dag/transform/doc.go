// Package transform provides the graph passes that prepare a [dag.DAG] for
// layered layout.
//
// The layered algorithm applies them in this order:
//
//	transform.BreakCycles(g)  // reverse back edges
//	transform.AssignRanks(g)  // longest-path ranks
//	transform.Subdivide(g)    // dummy nodes on long edges
//
// [Prepare] runs all three. Every pass walks nodes and edges in insertion
// order so the output depends only on the input.
package transform

import "github.com/matzehuels/cardgraph/pkg/dag"

// Prepare runs BreakCycles, AssignRanks and Subdivide on g in place and
// returns it.
func Prepare(g *dag.DAG) *dag.DAG {
	BreakCycles(g)
	AssignRanks(g)
	Subdivide(g)
	return g
}
