// Package dag provides a rank-indexed directed graph used by the layered
// layout.
//
// # Overview
//
// The layout engine copies the cards and connections of a tab into a [DAG],
// assigns every node to a rank (a layer along the primary layout axis),
// subdivides edges spanning several ranks with dummy nodes and then reorders
// each rank to reduce edge crossings. This package holds the data structure
// and the crossing counters; the [transform] subpackage holds the passes.
//
// # Basic Usage
//
//	g := dag.New()
//	g.AddNode(dag.Node{ID: "scope", Rank: 0, Width: 220, Height: 80})
//	g.AddNode(dag.Node{ID: "subject_id", Rank: 1, Width: 220, Height: 80})
//	g.AddEdge(dag.Edge{From: "scope", To: "subject_id"})
//
// # Determinism
//
// Every listing follows insertion order and ranks are reordered only through
// [DAG.SetRankOrder]. Two DAGs built from the same input therefore yield the
// same layout.
//
// # Edge Crossings
//
// [CountCrossings] and [CountLayerCrossings] count inversions with a Fenwick
// tree in O(E log V) per rank pair.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use. Each layout run builds its
// own graph.
//
// [transform]: github.com/matzehuels/cardgraph/pkg/dag/transform
package dag
