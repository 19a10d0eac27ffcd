// Package card implements the data-card graph model.
//
// A data card is a conditional data-entry form described as a forest of
// typed parameter nodes ([ParamNode]). Hierarchy is expressed solely by
// [Connection] records: the parent of a node is the source of its single
// inbound connection. A [Graph] is one editable tab; a [Template] groups
// several tabs.
//
// # Invariants
//
// The parent/child relation is kept a forest at all times. [Graph.Connect]
// decides direction from the nodes' Order (the higher order becomes the
// child), rejects self-loops and cycles, and refuses to silently replace an
// existing parent: the caller has to confirm with [ConnectOptions.Replace].
//
// # Errors
//
// All structural failures are returned as coded errors from
// [github.com/matzehuels/cardgraph/pkg/errors] wrapping one of the sentinel
// values below, so both errors.Is(err, card.ErrCycle) and
// cgerrors.Is(err, cgerrors.ErrCodeCycle) work.
//
// # Concurrency
//
// Graph is not safe for concurrent use. The editor package serializes
// writers per graph.
package card
