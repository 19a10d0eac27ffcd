// Package render holds output renderers for card graphs.
//
// The [nodelink] subpackage draws a tab as a Graphviz node-link diagram:
// fields as boxes, connections as arrows labelled with their conditions.
//
// [nodelink]: github.com/matzehuels/cardgraph/pkg/render/nodelink
package render
