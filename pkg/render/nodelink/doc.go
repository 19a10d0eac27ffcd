// Package nodelink renders a card graph tab as a Graphviz diagram.
//
// [ToDOT] produces DOT source; [RenderSVG] runs Graphviz in-process via
// [github.com/goccy/go-graphviz]:
//
//	dot := nodelink.ToDOT(tab, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Connections carrying a condition are drawn dashed with the condition as
// edge label. When [Options.Visible] is set, fields outside it are greyed
// out, which shows at a glance what a given set of answers hides.
//
// With [Options.Pinned] every node is fixed at its canvas position and
// Graphviz only draws the edges, so the picture matches the editor.
package nodelink
