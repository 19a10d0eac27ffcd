// Package layout computes card positions for a tab.
//
// Three algorithms share the [Algorithm] interface:
//
//   - [Layered] (default): longest-path ranks, dummy nodes on long edges,
//     barycenter crossing reduction and alignment-driven coordinates.
//   - [Tree]: a tidy tree for single-rooted hierarchies; anything that is
//     not a tree falls back to the grid.
//   - [Grid]: a square-ish grid that ignores edges.
//
// Algorithms are pure: they copy their input, never touch package state and
// return the same positions for the same input. Positions are top-left
// corners translated so the smallest coordinate equals Options.Padding.
//
// [Engine] selects an algorithm by name and never fails: an unknown name, an
// error or a panic yields the original nodes together with Result.Err.
//
//	eng := layout.NewEngine(logger)
//	res := eng.Apply(ctx, layout.NameLayered, nodes, edges, layout.DefaultOptions())
//	if res.Err != nil {
//	    // res.Nodes holds the untouched input
//	}
package layout
