package layout

import (
	"slices"

	cgerrors "github.com/matzehuels/cardgraph/pkg/errors"
)

// Tree lays out a single-rooted tree: siblings are spaced by NodeSpacing,
// depths by RankSpacing and every parent is centred over its children.
// Children keep the order of the input node slice. Align is ignored.
//
// If the edges do not form a tree (no unique root, a node with several
// parents, or nodes unreachable from the root) the Fallback algorithm is
// used, [Grid] by default.
type Tree struct {
	Fallback Algorithm
}

// Name implements Algorithm.
func (Tree) Name() string { return NameTree }

// Layout implements Algorithm.
func (t Tree) Layout(nodes []Node, edges []Edge, opts Options) ([]Node, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	index, err := checkInput(nodes, edges)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return clone(nodes), nil
	}

	root, kids, err := treeShape(nodes, edges, index)
	if err != nil {
		fallback := t.Fallback
		if fallback == nil {
			fallback = Grid{}
		}
		return fallback.Layout(nodes, edges, opts)
	}

	out := clone(nodes)
	tl := &treeLayout{nodes: out, kids: kids, opts: opts, widths: make([]float64, len(out))}
	tl.measure(root, 0)

	bandStart := make([]float64, len(tl.bands))
	start := 0.0
	for d, thick := range tl.bands {
		bandStart[d] = start
		start += thick + opts.RankSpacing
	}
	tl.bandStart = bandStart
	tl.boxes = make(map[string]box, len(out))
	tl.place(root, 0, 0)

	project(out, tl.boxes, opts)
	return out, nil
}

// IsTree reports nil when edges form a single-rooted tree over nodes, or an
// error describing why not.
func IsTree(nodes []Node, edges []Edge) error {
	index, err := checkInput(nodes, edges)
	if err != nil {
		return err
	}
	_, _, err = treeShape(nodes, edges, index)
	return err
}

// treeShape returns the root index and the children of each node in input
// order.
func treeShape(nodes []Node, edges []Edge, index map[string]int) (int, [][]int, error) {
	parents := make([]int, len(nodes))
	kids := make([][]int, len(nodes))
	for _, e := range edges {
		s, t := index[e.Source], index[e.Target]
		if s == t {
			return 0, nil, cgerrors.New(cgerrors.ErrCodeInvalidInput, "self-loop on %q", e.Source)
		}
		parents[t]++
		if parents[t] > 1 {
			return 0, nil, cgerrors.New(cgerrors.ErrCodeInvalidInput, "node %q has more than one parent", e.Target)
		}
		kids[s] = append(kids[s], t)
	}

	root := -1
	for i, p := range parents {
		if p == 0 {
			if root >= 0 {
				return 0, nil, cgerrors.New(cgerrors.ErrCodeInvalidInput, "more than one root (%q, %q)", nodes[root].ID, nodes[i].ID)
			}
			root = i
		}
	}
	if root < 0 {
		return 0, nil, cgerrors.New(cgerrors.ErrCodeInvalidInput, "no root")
	}

	seen := make([]bool, len(nodes))
	stack := []int{root}
	reached := 0
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[i] {
			continue
		}
		seen[i] = true
		reached++
		stack = append(stack, kids[i]...)
	}
	if reached != len(nodes) {
		return 0, nil, cgerrors.New(cgerrors.ErrCodeInvalidInput, "%d nodes unreachable from root %q", len(nodes)-reached, nodes[root].ID)
	}

	for i := range kids {
		slices.Sort(kids[i])
	}
	return root, kids, nil
}

type treeLayout struct {
	nodes     []Node
	kids      [][]int
	opts      Options
	widths    []float64 // subtree width along u
	bands     []float64 // max v extent per depth
	bandStart []float64
	boxes     map[string]box
}

// measure computes subtree widths and per-depth band thickness.
func (tl *treeLayout) measure(i, depth int) float64 {
	u, v := extents(tl.nodes[i], tl.opts.Direction)
	if depth == len(tl.bands) {
		tl.bands = append(tl.bands, 0)
	}
	tl.bands[depth] = max(tl.bands[depth], v)

	total := 0.0
	for k, c := range tl.kids[i] {
		if k > 0 {
			total += tl.opts.NodeSpacing
		}
		total += tl.measure(c, depth+1)
	}
	tl.widths[i] = max(u, total)
	return tl.widths[i]
}

// place positions the subtree of i inside [left, left+widths[i]].
func (tl *treeLayout) place(i, depth int, left float64) {
	u, v := extents(tl.nodes[i], tl.opts.Direction)
	span := tl.widths[i]
	tl.boxes[tl.nodes[i].ID] = box{
		u: left + (span-u)/2,
		v: tl.bandStart[depth] + (tl.bands[depth]-v)/2,
	}

	total := 0.0
	for k, c := range tl.kids[i] {
		if k > 0 {
			total += tl.opts.NodeSpacing
		}
		total += tl.widths[c]
	}
	cursor := left + (span-total)/2
	for _, c := range tl.kids[i] {
		tl.place(c, depth+1, cursor)
		cursor += tl.widths[c] + tl.opts.NodeSpacing
	}
}
