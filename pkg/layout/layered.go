package layout

import (
	"cmp"
	"math"
	"slices"

	"github.com/matzehuels/cardgraph/pkg/dag"
	"github.com/matzehuels/cardgraph/pkg/dag/transform"
)

// Layered is a Sugiyama-style layout:
//
//  1. reverse back edges so the graph is acyclic
//  2. rank nodes by longest path from a source
//  3. subdivide edges spanning several ranks with dummy nodes
//  4. reorder ranks with barycenter sweeps and adjacent swaps, keeping the
//     ordering with the fewest crossings
//  5. assign coordinates according to Options.Align
//  6. rotate or mirror for Options.Direction and translate by the padding
type Layered struct{}

// Name implements Algorithm.
func (Layered) Name() string { return NameLayered }

// Layout implements Algorithm.
func (Layered) Layout(nodes []Node, edges []Edge, opts Options) ([]Node, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if _, err := checkInput(nodes, edges); err != nil {
		return nil, err
	}
	out := clone(nodes)
	if len(out) == 0 {
		return out, nil
	}

	g, err := buildDAG(out, edges, opts.Direction)
	if err != nil {
		return nil, err
	}
	transform.Prepare(g)
	orderRanks(g, opts.Iterations)
	project(out, assignCoordinates(g, opts), opts)
	return out, nil
}

// buildDAG copies nodes and edges into a DAG. Node sizes are stored as
// layout-space extents: Width along the rank, Height across ranks.
// Self-loops and parallel edges are dropped.
func buildDAG(nodes []Node, edges []Edge, d Direction) (*dag.DAG, error) {
	g := dag.New()
	for _, n := range nodes {
		u, v := extents(n, d)
		if err := g.AddNode(dag.Node{ID: n.ID, Width: u, Height: v}); err != nil {
			return nil, err
		}
	}
	for _, e := range edges {
		if e.Source == e.Target || g.HasEdge(e.Source, e.Target) {
			continue
		}
		if err := g.AddEdge(dag.Edge{From: e.Source, To: e.Target}); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// orderRanks runs iterations of down and up barycenter sweeps followed by
// adjacent swaps and applies the ordering with the fewest crossings seen.
func orderRanks(g *dag.DAG, iterations int) {
	ranks := g.RankIDs()
	if len(ranks) < 2 {
		return
	}

	best := dag.CurrentOrders(g)
	bestCross := dag.CountCrossings(g, best)
	for i := 0; i < iterations && bestCross > 0; i++ {
		for _, r := range ranks[1:] {
			sortByBarycenter(g, r, r-1, true)
		}
		for j := len(ranks) - 2; j >= 0; j-- {
			sortByBarycenter(g, ranks[j], ranks[j]+1, false)
		}
		transpose(g, ranks)

		cur := dag.CurrentOrders(g)
		if c := dag.CountCrossings(g, cur); c < bestCross {
			best, bestCross = cur, c
		}
	}
	for _, r := range ranks {
		g.SetRankOrder(r, best[r])
	}
}

// sortByBarycenter orders a rank by the mean position of each node's
// neighbours in the adjacent rank. Nodes without such neighbours keep
// their current index as key. The sort is stable.
func sortByBarycenter(g *dag.DAG, rank, adjRank int, useParents bool) {
	nodes := g.NodesInRank(rank)
	adjPos := dag.PosMap(dag.NodeIDs(g.NodesInRank(adjRank)))

	type keyed struct {
		id string
		bc float64
	}
	ks := make([]keyed, len(nodes))
	for i, n := range nodes {
		nbrs := g.Children(n.ID)
		if useParents {
			nbrs = g.Parents(n.ID)
		}
		sum, cnt := 0.0, 0
		for _, m := range nbrs {
			if p, ok := adjPos[m]; ok {
				sum += float64(p)
				cnt++
			}
		}
		bc := float64(i)
		if cnt > 0 {
			bc = sum / float64(cnt)
		}
		ks[i] = keyed{n.ID, bc}
	}
	slices.SortStableFunc(ks, func(a, b keyed) int { return cmp.Compare(a.bc, b.bc) })

	ids := make([]string, len(ks))
	for i, k := range ks {
		ids[i] = k.id
	}
	g.SetRankOrder(rank, ids)
}

// transpose swaps adjacent nodes while doing so strictly reduces the
// crossings with both neighbouring ranks.
func transpose(g *dag.DAG, ranks []int) {
	for _, r := range ranks {
		ids := dag.NodeIDs(g.NodesInRank(r))
		if len(ids) < 2 {
			continue
		}
		above := dag.PosMap(dag.NodeIDs(g.NodesInRank(r - 1)))
		below := dag.PosMap(dag.NodeIDs(g.NodesInRank(r + 1)))
		pair := func(a, b string) int {
			return dag.CountPairCrossingsWithPos(g, a, b, above, true) +
				dag.CountPairCrossingsWithPos(g, a, b, below, false)
		}

		for pass, improved := 0, true; improved && pass < len(ids); pass++ {
			improved = false
			for i := 0; i+1 < len(ids); i++ {
				if pair(ids[i+1], ids[i]) < pair(ids[i], ids[i+1]) {
					ids[i], ids[i+1] = ids[i+1], ids[i]
					improved = true
				}
			}
		}
		g.SetRankOrder(r, ids)
	}
}

// assignCoordinates places every node of g in layout space. Ranks are
// stacked along v separated by RankSpacing, each node centred in its
// rank's band. Along u, nodes are aligned with the median of their already
// placed neighbours (parents for U, children for D) and packed towards the
// start (L) or end (R) of the rank with NodeSpacing between them.
func assignCoordinates(g *dag.DAG, opts Options) map[string]box {
	ranks := g.RankIDs()
	boxes := make(map[string]box, g.NodeCount())

	start := 0.0
	bandStart := make(map[int]float64, len(ranks))
	bandSize := make(map[int]float64, len(ranks))
	for _, r := range ranks {
		thick := 0.0
		for _, n := range g.NodesInRank(r) {
			thick = max(thick, n.Height)
		}
		bandStart[r], bandSize[r] = start, thick
		start += thick + opts.RankSpacing
	}

	order := slices.Clone(ranks)
	if !opts.Align.up() {
		slices.Reverse(order)
	}

	centers := make(map[string]float64, g.NodeCount())
	for _, r := range order {
		nodes := g.NodesInRank(r)
		desired := make([]float64, len(nodes))
		for i, n := range nodes {
			nbrs := g.Parents(n.ID)
			if !opts.Align.up() {
				nbrs = g.Children(n.ID)
			}
			desired[i] = medianCenter(nbrs, centers)
		}

		lefts := pack(nodes, desired, opts.NodeSpacing, opts.Align.left())
		for i, n := range nodes {
			centers[n.ID] = lefts[i] + n.Width/2
			boxes[n.ID] = box{
				u: lefts[i],
				v: bandStart[r] + (bandSize[r]-n.Height)/2,
			}
		}
	}
	return boxes
}

// medianCenter returns the median centre of the placed neighbours, or NaN
// when none is placed.
func medianCenter(nbrs []string, centers map[string]float64) float64 {
	var cs []float64
	for _, m := range nbrs {
		if c, ok := centers[m]; ok {
			cs = append(cs, c)
		}
	}
	if len(cs) == 0 {
		return math.NaN()
	}
	slices.Sort(cs)
	mid := len(cs) / 2
	if len(cs)%2 == 1 {
		return cs[mid]
	}
	return (cs[mid-1] + cs[mid]) / 2
}

// pack returns the left edge of each node. Nodes are visited from the
// packing side; each is placed at its desired centre unless that would
// overlap the previous node, in which case it is pushed away. Nodes
// without a desired centre are placed directly next to the previous one.
func pack(nodes []*dag.Node, desired []float64, spacing float64, fromLeft bool) []float64 {
	lefts := make([]float64, len(nodes))
	if fromLeft {
		cursor := math.Inf(-1)
		for i, n := range nodes {
			left := desired[i] - n.Width/2
			if math.IsNaN(left) {
				left = cursor
				if math.IsInf(cursor, -1) {
					left = 0
				}
			}
			left = max(left, cursor)
			lefts[i] = left
			cursor = left + n.Width + spacing
		}
		return lefts
	}

	cursor := math.Inf(1)
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		right := desired[i] + n.Width/2
		if math.IsNaN(right) {
			right = cursor
			if math.IsInf(cursor, 1) {
				right = 0
			}
		}
		right = min(right, cursor)
		lefts[i] = right - n.Width
		cursor = lefts[i] - spacing
	}
	return lefts
}
