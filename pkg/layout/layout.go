package layout

import (
	"slices"
	"strings"

	"github.com/matzehuels/cardgraph/pkg/card"
	cgerrors "github.com/matzehuels/cardgraph/pkg/errors"
)

// Algorithm names.
const (
	NameLayered = "layered"
	NameTree    = "tree"
	NameGrid    = "grid"
)

// Direction is the flow of the primary (rank) axis.
type Direction string

const (
	TopBottom Direction = "TB"
	BottomTop Direction = "BT"
	LeftRight Direction = "LR"
	RightLeft Direction = "RL"
)

// Horizontal reports whether ranks advance along the x axis.
func (d Direction) Horizontal() bool { return d == LeftRight || d == RightLeft }

// Align selects how nodes within a rank are placed. U aligns nodes with
// their parents (ranks processed top-down), D with their children
// (bottom-up). L packs nodes towards the start of the rank, R towards the
// end.
type Align string

const (
	AlignUL Align = "UL"
	AlignUR Align = "UR"
	AlignDL Align = "DL"
	AlignDR Align = "DR"
)

func (a Align) up() bool   { return a == AlignUL || a == AlignUR || a == "" }
func (a Align) left() bool { return a == AlignUL || a == AlignDL || a == "" }

// Default option values.
const (
	DefaultDirection   = TopBottom
	DefaultNodeSpacing = 50.0
	DefaultRankSpacing = 80.0
	DefaultAlign       = AlignUL
	DefaultPadding     = 20.0
	DefaultIterations  = 4
)

// Node is a card as seen by the layout: an id, a top-left position and the
// rendered size.
type Node struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Edge is a directed connection between two nodes.
type Edge struct {
	ID     string `json:"id,omitempty"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// Options controls a layout run. Zero values are replaced by defaults.
type Options struct {
	Direction   Direction `json:"direction,omitempty" toml:"direction"`
	NodeSpacing float64   `json:"nodeSpacing,omitempty" toml:"node_spacing"`
	RankSpacing float64   `json:"rankSpacing,omitempty" toml:"rank_spacing"`
	Align       Align     `json:"align,omitempty" toml:"align"`
	Padding     float64   `json:"padding,omitempty" toml:"padding"`
	// Iterations is the number of down/up barycenter sweep pairs.
	Iterations int `json:"iterations,omitempty" toml:"iterations"`
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		Direction:   DefaultDirection,
		NodeSpacing: DefaultNodeSpacing,
		RankSpacing: DefaultRankSpacing,
		Align:       DefaultAlign,
		Padding:     DefaultPadding,
		Iterations:  DefaultIterations,
	}
}

// WithDefaults returns a copy with zero fields replaced by defaults.
// Direction and Align are upper-cased.
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	o.Direction = Direction(strings.ToUpper(string(o.Direction)))
	o.Align = Align(strings.ToUpper(string(o.Align)))
	if o.Direction == "" {
		o.Direction = d.Direction
	}
	if o.NodeSpacing == 0 {
		o.NodeSpacing = d.NodeSpacing
	}
	if o.RankSpacing == 0 {
		o.RankSpacing = d.RankSpacing
	}
	if o.Align == "" {
		o.Align = d.Align
	}
	if o.Padding == 0 {
		o.Padding = d.Padding
	}
	if o.Iterations == 0 {
		o.Iterations = d.Iterations
	}
	return o
}

// Validate checks the option values.
func (o Options) Validate() error {
	switch o.Direction {
	case TopBottom, BottomTop, LeftRight, RightLeft:
	default:
		return cgerrors.New(cgerrors.ErrCodeInvalidOption, "unknown direction %q (want TB, BT, LR or RL)", o.Direction)
	}
	switch o.Align {
	case AlignUL, AlignUR, AlignDL, AlignDR:
	default:
		return cgerrors.New(cgerrors.ErrCodeInvalidOption, "unknown align %q (want UL, UR, DL or DR)", o.Align)
	}
	if o.NodeSpacing < 0 || o.RankSpacing < 0 || o.Padding < 0 {
		return cgerrors.New(cgerrors.ErrCodeInvalidOption, "spacing and padding must not be negative")
	}
	if o.Iterations < 0 {
		return cgerrors.New(cgerrors.ErrCodeInvalidOption, "iterations must not be negative")
	}
	return nil
}

// Algorithm computes positions for nodes. Implementations must not mutate
// their arguments and must return one node per input node, in input order.
type Algorithm interface {
	Name() string
	Layout(nodes []Node, edges []Edge, opts Options) ([]Node, error)
}

// FromGraph converts a tab into layout input, in node and connection order.
func FromGraph(g *card.Graph) ([]Node, []Edge) {
	src := g.Nodes()
	nodes := make([]Node, len(src))
	for i, n := range src {
		size := n.Size
		if size.Width <= 0 || size.Height <= 0 {
			size = card.DefaultSize
		}
		nodes[i] = Node{ID: n.ID, X: n.Position.X, Y: n.Position.Y, Width: size.Width, Height: size.Height}
	}
	conns := g.Connections()
	edges := make([]Edge, len(conns))
	for i, c := range conns {
		edges[i] = Edge{ID: c.ID, Source: c.Source, Target: c.Target}
	}
	return nodes, edges
}

// Positions returns the positions of nodes keyed by id.
func Positions(nodes []Node) map[string]card.Position {
	out := make(map[string]card.Position, len(nodes))
	for _, n := range nodes {
		out[n.ID] = card.Position{X: n.X, Y: n.Y}
	}
	return out
}

// checkInput rejects duplicate node ids and edges with unknown endpoints.
func checkInput(nodes []Node, edges []Edge) (map[string]int, error) {
	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		if n.ID == "" {
			return nil, cgerrors.New(cgerrors.ErrCodeInvalidInput, "node %d has an empty id", i)
		}
		if _, dup := index[n.ID]; dup {
			return nil, cgerrors.New(cgerrors.ErrCodeInvalidInput, "duplicate node id %q", n.ID)
		}
		index[n.ID] = i
	}
	for _, e := range edges {
		if _, ok := index[e.Source]; !ok {
			return nil, cgerrors.New(cgerrors.ErrCodeInvalidReference, "edge %s: unknown source %q", e.ID, e.Source)
		}
		if _, ok := index[e.Target]; !ok {
			return nil, cgerrors.New(cgerrors.ErrCodeInvalidReference, "edge %s: unknown target %q", e.ID, e.Target)
		}
	}
	return index, nil
}

// extents returns a node's size along the order axis (u) and the rank
// axis (v).
func extents(n Node, d Direction) (u, v float64) {
	if d.Horizontal() {
		return n.Height, n.Width
	}
	return n.Width, n.Height
}

// box is a top-left corner in layout space, where u runs along a rank and
// v across ranks.
type box struct{ u, v float64 }

// project maps layout-space boxes to screen coordinates for the direction
// and translates the result so the minimum corner sits at the padding.
func project(nodes []Node, boxes map[string]box, opts Options) {
	for i := range nodes {
		b := boxes[nodes[i].ID]
		_, ve := extents(nodes[i], opts.Direction)
		switch opts.Direction {
		case TopBottom:
			nodes[i].X, nodes[i].Y = b.u, b.v
		case BottomTop:
			nodes[i].X, nodes[i].Y = b.u, -(b.v + ve)
		case LeftRight:
			nodes[i].X, nodes[i].Y = b.v, b.u
		case RightLeft:
			nodes[i].X, nodes[i].Y = -(b.v + ve), b.u
		}
	}
	translate(nodes, opts.Padding)
}

func translate(nodes []Node, padding float64) {
	if len(nodes) == 0 {
		return
	}
	minX, minY := nodes[0].X, nodes[0].Y
	for _, n := range nodes[1:] {
		minX = min(minX, n.X)
		minY = min(minY, n.Y)
	}
	dx, dy := padding-minX, padding-minY
	for i := range nodes {
		nodes[i].X += dx
		nodes[i].Y += dy
	}
}

func clone(nodes []Node) []Node { return slices.Clone(nodes) }
