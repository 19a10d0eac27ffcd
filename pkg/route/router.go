package route

import (
	"container/heap"
	"context"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cardgraph/pkg/observability"
)

// Default router options.
const (
	DefaultCellSize      = 20.0
	DefaultMargin        = 100.0
	DefaultNodeSpacing   = 50.0
	DefaultCornerRadius  = 12.0
	DefaultMaxExpansions = 50000
)

// Options configures a Router. Zero values are replaced by defaults.
type Options struct {
	// CellSize is the side of one grid cell.
	CellSize float64 `json:"cellSize,omitempty" toml:"cell_size"`
	// Margin pads the bounding box of the two endpoints on every side.
	Margin float64 `json:"margin,omitempty" toml:"margin"`
	// NodeSpacing is the clearance kept around obstacles; each obstacle is
	// grown by half of it.
	NodeSpacing float64 `json:"nodeSpacing,omitempty" toml:"node_spacing"`
	// CornerRadius is the maximum rounding radius at each bend.
	CornerRadius float64 `json:"cornerRadius,omitempty" toml:"corner_radius"`
	// MaxExpansions bounds the number of cells the search may expand.
	MaxExpansions int `json:"maxExpansions,omitempty" toml:"max_expansions"`
}

// DefaultOptions returns the default router options.
func DefaultOptions() Options {
	return Options{
		CellSize:      DefaultCellSize,
		Margin:        DefaultMargin,
		NodeSpacing:   DefaultNodeSpacing,
		CornerRadius:  DefaultCornerRadius,
		MaxExpansions: DefaultMaxExpansions,
	}
}

// WithDefaults returns a copy with zero or negative fields replaced.
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if o.CellSize <= 0 {
		o.CellSize = d.CellSize
	}
	if o.Margin <= 0 {
		o.Margin = d.Margin
	}
	if o.NodeSpacing < 0 {
		o.NodeSpacing = 0
	}
	if o.NodeSpacing == 0 {
		o.NodeSpacing = d.NodeSpacing
	}
	if o.CornerRadius <= 0 {
		o.CornerRadius = d.CornerRadius
	}
	if o.MaxExpansions <= 0 {
		o.MaxExpansions = d.MaxExpansions
	}
	return o
}

// Path is a routed connection.
type Path struct {
	Points []Point `json:"points"`
	// D is the SVG path data with rounded corners.
	D string `json:"d"`
	// Routed is false when the straight two-point path was returned.
	Routed bool `json:"routed"`
	// Expansions is the number of cells the search expanded.
	Expansions int `json:"expansions"`
}

// Router finds obstacle-avoiding paths. It holds no per-request state and
// is safe for concurrent use.
type Router struct {
	opts   Options
	logger *log.Logger
}

// New creates a Router. A nil logger discards output.
func New(logger *log.Logger, opts Options) *Router {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Router{opts: opts.WithDefaults(), logger: logger}
}

// Options returns the effective options.
func (r *Router) Options() Options { return r.opts }

// Route returns a path from source to target around obstacles. Obstacles
// containing either endpoint are the endpoints' own cards and are ignored.
func (r *Router) Route(ctx context.Context, source, target Point, obstacles []Rect) Path {
	start := time.Now()
	p := r.route(source, target, obstacles)
	observability.Route().OnRoute(ctx, p.Expansions, p.Routed, time.Since(start))
	return p
}

func (r *Router) route(source, target Point, obstacles []Rect) Path {
	direct := Path{Points: []Point{source, target}}
	direct.D = Smooth(direct.Points, r.opts.CornerRadius)

	var blocking []Rect
	for _, o := range obstacles {
		grown := o.Expand(r.opts.NodeSpacing / 2)
		if grown.Contains(source) || grown.Contains(target) {
			continue
		}
		blocking = append(blocking, grown)
	}
	straight := true
	for _, o := range blocking {
		if o.IntersectsSegment(source, target) {
			straight = false
			break
		}
	}
	if straight {
		return direct
	}

	g := newGrid(source, target, r.opts)
	sc, sok := g.cellOf(source)
	tc, tok := g.cellOf(target)
	if !sok || !tok {
		return direct
	}
	g.block(blocking)
	g.free(sc)
	g.free(tc)

	cells, expansions := g.search(sc, tc, r.opts.MaxExpansions)
	if cells == nil {
		r.logger.Debug("route search exhausted, using straight path",
			"from", source, "to", target, "expansions", expansions)
		direct.Expansions = expansions
		return direct
	}

	pts := make([]Point, len(cells))
	for i, c := range cells {
		pts[i] = g.center(c)
	}
	pts[0], pts[len(pts)-1] = source, target
	pts = Simplify(pts)
	return Path{
		Points:     pts,
		D:          Smooth(pts, r.opts.CornerRadius),
		Routed:     true,
		Expansions: expansions,
	}
}

type cell struct{ col, row int }

type grid struct {
	minX, minY float64
	size       float64
	cols, rows int
	blocked    []bool
}

func newGrid(a, b Point, opts Options) *grid {
	minX := min(a.X, b.X) - opts.Margin
	minY := min(a.Y, b.Y) - opts.Margin
	maxX := max(a.X, b.X) + opts.Margin
	maxY := max(a.Y, b.Y) + opts.Margin
	cols := int(math.Ceil((maxX-minX)/opts.CellSize)) + 1
	rows := int(math.Ceil((maxY-minY)/opts.CellSize)) + 1
	return &grid{
		minX: minX, minY: minY, size: opts.CellSize,
		cols: cols, rows: rows,
		blocked: make([]bool, cols*rows),
	}
}

func (g *grid) cellOf(p Point) (cell, bool) {
	c := cell{int(math.Floor((p.X - g.minX) / g.size)), int(math.Floor((p.Y - g.minY) / g.size))}
	return c, g.inside(c)
}

func (g *grid) inside(c cell) bool {
	return c.col >= 0 && c.col < g.cols && c.row >= 0 && c.row < g.rows
}

func (g *grid) idx(c cell) int { return c.row*g.cols + c.col }

func (g *grid) center(c cell) Point {
	return Point{g.minX + (float64(c.col)+0.5)*g.size, g.minY + (float64(c.row)+0.5)*g.size}
}

func (g *grid) rect(c cell) Rect {
	return Rect{g.minX + float64(c.col)*g.size, g.minY + float64(c.row)*g.size, g.size, g.size}
}

// block marks every cell overlapping an obstacle.
func (g *grid) block(obstacles []Rect) {
	for _, o := range obstacles {
		c0, _ := g.cellOf(Point{o.X, o.Y})
		c1, _ := g.cellOf(Point{o.X + o.Width, o.Y + o.Height})
		for row := max(c0.row, 0); row <= min(c1.row, g.rows-1); row++ {
			for col := max(c0.col, 0); col <= min(c1.col, g.cols-1); col++ {
				c := cell{col, row}
				if g.rect(c).Overlaps(o) {
					g.blocked[g.idx(c)] = true
				}
			}
		}
	}
}

func (g *grid) free(c cell) { g.blocked[g.idx(c)] = false }

func (g *grid) open(c cell) bool { return g.inside(c) && !g.blocked[g.idx(c)] }

var moves = [8]cell{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// search runs A* with unit step cost and a Manhattan heuristic. Diagonal
// moves are allowed only when both adjacent orthogonal cells are open.
// It returns nil when the goal is unreachable within limit expansions.
func (g *grid) search(from, to cell, limit int) ([]cell, int) {
	manhattan := func(c cell) int { return abs(c.col-to.col) + abs(c.row-to.row) }

	n := g.cols * g.rows
	cost := make([]int, n)
	prev := make([]int, n)
	closed := make([]bool, n)
	for i := range cost {
		cost[i] = math.MaxInt
		prev[i] = -1
	}

	frontier := &openSet{}
	cost[g.idx(from)] = 0
	heap.Push(frontier, &item{c: from, g: 0, f: manhattan(from)})

	expansions := 0
	for frontier.Len() > 0 {
		cur := heap.Pop(frontier).(*item)
		ci := g.idx(cur.c)
		if closed[ci] {
			continue
		}
		if cur.c == to {
			return g.trace(prev, ci), expansions
		}
		closed[ci] = true
		expansions++
		if expansions > limit {
			return nil, expansions
		}

		for _, m := range moves {
			next := cell{cur.c.col + m.col, cur.c.row + m.row}
			if !g.open(next) {
				continue
			}
			if m.col != 0 && m.row != 0 {
				if !g.open(cell{cur.c.col + m.col, cur.c.row}) || !g.open(cell{cur.c.col, cur.c.row + m.row}) {
					continue
				}
			}
			ni := g.idx(next)
			if closed[ni] {
				continue
			}
			if gc := cur.g + 1; gc < cost[ni] {
				cost[ni] = gc
				prev[ni] = ci
				heap.Push(frontier, &item{c: next, g: gc, f: gc + manhattan(next), seq: frontier.seq()})
			}
		}
	}
	return nil, expansions
}

func (g *grid) trace(prev []int, end int) []cell {
	var rev []cell
	for i := end; i >= 0; i = prev[i] {
		rev = append(rev, cell{i % g.cols, i / g.cols})
	}
	out := make([]cell, len(rev))
	for i, c := range rev {
		out[len(rev)-1-i] = c
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

type item struct {
	c    cell
	g, f int
	seq  int
}

// openSet is a min-heap on f, then g descending, then insertion order.
type openSet struct {
	items []*item
	n     int
}

func (s *openSet) seq() int { s.n++; return s.n }

func (s *openSet) Len() int { return len(s.items) }
func (s *openSet) Less(i, j int) bool {
	a, b := s.items[i], s.items[j]
	if a.f != b.f {
		return a.f < b.f
	}
	if a.g != b.g {
		return a.g > b.g
	}
	return a.seq < b.seq
}
func (s *openSet) Swap(i, j int) { s.items[i], s.items[j] = s.items[j], s.items[i] }
func (s *openSet) Push(x any)    { s.items = append(s.items, x.(*item)) }
func (s *openSet) Pop() any {
	old := s.items
	it := old[len(old)-1]
	s.items = old[:len(old)-1]
	return it
}
