package layout

import "math"

// Grid arranges nodes row by row in ceil(sqrt(n)) columns. Each cell is as
// large as the largest node plus NodeSpacing. Edges and Direction are
// ignored.
type Grid struct{}

// Name implements Algorithm.
func (Grid) Name() string { return NameGrid }

// Layout implements Algorithm.
func (Grid) Layout(nodes []Node, _ []Edge, opts Options) ([]Node, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return arrangeGrid(nodes, opts.NodeSpacing, opts.Padding), nil
}

// Columns returns the number of grid columns used for n nodes.
func Columns(n int) int {
	if n <= 0 {
		return 0
	}
	return int(math.Ceil(math.Sqrt(float64(n))))
}

// AutoArrangeGrid places nodes on a grid with the given spacing and the
// default padding. It is the "simple arrange" action of the editor.
func AutoArrangeGrid(nodes []Node, spacing float64) []Node {
	if spacing < 0 {
		spacing = 0
	}
	return arrangeGrid(nodes, spacing, DefaultPadding)
}

func arrangeGrid(nodes []Node, spacing, padding float64) []Node {
	out := clone(nodes)
	cols := Columns(len(out))
	if cols == 0 {
		return out
	}

	var cellW, cellH float64
	for _, n := range out {
		cellW = max(cellW, n.Width)
		cellH = max(cellH, n.Height)
	}
	cellW += spacing
	cellH += spacing

	for i := range out {
		col, row := i%cols, i/cols
		out[i].X = padding + float64(col)*cellW
		out[i].Y = padding + float64(row)*cellH
	}
	return out
}
