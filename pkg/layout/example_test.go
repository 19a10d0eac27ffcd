package layout_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/cardgraph/pkg/layout"
)

func ExampleEngine_Apply() {
	nodes := []layout.Node{
		{ID: "scope", Width: 220, Height: 80},
		{ID: "subject_id", Width: 220, Height: 80},
		{ID: "window_type", Width: 220, Height: 80},
	}
	edges := []layout.Edge{
		{Source: "scope", Target: "subject_id"},
		{Source: "scope", Target: "window_type"},
	}

	eng := layout.NewEngine(nil)
	res := eng.Apply(context.Background(), layout.NameLayered, nodes, edges, layout.DefaultOptions())
	for _, n := range res.Nodes {
		fmt.Printf("%s (%g, %g)\n", n.ID, n.X, n.Y)
	}
	// Output:
	// scope (20, 20)
	// subject_id (20, 180)
	// window_type (290, 180)
}

func ExampleAutoArrangeGrid() {
	nodes := make([]layout.Node, 5)
	for i := range nodes {
		nodes[i] = layout.Node{ID: fmt.Sprint("n", i), Width: 100, Height: 50}
	}
	for _, n := range layout.AutoArrangeGrid(nodes, 20) {
		fmt.Printf("%s (%g, %g)\n", n.ID, n.X, n.Y)
	}
	// Output:
	// n0 (20, 20)
	// n1 (140, 20)
	// n2 (260, 20)
	// n3 (20, 90)
	// n4 (140, 90)
}
