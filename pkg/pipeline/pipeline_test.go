package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/cardgraph/pkg/cache"
	"github.com/matzehuels/cardgraph/pkg/card"
	"github.com/matzehuels/cardgraph/pkg/document"
	"github.com/matzehuels/cardgraph/pkg/layout"
	"github.com/matzehuels/cardgraph/pkg/route"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"dot", false},
		{"svg", false},
		{"json", false},
		{"yaml", false},
		{"png", true},
		{"SVG", true},
		{"", true},
	}
	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("empty formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"dot", "pdf"}); err == nil {
		t.Error("pdf should fail")
	}
}

func chain() ([]layout.Node, []layout.Edge) {
	nodes := []layout.Node{
		{ID: "a", Width: 100, Height: 40},
		{ID: "b", Width: 100, Height: 40},
		{ID: "c", Width: 100, Height: 40},
	}
	edges := []layout.Edge{{Source: "a", Target: "b"}, {Source: "b", Target: "c"}}
	return nodes, edges
}

func TestRunnerLayoutCaches(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil, nil)
	nodes, edges := chain()
	req := LayoutRequest{Algorithm: layout.NameLayered, Nodes: nodes, Edges: edges}

	first, hit := r.Layout(ctx, req)
	if hit || first.Err != nil {
		t.Fatalf("first run: hit=%v err=%v", hit, first.Err)
	}
	second, hit := r.Layout(ctx, req)
	if !hit {
		t.Fatal("second run should hit the cache")
	}
	for i := range first.Nodes {
		if first.Nodes[i] != second.Nodes[i] {
			t.Errorf("cached node %d = %+v, want %+v", i, second.Nodes[i], first.Nodes[i])
		}
	}

	req.Refresh = true
	if _, hit := r.Layout(ctx, req); hit {
		t.Error("Refresh must bypass the cache")
	}

	req.Refresh = false
	req.Options.Direction = layout.LeftRight
	if _, hit := r.Layout(ctx, req); hit {
		t.Error("different options must not share a cache entry")
	}
}

func TestRunnerKeyNormalizesDefaults(t *testing.T) {
	r := NewRunner(nil, nil, nil, nil)
	nodes, edges := chain()
	k1, _ := r.Key(LayoutRequest{Nodes: nodes, Edges: edges})
	k2, _ := r.Key(LayoutRequest{Algorithm: layout.NameLayered, Nodes: nodes, Edges: edges, Options: layout.DefaultOptions()})
	if k1 != k2 {
		t.Error("implicit and explicit defaults should share a key")
	}
}

func TestRunnerFailureNotCached(t *testing.T) {
	ctx := context.Background()
	fc, _ := cache.NewFileCache(t.TempDir())
	r := NewRunner(fc, nil, nil, nil)
	nodes, edges := chain()
	req := LayoutRequest{Algorithm: "force", Nodes: nodes, Edges: edges}

	res, _ := r.Layout(ctx, req)
	if res.Err == nil {
		t.Fatal("unknown algorithm should fail")
	}
	if _, hit := r.Layout(ctx, req); hit {
		t.Error("failed layouts must not be cached")
	}
}

func TestRender(t *testing.T) {
	g := card.NewGraph("tab", card.WithIDFunc(card.CounterIDs("n")))
	a := g.AddNode(card.ParamNode{Key: "a", TypeID: card.TypeBoolean, Order: 1})
	b := g.AddNode(card.ParamNode{Key: "b", TypeID: card.TypeString, Order: 2})
	if _, err := g.Connect(a, b, card.ConnectOptions{}); err != nil {
		t.Fatal(err)
	}

	out, err := Render(context.Background(), g, RenderOptions{Formats: []string{FormatDOT, FormatJSON}})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out[FormatDOT]), `"`+a+`" -> "`+b+`"`) {
		t.Errorf("dot output:\n%s", out[FormatDOT])
	}
	tpl, err := document.Decode(out[FormatJSON], document.JSON)
	if err != nil {
		t.Fatal(err)
	}
	if len(tpl.Tabs) != 1 || tpl.Tabs[0].NodeCount() != 2 {
		t.Errorf("json artifact decoded to %+v", tpl)
	}

	if _, err := Render(context.Background(), g, RenderOptions{Formats: []string{"png"}}); err == nil {
		t.Error("unsupported format should fail")
	}
}

func TestRunnerRouteCaches(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil, nil)
	req := RouteRequest{
		Source:    route.Point{X: 0, Y: 0},
		Target:    route.Point{X: 400, Y: 0},
		Obstacles: []route.Rect{{X: 150, Y: -40, Width: 100, Height: 80}},
	}

	first, hit := r.Route(ctx, req)
	if hit {
		t.Fatal("first route should miss")
	}
	if !first.Routed {
		t.Fatal("expected a routed path around the obstacle")
	}
	second, hit := r.Route(ctx, req)
	if !hit {
		t.Error("second route should hit the cache")
	}
	if second.D != first.D {
		t.Errorf("cached path differs: %q vs %q", second.D, first.D)
	}

	req.Refresh = true
	if _, hit := r.Route(ctx, req); hit {
		t.Error("refresh should bypass the cache")
	}

	k1, _ := r.RouteKey(req)
	req.Obstacles[0].X += 10
	k2, _ := r.RouteKey(req)
	if k1 == k2 {
		t.Error("moving an obstacle must change the key")
	}
	if !strings.HasPrefix(k1, "route:") {
		t.Errorf("key = %q", k1)
	}
}
