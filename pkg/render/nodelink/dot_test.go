package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/cardgraph/pkg/card"
)

type idSet map[string]bool

func (s idSet) Has(id string) bool { return s[id] }

func sampleGraph(t *testing.T) (*card.Graph, string, string, string) {
	t.Helper()
	g := card.NewGraph("Sprint", card.WithIDFunc(card.CounterIDs("n")))
	root := g.AddNode(card.ParamNode{Key: "kind", TypeID: card.TypeEnum, Order: 1})
	a := g.AddNode(card.ParamNode{Key: "weight", TypeID: card.TypeFloat, Order: 2, Condition: `{"==":[{"var":"kind"},"animal"]}`})
	b := g.AddNode(card.ParamNode{Key: "color", TypeID: card.TypeColor, Order: 3})
	if _, err := g.ConnectDirected(root, a, card.ConnectOptions{}); err != nil {
		t.Fatal(err)
	}
	if _, err := g.ConnectDirected(root, b, card.ConnectOptions{Condition: `{"var":"show"}`}); err != nil {
		t.Fatal(err)
	}
	return g, root, a, b
}

func TestToDOT(t *testing.T) {
	g, root, a, b := sampleGraph(t)
	dot := ToDOT(g, Options{})

	for _, want := range []string{
		`digraph "Sprint" {`,
		"rankdir=TB;",
		`"` + root + `" [label="kind"];`,
		`"` + root + `" -> "` + a + `";`,
		`"` + root + `" -> "` + b + `" [label="{\"var\":\"show\"}", style=dashed];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %s\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "pos=") {
		t.Error("unpinned output should not fix positions")
	}
}

func TestToDOTDetailedAndVisible(t *testing.T) {
	g, root, a, _ := sampleGraph(t)
	dot := ToDOT(g, Options{Detailed: true, RankDir: "LR", Visible: idSet{root: true}})

	if !strings.Contains(dot, "rankdir=LR;") {
		t.Error("rankdir not applied")
	}
	if !strings.Contains(dot, `label="weight\nfloat #2\nif {\"==\":[{\"var\":\"kind\"},\"animal\"]}"`) {
		t.Errorf("detailed label missing:\n%s", dot)
	}
	line := lineFor(dot, `"`+a+`" [`)
	if !strings.Contains(line, "fillcolor=lightgrey") || !strings.Contains(line, "penwidth=2") {
		t.Errorf("hidden conditional node not styled: %s", line)
	}
	if strings.Contains(lineFor(dot, `"`+root+`" [`), "lightgrey") {
		t.Error("visible node should not be greyed")
	}
}

func TestToDOTPinned(t *testing.T) {
	g := card.NewGraph("p", card.WithIDFunc(card.CounterIDs("n")))
	id := g.AddNode(card.ParamNode{Key: "k", TypeID: card.TypeString, Position: card.Position{X: 100, Y: 20}, Size: card.Size{Width: 144, Height: 72}})

	line := lineFor(ToDOT(g, Options{Pinned: true}), `"`+id+`" [`)
	for _, want := range []string{`pos="172,-56!"`, "width=2", "height=1", "fixedsize=true"} {
		if !strings.Contains(line, want) {
			t.Errorf("pinned node missing %s: %s", want, line)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 10.00 20.00" xmlns="x"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10.00 20.00" width="10" height="20">`) {
		t.Errorf("normalizeViewBox = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg>")); string(got) != "<svg>" {
		t.Errorf("svg without viewBox changed: %s", got)
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering is slow")
	}
	g, _, _, _ := sampleGraph(t)
	svg, err := RenderSVG(context.Background(), ToDOT(g, Options{}))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(svg), "<svg") || !strings.Contains(string(svg), "weight") {
		t.Errorf("unexpected SVG output:\n%.300s", svg)
	}
}

func lineFor(dot, prefix string) string {
	for _, l := range strings.Split(dot, "\n") {
		if strings.HasPrefix(strings.TrimSpace(l), prefix) {
			return l
		}
	}
	return ""
}
