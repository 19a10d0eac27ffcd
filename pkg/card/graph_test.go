package card

import (
	"encoding/json"
	"errors"
	"math"
	"slices"
	"testing"

	cgerrors "github.com/matzehuels/cardgraph/pkg/errors"
)

func newTestGraph() *Graph {
	return NewGraph("test", WithIDFunc(CounterIDs("id")))
}

func addNode(g *Graph, key string, order int) string {
	return g.AddNode(ParamNode{Key: key, TypeID: TypeString, Order: order})
}

func TestAddNode_AssignsFreshIDs(t *testing.T) {
	g := NewGraph("uuid")
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := g.AddNode(ParamNode{ID: "ignored", Key: "k", TypeID: TypeInteger})
		if id == "ignored" {
			t.Fatal("AddNode() kept caller-supplied id")
		}
		if seen[id] {
			t.Fatalf("AddNode() returned duplicate id %s", id)
		}
		seen[id] = true
	}
	if g.NodeCount() != 1000 {
		t.Errorf("NodeCount() = %d, want 1000", g.NodeCount())
	}
}

func TestAddNode_Defaults(t *testing.T) {
	g := newTestGraph()
	id := g.AddNode(ParamNode{Key: "scope", TypeID: TypeEnum})
	n, ok := g.Node(id)
	if !ok {
		t.Fatal("Node() not found")
	}
	if _, ok := n.Meta.(EnumMeta); !ok {
		t.Errorf("Meta = %T, want EnumMeta", n.Meta)
	}
	if n.Size != DefaultSize {
		t.Errorf("Size = %v, want %v", n.Size, DefaultSize)
	}
}

func TestUpdateNode(t *testing.T) {
	g := newTestGraph()
	id := addNode(g, "a", 0)

	key, order := "renamed", 7
	if !g.UpdateNode(id, NodePatch{Key: &key, Order: &order}) {
		t.Fatal("UpdateNode() = false, want true")
	}
	n, _ := g.Node(id)
	if n.Key != "renamed" || n.Order != 7 || n.TypeID != TypeString {
		t.Errorf("UpdateNode() merged wrong fields: %+v", n)
	}

	if g.UpdateNode("missing", NodePatch{Key: &key}) {
		t.Error("UpdateNode(missing) = true, want false")
	}
}

func TestUpdateNode_TypeChangeResetsMeta(t *testing.T) {
	g := newTestGraph()
	id := g.AddNode(ParamNode{Key: "a", TypeID: TypeEnum, Meta: EnumMeta{Options: []EnumOption{{ID: "x"}}}})
	typ := TypeBoolean
	g.UpdateNode(id, NodePatch{TypeID: &typ})
	n, _ := g.Node(id)
	if _, ok := n.Meta.(BooleanMeta); !ok {
		t.Errorf("Meta = %T, want BooleanMeta", n.Meta)
	}
}

func TestConnect_OrderDecidesParent(t *testing.T) {
	for _, reversed := range []bool{false, true} {
		g := newTestGraph()
		low := addNode(g, "low", 2)
		high := addNode(g, "high", 5)

		a, b := low, high
		if reversed {
			a, b = high, low
		}
		res, err := g.Connect(a, b, ConnectOptions{})
		if err != nil {
			t.Fatalf("Connect() error: %v", err)
		}
		if res.Status != ConnectCreated {
			t.Errorf("Status = %v, want created", res.Status)
		}
		if p, _ := g.Parent(high); p != low {
			t.Errorf("reversed=%v: Parent(high) = %q, want %q", reversed, p, low)
		}
	}
}

func TestConnect_EqualOrderTargetIsParent(t *testing.T) {
	g := newTestGraph()
	a := addNode(g, "a", 3)
	b := addNode(g, "b", 3)

	if _, err := g.Connect(a, b, ConnectOptions{}); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	if p, _ := g.Parent(a); p != b {
		t.Errorf("Parent(a) = %q, want target %q", p, b)
	}
}

func TestConnect_SelfLoop(t *testing.T) {
	g := newTestGraph()
	a := addNode(g, "a", 0)
	_, err := g.Connect(a, a, ConnectOptions{})
	if !errors.Is(err, ErrSelfLoop) {
		t.Errorf("Connect(a, a) error = %v, want ErrSelfLoop", err)
	}
}

func TestConnect_NotFound(t *testing.T) {
	g := newTestGraph()
	a := addNode(g, "a", 0)
	_, err := g.Connect(a, "ghost", ConnectOptions{})
	if !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("error = %v, want ErrNodeNotFound", err)
	}
	if !cgerrors.Is(err, cgerrors.ErrCodeNotFound) {
		t.Errorf("code = %v, want NOT_FOUND", cgerrors.GetCode(err))
	}
	if cgerrors.Is(err, cgerrors.ErrCodeCycle) {
		t.Error("not-found error must be distinct from cycle error")
	}
}

func TestConnect_RejectsCycleEitherClickOrder(t *testing.T) {
	// b is an ancestor of a, but a has the lower order, so order-based
	// parenting would make a the parent of b.
	build := func() (*Graph, string, string) {
		g := newTestGraph()
		b := addNode(g, "b", 9)
		mid := addNode(g, "mid", 4)
		a := addNode(g, "a", 1)
		if _, err := g.ConnectDirected(b, mid, ConnectOptions{}); err != nil {
			t.Fatal(err)
		}
		if _, err := g.ConnectDirected(mid, a, ConnectOptions{}); err != nil {
			t.Fatal(err)
		}
		return g, a, b
	}

	for _, reversed := range []bool{false, true} {
		g, a, b := build()
		before, _ := json.Marshal(g)

		x, y := a, b
		if reversed {
			x, y = b, a
		}
		_, err := g.Connect(x, y, ConnectOptions{Replace: true})
		if !errors.Is(err, ErrCycle) {
			t.Errorf("reversed=%v: error = %v, want ErrCycle", reversed, err)
		}
		if !cgerrors.Is(err, cgerrors.ErrCodeCycle) {
			t.Errorf("reversed=%v: code = %v, want CYCLE_REJECTED", reversed, cgerrors.GetCode(err))
		}
		after, _ := json.Marshal(g)
		if string(before) != string(after) {
			t.Errorf("reversed=%v: graph modified by rejected connect", reversed)
		}
	}
}

func TestConnect_ReplaceNeedsConfirmation(t *testing.T) {
	g := newTestGraph()
	p1 := addNode(g, "p1", 0)
	p2 := addNode(g, "p2", 1)
	c := addNode(g, "c", 5)

	if _, err := g.Connect(p1, c, ConnectOptions{}); err != nil {
		t.Fatal(err)
	}

	res, err := g.Connect(p2, c, ConnectOptions{})
	if err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	if res.Status != ConnectNeedsConfirmation {
		t.Fatalf("Status = %v, want needs_confirmation", res.Status)
	}
	if res.Previous == nil || res.Previous.Source != p1 {
		t.Errorf("Previous = %+v, want source %s", res.Previous, p1)
	}
	if p, _ := g.Parent(c); p != p1 {
		t.Errorf("unconfirmed replace changed parent to %s", p)
	}

	res, err = g.Connect(p2, c, ConnectOptions{Replace: true, Condition: `{"==":[1,1]}`})
	if err != nil {
		t.Fatalf("Connect(Replace) error: %v", err)
	}
	if res.Status != ConnectReplaced {
		t.Errorf("Status = %v, want replaced", res.Status)
	}
	if p, _ := g.Parent(c); p != p2 {
		t.Errorf("Parent(c) = %s, want %s", p, p2)
	}
	if g.ConnectionCount() != 1 {
		t.Errorf("ConnectionCount() = %d, want 1", g.ConnectionCount())
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestConnect_Exists(t *testing.T) {
	g := newTestGraph()
	p := addNode(g, "p", 0)
	c := addNode(g, "c", 1)
	first, _ := g.Connect(p, c, ConnectOptions{})
	again, err := g.Connect(c, p, ConnectOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if again.Status != ConnectExists || again.Connection.ID != first.Connection.ID {
		t.Errorf("second Connect() = %+v, want exists %s", again, first.Connection.ID)
	}
}

func TestWouldCreateCycle_MalformedGraphTerminates(t *testing.T) {
	g := newTestGraph()
	a := addNode(g, "a", 0)
	b := addNode(g, "b", 1)
	c := addNode(g, "c", 2)
	// Corrupt the graph directly: a <-> b cycle.
	g.conns = append(g.conns,
		&Connection{ID: "x1", Source: a, Target: b},
		&Connection{ID: "x2", Source: b, Target: a},
	)
	if g.WouldCreateCycle(a, c) {
		t.Error("WouldCreateCycle(a, c) = true, want false")
	}
	if !g.WouldCreateCycle(a, b) {
		t.Error("WouldCreateCycle(a, b) = false, want true")
	}
	if err := g.Validate(); err == nil {
		t.Error("Validate() = nil on cyclic graph")
	}
}

func TestDeleteNode_OrphansChildren(t *testing.T) {
	g := newTestGraph()
	root := addNode(g, "root", 0)
	mid := addNode(g, "mid", 1)
	leaf := addNode(g, "leaf", 2)
	g.Connect(root, mid, ConnectOptions{})
	g.Connect(mid, leaf, ConnectOptions{})

	if err := g.DeleteNode(mid); err != nil {
		t.Fatalf("DeleteNode() error: %v", err)
	}
	if g.ConnectionCount() != 0 {
		t.Errorf("ConnectionCount() = %d, want 0", g.ConnectionCount())
	}
	if _, ok := g.Parent(leaf); ok {
		t.Error("leaf still has a parent")
	}
	roots := g.Roots()
	if len(roots) != 2 || roots[0] != root || roots[1] != leaf {
		t.Errorf("Roots() = %v, want [%s %s]", roots, root, leaf)
	}
	if err := g.DeleteNode(mid); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("DeleteNode(deleted) = %v, want ErrNodeNotFound", err)
	}
}

func TestDeleteSubtree(t *testing.T) {
	g := newTestGraph()
	root := addNode(g, "root", 0)
	mid := addNode(g, "mid", 1)
	leaf := addNode(g, "leaf", 2)
	other := addNode(g, "other", 3)
	g.Connect(root, mid, ConnectOptions{})
	g.Connect(mid, leaf, ConnectOptions{})

	removed, err := g.DeleteSubtree(mid)
	if err != nil {
		t.Fatal(err)
	}
	if len(removed) != 2 || removed[0] != mid || removed[1] != leaf {
		t.Errorf("removed = %v", removed)
	}
	if g.NodeCount() != 2 {
		t.Errorf("NodeCount() = %d, want 2", g.NodeCount())
	}
	if _, ok := g.Node(other); !ok {
		t.Error("unrelated node removed")
	}
}

func TestChildrenSortedByOrder(t *testing.T) {
	g := newTestGraph()
	root := addNode(g, "root", 0)
	c3 := addNode(g, "c3", 3)
	c1 := addNode(g, "c1", 1)
	c2 := addNode(g, "c2", 2)
	for _, c := range []string{c3, c1, c2} {
		g.Connect(root, c, ConnectOptions{})
	}
	kids := g.Children(root)
	want := []string{c1, c2, c3}
	for i := range want {
		if kids[i] != want[i] {
			t.Fatalf("Children() = %v, want %v", kids, want)
		}
	}
}

func TestRootsSortedByExtremeOrder(t *testing.T) {
	g := newTestGraph()
	high := addNode(g, "high", math.MaxInt)
	low := addNode(g, "low", math.MinInt)
	zero := addNode(g, "zero", 0)
	neg := addNode(g, "neg", -1)

	roots := g.Roots()
	want := []string{low, neg, zero, high}
	if !slices.Equal(roots, want) {
		t.Errorf("Roots() = %v, want %v", roots, want)
	}
}

func TestClone_Independent(t *testing.T) {
	g := newTestGraph()
	a := addNode(g, "a", 0)
	c := g.Clone()
	key := "changed"
	c.UpdateNode(a, NodePatch{Key: &key})
	n, _ := g.Node(a)
	if n.Key != "a" {
		t.Errorf("original mutated through clone: %q", n.Key)
	}
}

func TestGraphJSONRoundTrip(t *testing.T) {
	g := newTestGraph()
	scope := g.AddNode(ParamNode{
		Key:    "scope",
		TypeID: TypeEnum,
		Meta: EnumMeta{Options: []EnumOption{
			{ID: "global", Label: map[string]string{"en": "Global"}},
			{ID: "subject", Value: "SUBJ"},
		}},
	})
	subject := g.AddNode(ParamNode{
		Key:       "subject_id",
		TypeID:    TypeReference,
		Order:     1,
		Condition: `{"==":[{"var":"scope"},"subject"]}`,
		Meta:      ReferenceMeta{Entity: "subject"},
	})
	g.Connect(scope, subject, ConnectOptions{})

	data, err := json.Marshal(g)
	if err != nil {
		t.Fatal(err)
	}
	var back Graph
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	n, ok := back.Node(subject)
	if !ok {
		t.Fatal("subject lost")
	}
	if n.Condition != `{"==":[{"var":"scope"},"subject"]}` {
		t.Errorf("condition not byte-identical: %s", n.Condition)
	}
	if m, ok := n.Meta.(ReferenceMeta); !ok || m.Entity != "subject" {
		t.Errorf("Meta = %#v", n.Meta)
	}
	s, _ := back.Node(scope)
	em := s.Meta.(EnumMeta)
	if em.Options[1].TechnicalValue() != "SUBJ" || em.Options[0].LabelFor("de") != "Global" {
		t.Errorf("enum options = %+v", em.Options)
	}
	if p, _ := back.Parent(subject); p != scope {
		t.Errorf("Parent lost in round trip")
	}
}

func TestParamNodeUnmarshal_ToleratesExtraAndMissingMeta(t *testing.T) {
	var n ParamNode
	raw := `{"id":"n1","key":"age","typeId":"integer","order":0,"metaJson":{"min":1,"unknown":"x"},"position":{"x":0,"y":0}}`
	if err := json.Unmarshal([]byte(raw), &n); err != nil {
		t.Fatal(err)
	}
	m := n.Meta.(IntegerMeta)
	if m.Min == nil || *m.Min != 1 || m.Max != nil {
		t.Errorf("IntegerMeta = %+v", m)
	}

	var bad ParamNode
	err := json.Unmarshal([]byte(`{"id":"n2","typeId":"matrix"}`), &bad)
	if !errors.Is(err, ErrUnknownType) {
		t.Errorf("unknown type error = %v", err)
	}
}
