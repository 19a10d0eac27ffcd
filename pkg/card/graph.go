package card

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	cgerrors "github.com/matzehuels/cardgraph/pkg/errors"
)

// Graph is one tab of a template: an ordered set of nodes plus the
// connections between them and the tab's viewport.
//
// The zero value is not usable - use NewGraph.
type Graph struct {
	ID       string
	Name     string
	Viewport Viewport

	nodes []*ParamNode
	byID  map[string]*ParamNode
	conns []*Connection
	newID IDFunc
}

// GraphOption configures a Graph created by NewGraph.
type GraphOption func(*Graph)

// WithIDFunc makes the graph use f for node and connection ids.
func WithIDFunc(f IDFunc) GraphOption {
	return func(g *Graph) {
		if f != nil {
			g.newID = f
		}
	}
}

// NewGraph creates an empty tab. The tab id itself is generated with the
// same IDFunc as its nodes.
func NewGraph(name string, opts ...GraphOption) *Graph {
	g := &Graph{
		Name:     name,
		Viewport: Viewport{Zoom: 1},
		byID:     make(map[string]*ParamNode),
		newID:    NewID,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.ID = g.newID()
	return g
}

// SetIDFunc replaces the id generator, e.g. after decoding a graph.
func (g *Graph) SetIDFunc(f IDFunc) {
	if f != nil {
		g.newID = f
	}
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// ConnectionCount returns the number of connections.
func (g *Graph) ConnectionCount() int { return len(g.conns) }

// AddNode stores a copy of n under a freshly generated id and returns the
// id. Any id set on n is ignored. A nil Meta becomes the zero variant of
// n.TypeID and a zero Size becomes DefaultSize.
func (g *Graph) AddNode(n ParamNode) string {
	n.ID = g.newID()
	for g.byID[n.ID] != nil {
		n.ID = g.newID()
	}
	g.store(n)
	return n.ID
}

// InsertNode stores n keeping its id. It is meant for restoring saved
// graphs; interactive edits should use AddNode.
func (g *Graph) InsertNode(n ParamNode) error {
	if strings.TrimSpace(n.ID) == "" {
		return cgerrors.New(cgerrors.ErrCodeInvalidInput, "node id must not be empty")
	}
	if g.byID[n.ID] != nil {
		return cgerrors.New(cgerrors.ErrCodeInvalidInput, "duplicate node id %q", n.ID)
	}
	g.store(n)
	return nil
}

func (g *Graph) store(n ParamNode) {
	if n.Meta == nil {
		n.Meta = EmptyMeta(n.TypeID)
	}
	if n.Size == (Size{}) {
		n.Size = DefaultSize
	}
	node := &n
	g.nodes = append(g.nodes, node)
	g.byID[node.ID] = node
}

// Node returns a copy of the node with the given id.
func (g *Graph) Node(id string) (ParamNode, bool) {
	n, ok := g.byID[id]
	if !ok {
		return ParamNode{}, false
	}
	return *n, true
}

// NodeByKey returns the first node whose Key equals key.
func (g *Graph) NodeByKey(key string) (ParamNode, bool) {
	for _, n := range g.nodes {
		if n.Key == key {
			return *n, true
		}
	}
	return ParamNode{}, false
}

// Nodes returns copies of all nodes in insertion order.
func (g *Graph) Nodes() []ParamNode {
	out := make([]ParamNode, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = *n
	}
	return out
}

// NodePatch lists the fields UpdateNode merges. Nil fields are left as
// they are.
type NodePatch struct {
	Key       *string
	TypeID    *TypeID
	Condition *string
	Order     *int
	Meta      Meta
	Position  *Position
	Size      *Size
}

// UpdateNode merges patch into the node with the given id. It returns
// false, changing nothing, when the id is absent. When the merged Meta
// variant does not match the merged TypeID, Meta is reset to the zero
// variant of the new type.
func (g *Graph) UpdateNode(id string, patch NodePatch) bool {
	n, ok := g.byID[id]
	if !ok {
		return false
	}
	if patch.Key != nil {
		n.Key = *patch.Key
	}
	if patch.TypeID != nil {
		n.TypeID = *patch.TypeID
	}
	if patch.Condition != nil {
		n.Condition = *patch.Condition
	}
	if patch.Order != nil {
		n.Order = *patch.Order
	}
	if patch.Meta != nil {
		n.Meta = patch.Meta
	}
	if patch.Position != nil {
		n.Position = *patch.Position
	}
	if patch.Size != nil {
		n.Size = *patch.Size
	}
	if n.Meta == nil || n.Meta.Kind() != n.TypeID {
		n.Meta = EmptyMeta(n.TypeID)
	}
	return true
}

// SetPositions moves every listed node. Unknown ids are ignored.
func (g *Graph) SetPositions(pos map[string]Position) {
	for id, p := range pos {
		if n, ok := g.byID[id]; ok {
			n.Position = p
		}
	}
}

// DeleteNode removes the node and every connection that has it as source
// or target. Former children of the node become roots.
func (g *Graph) DeleteNode(id string) error {
	if _, ok := g.byID[id]; !ok {
		return notFound(id)
	}
	g.removeNode(id)
	return nil
}

// DeleteSubtree removes the node and all of its descendants, returning the
// removed ids in pre-order.
func (g *Graph) DeleteSubtree(id string) ([]string, error) {
	if _, ok := g.byID[id]; !ok {
		return nil, notFound(id)
	}
	var removed []string
	seen := make(map[string]bool)
	var walk func(string)
	walk = func(cur string) {
		if seen[cur] {
			return
		}
		seen[cur] = true
		removed = append(removed, cur)
		for _, c := range g.Children(cur) {
			walk(c)
		}
	}
	walk(id)
	for _, r := range removed {
		g.removeNode(r)
	}
	return removed, nil
}

func (g *Graph) removeNode(id string) {
	delete(g.byID, id)
	g.nodes = slices.DeleteFunc(g.nodes, func(n *ParamNode) bool { return n.ID == id })
	g.conns = slices.DeleteFunc(g.conns, func(c *Connection) bool { return c.Source == id || c.Target == id })
}

// Connections returns copies of all connections in insertion order.
func (g *Graph) Connections() []Connection {
	out := make([]Connection, len(g.conns))
	for i, c := range g.conns {
		out[i] = *c
	}
	return out
}

// Connection returns a copy of the connection with the given id.
func (g *Graph) Connection(id string) (Connection, bool) {
	for _, c := range g.conns {
		if c.ID == id {
			return *c, true
		}
	}
	return Connection{}, false
}

// Inbound returns the connection targeting id. With a valid forest there
// is at most one; otherwise the earliest is returned.
func (g *Graph) Inbound(id string) (Connection, bool) {
	for _, c := range g.conns {
		if c.Target == id {
			return *c, true
		}
	}
	return Connection{}, false
}

// Between returns the earliest connection from source to target.
func (g *Graph) Between(source, target string) (Connection, bool) {
	for _, c := range g.conns {
		if c.Source == source && c.Target == target {
			return *c, true
		}
	}
	return Connection{}, false
}

// Parent returns the id of the node's parent, if it has one.
func (g *Graph) Parent(id string) (string, bool) {
	c, ok := g.Inbound(id)
	if !ok {
		return "", false
	}
	return c.Source, true
}

// Children returns the ids of the node's children ordered by Order, then id.
func (g *Graph) Children(id string) []string {
	var kids []*ParamNode
	for _, c := range g.conns {
		if c.Source != id {
			continue
		}
		if n, ok := g.byID[c.Target]; ok {
			kids = append(kids, n)
		}
	}
	return sortedIDs(kids)
}

// Roots returns the ids of nodes without a parent ordered by Order, then id.
func (g *Graph) Roots() []string {
	hasParent := make(map[string]bool, len(g.conns))
	for _, c := range g.conns {
		hasParent[c.Target] = true
	}
	var roots []*ParamNode
	for _, n := range g.nodes {
		if !hasParent[n.ID] {
			roots = append(roots, n)
		}
	}
	return sortedIDs(roots)
}

func sortedIDs(nodes []*ParamNode) []string {
	slices.SortStableFunc(nodes, func(a, b *ParamNode) int {
		return cmp.Or(cmp.Compare(a.Order, b.Order), strings.Compare(a.ID, b.ID))
	})
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

// DuplicateKeys returns keys used by more than one node, sorted.
func (g *Graph) DuplicateKeys() []string {
	count := make(map[string]int, len(g.nodes))
	for _, n := range g.nodes {
		count[n.Key]++
	}
	var dups []string
	for k, c := range count {
		if c > 1 {
			dups = append(dups, k)
		}
	}
	slices.Sort(dups)
	return dups
}

// Clone returns a deep copy of the graph. Meta values are shared; they are
// treated as immutable and only ever replaced whole.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		ID:       g.ID,
		Name:     g.Name,
		Viewport: g.Viewport,
		nodes:    make([]*ParamNode, len(g.nodes)),
		byID:     make(map[string]*ParamNode, len(g.nodes)),
		conns:    make([]*Connection, len(g.conns)),
		newID:    g.newID,
	}
	for i, n := range g.nodes {
		cp := *n
		c.nodes[i] = &cp
		c.byID[cp.ID] = &cp
	}
	for i, conn := range g.conns {
		cp := *conn
		c.conns[i] = &cp
	}
	return c
}

// Validate checks that every connection references existing nodes, that no
// node has more than one parent and that the parent relation is acyclic.
func (g *Graph) Validate() error {
	parents := make(map[string]string, len(g.conns))
	for _, c := range g.conns {
		if g.byID[c.Source] == nil || g.byID[c.Target] == nil {
			return cgerrors.Wrap(cgerrors.ErrCodeInvalidReference, ErrDanglingConnection,
				"connection %s (%s -> %s)", c.ID, c.Source, c.Target)
		}
		if c.Source == c.Target {
			return cgerrors.Wrap(cgerrors.ErrCodeSelfLoop, ErrSelfLoop, "connection %s", c.ID)
		}
		if p, dup := parents[c.Target]; dup {
			return cgerrors.Wrap(cgerrors.ErrCodeInvalidInput, ErrMultipleParents,
				"node %s has parents %s and %s", c.Target, p, c.Source)
		}
		parents[c.Target] = c.Source
	}
	for _, n := range g.nodes {
		steps := 0
		for cur, ok := parents[n.ID]; ok; cur, ok = parents[cur] {
			if cur == n.ID || steps > len(g.nodes) {
				return cgerrors.Wrap(cgerrors.ErrCodeCycle, ErrCycle, "node %s is its own ancestor", n.ID)
			}
			steps++
		}
	}
	return nil
}

func notFound(id string) error {
	return cgerrors.Wrap(cgerrors.ErrCodeNotFound, ErrNodeNotFound, "node %q", id)
}

type graphJSON struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Viewport    Viewport     `json:"viewport"`
	Nodes       []ParamNode  `json:"nodes"`
	Connections []Connection `json:"connections"`
}

// MarshalJSON encodes the tab with nodes and connections in insertion order.
func (g *Graph) MarshalJSON() ([]byte, error) {
	return json.Marshal(graphJSON{
		ID:          g.ID,
		Name:        g.Name,
		Viewport:    g.Viewport,
		Nodes:       g.Nodes(),
		Connections: g.Connections(),
	})
}

// UnmarshalJSON restores a tab. Ids are kept; structural validity is not
// checked here, call Validate afterwards.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var in graphJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	out := &Graph{
		ID:       in.ID,
		Name:     in.Name,
		Viewport: in.Viewport,
		byID:     make(map[string]*ParamNode, len(in.Nodes)),
		newID:    g.newID,
	}
	if out.newID == nil {
		out.newID = NewID
	}
	if out.Viewport.Zoom == 0 {
		out.Viewport.Zoom = 1
	}
	for _, n := range in.Nodes {
		if err := out.InsertNode(n); err != nil {
			return err
		}
	}
	for _, c := range in.Connections {
		if c.ID == "" {
			c.ID = out.newID()
		}
		cp := c
		out.conns = append(out.conns, &cp)
	}
	if err := out.adoptParentIDs(data); err != nil {
		return err
	}
	*g = *out
	return nil
}

// adoptParentIDs turns the "parentId" of tree-mode documents into
// connections. Targets that already have an inbound connection keep it.
// An unknown parent becomes a dangling connection for Validate to report.
func (g *Graph) adoptParentIDs(data []byte) error {
	var tree struct {
		Nodes []struct {
			ID       string `json:"id"`
			ParentID string `json:"parentId"`
		} `json:"nodes"`
	}
	if err := json.Unmarshal(data, &tree); err != nil {
		return err
	}
	for _, n := range tree.Nodes {
		if n.ParentID == "" {
			continue
		}
		if _, ok := g.Inbound(n.ID); ok {
			continue
		}
		g.conns = append(g.conns, &Connection{ID: g.newID(), Source: n.ParentID, Target: n.ID})
	}
	return nil
}

// String returns a short human-readable summary.
func (g *Graph) String() string {
	return fmt.Sprintf("graph %q (%d nodes, %d connections)", g.Name, len(g.nodes), len(g.conns))
}
