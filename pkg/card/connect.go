package card

import (
	"slices"

	cgerrors "github.com/matzehuels/cardgraph/pkg/errors"
)

// ConnectStatus tells the caller what Connect did.
type ConnectStatus int

const (
	// ConnectCreated means a new connection was added.
	ConnectCreated ConnectStatus = iota
	// ConnectReplaced means the child's previous parent connection was
	// removed and the new one added (only with ConnectOptions.Replace).
	ConnectReplaced
	// ConnectExists means the exact parent/child connection already existed;
	// nothing changed.
	ConnectExists
	// ConnectNeedsConfirmation means the child already has another parent.
	// Nothing changed; retry with ConnectOptions.Replace to proceed.
	ConnectNeedsConfirmation
)

func (s ConnectStatus) String() string {
	switch s {
	case ConnectCreated:
		return "created"
	case ConnectReplaced:
		return "replaced"
	case ConnectExists:
		return "exists"
	case ConnectNeedsConfirmation:
		return "needs_confirmation"
	}
	return "unknown"
}

// ConnectOptions carries the caller's intent for Connect.
type ConnectOptions struct {
	// Condition is stored on the new connection.
	Condition string
	// Replace confirms that an existing parent of the child may be replaced.
	Replace bool
}

// ConnectResult describes the outcome of a successful Connect call.
type ConnectResult struct {
	Status ConnectStatus
	// Connection is the new (or already existing) connection. For
	// ConnectNeedsConfirmation it is the connection that would be created.
	Connection Connection
	// Previous is the child's existing parent connection for
	// ConnectNeedsConfirmation and ConnectReplaced.
	Previous *Connection
}

// Direction returns the (parent, child) pair for two nodes being connected
// without an explicit hierarchy: the node with the higher Order becomes the
// child. On equal Order the target b becomes the parent.
func Direction(a, b ParamNode) (parent, child string) {
	if a.Order >= b.Order {
		return b.ID, a.ID
	}
	return a.ID, b.ID
}

// Connect joins a and b, deriving the direction from their Order (see
// Direction). Errors are ErrNodeNotFound, ErrSelfLoop or ErrCycle wrapped
// in coded errors; on error the graph is unchanged.
func (g *Graph) Connect(a, b string, opts ConnectOptions) (ConnectResult, error) {
	na, ok := g.byID[a]
	if !ok {
		return ConnectResult{}, notFound(a)
	}
	nb, ok := g.byID[b]
	if !ok {
		return ConnectResult{}, notFound(b)
	}
	if a == b {
		return ConnectResult{}, selfLoop(a)
	}
	parent, child := Direction(*na, *nb)
	return g.ConnectDirected(parent, child, opts)
}

// ConnectDirected makes child a child of parent with the same checks as
// Connect but without consulting Order.
func (g *Graph) ConnectDirected(parent, child string, opts ConnectOptions) (ConnectResult, error) {
	if g.byID[parent] == nil {
		return ConnectResult{}, notFound(parent)
	}
	if g.byID[child] == nil {
		return ConnectResult{}, notFound(child)
	}
	if parent == child {
		return ConnectResult{}, selfLoop(parent)
	}
	if g.WouldCreateCycle(parent, child) {
		return ConnectResult{}, cgerrors.Wrap(cgerrors.ErrCodeCycle, ErrCycle,
			"%s is an ancestor of %s", child, parent)
	}

	candidate := Connection{Source: parent, Target: child, Condition: opts.Condition}
	if prev, ok := g.Inbound(child); ok {
		if prev.Source == parent {
			return ConnectResult{Status: ConnectExists, Connection: prev}, nil
		}
		if !opts.Replace {
			return ConnectResult{Status: ConnectNeedsConfirmation, Connection: candidate, Previous: &prev}, nil
		}
		g.conns = slices.DeleteFunc(g.conns, func(c *Connection) bool { return c.Target == child })
		candidate.ID = g.newID()
		g.conns = append(g.conns, &candidate)
		return ConnectResult{Status: ConnectReplaced, Connection: candidate, Previous: &prev}, nil
	}

	candidate.ID = g.newID()
	g.conns = append(g.conns, &candidate)
	return ConnectResult{Status: ConnectCreated, Connection: candidate}, nil
}

// WouldCreateCycle reports whether making child a descendant of parent
// would close a cycle. It walks every ancestor of parent breadth-first and
// terminates on malformed graphs thanks to the visited set and a depth
// bound of node count + 1.
func (g *Graph) WouldCreateCycle(parent, child string) bool {
	if parent == child {
		return true
	}
	inbound := make(map[string][]string, len(g.conns))
	for _, c := range g.conns {
		inbound[c.Target] = append(inbound[c.Target], c.Source)
	}

	visited := map[string]bool{parent: true}
	frontier := []string{parent}
	for depth := 0; len(frontier) > 0 && depth <= len(g.nodes); depth++ {
		var next []string
		for _, id := range frontier {
			for _, up := range inbound[id] {
				if up == child {
					return true
				}
				if !visited[up] {
					visited[up] = true
					next = append(next, up)
				}
			}
		}
		frontier = next
	}
	return false
}

// Disconnect removes the connection with the given id.
func (g *Graph) Disconnect(connID string) bool {
	before := len(g.conns)
	g.conns = slices.DeleteFunc(g.conns, func(c *Connection) bool { return c.ID == connID })
	return len(g.conns) != before
}

// SetConnectionCondition replaces the condition of a connection.
func (g *Graph) SetConnectionCondition(connID, condition string) bool {
	for _, c := range g.conns {
		if c.ID == connID {
			c.Condition = condition
			return true
		}
	}
	return false
}

func selfLoop(id string) error {
	return cgerrors.Wrap(cgerrors.ErrCodeSelfLoop, ErrSelfLoop, "node %q", id)
}
