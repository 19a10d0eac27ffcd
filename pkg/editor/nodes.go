package editor

import (
	"github.com/matzehuels/cardgraph/pkg/card"
	cgerrors "github.com/matzehuels/cardgraph/pkg/errors"
)

// AddNode adds n to a tab under a fresh id and returns the id.
func (e *Editor) AddNode(tabID string, n card.ParamNode) (string, error) {
	var id string
	err := e.mutate(tabID, func(g *card.Graph) (bool, error) {
		id = g.AddNode(n)
		return true, nil
	})
	if err == nil {
		e.logger.Debug("node added", "tab", tabID, "node", id, "key", n.Key)
	}
	return id, err
}

// UpdateNode merges patch into a node.
func (e *Editor) UpdateNode(tabID, nodeID string, patch card.NodePatch) error {
	return e.mutate(tabID, func(g *card.Graph) (bool, error) {
		if !g.UpdateNode(nodeID, patch) {
			return false, nodeNotFound(nodeID)
		}
		return true, nil
	})
}

// MoveNode sets a node's position, e.g. at the end of a drag.
func (e *Editor) MoveNode(tabID, nodeID string, pos card.Position) error {
	return e.UpdateNode(tabID, nodeID, card.NodePatch{Position: &pos})
}

// DeleteNode removes a node and its connections; its children become roots.
func (e *Editor) DeleteNode(tabID, nodeID string) error {
	return e.mutate(tabID, func(g *card.Graph) (bool, error) {
		return true, g.DeleteNode(nodeID)
	})
}

// DeleteSubtree removes a node with all descendants and returns their ids.
func (e *Editor) DeleteSubtree(tabID, nodeID string) ([]string, error) {
	var removed []string
	err := e.mutate(tabID, func(g *card.Graph) (bool, error) {
		var err error
		removed, err = g.DeleteSubtree(nodeID)
		return true, err
	})
	return removed, err
}

// Connect joins two nodes, deriving the direction from their order. A
// ConnectNeedsConfirmation or ConnectExists result changes nothing and is
// not recorded in history.
func (e *Editor) Connect(tabID, a, b string, opts card.ConnectOptions) (card.ConnectResult, error) {
	var res card.ConnectResult
	err := e.mutate(tabID, func(g *card.Graph) (bool, error) {
		var err error
		res, err = g.Connect(a, b, opts)
		if err != nil {
			return false, err
		}
		return res.Status == card.ConnectCreated || res.Status == card.ConnectReplaced, nil
	})
	if err != nil {
		e.logger.Debug("connect rejected", "tab", tabID, "a", a, "b", b, "err", err)
	}
	return res, err
}

// Disconnect removes a connection. The former child becomes a root.
func (e *Editor) Disconnect(tabID, connID string) error {
	return e.mutate(tabID, func(g *card.Graph) (bool, error) {
		if !g.Disconnect(connID) {
			return false, connNotFound(connID)
		}
		return true, nil
	})
}

// SetConnectionCondition replaces the condition of a connection.
func (e *Editor) SetConnectionCondition(tabID, connID, condition string) error {
	return e.mutate(tabID, func(g *card.Graph) (bool, error) {
		if !g.SetConnectionCondition(connID, condition) {
			return false, connNotFound(connID)
		}
		return true, nil
	})
}

func nodeNotFound(id string) error {
	return cgerrors.Wrap(cgerrors.ErrCodeNotFound, card.ErrNodeNotFound, "node %q", id)
}

func connNotFound(id string) error {
	return cgerrors.Wrap(cgerrors.ErrCodeNotFound, card.ErrConnectionNotFound, "connection %q", id)
}
