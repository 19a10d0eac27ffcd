package editor

import (
	"context"

	"github.com/matzehuels/cardgraph/pkg/card"
	"github.com/matzehuels/cardgraph/pkg/logic"
	"github.com/matzehuels/cardgraph/pkg/pipeline"
	"github.com/matzehuels/cardgraph/pkg/route"
	"github.com/matzehuels/cardgraph/pkg/sample"
	"github.com/matzehuels/cardgraph/pkg/visibility"
)

// read runs fn under the tab's read lock.
func (e *Editor) read(tabID string, fn func(g *card.Graph) error) error {
	t, err := e.tab(tabID)
	if err != nil {
		return err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return fn(t.g)
}

// VisibleFields returns the visible node ids below rootID in pre-order
// (parents before children, siblings by order). An empty rootID walks
// every root in turn.
func (e *Editor) VisibleFields(tabID, rootID string, env logic.Env) ([]string, error) {
	var out []string
	err := e.read(tabID, func(g *card.Graph) error {
		if rootID != "" {
			if _, ok := g.Node(rootID); !ok {
				return nodeNotFound(rootID)
			}
			out = e.resolver.VisibleFields(rootID, g, env)
			return nil
		}
		for _, r := range g.Roots() {
			out = append(out, e.resolver.VisibleFields(r, g, env)...)
		}
		return nil
	})
	return out, err
}

// Visible returns the set of visible nodes across all roots of a tab.
func (e *Editor) Visible(tabID string, env logic.Env) (visibility.Set, error) {
	var out visibility.Set
	err := e.read(tabID, func(g *card.Graph) error {
		out = e.resolver.ResolveAll(g, env)
		return nil
	})
	return out, err
}

// Sample generates example answers for a tab; see sample.Generate.
func (e *Editor) Sample(tabID, rootID string, opts sample.Options) (map[string]any, error) {
	var out map[string]any
	err := e.read(tabID, func(g *card.Graph) error {
		if rootID != "" {
			if _, ok := g.Node(rootID); !ok {
				return nodeNotFound(rootID)
			}
		}
		out = sample.Generate(g, rootID, e.resolver, opts)
		return nil
	})
	return out, err
}

// ConnectionAnchors returns the facing side midpoints of a connection's
// cards, used for the default curved rendering.
func (e *Editor) ConnectionAnchors(tabID, connID string) (route.AnchorPair, error) {
	var out route.AnchorPair
	err := e.read(tabID, func(g *card.Graph) error {
		src, dst, err := endpoints(g, connID)
		if err != nil {
			return err
		}
		out = route.Anchors(rect(src), rect(dst))
		return nil
	})
	return out, err
}

// RouteConnection routes a connection from its source anchor to its target
// anchor around every other card of the tab. When no route is found the
// path is the straight line with Routed == false.
func (e *Editor) RouteConnection(ctx context.Context, tabID, connID string) (route.Path, error) {
	var (
		anchors   route.AnchorPair
		obstacles []route.Rect
	)
	err := e.read(tabID, func(g *card.Graph) error {
		src, dst, err := endpoints(g, connID)
		if err != nil {
			return err
		}
		anchors = route.Anchors(rect(src), rect(dst))
		for _, n := range g.Nodes() {
			if n.ID != src.ID && n.ID != dst.ID {
				obstacles = append(obstacles, rect(n))
			}
		}
		return nil
	})
	if err != nil {
		return route.Path{}, err
	}
	p, _ := e.runner.Route(ctx, pipeline.RouteRequest{
		Source:    anchors.Source,
		Target:    anchors.Target,
		Obstacles: obstacles,
	})
	return p, nil
}

func endpoints(g *card.Graph, connID string) (card.ParamNode, card.ParamNode, error) {
	c, ok := g.Connection(connID)
	if !ok {
		return card.ParamNode{}, card.ParamNode{}, connNotFound(connID)
	}
	src, ok := g.Node(c.Source)
	if !ok {
		return card.ParamNode{}, card.ParamNode{}, nodeNotFound(c.Source)
	}
	dst, ok := g.Node(c.Target)
	if !ok {
		return card.ParamNode{}, card.ParamNode{}, nodeNotFound(c.Target)
	}
	return src, dst, nil
}

func rect(n card.ParamNode) route.Rect {
	size := n.Size
	if size.Width <= 0 || size.Height <= 0 {
		size = card.DefaultSize
	}
	return route.Rect{X: n.Position.X, Y: n.Position.Y, Width: size.Width, Height: size.Height}
}
