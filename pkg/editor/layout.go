package editor

import (
	"context"

	"github.com/matzehuels/cardgraph/pkg/card"
	"github.com/matzehuels/cardgraph/pkg/layout"
	"github.com/matzehuels/cardgraph/pkg/pipeline"
)

// ApplyLayout positions every node of a tab with the named algorithm.
//
// On failure the tab is untouched and the error is returned together with
// the result (whose nodes carry the original positions). If another layout
// of the tab was applied while this one was computing, nothing is applied
// and ErrStaleLayout is returned.
func (e *Editor) ApplyLayout(ctx context.Context, tabID, algorithm string, opts layout.Options) (layout.Result, error) {
	t, err := e.tab(tabID)
	if err != nil {
		return layout.Result{}, err
	}

	seq := t.layoutSeq.Add(1)
	t.mu.RLock()
	nodes, edges := layout.FromGraph(t.g)
	t.mu.RUnlock()

	res, hit := e.runner.Layout(ctx, pipeline.LayoutRequest{
		Algorithm: algorithm,
		Nodes:     nodes,
		Edges:     edges,
		Options:   opts,
	})
	if res.Err != nil {
		return res, res.Err
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if seq < t.applied {
		e.logger.Debug("stale layout discarded", "tab", tabID, "request", seq, "applied", t.applied)
		return res, ErrStaleLayout
	}
	e.applyPositions(t, layout.Positions(res.Nodes))
	t.applied = seq
	e.logger.Debug("layout applied", "tab", tabID, "algorithm", res.Algorithm, "nodes", len(res.Nodes), "cached", hit)
	return res, nil
}

// AutoArrangeGrid places the nodes of a tab on a near-square grid in
// their current order. It counts as a layout: in-flight ApplyLayout calls
// started earlier become stale.
func (e *Editor) AutoArrangeGrid(tabID string, spacing float64) error {
	t, err := e.tab(tabID)
	if err != nil {
		return err
	}
	seq := t.layoutSeq.Add(1)

	t.mu.Lock()
	defer t.mu.Unlock()
	nodes, _ := layout.FromGraph(t.g)
	e.applyPositions(t, layout.Positions(e.engine.AutoArrangeGrid(nodes, spacing)))
	t.applied = max(t.applied, seq)
	return nil
}

// applyPositions moves nodes and records history. Callers hold t.mu.
func (e *Editor) applyPositions(t *tab, pos map[string]card.Position) {
	before := t.g.Clone()
	t.g.SetPositions(pos)
	t.push(before, e.historyLimit)
}
