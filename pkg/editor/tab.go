package editor

import (
	"sync"
	"sync/atomic"

	"github.com/matzehuels/cardgraph/pkg/card"
)

// tab is one graph plus its history. mu is the single-writer lock.
type tab struct {
	mu     sync.RWMutex
	g      *card.Graph
	past   []*card.Graph
	future []*card.Graph

	// layoutSeq numbers layout requests; applied is the highest number
	// whose result reached the graph and is guarded by mu.
	layoutSeq atomic.Uint64
	applied   uint64
}

// push records before as the state preceding the current one and clears
// the redo stack. Callers hold the write lock.
func (t *tab) push(before *card.Graph, limit int) {
	if limit == 0 {
		return
	}
	t.past = append(t.past, before)
	if len(t.past) > limit {
		t.past = t.past[len(t.past)-limit:]
	}
	t.future = nil
}

// mutate runs fn under the write lock, recording history only when fn
// reports a change.
func (e *Editor) mutate(tabID string, fn func(g *card.Graph) (bool, error)) error {
	t, err := e.tab(tabID)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	before := t.g.Clone()
	changed, err := fn(t.g)
	if err != nil || !changed {
		return err
	}
	t.push(before, e.historyLimit)
	return nil
}

// Undo restores the previous state of a tab.
func (e *Editor) Undo(tabID string) error {
	t, err := e.tab(tabID)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.past) == 0 {
		return ErrNothingToUndo
	}
	prev := t.past[len(t.past)-1]
	t.past = t.past[:len(t.past)-1]
	t.future = append(t.future, t.g)
	t.g = prev
	return nil
}

// Redo re-applies the last undone change.
func (e *Editor) Redo(tabID string) error {
	t, err := e.tab(tabID)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.future) == 0 {
		return ErrNothingToRedo
	}
	next := t.future[len(t.future)-1]
	t.future = t.future[:len(t.future)-1]
	t.past = append(t.past, t.g)
	t.g = next
	return nil
}

// History returns the number of undo and redo steps available.
func (e *Editor) History(tabID string) (undo, redo int, err error) {
	t, err := e.tab(tabID)
	if err != nil {
		return 0, 0, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.past), len(t.future), nil
}
