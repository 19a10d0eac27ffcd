// Package editor is the application context of a card template being
// edited: it owns the tabs and the services that act on them.
//
// An [Editor] is created once per open template and passed explicitly to
// whatever needs it; there is no package-level state.
//
//	ed := editor.New(tpl, editor.WithLogger(logger), editor.WithCache(c))
//	id, _ := ed.AddNode(tabID, card.ParamNode{Key: "kind", TypeID: card.TypeEnum})
//	res, err := ed.ApplyLayout(ctx, tabID, layout.NameLayered, layout.Options{})
//
// # Concurrency
//
// Each tab has a single-writer lock. Reads (visibility, routing, snapshots)
// take the read lock. [Editor.ApplyLayout] snapshots the tab under the read
// lock, computes without holding any lock and applies the positions under
// the write lock, but only when no newer layout of the same tab has been
// applied in the meantime. A superseded result is reported with
// [ErrStaleLayout] and changes nothing.
//
// # History
//
// Every successful mutation, layouts included, records a snapshot of the
// tab. [Editor.Undo] and [Editor.Redo] move between snapshots; the number
// kept per tab is bounded by [WithHistoryLimit].
package editor
