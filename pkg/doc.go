// Package pkg provides the core libraries of cardgraph, the editing core
// behind data-card templates.
//
// # Overview
//
// A template is a set of tabs. Each tab is a graph of parameter cards
// (form fields) joined by connections. A card is shown to the person
// filling in the form only when its own condition and the condition of
// the connection leading to it hold for the answers given so far.
// Conditions are JSON-Logic expressions.
//
// The pkg directory is organized into these areas:
//
//  1. [card] - The graph model: cards, connections, tabs, templates
//  2. [logic], [visibility], [sample] - Conditions and what they show
//  3. [layout], [dag], [route] - Arranging cards and routing connections
//  4. [editor], [pipeline] - Thread-safe editing and cached computation
//  5. [document], [render] - Reading, writing and drawing templates
//  6. [cache], [config], [errors], [observability], [buildinfo] - Infrastructure
//
// # Quick Start
//
// Load a template, lay out its first tab and list the visible fields:
//
//	tpl, _ := document.ReadFile("survey.yaml")
//	ed := editor.New(tpl)
//	defer ed.Close()
//
//	tab := ed.Tabs()[0].ID
//	_, _ = ed.ApplyLayout(ctx, tab, layout.NameLayered, layout.DefaultOptions())
//
//	ids, _ := ed.VisibleFields(tab, "", logic.Env{"kind": "animal"})
//
// # Main Packages
//
// [card] - Parameter nodes with typed metadata, connections with optional
// conditions, and the per-tab [card.Graph] that keeps both consistent:
// unique keys, no self loops, no cycles, at most one parent per card.
//
// [logic] - A JSON-Logic evaluator over plain decoded JSON values.
//
// [visibility] - Walks a tab from its roots and decides which cards are
// reachable under an answer set. Invalid conditions fail open.
//
// [sample] - Generates example answers by walking the visible fields.
//
// [layout] - Layered, tree and grid layouts behind a single [layout.Engine].
// The layered layout builds on the rank-indexed graph in [dag].
//
// [route] - Anchor selection and A* orthogonal routing between cards.
//
// [editor] - The mutable, undoable multi-tab editing surface.
//
// [pipeline] - Cached layout, routing and rendering shared by the CLI and
// the HTTP server.
//
// [document] - JSON and YAML template files with validation.
//
// [render] - Graphviz node-link diagrams of a tab.
//
// [card]: https://pkg.go.dev/github.com/matzehuels/cardgraph/pkg/card
// [logic]: https://pkg.go.dev/github.com/matzehuels/cardgraph/pkg/logic
// [visibility]: https://pkg.go.dev/github.com/matzehuels/cardgraph/pkg/visibility
// [sample]: https://pkg.go.dev/github.com/matzehuels/cardgraph/pkg/sample
// [layout]: https://pkg.go.dev/github.com/matzehuels/cardgraph/pkg/layout
// [dag]: https://pkg.go.dev/github.com/matzehuels/cardgraph/pkg/dag
// [route]: https://pkg.go.dev/github.com/matzehuels/cardgraph/pkg/route
// [editor]: https://pkg.go.dev/github.com/matzehuels/cardgraph/pkg/editor
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/cardgraph/pkg/pipeline
// [document]: https://pkg.go.dev/github.com/matzehuels/cardgraph/pkg/document
// [render]: https://pkg.go.dev/github.com/matzehuels/cardgraph/pkg/render
// [cache]: https://pkg.go.dev/github.com/matzehuels/cardgraph/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/cardgraph/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/cardgraph/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/cardgraph/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/cardgraph/pkg/buildinfo
package pkg
