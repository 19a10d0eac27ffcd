package editor

import (
	"errors"
	"io"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cardgraph/pkg/cache"
	"github.com/matzehuels/cardgraph/pkg/card"
	cgerrors "github.com/matzehuels/cardgraph/pkg/errors"
	"github.com/matzehuels/cardgraph/pkg/layout"
	"github.com/matzehuels/cardgraph/pkg/pipeline"
	"github.com/matzehuels/cardgraph/pkg/route"
	"github.com/matzehuels/cardgraph/pkg/visibility"
)

// DefaultHistoryLimit is the number of undo steps kept per tab.
const DefaultHistoryLimit = 100

var (
	// ErrTabNotFound is returned for an unknown tab id.
	ErrTabNotFound = errors.New("tab not found")

	// ErrStaleLayout is returned by ApplyLayout when a newer layout of the
	// same tab was applied while this one was being computed.
	ErrStaleLayout = errors.New("layout superseded by a newer request")

	// ErrNothingToUndo and ErrNothingToRedo report empty history stacks.
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Editor owns the tabs of one template plus the layout engine, visibility
// resolver, router and layout cache that operate on them. It is safe for
// concurrent use.
type Editor struct {
	logger       *log.Logger
	engine       *layout.Engine
	resolver     *visibility.Resolver
	router       *route.Router
	cache        cache.Cache
	newID        card.IDFunc
	historyLimit int
	runner       *pipeline.Runner

	mu   sync.RWMutex
	id   string
	name string
	tabs []*tab
	byID map[string]*tab
}

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithEngine replaces the layout engine, e.g. to register an algorithm.
func WithEngine(eng *layout.Engine) Option {
	return func(e *Editor) { e.engine = eng }
}

// WithResolver replaces the visibility resolver.
func WithResolver(r *visibility.Resolver) Option {
	return func(e *Editor) { e.resolver = r }
}

// WithRouter replaces the edge router.
func WithRouter(r *route.Router) Option {
	return func(e *Editor) { e.router = r }
}

// WithCache enables layout caching.
func WithCache(c cache.Cache) Option {
	return func(e *Editor) { e.cache = c }
}

// WithIDFunc sets the id generator for tabs, nodes and connections.
func WithIDFunc(f card.IDFunc) Option {
	return func(e *Editor) {
		if f != nil {
			e.newID = f
		}
	}
}

// WithHistoryLimit bounds the undo stack per tab. Zero disables history.
func WithHistoryLimit(n int) Option {
	return func(e *Editor) {
		if n >= 0 {
			e.historyLimit = n
		}
	}
}

// New creates an editor for tpl. The editor works on copies: later changes
// to tpl do not affect it. A nil tpl starts an empty template.
func New(tpl *card.Template, opts ...Option) *Editor {
	e := &Editor{
		logger:       log.New(io.Discard),
		newID:        card.NewID,
		historyLimit: DefaultHistoryLimit,
		byID:         make(map[string]*tab),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.engine == nil {
		e.engine = layout.NewEngine(e.logger)
	}
	if e.resolver == nil {
		e.resolver = visibility.New(e.logger)
	}
	if e.router == nil {
		e.router = route.New(e.logger, route.Options{})
	}
	e.runner = pipeline.NewRunner(e.cache, nil, e.engine, e.logger)
	e.runner.Router = e.router

	if tpl == nil {
		tpl = &card.Template{ID: e.newID()}
	}
	e.id, e.name = tpl.ID, tpl.Name
	for _, g := range tpl.Tabs {
		c := g.Clone()
		c.SetIDFunc(e.newID)
		e.addTab(c)
	}
	return e
}

func (e *Editor) addTab(g *card.Graph) *tab {
	t := &tab{g: g}
	e.tabs = append(e.tabs, t)
	e.byID[g.ID] = t
	return t
}

// TabInfo summarizes a tab.
type TabInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Nodes       int    `json:"nodes"`
	Connections int    `json:"connections"`
}

// Tabs lists the tabs in order.
func (e *Editor) Tabs() []TabInfo {
	e.mu.RLock()
	tabs := slices.Clone(e.tabs)
	e.mu.RUnlock()

	out := make([]TabInfo, len(tabs))
	for i, t := range tabs {
		t.mu.RLock()
		out[i] = TabInfo{ID: t.g.ID, Name: t.g.Name, Nodes: t.g.NodeCount(), Connections: t.g.ConnectionCount()}
		t.mu.RUnlock()
	}
	return out
}

// AddTab creates an empty tab and returns its id.
func (e *Editor) AddTab(name string) string {
	g := card.NewGraph(name, card.WithIDFunc(e.newID))
	e.mu.Lock()
	defer e.mu.Unlock()
	for e.byID[g.ID] != nil {
		g.ID = e.newID()
	}
	e.addTab(g)
	e.logger.Debug("tab added", "tab", g.ID, "name", name)
	return g.ID
}

// RemoveTab deletes a tab and its history.
func (e *Editor) RemoveTab(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.byID[id]
	if !ok {
		return tabNotFound(id)
	}
	delete(e.byID, id)
	e.tabs = slices.DeleteFunc(e.tabs, func(x *tab) bool { return x == t })
	return nil
}

// Graph returns a snapshot copy of a tab.
func (e *Editor) Graph(tabID string) (*card.Graph, error) {
	t, err := e.tab(tabID)
	if err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.g.Clone(), nil
}

// Template returns a snapshot copy of the whole template.
func (e *Editor) Template() *card.Template {
	e.mu.RLock()
	tabs := slices.Clone(e.tabs)
	out := &card.Template{ID: e.id, Name: e.name}
	e.mu.RUnlock()

	for _, t := range tabs {
		t.mu.RLock()
		out.Tabs = append(out.Tabs, t.g.Clone())
		t.mu.RUnlock()
	}
	return out
}

func (e *Editor) tab(id string) (*tab, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	t, ok := e.byID[id]
	if !ok {
		return nil, tabNotFound(id)
	}
	return t, nil
}

func tabNotFound(id string) error {
	return cgerrors.Wrap(cgerrors.ErrCodeNotFound, ErrTabNotFound, "tab %q", id)
}

// Close releases the layout cache.
func (e *Editor) Close() error {
	if e.cache != nil {
		return e.cache.Close()
	}
	return nil
}

// Runner exposes the cached layout runner, e.g. for batch use.
func (e *Editor) Runner() *pipeline.Runner { return e.runner }
