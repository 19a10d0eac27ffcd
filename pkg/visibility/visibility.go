// Package visibility decides which cards of a graph are shown for a set of
// form values.
//
// A node is visible when its own condition holds, the condition on its
// inbound connection holds, and its parent is visible. Conditions that fail
// to parse or evaluate are treated as true and logged: a malformed rule must
// never hide the rest of the form.
package visibility

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cardgraph/pkg/card"
	"github.com/matzehuels/cardgraph/pkg/logic"
	"github.com/matzehuels/cardgraph/pkg/observability"
)

// DefaultRuleCacheSize bounds the number of parsed conditions kept by a
// Resolver.
const DefaultRuleCacheSize = 1024

// Graph is the read-only view of a tab the resolver walks.
// *card.Graph implements it.
type Graph interface {
	Node(id string) (card.ParamNode, bool)
	Children(id string) []string
	Between(source, target string) (card.Connection, bool)
	Roots() []string
}

// Set is a set of node ids.
type Set map[string]struct{}

// Has reports whether id is in the set.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the ids in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Resolver evaluates conditions with a fail-open policy. It caches parsed
// rules and is safe for concurrent use.
type Resolver struct {
	logger    *log.Logger
	cacheSize int

	mu    sync.Mutex
	rules map[string]parsed
}

type parsed struct {
	rule logic.Rule
	err  error
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRuleCacheSize sets the parsed-rule cache bound. Zero or negative
// disables caching.
func WithRuleCacheSize(n int) Option {
	return func(r *Resolver) { r.cacheSize = n }
}

// New creates a Resolver. A nil logger discards warnings.
func New(logger *log.Logger, opts ...Option) *Resolver {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	r := &Resolver{
		logger:    logger,
		cacheSize: DefaultRuleCacheSize,
		rules:     make(map[string]parsed),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Evaluate reports whether expr holds for env. Blank expressions hold.
// Parse and evaluation errors are logged and the expression is treated as
// true.
func (r *Resolver) Evaluate(expr string, env logic.Env) bool {
	if strings.TrimSpace(expr) == "" {
		return true
	}
	rule, err := r.parse(expr)
	if err != nil {
		return true
	}
	ok, err := rule.Test(env)
	if err != nil {
		r.warn(expr, err)
		return true
	}
	return ok
}

// parse returns the cached rule for expr. Parse failures are cached too so
// each malformed condition is logged once.
func (r *Resolver) parse(expr string) (logic.Rule, error) {
	r.mu.Lock()
	p, ok := r.rules[expr]
	r.mu.Unlock()
	if ok {
		return p.rule, p.err
	}

	rule, err := logic.Parse(expr)
	if err != nil {
		r.warn(expr, err)
	}
	if r.cacheSize > 0 {
		r.mu.Lock()
		if len(r.rules) >= r.cacheSize {
			r.rules = make(map[string]parsed)
		}
		r.rules[expr] = parsed{rule: rule, err: err}
		r.mu.Unlock()
	}
	return rule, err
}

func (r *Resolver) warn(expr string, err error) {
	r.logger.Warn("condition treated as visible", "condition", expr, "err", err)
	observability.Condition().OnConditionError(context.Background(), expr, err)
}

// IsVisible reports whether the node's own condition holds.
func (r *Resolver) IsVisible(n card.ParamNode, env logic.Env) bool {
	return r.Evaluate(n.Condition, env)
}

// IsConnectionOpen reports whether the connection's condition holds.
func (r *Resolver) IsConnectionOpen(c card.Connection, env logic.Env) bool {
	return r.Evaluate(c.Condition, env)
}

// ResolveVisibleSubtree returns the ids visible under rootID. The root is
// subject to its own condition; its inbound connection is not consulted.
// A missing root yields an empty set.
func (r *Resolver) ResolveVisibleSubtree(rootID string, g Graph, env logic.Env) Set {
	out := make(Set)
	r.walk(rootID, g, env, out, nil)
	return out
}

// VisibleFields returns the visible ids under rootID in display order:
// pre-order, siblings by order.
func (r *Resolver) VisibleFields(rootID string, g Graph, env logic.Env) []string {
	var order []string
	r.walk(rootID, g, env, make(Set), &order)
	return order
}

// ResolveAll returns the union of the visible subtrees of every root.
func (r *Resolver) ResolveAll(g Graph, env logic.Env) Set {
	out := make(Set)
	for _, root := range g.Roots() {
		r.walk(root, g, env, out, nil)
	}
	return out
}

func (r *Resolver) walk(rootID string, g Graph, env logic.Env, seen Set, order *[]string) {
	root, ok := g.Node(rootID)
	if !ok || !r.IsVisible(root, env) {
		return
	}

	stack := []string{rootID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen.Has(id) {
			continue
		}
		seen[id] = struct{}{}
		if order != nil {
			*order = append(*order, id)
		}

		kids := g.Children(id)
		for i := len(kids) - 1; i >= 0; i-- {
			kid := kids[i]
			if seen.Has(kid) || !r.admits(id, kid, g, env) {
				continue
			}
			stack = append(stack, kid)
		}
	}
}

// admits reports whether child, reached from the visible node parent, is
// itself visible. Only the parent's own connection to child is consulted.
func (r *Resolver) admits(parent, child string, g Graph, env logic.Env) bool {
	n, ok := g.Node(child)
	if !ok || !r.IsVisible(n, env) {
		return false
	}
	if c, ok := g.Between(parent, child); ok && !r.IsConnectionOpen(c, env) {
		return false
	}
	return true
}
