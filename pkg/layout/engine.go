package layout

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	cgerrors "github.com/matzehuels/cardgraph/pkg/errors"
	"github.com/matzehuels/cardgraph/pkg/observability"
)

// Result is the outcome of [Engine.Apply]. When Err is set, Nodes is a copy
// of the input with its original positions.
type Result struct {
	Nodes     []Node
	Algorithm string
	Duration  time.Duration
	Err       error
	// Cached is set when a caller served the nodes from a cache.
	Cached bool
}

// Engine dispatches layout requests to registered algorithms. It is safe
// for concurrent use.
type Engine struct {
	logger *log.Logger

	mu    sync.RWMutex
	algos map[string]Algorithm
}

// NewEngine returns an engine with the layered, tree and grid algorithms
// registered. A nil logger discards output.
func NewEngine(logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	e := &Engine{logger: logger, algos: make(map[string]Algorithm)}
	e.Register(Layered{})
	e.Register(Tree{Fallback: Grid{}})
	e.Register(Grid{})
	return e
}

// Register adds or replaces an algorithm under its Name.
func (e *Engine) Register(a Algorithm) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.algos[a.Name()] = a
}

// Algorithm returns the algorithm registered under name.
func (e *Engine) Algorithm(name string) (Algorithm, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	a, ok := e.algos[name]
	return a, ok
}

// Algorithms returns the registered names in lexical order.
func (e *Engine) Algorithms() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.algos))
	for name := range e.algos {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Apply runs the named algorithm. It never panics and never returns
// partial results: on any failure the original nodes are returned with
// Result.Err set. An empty node slice is a no-op. An empty name selects
// the layered layout.
func (e *Engine) Apply(ctx context.Context, name string, nodes []Node, edges []Edge, opts Options) Result {
	if name == "" {
		name = NameLayered
	}
	res := Result{Algorithm: name}
	if len(nodes) == 0 {
		res.Nodes = clone(nodes)
		return res
	}

	algo, ok := e.Algorithm(name)
	if !ok {
		res.Nodes = clone(nodes)
		res.Err = cgerrors.New(cgerrors.ErrCodeUnknownAlgorithm, "unknown layout algorithm %q (available: %v)", name, e.Algorithms())
		e.logger.Warn("layout skipped", "algorithm", name, "err", res.Err)
		return res
	}

	hooks := observability.Layout()
	hooks.OnLayoutStart(ctx, name, len(nodes))
	start := time.Now()
	out, err := run(algo, nodes, edges, opts)
	res.Duration = time.Since(start)
	if err == nil && len(out) != len(nodes) {
		err = cgerrors.New(cgerrors.ErrCodeLayoutFailed, "%s returned %d nodes for %d inputs", name, len(out), len(nodes))
	}
	hooks.OnLayoutComplete(ctx, name, res.Duration, err)

	if err != nil {
		res.Nodes = clone(nodes)
		res.Err = err
		hooks.OnLayoutFallback(ctx, name, err.Error())
		e.logger.Warn("layout failed, keeping positions", "algorithm", name, "err", err)
		return res
	}
	res.Nodes = out
	e.logger.Debug("layout applied", "algorithm", name, "nodes", len(nodes), "edges", len(edges), "took", res.Duration)
	return res
}

// AutoArrangeGrid places nodes on a grid; see the package function.
func (e *Engine) AutoArrangeGrid(nodes []Node, spacing float64) []Node {
	return AutoArrangeGrid(nodes, spacing)
}

func run(algo Algorithm, nodes []Node, edges []Edge, opts Options) (out []Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = cgerrors.New(cgerrors.ErrCodeLayoutFailed, "%s panicked: %v", algo.Name(), r)
		}
	}()
	out, err = algo.Layout(clone(nodes), slices.Clone(edges), opts)
	if err != nil && cgerrors.GetCode(err) == "" {
		err = cgerrors.Wrap(cgerrors.ErrCodeLayoutFailed, err, "%s", algo.Name())
	}
	return out, err
}

// String implements fmt.Stringer for log output.
func (r Result) String() string {
	if r.Err != nil {
		return fmt.Sprintf("%s: %d nodes, failed: %v", r.Algorithm, len(r.Nodes), r.Err)
	}
	return fmt.Sprintf("%s: %d nodes in %s", r.Algorithm, len(r.Nodes), r.Duration)
}
