package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cardgraph/pkg/cache"
	"github.com/matzehuels/cardgraph/pkg/layout"
	"github.com/matzehuels/cardgraph/pkg/route"
)

// cacheKeyLayout labels layout lookups in observability hooks.
const cacheKeyLayout = "layout"

// Runner executes layouts and edge routes through a cache. It holds no per-request state
// and is safe for concurrent use.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Engine *layout.Engine
	Router *route.Router
	Logger *log.Logger
	// TTL applies to cached layouts and routes; zero means TTLLayout.
	TTL time.Duration
}

// NewRunner wires a runner. Nil arguments get defaults: a NullCache, the
// DefaultKeyer, an engine with the built-in algorithms and a discarding
// logger. The Router field starts with default options and may be
// replaced before first use.
func NewRunner(c cache.Cache, keyer cache.Keyer, engine *layout.Engine, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if engine == nil {
		engine = layout.NewEngine(logger)
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Engine: engine,
		Router: route.New(logger, route.Options{}),
		Logger: logger,
	}
}

// LayoutRequest is one layout computation.
type LayoutRequest struct {
	Algorithm string
	Nodes     []layout.Node
	Edges     []layout.Edge
	Options   layout.Options
	// Refresh skips the cache lookup but still stores the result.
	Refresh bool
}

// Key returns the cache key of the request.
func (r *Runner) Key(req LayoutRequest) (string, error) {
	graphHash, err := cache.HashJSON(struct {
		Nodes []layout.Node `json:"nodes"`
		Edges []layout.Edge `json:"edges"`
	}{req.Nodes, req.Edges})
	if err != nil {
		return "", err
	}
	algo := req.Algorithm
	if algo == "" {
		algo = layout.NameLayered
	}
	o := req.Options.WithDefaults()
	return r.Keyer.LayoutKey(graphHash, cache.LayoutKeyOpts{
		Algorithm:   algo,
		Direction:   string(o.Direction),
		Align:       string(o.Align),
		NodeSpacing: o.NodeSpacing,
		RankSpacing: o.RankSpacing,
		Padding:     o.Padding,
		Iterations:  o.Iterations,
	}), nil
}

// Layout returns the positioned nodes for req and whether they came from
// the cache. Cache failures are logged and otherwise ignored: the layout
// is computed as if the cache were disabled.
func (r *Runner) Layout(ctx context.Context, req LayoutRequest) (layout.Result, bool) {
	key, err := r.Key(req)
	if err != nil {
		r.Logger.Warn("layout cache key failed", "err", err)
	}

	if key != "" && !req.Refresh {
		var nodes []layout.Node
		hit, err := cache.GetJSON(ctx, r.Cache, cacheKeyLayout, key, &nodes)
		if err != nil {
			r.Logger.Warn("layout cache read failed", "err", err)
		}
		if hit && len(nodes) == len(req.Nodes) {
			r.Logger.Debug("layout cache hit", "algorithm", req.Algorithm, "nodes", len(nodes))
			algo := req.Algorithm
			if algo == "" {
				algo = layout.NameLayered
			}
			return layout.Result{Nodes: nodes, Algorithm: algo, Cached: true}, true
		}
	}

	res := r.Engine.Apply(ctx, req.Algorithm, req.Nodes, req.Edges, req.Options)
	if res.Err == nil && key != "" && len(req.Nodes) > 0 {
		if err := cache.SetJSON(ctx, r.Cache, cacheKeyLayout, key, res.Nodes, r.ttl()); err != nil {
			r.Logger.Warn("layout cache write failed", "err", err)
		}
	}
	return res, false
}

func (r *Runner) ttl() time.Duration {
	if r.TTL == 0 {
		return TTLLayout
	}
	return r.TTL
}
