package pipeline

import (
	"context"

	"github.com/matzehuels/cardgraph/pkg/cache"
	"github.com/matzehuels/cardgraph/pkg/route"
)

const cacheKeyRoute = "route"

// RouteRequest is one connection to route around a set of obstacles.
type RouteRequest struct {
	Source    route.Point
	Target    route.Point
	Obstacles []route.Rect
	Refresh   bool
}

// RouteKey returns the cache key of the request under the runner's router
// options.
func (r *Runner) RouteKey(req RouteRequest) (string, error) {
	sceneHash, err := cache.HashJSON(struct {
		Source    route.Point  `json:"source"`
		Target    route.Point  `json:"target"`
		Obstacles []route.Rect `json:"obstacles"`
	}{req.Source, req.Target, req.Obstacles})
	if err != nil {
		return "", err
	}
	o := r.Router.Options()
	return r.Keyer.RouteKey(sceneHash, cache.RouteKeyOpts{
		CellSize:      o.CellSize,
		Margin:        o.Margin,
		NodeSpacing:   o.NodeSpacing,
		CornerRadius:  o.CornerRadius,
		MaxExpansions: o.MaxExpansions,
	}), nil
}

// Route returns the routed path for req and whether it came from the cache.
// Only successful routes are stored; a straight fallback is recomputed on
// the next request since the obstacles usually move in between.
func (r *Runner) Route(ctx context.Context, req RouteRequest) (route.Path, bool) {
	key, err := r.RouteKey(req)
	if err != nil {
		r.Logger.Warn("route cache key failed", "err", err)
	}

	if key != "" && !req.Refresh {
		var p route.Path
		hit, err := cache.GetJSON(ctx, r.Cache, cacheKeyRoute, key, &p)
		if err != nil {
			r.Logger.Warn("route cache read failed", "err", err)
		}
		if hit && len(p.Points) >= 2 {
			return p, true
		}
	}

	p := r.Router.Route(ctx, req.Source, req.Target, req.Obstacles)
	if p.Routed && key != "" {
		if err := cache.SetJSON(ctx, r.Cache, cacheKeyRoute, key, p, r.ttl()); err != nil {
			r.Logger.Warn("route cache write failed", "err", err)
		}
	}
	return p, false
}
