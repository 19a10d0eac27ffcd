// Package route computes on-screen paths for connections.
//
// [Router.Route] finds an obstacle-avoiding path between two anchor points
// with an A* search over a bounded grid, then removes collinear points and
// rounds the corners with quadratic curves. It never fails: when the
// straight segment is already clear, when an endpoint lies outside the grid,
// or when the search is exhausted, the straight two-point path is returned.
//
// [Anchors] and [BezierPath] implement the default, non-avoiding edge
// rendering: they pick the facing sides of two cards and join them with a
// cubic curve.
package route
