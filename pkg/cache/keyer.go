package cache

// Keyer generates cache keys. Every option that changes a result must be
// part of the key.
type Keyer interface {
	// LayoutKey keys the node positions computed for a graph.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
	// RouteKey keys a routed connection path.
	RouteKey(sceneHash string, opts RouteKeyOpts) string
}

// LayoutKeyOpts lists everything besides the graph that shapes a layout.
type LayoutKeyOpts struct {
	Algorithm   string  `json:"algorithm"`
	Direction   string  `json:"direction,omitempty"`
	Align       string  `json:"align,omitempty"`
	NodeSpacing float64 `json:"node_spacing,omitempty"`
	RankSpacing float64 `json:"rank_spacing,omitempty"`
	Padding     float64 `json:"padding,omitempty"`
	Iterations  int     `json:"iterations,omitempty"`
}

// RouteKeyOpts lists the router settings that shape a path.
type RouteKeyOpts struct {
	CellSize      float64 `json:"cell_size"`
	Margin        float64 `json:"margin"`
	NodeSpacing   float64 `json:"node_spacing"`
	CornerRadius  float64 `json:"corner_radius"`
	MaxExpansions int     `json:"max_expansions"`
}

// DefaultKeyer hashes the options into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey returns "layout:<hash>".
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// RouteKey returns "route:<hash>".
func (DefaultKeyer) RouteKey(sceneHash string, opts RouteKeyOpts) string {
	return hashKey("route", sceneHash, opts)
}

// ScopedKeyer prefixes every key of an inner keyer, giving each
// document or deployment its own namespace in a shared Redis.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner (DefaultKeyer when nil) with prefix.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(graphHash, opts)
}

func (k *ScopedKeyer) RouteKey(sceneHash string, opts RouteKeyOpts) string {
	return k.prefix + k.inner.RouteKey(sceneHash, opts)
}
