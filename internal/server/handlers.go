package server

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/cardgraph/pkg/buildinfo"
	"github.com/matzehuels/cardgraph/pkg/card"
	"github.com/matzehuels/cardgraph/pkg/document"
	cgerrors "github.com/matzehuels/cardgraph/pkg/errors"
	"github.com/matzehuels/cardgraph/pkg/layout"
	"github.com/matzehuels/cardgraph/pkg/logic"
	"github.com/matzehuels/cardgraph/pkg/pipeline"
	"github.com/matzehuels/cardgraph/pkg/render/nodelink"
	"github.com/matzehuels/cardgraph/pkg/route"
	"github.com/matzehuels/cardgraph/pkg/sample"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) handleAlgorithms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"algorithms": s.runner.Engine.Algorithms()})
}

// =============================================================================
// Layout
// =============================================================================

type layoutRequest struct {
	Nodes   []layout.Node  `json:"nodes"`
	Edges   []layout.Edge  `json:"edges"`
	Options layout.Options `json:"options"`
	Refresh bool           `json:"refresh,omitempty"`
}

type layoutResponse struct {
	Algorithm  string        `json:"algorithm"`
	Nodes      []layout.Node `json:"nodes"`
	Cached     bool          `json:"cached"`
	DurationMs float64       `json:"durationMs"`
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	if err := req.Options.WithDefaults().Validate(); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	res, hit := s.runner.Layout(r.Context(), pipeline.LayoutRequest{
		Algorithm: chi.URLParam(r, "algorithm"),
		Nodes:     req.Nodes,
		Edges:     req.Edges,
		Options:   req.Options,
		Refresh:   req.Refresh,
	})
	if res.Err != nil {
		writeError(w, r, s.logger, res.Err)
		return
	}
	writeJSON(w, http.StatusOK, layoutResponse{
		Algorithm:  res.Algorithm,
		Nodes:      res.Nodes,
		Cached:     hit,
		DurationMs: float64(res.Duration) / float64(time.Millisecond),
	})
}

// =============================================================================
// Visibility and sample data
// =============================================================================

type visibilityRequest struct {
	Graph *card.Graph `json:"graph"`
	// Root limits the walk to one subtree; empty walks every root.
	Root string    `json:"root,omitempty"`
	Env  logic.Env `json:"env"`
}

type visibilityResponse struct {
	// Fields are the visible ids in display order.
	Fields []string `json:"fields"`
	// Keys are the field keys in the same order.
	Keys []string `json:"keys"`
}

// graphOf validates the decoded graph and the optional root.
func graphOf(g *card.Graph, root string) (*card.Graph, error) {
	if g == nil {
		return nil, cgerrors.New(cgerrors.ErrCodeInvalidInput, "missing graph")
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if root != "" {
		if _, ok := g.Node(root); !ok {
			return nil, cgerrors.Wrap(cgerrors.ErrCodeNotFound, card.ErrNodeNotFound, "root %q", root)
		}
	}
	return g, nil
}

func (s *Server) handleVisibility(w http.ResponseWriter, r *http.Request) {
	var req visibilityRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	g, err := graphOf(req.Graph, req.Root)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	roots := g.Roots()
	if req.Root != "" {
		roots = []string{req.Root}
	}
	resp := visibilityResponse{Fields: []string{}, Keys: []string{}}
	for _, root := range roots {
		for _, id := range s.resolver.VisibleFields(root, g, req.Env) {
			n, _ := g.Node(id)
			resp.Fields = append(resp.Fields, id)
			resp.Keys = append(resp.Keys, n.Key)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type sampleRequest struct {
	Graph   *card.Graph       `json:"graph"`
	Root    string            `json:"root,omitempty"`
	Values  map[string]any    `json:"values,omitempty"`
	Choices map[string]string `json:"choices,omitempty"`
}

func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	var req sampleRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	g, err := graphOf(req.Graph, req.Root)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	data := sample.Generate(g, req.Root, s.resolver, sample.Options{Values: req.Values, Choices: req.Choices})
	writeJSON(w, http.StatusOK, data)
}

// =============================================================================
// Routing
// =============================================================================

type routeRequest struct {
	Source    route.Point  `json:"source"`
	Target    route.Point  `json:"target"`
	Obstacles []route.Rect `json:"obstacles"`
	Refresh   bool         `json:"refresh,omitempty"`
}

type routeResponse struct {
	route.Path
	Cached bool `json:"cached"`
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	var req routeRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	p, hit := s.runner.Route(r.Context(), pipeline.RouteRequest{
		Source:    req.Source,
		Target:    req.Target,
		Obstacles: req.Obstacles,
		Refresh:   req.Refresh,
	})
	if err := r.Context().Err(); err != nil {
		writeError(w, r, s.logger, cgerrors.Wrap(cgerrors.ErrCodeInternal, err, "route cancelled"))
		return
	}
	writeJSON(w, http.StatusOK, routeResponse{Path: p, Cached: hit})
}

type anchorsRequest struct {
	Source route.Rect `json:"source"`
	Target route.Rect `json:"target"`
}

type anchorsResponse struct {
	route.AnchorPair
	// D is the default cubic bezier between the anchors.
	D string `json:"d"`
}

func (s *Server) handleAnchors(w http.ResponseWriter, r *http.Request) {
	var req anchorsRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	a := route.Anchors(req.Source, req.Target)
	writeJSON(w, http.StatusOK, anchorsResponse{AnchorPair: a, D: route.BezierPath(a)})
}

// =============================================================================
// Render and validate
// =============================================================================

var contentTypes = map[string]string{
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatYAML: "application/yaml",
}

type renderRequest struct {
	Graph    *card.Graph `json:"graph"`
	Detailed bool        `json:"detailed,omitempty"`
	Pinned   bool        `json:"pinned,omitempty"`
	RankDir  string      `json:"rankDir,omitempty"`
	// Env, when present, greys out the fields it hides.
	Env logic.Env `json:"env,omitempty"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, r, s.logger, cgerrors.Wrap(cgerrors.ErrCodeInvalidOption, err, "%v", err))
		return
	}
	var req renderRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	g, err := graphOf(req.Graph, "")
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	diagram := nodelink.Options{
		Detailed: req.Detailed,
		Pinned:   req.Pinned,
		RankDir:  strings.ToUpper(req.RankDir),
	}
	if req.Env != nil {
		diagram.Visible = s.resolver.ResolveAll(g, req.Env)
	}
	artifacts, err := pipeline.Render(r.Context(), g, pipeline.RenderOptions{
		Formats: []string{format},
		Diagram: diagram,
	})
	if err != nil {
		writeError(w, r, s.logger, cgerrors.Wrap(cgerrors.ErrCodeInternal, err, "render %s", format))
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

type validateResponse struct {
	Valid  bool             `json:"valid"`
	Issues []document.Issue `json:"issues"`
}

// handleValidate accepts a template document (enveloped or bare) and lists
// every issue instead of failing on the first.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	body := io.Reader(r.Body)
	if s.cfg.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = errTooLarge(tooLarge.Limit)
		}
		writeError(w, r, s.logger, err)
		return
	}
	tpl, err := document.Parse(data, document.JSON)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	resp := validateResponse{Valid: true, Issues: []document.Issue{}}
	for _, is := range document.Check(tpl) {
		if is.Severity == document.SeverityError {
			resp.Valid = false
		}
		resp.Issues = append(resp.Issues, is)
	}
	writeJSON(w, http.StatusOK, resp)
}
