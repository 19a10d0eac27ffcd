package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/cardgraph/pkg/card"
)

// pointsPerInch converts canvas pixels to Graphviz inches for pinned output.
const pointsPerInch = 72.0

// Options configures diagram generation.
type Options struct {
	// Detailed adds type, order and condition to node labels.
	Detailed bool
	// RankDir is the Graphviz rankdir (TB, LR, ...). Empty means TB.
	RankDir string
	// Visible, when non-nil, greys out every node not in the set.
	Visible interface{ Has(string) bool }
	// Pinned places nodes at their canvas positions (neato -n).
	Pinned bool
}

// ToDOT converts a tab to Graphviz DOT source. Output is deterministic:
// nodes and edges appear in insertion order.
func ToDOT(g *card.Graph, opts Options) string {
	var buf bytes.Buffer
	rankdir := opts.RankDir
	if rankdir == "" {
		rankdir = "TB"
	}

	fmt.Fprintf(&buf, "digraph %q {\n", g.Name)
	if opts.Pinned {
		buf.WriteString("  layout=neato;\n")
		buf.WriteString("  splines=true;\n")
	} else {
		fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	}
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=10, color=\"#555555\"];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n, opts), ", "))
	}

	buf.WriteString("\n")
	for _, c := range g.Connections() {
		attrs := edgeAttrs(c)
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", c.Source, c.Target)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", c.Source, c.Target, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeLabel(n card.ParamNode, detailed bool) string {
	label := n.Key
	if label == "" {
		label = n.ID
	}
	if !detailed {
		return label
	}
	parts := []string{label, fmt.Sprintf("%s #%d", n.TypeID, n.Order)}
	if n.HasCondition() {
		parts = append(parts, "if "+n.Condition)
	}
	return strings.Join(parts, "\n")
}

func nodeAttrs(n card.ParamNode, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", nodeLabel(n, opts.Detailed))}
	if n.HasCondition() {
		attrs = append(attrs, "penwidth=2")
	}
	if opts.Visible != nil && !opts.Visible.Has(n.ID) {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=grey40")
	}
	if opts.Pinned {
		w, h := n.Size.Width, n.Size.Height
		if w == 0 || h == 0 {
			w, h = card.DefaultSize.Width, card.DefaultSize.Height
		}
		// Graphviz y grows upwards and positions are centres.
		cx := n.Position.X + w/2
		cy := -(n.Position.Y + h/2)
		attrs = append(attrs,
			fmt.Sprintf("pos=\"%s,%s!\"", num(cx), num(cy)),
			fmt.Sprintf("width=%s", num(w/pointsPerInch)),
			fmt.Sprintf("height=%s", num(h/pointsPerInch)),
			"fixedsize=true",
		)
	}
	return attrs
}

func edgeAttrs(c card.Connection) []string {
	if !c.HasCondition() {
		return nil
	}
	return []string{fmt.Sprintf("label=%q", c.Condition), "style=dashed"}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// RenderSVG renders DOT source to SVG using the embedded Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz <svg> tag with one sized to the
// viewBox so browsers scale the diagram instead of clipping it.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
