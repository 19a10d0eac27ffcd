// Package pipeline runs the layout and render stages for the CLI, the
// HTTP service and the editor with one caching policy.
//
// A [Runner] owns a layout engine and a cache. Layout results are keyed by
// the content of the graph (ids, sizes, positions, edges), the algorithm
// and the options, so identical requests from any entry point share work:
//
//	runner := pipeline.NewRunner(c, nil, nil, logger)
//	res, hit := runner.Layout(ctx, pipeline.LayoutRequest{
//	    Algorithm: layout.NameLayered,
//	    Nodes:     nodes,
//	    Edges:     edges,
//	})
//
// Failed layouts are never cached.
package pipeline

import (
	"fmt"
	"slices"
	"time"

	"github.com/matzehuels/cardgraph/pkg/render/nodelink"
)

// TTLLayout is how long a cached layout stays valid by default.
const TTLLayout = 7 * 24 * time.Hour

// Output formats of Render.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ValidFormats lists the formats Render accepts.
var ValidFormats = []string{FormatDOT, FormatSVG, FormatJSON, FormatYAML}

// ValidateFormat checks a single format name (case-sensitive).
func ValidateFormat(format string) error {
	if !slices.Contains(ValidFormats, format) {
		return fmt.Errorf("invalid format %q: must be one of %v", format, ValidFormats)
	}
	return nil
}

// ValidateFormats checks every format. An empty list is valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// RenderOptions selects output formats and diagram styling.
type RenderOptions struct {
	Formats []string
	Diagram nodelink.Options
}
