package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/cardgraph/pkg/card"
	"github.com/matzehuels/cardgraph/pkg/document"
	"github.com/matzehuels/cardgraph/pkg/render/nodelink"
)

// Render produces one artifact per requested format for a single tab.
// JSON and YAML wrap the tab in a one-tab template document.
func Render(ctx context.Context, g *card.Graph, opts RenderOptions) (map[string][]byte, error) {
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, err
	}
	formats := opts.Formats
	if len(formats) == 0 {
		formats = []string{FormatSVG}
	}

	artifacts := make(map[string][]byte, len(formats))
	var dot string
	for _, format := range formats {
		var (
			data []byte
			err  error
		)
		switch format {
		case FormatDOT, FormatSVG:
			if dot == "" {
				dot = nodelink.ToDOT(g, opts.Diagram)
			}
			if format == FormatDOT {
				data = []byte(dot)
			} else {
				data, err = nodelink.RenderSVG(ctx, dot)
			}
		case FormatJSON:
			data, err = document.Encode(single(g), document.JSON)
		case FormatYAML:
			data, err = document.Encode(single(g), document.YAML)
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func single(g *card.Graph) *card.Template {
	return &card.Template{ID: g.ID, Name: g.Name, Tabs: []*card.Graph{g}}
}
