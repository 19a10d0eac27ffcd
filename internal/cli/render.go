package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cardgraph/pkg/pipeline"
	"github.com/matzehuels/cardgraph/pkg/render/nodelink"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string      // output path; with several formats, the base path
	formats  []string    // dot, svg, json, yaml
	tab      string      // tab id or name
	detailed bool        // type, order and condition in labels
	pinned   bool        // keep canvas positions
	rankDir  string      // graphviz rankdir when not pinned
	answers  answerFlags // grey out fields hidden under these answers
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		opts       renderOpts
		formatsStr string
	)

	cmd := &cobra.Command{
		Use:   "render [template]",
		Short: "Render a tab as DOT, SVG, JSON or YAML",
		Long: `Render one tab of a template.

DOT and SVG draw the card graph with Graphviz; conditional cards and
connections are marked. With --pinned the cards keep their canvas
positions. With --set or --answers, cards hidden under those answers are
greyed out. JSON and YAML write the tab as a single-tab template.

Use -o - to write a single format to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file or base path (default: <input>.<format>)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output formats: "+strings.Join(pipeline.ValidFormats, ", ")+" (comma-separated, default svg)")
	cmd.Flags().StringVar(&opts.tab, "tab", "", "tab id or name (default: first tab)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show type, order and condition in labels")
	cmd.Flags().BoolVar(&opts.pinned, "pinned", false, "keep canvas positions")
	cmd.Flags().StringVar(&opts.rankDir, "rankdir", "TB", "graphviz rank direction: TB, LR, BT, RL")
	cmd.Flags().StringVar(&opts.answers.file, "answers", "", "answers file; hidden fields are greyed out")
	cmd.Flags().StringArrayVar(&opts.answers.set, "set", nil, "answer as key=value (repeatable)")
	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	tpl, err := loadTemplate(input)
	if err != nil {
		return err
	}
	ed, _, err := c.newEditor(ctx, tpl, true)
	if err != nil {
		return err
	}
	defer ed.Close()
	tabID, err := pickTab(ed, opts.tab)
	if err != nil {
		return err
	}
	g, err := ed.Graph(tabID)
	if err != nil {
		return err
	}

	diagram := nodelink.Options{
		Detailed: opts.detailed,
		RankDir:  strings.ToUpper(opts.rankDir),
		Pinned:   opts.pinned,
	}
	if opts.answers.file != "" || len(opts.answers.set) > 0 {
		env, err := opts.answers.env()
		if err != nil {
			return err
		}
		visible, err := ed.Visible(tabID, env)
		if err != nil {
			return err
		}
		diagram.Visible = visible
	}

	artifacts, err := pipeline.Render(ctx, g, pipeline.RenderOptions{Formats: opts.formats, Diagram: diagram})
	if err != nil {
		return err
	}

	if opts.output == "-" {
		if len(artifacts) != 1 {
			return fmt.Errorf("-o - needs exactly one format, got %d", len(artifacts))
		}
		for _, data := range artifacts {
			_, err := c.writer().Write(data)
			return err
		}
	}

	paths := outputPaths(input, opts.output, opts.formats)
	formats := make([]string, 0, len(artifacts))
	for f := range artifacts {
		formats = append(formats, f)
	}
	sort.Strings(formats)

	status(markOK, "Rendered %s", g.Name)
	for _, f := range formats {
		if err := os.WriteFile(paths[f], artifacts[f], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", paths[f], err)
		}
		wrote(paths[f])
	}
	summary(g.NodeCount(), g.ConnectionCount(), false)
	return nil
}

// outputPaths maps each format to its file. A single format with an
// explicit output uses it verbatim; otherwise the format is the extension.
// A derived path never overwrites the input.
func outputPaths(input, output string, formats []string) map[string]string {
	base := output
	if base == "" {
		base = strings.TrimSuffix(input, filepath.Ext(input))
	} else if len(formats) == 1 {
		return map[string]string{formats[0]: output}
	} else {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	paths := make(map[string]string, len(formats))
	for _, f := range formats {
		p := base + "." + f
		if p == input {
			p = base + ".out." + f
		}
		paths[f] = p
	}
	return paths
}
