package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/cardgraph/pkg/config"
	"github.com/matzehuels/cardgraph/pkg/document"
	"github.com/matzehuels/cardgraph/pkg/editor"
	"github.com/matzehuels/cardgraph/pkg/layout"
)

// layoutFlags mirrors config.Layout; only flags set on the command line
// override the configured values.
type layoutFlags struct {
	config.Layout
	tab     string
	output  string
	noCache bool
	grid    bool
}

// merge overlays the flags the user set onto the configured defaults.
func (f layoutFlags) merge(base config.Layout, flags *pflag.FlagSet) config.Layout {
	if flags.Changed("algorithm") {
		base.Algorithm = f.Algorithm
	}
	if flags.Changed("direction") {
		base.Direction = f.Direction
	}
	if flags.Changed("align") {
		base.Align = f.Align
	}
	if flags.Changed("node-spacing") {
		base.NodeSpacing = f.NodeSpacing
	}
	if flags.Changed("rank-spacing") {
		base.RankSpacing = f.RankSpacing
	}
	if flags.Changed("padding") {
		base.Padding = f.Padding
	}
	if flags.Changed("iterations") {
		base.Iterations = f.Iterations
	}
	return base
}

// layoutCommand creates the layout command for positioning cards.
func (c *CLI) layoutCommand() *cobra.Command {
	var f layoutFlags

	cmd := &cobra.Command{
		Use:   "layout [template]",
		Short: "Compute card positions for a template",
		Long: `Compute card positions for every tab of a template (or one tab with --tab)
and write the template with the new positions.

Algorithms: layered (default), tree, grid. --grid arranges the cards on a
near-square grid in their current order instead.

Layouts are cached; identical graphs and options reuse earlier results.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], f, cmd.Flags())
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (default: <input>.layout.<ext>)")
	cmd.Flags().StringVar(&f.tab, "tab", "", "tab id or name (default: all tabs)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.grid, "grid", false, "auto-arrange on a grid")

	cmd.Flags().StringVarP(&f.Algorithm, "algorithm", "a", layout.NameLayered, "layout algorithm: layered, tree, grid")
	cmd.Flags().StringVar(&f.Direction, "direction", string(layout.DefaultDirection), "rank direction: TB, BT, LR, RL")
	cmd.Flags().StringVar(&f.Align, "align", string(layout.DefaultAlign), "layered alignment: UL, UR, DL, DR")
	cmd.Flags().Float64Var(&f.NodeSpacing, "node-spacing", layout.DefaultNodeSpacing, "gap between cards of a rank")
	cmd.Flags().Float64Var(&f.RankSpacing, "rank-spacing", layout.DefaultRankSpacing, "gap between ranks")
	cmd.Flags().Float64Var(&f.Padding, "padding", layout.DefaultPadding, "canvas padding")
	cmd.Flags().IntVar(&f.Iterations, "iterations", layout.DefaultIterations, "crossing reduction sweeps")

	return cmd
}

// runLayout loads the template, lays out the selected tabs, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, f layoutFlags, flags *pflag.FlagSet) error {
	tpl, err := loadTemplate(input)
	if err != nil {
		return err
	}
	ed, cfg, err := c.newEditor(ctx, tpl, f.noCache)
	if err != nil {
		return err
	}
	defer ed.Close()

	lc := f.merge(cfg.Layout, flags)
	opts := lc.Options()
	if err := opts.Validate(); err != nil {
		return err
	}

	tabs := ed.Tabs()
	if f.tab != "" {
		id, err := pickTab(ed, f.tab)
		if err != nil {
			return err
		}
		tabs = []editor.TabInfo{{ID: id}}
	}

	prog := newProgress(loggerFromContext(ctx))
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Computing %s layout...", lc.Algorithm))
	spinner.Start()

	var cards, conns int
	cached := len(tabs) > 0
	for _, t := range tabs {
		if f.grid {
			err = ed.AutoArrangeGrid(t.ID, opts.NodeSpacing)
		} else {
			var res layout.Result
			res, err = ed.ApplyLayout(ctx, t.ID, lc.Algorithm, opts)
			cached = cached && res.Cached
		}
		if err != nil {
			spinner.StopWithError("Layout failed")
			return fmt.Errorf("layout tab %s: %w", t.ID, err)
		}
		g, _ := ed.Graph(t.ID)
		cards += g.NodeCount()
		conns += g.ConnectionCount()
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Laid out %d cards", cards))

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := f.output
	if outputPath == "" {
		ext := filepath.Ext(input)
		outputPath = strings.TrimSuffix(input, ext) + ".layout" + ext
	}
	if err := document.WriteFile(outputPath, ed.Template()); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	status(markOK, "Layout complete")
	wrote(outputPath)
	summary(cards, conns, cached && !f.grid)
	hint("Render", appName+" render "+outputPath+" --pinned")
	return nil
}
