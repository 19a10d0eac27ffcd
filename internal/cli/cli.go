package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cardgraph/pkg/buildinfo"
	"github.com/matzehuels/cardgraph/pkg/cache"
	"github.com/matzehuels/cardgraph/pkg/card"
	"github.com/matzehuels/cardgraph/pkg/config"
	"github.com/matzehuels/cardgraph/pkg/document"
	"github.com/matzehuels/cardgraph/pkg/editor"
	cgerrors "github.com/matzehuels/cardgraph/pkg/errors"
	"github.com/matzehuels/cardgraph/pkg/pipeline"
	"github.com/matzehuels/cardgraph/pkg/route"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "cardgraph"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	verbose    bool
	cfg        *config.Config
	out        io.Writer
}

// New creates a new CLI instance with a default logger. Command output
// goes to stdout unless SetOutput is called.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetOutput redirects command output (rendered artifacts, JSON results).
func (c *CLI) SetOutput(w io.Writer) {
	c.out = w
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Cardgraph lays out and evaluates data-card graphs",
		Long:         `Cardgraph works on data-card templates: graphs of typed form fields whose visibility is driven by JSON-Logic conditions. It computes layouts, resolves visible fields, routes connections and renders diagrams.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ./"+config.FileName+" or user config dir)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.checkCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.visibleCommand())
	root.AddCommand(c.sampleCommand())
	root.AddCommand(c.routeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())
	completeTemplates(root)

	return root
}

// =============================================================================
// Config and Runner Factory
// =============================================================================

// config loads the configuration once per process.
func (c *CLI) config() (config.Config, error) {
	if c.cfg != nil {
		return *c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	c.applyLog(cfg.Log)
	c.cfg = &cfg
	return cfg, nil
}

// applyLog applies the [log] table. --verbose wins over the level.
func (c *CLI) applyLog(l config.Log) {
	if level, err := log.ParseLevel(l.Level); err == nil && !c.verbose {
		c.SetLogLevel(level)
	}
	switch l.Format {
	case "json":
		c.Logger.SetFormatter(log.JSONFormatter)
	case "logfmt":
		c.Logger.SetFormatter(log.LogfmtFormatter)
	default:
		c.Logger.SetFormatter(log.TextFormatter)
	}
}

// openCache opens the configured cache, or a NullCache when noCache is set.
// Backend failures degrade to a NullCache with a warning.
func (c *CLI) openCache(ctx context.Context, cfg config.Config, noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	cc, err := cache.Open(ctx, cfg.Cache.Options())
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without", "backend", cfg.Cache.Backend, "err", err)
		return cache.NewNullCache()
	}
	return cc
}

// newEditor opens an editor over tpl wired to the configured cache, router
// and logger. The caller closes the editor.
func (c *CLI) newEditor(ctx context.Context, tpl *card.Template, noCache bool) (*editor.Editor, config.Config, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, cfg, err
	}
	ed := editor.New(tpl,
		editor.WithLogger(c.Logger),
		editor.WithCache(c.openCache(ctx, cfg, noCache)),
		editor.WithRouter(route.New(c.Logger, cfg.Router)),
	)
	if ttl, err := cfg.Cache.TTLDuration(); err == nil {
		ed.Runner().TTL = ttl
	}
	return ed, cfg, nil
}

// =============================================================================
// Input Helpers
// =============================================================================

// loadTemplate reads a template document, choosing the codec by extension.
func loadTemplate(path string) (*card.Template, error) {
	tpl, err := document.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load template %s: %w", path, err)
	}
	return tpl, nil
}

// pickTab resolves a tab by id or name. An empty selector picks the first
// tab.
func pickTab(ed *editor.Editor, selector string) (string, error) {
	tabs := ed.Tabs()
	if len(tabs) == 0 {
		return "", cgerrors.New(cgerrors.ErrCodeNotFound, "template has no tabs")
	}
	if selector == "" {
		return tabs[0].ID, nil
	}
	for _, t := range tabs {
		if t.ID == selector || t.Name == selector {
			return t.ID, nil
		}
	}
	return "", cgerrors.Wrap(cgerrors.ErrCodeNotFound, editor.ErrTabNotFound, "tab %q", selector)
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
