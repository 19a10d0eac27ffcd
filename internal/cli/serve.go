package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/cardgraph/internal/server"
	"github.com/matzehuels/cardgraph/pkg/cache"
	"github.com/matzehuels/cardgraph/pkg/pipeline"
	"github.com/matzehuels/cardgraph/pkg/route"
)

// serveCommand runs the HTTP service.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layout, visibility and routing over HTTP",
		Long: `Run the stateless HTTP service used by the browser editor.

The address, request timeout and body limit come from the [server] table
of the config file (or CARDGRAPH_ADDR); --addr overrides them. Layouts and
routes are cached in the configured cache backend, which may be shared by
several instances when it is redis.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if noCache {
				cfg.Cache.Backend = cache.BackendNull
			}

			cc := c.openCache(ctx, cfg, noCache)
			defer cc.Close()
			runner := pipeline.NewRunner(cc, nil, nil, c.Logger)
			runner.Router = route.New(c.Logger, cfg.Router)
			if ttl, err := cfg.Cache.TTLDuration(); err == nil {
				runner.TTL = ttl
			}

			srv, err := server.New(cfg.Server, runner, c.Logger)
			if err != nil {
				return err
			}
			status(markInfo, "Serving on %s", StyleHighlight.Render(cfg.Server.Addr))
			field("cache", cfg.Cache.Backend)
			field("timeout", cfg.Server.RequestTimeout)
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}
