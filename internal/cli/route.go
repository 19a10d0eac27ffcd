package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cardgraph/pkg/route"
)

// routeCommand routes connections around the other cards of a tab.
func (c *CLI) routeCommand() *cobra.Command {
	var (
		tab     string
		conn    string
		curve   bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "route [template]",
		Short: "Route connections around other cards",
		Long: `Compute orthogonal, obstacle-avoiding paths for connections.

Without --conn every connection of the tab is routed. Output is one JSON
object per connection with its points and SVG path data. --curve prints
the default anchor-to-anchor bezier instead of routing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tpl, err := loadTemplate(args[0])
			if err != nil {
				return err
			}
			ed, _, err := c.newEditor(ctx, tpl, noCache)
			if err != nil {
				return err
			}
			defer ed.Close()
			tabID, err := pickTab(ed, tab)
			if err != nil {
				return err
			}

			ids := []string{conn}
			if conn == "" {
				g, err := ed.Graph(tabID)
				if err != nil {
					return err
				}
				ids = ids[:0]
				for _, cn := range g.Connections() {
					ids = append(ids, cn.ID)
				}
			}

			type routed struct {
				Connection string            `json:"connection"`
				Path       *route.Path       `json:"path,omitempty"`
				Anchors    *route.AnchorPair `json:"anchors,omitempty"`
				Curve      string            `json:"curve,omitempty"`
			}
			enc := json.NewEncoder(c.writer())
			unrouted := 0
			for _, id := range ids {
				out := routed{Connection: id}
				if curve {
					a, err := ed.ConnectionAnchors(tabID, id)
					if err != nil {
						return err
					}
					out.Anchors, out.Curve = &a, route.BezierPath(a)
				} else {
					p, err := ed.RouteConnection(ctx, tabID, id)
					if err != nil {
						return err
					}
					if !p.Routed {
						unrouted++
					}
					out.Path = &p
				}
				if err := enc.Encode(out); err != nil {
					return err
				}
			}
			if unrouted > 0 {
				status(markWarn, "%d of %d connections fell back to a straight line", unrouted, len(ids))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tab, "tab", "", "tab id or name (default: first tab)")
	cmd.Flags().StringVar(&conn, "conn", "", "connection id (default: all)")
	cmd.Flags().BoolVar(&curve, "curve", false, "print anchors and bezier curve instead of routing")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}

