package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// visibleCommand prints the fields a respondent would see.
func (c *CLI) visibleCommand() *cobra.Command {
	var (
		answers answerFlags
		tab     string
		root    string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "visible [template]",
		Short: "List the visible fields for a set of answers",
		Long: `Resolve which fields are visible given the answers so far.

Answers come from --answers (a JSON or YAML object) and repeated
--set key=value pairs. Values that parse as JSON keep their type:

  cardgraph visible survey.json --set kind='"animal"' --set legs=4

Without --root every root card of the tab is walked in order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tpl, err := loadTemplate(args[0])
			if err != nil {
				return err
			}
			env, err := answers.env()
			if err != nil {
				return err
			}
			ed, _, err := c.newEditor(cmd.Context(), tpl, true)
			if err != nil {
				return err
			}
			defer ed.Close()
			tabID, err := pickTab(ed, tab)
			if err != nil {
				return err
			}

			ids, err := ed.VisibleFields(tabID, root, env)
			if err != nil {
				return err
			}
			g, err := ed.Graph(tabID)
			if err != nil {
				return err
			}

			type field struct {
				ID  string `json:"id"`
				Key string `json:"key"`
			}
			fields := make([]field, 0, len(ids))
			for _, id := range ids {
				n, _ := g.Node(id)
				fields = append(fields, field{ID: id, Key: n.Key})
			}
			if asJSON {
				enc := json.NewEncoder(c.writer())
				enc.SetIndent("", "  ")
				return enc.Encode(fields)
			}
			for _, f := range fields {
				fmt.Fprintf(c.writer(), "%s\t%s\n", f.Key, f.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&answers.file, "answers", "", "answers file (JSON or YAML object)")
	cmd.Flags().StringArrayVar(&answers.set, "set", nil, "answer as key=value (repeatable)")
	cmd.Flags().StringVar(&tab, "tab", "", "tab id or name (default: first tab)")
	cmd.Flags().StringVar(&root, "root", "", "root card id (default: all roots)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print a JSON array of {id, key}")
	return cmd
}
