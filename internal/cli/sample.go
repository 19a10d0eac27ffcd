package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	cgerrors "github.com/matzehuels/cardgraph/pkg/errors"
	"github.com/matzehuels/cardgraph/pkg/sample"
)

// sampleCommand generates example form data.
func (c *CLI) sampleCommand() *cobra.Command {
	var (
		answers answerFlags
		choose  []string
		tab     string
		root    string
	)

	cmd := &cobra.Command{
		Use:   "sample [template]",
		Short: "Generate example form data",
		Long: `Generate one example answer per visible field.

Enum fields take their first option unless --choose key=option picks
another; answers given with --set or --answers are kept as-is and drive
which branches open.`,
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
			choices, err := parseChoices(choose)
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

			data, err := ed.Sample(tabID, root, sample.Options{Values: env, Choices: choices})
			if err != nil {
				return err
			}
			enc := json.NewEncoder(c.writer())
			enc.SetIndent("", "  ")
			return enc.Encode(data)
		},
	}

	cmd.Flags().StringVar(&answers.file, "answers", "", "preset answers file (JSON or YAML object)")
	cmd.Flags().StringArrayVar(&answers.set, "set", nil, "preset answer as key=value (repeatable)")
	cmd.Flags().StringArrayVar(&choose, "choose", nil, "enum option as key=option-id (repeatable)")
	cmd.Flags().StringVar(&tab, "tab", "", "tab id or name (default: first tab)")
	cmd.Flags().StringVar(&root, "root", "", "root card id (default: all roots)")
	return cmd
}

func parseChoices(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		env, err := parseAssignments([]string{p})
		if err != nil {
			return nil, err
		}
		for k, v := range env {
			s, ok := v.(string)
			if !ok {
				s = fmt.Sprint(v)
			}
			if s == "" {
				return nil, cgerrors.New(cgerrors.ErrCodeInvalidInput, "empty option for %q", k)
			}
			out[k] = s
		}
	}
	return out, nil
}
