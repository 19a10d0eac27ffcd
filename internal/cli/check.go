package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cardgraph/pkg/document"
)

// checkCommand validates a template document.
func (c *CLI) checkCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check [template]",
		Short: "Validate a template and report warnings",
		Long: `Validate a template document.

Errors (dangling connections, cycles, duplicate tab ids) fail the command.
Warnings (duplicate keys, unparseable conditions) are listed; with --strict
they fail the command too.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheck(args[0], strict)
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")
	return cmd
}

func (c *CLI) runCheck(path string, strict bool) error {
	tpl, err := loadTemplate(path)
	if err != nil {
		return err
	}
	issues := document.Check(tpl)
	var errs, warns int
	for _, is := range issues {
		issue(is)
		if is.Severity == document.SeverityError {
			errs++
		} else {
			warns++
		}
	}
	if errs > 0 || (strict && warns > 0) {
		return fmt.Errorf("%s: %d errors, %d warnings", path, errs, warns)
	}

	cards := 0
	for _, g := range tpl.Tabs {
		cards += g.NodeCount()
	}
	status(markOK, "%s is valid", path)
	detail("%d tabs, %d cards, %d warnings", len(tpl.Tabs), cards, warns)
	return nil
}
