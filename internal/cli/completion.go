package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// templateExts are the document extensions offered for [template] arguments.
var templateExts = []string{"json", "yaml", "yml"}

// completeTemplates installs file completion for every command taking a
// template argument.
func completeTemplates(root *cobra.Command) {
	for _, cmd := range root.Commands() {
		if !strings.Contains(cmd.Use, "[template]") {
			continue
		}
		cmd.ValidArgsFunction = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return templateExts, cobra.ShellCompDirectiveFilterFileExt
		}
	}
}

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for cardgraph.

To load completions:

Bash:
  $ source <(cardgraph completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ cardgraph completion bash > /etc/bash_completion.d/cardgraph
  # macOS:
  $ cardgraph completion bash > $(brew --prefix)/etc/bash_completion.d/cardgraph

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ cardgraph completion zsh > "${fpath[1]}/_cardgraph"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ cardgraph completion fish | source

  # To load completions for each session, execute once:
  $ cardgraph completion fish > ~/.config/fish/completions/cardgraph.fish

PowerShell:
  PS> cardgraph completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> cardgraph completion powershell > cardgraph.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := c.writer()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(w)
			case "zsh":
				return cmd.Root().GenZshCompletion(w)
			case "fish":
				return cmd.Root().GenFishCompletion(w, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(w)
			}
			return nil
		},
	}

	return cmd
}
