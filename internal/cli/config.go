package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/cardgraph/pkg/config"
)

// configCommand prints the effective configuration.
func (c *CLI) configCommand() *cobra.Command {
	var defaults bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Long: `Print the configuration after merging the config file and environment
overrides. With --defaults the built-in configuration is printed, which is a
starting point for a ` + config.FileName + ` file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if !defaults {
				var err error
				if cfg, err = c.config(); err != nil {
					return err
				}
			}
			data, err := config.Encode(cfg)
			if err != nil {
				return err
			}
			_, err = c.writer().Write(data)
			return err
		},
	}
	cmd.Flags().BoolVar(&defaults, "defaults", false, "print the built-in defaults")
	return cmd
}
