package cli

import (
	"github.com/spf13/cobra"
)

// configCommand creates the config command.
func (c *CLI) configCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Long: `Print the configuration after applying defaults, the config file,
COMPOSER_GATEWAY_* environment variables and flags. The output is a valid
composer-gateway.toml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := c.cfg.TOML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
