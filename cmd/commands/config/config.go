package config

import (
	"nathanbeddoewebdev/ccev/internal/config"

	"github.com/spf13/cobra"
)

// NewCommand returns the "config" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage ccev configuration",
		Long: "View and modify persistent ccev settings.\n\n" +
			"Configuration is stored at ~/.config/ccev/config.json. A running\n" +
			"'ccev serve' picks up changes without a restart, except for the\n" +
			"database, Redis and WP-CLI connection settings.\n\n" +
			config.KeysHelp(),
	}

	cmd.AddCommand(SetCommand())
	cmd.AddCommand(GetCommand())
	cmd.AddCommand(EditCommand())

	return cmd
}
