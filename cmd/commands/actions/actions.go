package actions

import "github.com/spf13/cobra"

// NewCommand returns the "actions" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "actions",
		Short: "Inspect the cache-clearing actions",
		Long: `Inspect the cache-clearing actions known for this site.

The list holds the built-in actions, integrations for active plugins and
any custom actions from the configured actions file.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(ListCommand())

	return cmd
}
