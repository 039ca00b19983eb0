package auth

import (
	"fmt"

	"nathanbeddoewebdev/ccev/cmd/commands/cmdutil"
	"nathanbeddoewebdev/ccev/internal/services/auth"
	"nathanbeddoewebdev/ccev/internal/tui"

	"github.com/spf13/cobra"
)

func StatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which secrets are stored",
		Long: `Show which secrets are present in the keychain.

Example:
  ccev auth status`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := auth.DefaultStore()

			if cmdutil.IsInteractive(cmd) {
				if err := tui.RunAuthStatus(store); err != nil {
					return fmt.Errorf("auth status failed: %w", err)
				}
				return nil
			}

			for _, st := range tui.SecretStates(store) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", st.Name, st.Detail)
			}
			return nil
		},
		SilenceUsage: true,
	}

	return cmd
}
