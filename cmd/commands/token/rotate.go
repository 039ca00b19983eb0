package token

import (
	"fmt"

	"nathanbeddoewebdev/ccev/internal/services/auth"
	"nathanbeddoewebdev/ccev/internal/trigger"

	"github.com/spf13/cobra"
)

func RotateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rotate",
		Short: "Replace the signing secret",
		Long: `Replace the signing secret. Every token and link issued before is
rejected afterwards. A running 'ccev serve' must be restarted to use the
new secret.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := trigger.GenerateSecret()
			if err != nil {
				return err
			}
			if err := auth.DefaultStore().SetToken(auth.EntryTriggerSecret, secret); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signing secret replaced. Previously issued tokens are no longer valid.")
			return nil
		},
		SilenceUsage: true,
	}

	return cmd
}
