package token

import "github.com/spf13/cobra"

// NewCommand returns the "token" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue trigger tokens and links",
		Long: `Issue signed tokens for the HTTP API and clear-cache trigger links.

A token authenticates 'Authorization: Bearer <token>' requests to /api. A
trigger link runs a full pass when opened in a browser served by
'ccev serve' and shows the outcome once.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(IssueCommand())
	cmd.AddCommand(RotateCommand())

	return cmd
}
