package auth

import (
	"errors"
	"fmt"

	"nathanbeddoewebdev/ccev/internal/services/auth"

	"github.com/spf13/cobra"
)

func LogoutCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout <entry>",
		Short: "Remove a secret from the keychain",
		Long: `Remove a secret from the local keychain.

Removing trigger-secret revokes every issued trigger link; a new secret is
generated the next time a link is issued.`,
		Args:         cobra.ExactArgs(1),
		RunE:         runLogout,
		SilenceUsage: true,
	}

	return cmd
}

func runLogout(cmd *cobra.Command, args []string) error {
	entry, err := knownEntry(args[0])
	if err != nil {
		return err
	}

	err = auth.DefaultStore().DeleteToken(entry)
	switch {
	case errors.Is(err, auth.ErrTokenNotFound):
		fmt.Fprintf(cmd.OutOrStdout(), "%s was not set\n", entry)
		return nil
	case err != nil:
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", entry)
	return nil
}
