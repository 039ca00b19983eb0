package auth

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"nathanbeddoewebdev/ccev/cmd/commands/cmdutil"
	"nathanbeddoewebdev/ccev/internal/services/auth"
	"nathanbeddoewebdev/ccev/internal/tui"

	"golang.org/x/term"

	"github.com/spf13/cobra"
)

func LoginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login <entry>",
		Short: "Store a secret in the keychain",
		Long: `Store a secret in the local keychain.

Examples:
  ccev auth login cloudflare
  ccev auth login cloudflare --token "$CF_API_TOKEN"`,
		Args:         cobra.ExactArgs(1),
		RunE:         runLogin,
		SilenceUsage: true,
	}

	cmd.Flags().String("token", "", "Secret value (optional, overrides prompt)")

	return cmd
}

// knownEntry normalizes name and checks it is an entry ccev uses.
func knownEntry(name string) (string, error) {
	entry := auth.NormalizeName(name)
	if !slices.Contains(auth.KnownEntries(), entry) {
		return "", fmt.Errorf("unknown entry %q (valid: %s)", name, strings.Join(auth.KnownEntries(), ", "))
	}
	return entry, nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	entry, err := knownEntry(args[0])
	if err != nil {
		return err
	}

	store := auth.DefaultStore()

	token, _ := cmd.Flags().GetString("token")
	token = strings.TrimSpace(token)
	if token == "" {
		if cmdutil.IsInteractive(cmd) {
			saved, err := tui.RunAuthLogin(entry, store)
			if err != nil {
				return err
			}
			if !saved {
				fmt.Fprintln(cmd.ErrOrStderr(), "Cancelled.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", entry)
			return nil
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "Enter %s secret: ", entry)
		bytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		token = strings.TrimSpace(string(bytes))
	}

	if token == "" {
		return fmt.Errorf("secret cannot be empty")
	}
	if err := store.SetToken(entry, token); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", entry)
	return nil
}
