package config

import (
	"errors"
	"fmt"

	"nathanbeddoewebdev/ccev/cmd/commands/cmdutil"
	"nathanbeddoewebdev/ccev/internal/tui"

	"github.com/spf13/cobra"
)

// EditCommand returns the "config edit" command.
func EditCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit settings and action switches interactively",
		Long: `Open a form to edit the main settings and choose which actions run.

Switches that match an action's default are not stored, so the action
follows its default if that changes later.`,
		Args:         cobra.NoArgs,
		RunE:         runEdit,
		SilenceUsage: true,
	}

	return cmd
}

func runEdit(cmd *cobra.Command, args []string) error {
	if !cmdutil.IsInteractive(cmd) {
		return fmt.Errorf("config edit needs a terminal; use 'ccev config set' instead")
	}

	a, err := cmdutil.OpenApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	edited, err := tui.SettingsForm(a.Config.Load(), a.Service.Actions(cmd.Context()))
	if errors.Is(err, tui.ErrAborted) {
		fmt.Fprintln(cmd.ErrOrStderr(), "No changes saved.")
		return nil
	}
	if err != nil {
		return err
	}
	if err := edited.SaveTo(a.ConfigPath); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Settings saved.")
	return nil
}
