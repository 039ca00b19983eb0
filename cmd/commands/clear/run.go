package clear

import (
	"nathanbeddoewebdev/ccev/cmd/commands/cmdutil"
	"nathanbeddoewebdev/ccev/internal/domain"
	"nathanbeddoewebdev/ccev/internal/history"

	"github.com/spf13/cobra"
)

// RunCommand returns the "clear run" command.
func RunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <key>",
		Short: "Run a single action",
		Long: `Run one action by key, even when it is disabled.

Deferred actions are refused unless --any-context is given.

Examples:
  ccev clear run transients
  ccev clear run cookies --any-context`,
		Args:         cobra.ExactArgs(1),
		RunE:         runOne,
		SilenceUsage: true,
	}

	cmd.Flags().Bool("any-context", false, "Allow deferred actions")
	cmd.Flags().StringP("output", "o", "text", "Output format: text or json")

	return cmd
}

func runOne(cmd *cobra.Command, args []string) error {
	output, err := cmdutil.OutputFormat(cmd, "text", "json")
	if err != nil {
		return err
	}
	anyContext, _ := cmd.Flags().GetBool("any-context")

	a, err := cmdutil.OpenApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := history.WithTrigger(cmd.Context(), history.Trigger{Source: history.SourceCLI})
	payload, err := a.Service.RunAction(ctx, args[0], anyContext)
	if err != nil {
		return err
	}

	if output == "json" {
		if err := cmdutil.PrintJSON(cmd, payload); err != nil {
			return err
		}
	} else {
		printPayload(cmd.OutOrStdout(), payload)
	}
	if payload.Status == domain.StatusFail {
		return failedError(1)
	}
	return nil
}
