package clear

import (
	"fmt"

	"nathanbeddoewebdev/ccev/cmd/commands/cmdutil"
	"nathanbeddoewebdev/ccev/internal/domain"
	"nathanbeddoewebdev/ccev/internal/history"

	"github.com/spf13/cobra"
)

// DeferredCommand returns the "clear deferred" command.
func DeferredCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deferred",
		Short: "Run the enabled deferred actions",
		Long: `Run every enabled deferred action.

Cookie and browser cache actions need a browser request to act on, so from
the command line they report info. Use the HTTP API to run them against a
real response.`,
		Args:         cobra.NoArgs,
		RunE:         runDeferred,
		SilenceUsage: true,
	}

	cmd.Flags().StringP("output", "o", "text", "Output format: text or json")

	return cmd
}

func runDeferred(cmd *cobra.Command, args []string) error {
	output, err := cmdutil.OutputFormat(cmd, "text", "json")
	if err != nil {
		return err
	}

	a, err := cmdutil.OpenApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := history.WithTrigger(cmd.Context(), history.Trigger{Source: history.SourceCLI})
	payloads := a.Service.RunDeferred(ctx)

	if output == "json" {
		if err := cmdutil.PrintJSON(cmd, payloads); err != nil {
			return err
		}
	} else if len(payloads) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No deferred actions enabled.")
	} else {
		printPayloads(cmd.OutOrStdout(), payloads)
	}

	failed := 0
	for _, p := range payloads {
		if p.Status == domain.StatusFail {
			failed++
		}
	}
	return failedError(failed)
}
