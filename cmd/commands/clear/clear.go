package clear

import (
	"fmt"

	"nathanbeddoewebdev/ccev/cmd/commands/cmdutil"
	"nathanbeddoewebdev/ccev/internal/domain"
	"nathanbeddoewebdev/ccev/internal/history"
	"nathanbeddoewebdev/ccev/internal/services/clearing"
	"nathanbeddoewebdev/ccev/internal/tui"

	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"
)

// NewCommand returns the "clear" command. Without a subcommand it runs a
// full pass.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear every enabled cache",
		Long: `Run every enabled action: immediate actions first, then deferred ones.

Results are stored so 'ccev results' and the HTTP API can show them, and
each pass is added to the local history.

Examples:
  ccev clear
  ccev clear --interactive
  ccev clear -o json
  ccev clear run transients
  ccev clear deferred`,
		Args:         cobra.NoArgs,
		RunE:         runClear,
		SilenceUsage: true,
	}

	cmd.Flags().BoolP("interactive", "i", false, "Run actions one by one with live progress")
	cmd.Flags().Bool("log", false, "Log every action result")
	cmd.Flags().StringP("output", "o", "text", "Output format: text or json")

	cmd.AddCommand(RunCommand())
	cmd.AddCommand(DeferredCommand())

	return cmd
}

// passView is the JSON shape of a full pass.
type passView struct {
	RunID   string                      `json:"run_id"`
	Summary clearing.Summary            `json:"summary"`
	Results map[string]clearing.Payload `json:"results"`
}

func runClear(cmd *cobra.Command, args []string) error {
	output, err := cmdutil.OutputFormat(cmd, "text", "json")
	if err != nil {
		return err
	}
	interactive, _ := cmd.Flags().GetBool("interactive")
	logResults, _ := cmd.Flags().GetBool("log")

	a, err := cmdutil.OpenApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	if logResults {
		a.Service.SetLogResults(true)
	}
	ctx := history.WithTrigger(cmd.Context(), history.Trigger{Source: history.SourceCLI})

	if interactive {
		if !cmdutil.IsInteractive(cmd) {
			return fmt.Errorf("--interactive needs a terminal")
		}
		res, err := tui.RunClearProgress(ctx, a.Service, a.Service.Actions(ctx), a.Config.Load().SiteURL)
		if err != nil {
			return err
		}
		if res.Aborted {
			fmt.Fprintln(cmd.ErrOrStderr(), "Aborted.")
			return nil
		}
		return failedError(countFailed(res.Results))
	}

	var report *clearing.Report
	if output == "text" && cmdutil.IsInteractive(cmd) {
		spinErr := spinner.New().
			Title("Clearing caches...").
			Accessible(cmdutil.Accessible()).
			Output(cmd.ErrOrStderr()).
			Action(func() {
				report = a.Service.ClearAll(ctx)
			}).
			Run()
		if spinErr != nil {
			return spinErr
		}
	} else {
		report = a.Service.ClearAll(ctx)
	}

	sum := a.Service.Summarize(report)
	if output == "json" {
		view := passView{RunID: report.RunID, Summary: sum, Results: make(map[string]clearing.Payload, len(report.Results))}
		for key, res := range report.Results {
			view.Results[key] = clearing.NewPayload(res, nil)
		}
		if err := cmdutil.PrintJSON(cmd, view); err != nil {
			return err
		}
	} else {
		printSummary(cmd.OutOrStdout(), sum)
	}
	return failedError(report.Count(domain.StatusFail))
}

func countFailed(results map[string]domain.Status) int {
	n := 0
	for _, st := range results {
		if st == domain.StatusFail {
			n++
		}
	}
	return n
}

// failedError makes the process exit non-zero when actions failed.
func failedError(n int) error {
	if n == 0 {
		return nil
	}
	return fmt.Errorf("%d action(s) failed", n)
}

