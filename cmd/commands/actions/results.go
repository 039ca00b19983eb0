package actions

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"nathanbeddoewebdev/ccev/cmd/commands/cmdutil"
	"nathanbeddoewebdev/ccev/internal/services/clearing"

	"github.com/spf13/cobra"
)

// ResultsCommand returns the top-level "results" command.
func ResultsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Show the last stored result of every action",
		Long: `Show the last stored result of every action that has run.

Examples:
  ccev results
  ccev results -o json`,
		Args:         cobra.NoArgs,
		RunE:         runResults,
		SilenceUsage: true,
	}

	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

func runResults(cmd *cobra.Command, args []string) error {
	output, err := cmdutil.OutputFormat(cmd, "table", "json")
	if err != nil {
		return err
	}

	a, err := cmdutil.OpenApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	all, err := a.Service.Results(cmd.Context())
	if err != nil {
		return err
	}

	payloads := make(map[string]clearing.Payload, len(all))
	keys := make([]string, 0, len(all))
	for key, res := range all {
		payloads[key] = clearing.NewPayload(res, nil)
		keys = append(keys, key)
	}
	sort.Strings(keys)

	if output == "json" {
		return cmdutil.PrintJSON(cmd, payloads)
	}
	if len(keys) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No results recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "KEY\tSTATUS\tFINISHED\tMESSAGE")
	fmt.Fprintln(w, "---\t------\t--------\t-------")
	for _, key := range keys {
		p := payloads[key]
		finished, msg := p.Datetime, "-"
		if finished == "" {
			finished = "-"
		}
		if p.ErrorMessage != nil && *p.ErrorMessage != "" {
			msg = *p.ErrorMessage
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", key, p.Status, finished, msg)
	}
	return w.Flush()
}
