package history

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"nathanbeddoewebdev/ccev/cmd/commands/cmdutil"
	"nathanbeddoewebdev/ccev/internal/history"

	"github.com/spf13/cobra"
)

func ListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent clearing passes",
		Long: `List recent clearing passes, newest first.

Examples:
  ccev history list
  ccev history list --limit 50
  ccev history list --source schedule
  ccev history list -o json`,
		RunE:         runList,
		SilenceUsage: true,
	}

	cmd.Flags().Int("limit", 25, "Number of entries to display")
	cmd.Flags().String("source", "", "Filter by trigger source: cli, http, api or schedule")
	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		return fmt.Errorf("limit must be greater than 0")
	}
	source, _ := cmd.Flags().GetString("source")
	source = strings.ToLower(strings.TrimSpace(source))
	output, err := cmdutil.OutputFormat(cmd, "table", "json")
	if err != nil {
		return err
	}

	repo, err := history.Open()
	if err != nil {
		return err
	}
	defer repo.Close()

	var entries []history.Entry
	if source != "" {
		entries, err = repo.ListBySource(cmd.Context(), source, limit)
	} else {
		entries, err = repo.List(cmd.Context(), limit)
	}
	if err != nil {
		return err
	}

	if output == "json" {
		return cmdutil.PrintJSON(cmd, entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No passes recorded.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tSOURCE\tOUTCOME\tOK\tFAIL\tSKIP\tDURATION\tFAILED")
	fmt.Fprintln(w, "----\t------\t-------\t--\t----\t----\t--------\t------")
	for _, entry := range entries {
		failed := entry.FailedKeys
		if failed == "" {
			failed = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			entry.Timestamp.Local().Format("2006-01-02 15:04:05"),
			formatSource(entry),
			entry.Outcome(),
			entry.Succeeded,
			entry.Failed,
			entry.Skipped+entry.Info,
			formatDuration(entry.DurationMs),
			failed,
		)
	}
	return w.Flush()
}

func formatSource(entry history.Entry) string {
	if entry.Subject == "" {
		return entry.Source
	}
	return entry.Source + " (" + entry.Subject + ")"
}

func formatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	d := time.Duration(ms) * time.Millisecond
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
}
