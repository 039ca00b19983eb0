package actions

import (
	"fmt"
	"text/tabwriter"

	"nathanbeddoewebdev/ccev/cmd/commands/cmdutil"
	"nathanbeddoewebdev/ccev/internal/domain"

	"github.com/spf13/cobra"
)

func ListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List actions with their switches and last result",
		Long: `List actions in run order with their context, switch and last result.

Examples:
  ccev actions list
  ccev actions list --offline
  ccev actions list -o json`,
		Args:         cobra.NoArgs,
		RunE:         runList,
		SilenceUsage: true,
	}

	cmd.Flags().Bool("offline", false, "Do not connect to the site (plugin integrations are hidden)")
	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

// actionRow is the JSON shape of one listed action.
type actionRow struct {
	domain.Action
	LastStatus domain.Status `json:"last_status,omitempty"`
}

func runList(cmd *cobra.Command, args []string) error {
	output, err := cmdutil.OutputFormat(cmd, "table", "json")
	if err != nil {
		return err
	}
	offline, _ := cmd.Flags().GetBool("offline")

	a, err := cmdutil.OpenApp(cmd, offline)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	list := a.Service.Actions(ctx)
	last, err := a.Service.Results(ctx)
	if err != nil {
		return err
	}

	rows := make([]actionRow, 0, len(list))
	for _, act := range list {
		rows = append(rows, actionRow{Action: act, LastStatus: last[act.Key].Status})
	}

	if output == "json" {
		return cmdutil.PrintJSON(cmd, rows)
	}
	if len(rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No actions registered.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "KEY\tTITLE\tCONTEXT\tSECTION\tENABLED\tLAST")
	fmt.Fprintln(w, "---\t-----\t-------\t-------\t-------\t----")
	for _, r := range rows {
		enabled := "no"
		if r.Enabled {
			enabled = "yes"
		}
		lastStatus := string(r.LastStatus)
		if lastStatus == "" {
			lastStatus = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", r.Key, r.Title, r.Context, r.Section, enabled, lastStatus)
	}
	return w.Flush()
}
