package clear

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"nathanbeddoewebdev/ccev/internal/domain"
	"nathanbeddoewebdev/ccev/internal/services/clearing"
	"nathanbeddoewebdev/ccev/internal/tui/styles"
)

// printSummary writes a pass summary as the notice would show it.
func printSummary(w io.Writer, sum clearing.Summary) {
	if sum.Empty() {
		fmt.Fprintln(w, "Nothing to clear.")
		return
	}
	for _, it := range sum.Success {
		fmt.Fprintf(w, "%s %s\n", styles.StatusIcon(string(domain.StatusSuccess)), it.Title)
	}
	for _, it := range sum.Fail {
		line := it.Title
		if it.Message != "" {
			line += ": " + it.Message
		}
		fmt.Fprintf(w, "%s %s\n", styles.StatusIcon(string(domain.StatusFail)), line)
		if it.Hint != "" {
			fmt.Fprintf(w, "  %s\n", styles.MutedText.Render(it.Hint))
		}
	}
	if sum.ShowSkipped && len(sum.Skipped) > 0 {
		titles := make([]string, 0, len(sum.Skipped))
		for _, it := range sum.Skipped {
			titles = append(titles, it.Title)
		}
		fmt.Fprintf(w, "%s Skipped: %s\n", styles.StatusIcon(string(domain.StatusSkipped)), strings.Join(titles, ", "))
	}
}

// printPayloads writes one line per payload, sorted by key.
func printPayloads(w io.Writer, payloads map[string]clearing.Payload) {
	keys := make([]string, 0, len(payloads))
	for k := range payloads {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		printPayload(w, payloads[k])
	}
}

func printPayload(w io.Writer, p clearing.Payload) {
	line := fmt.Sprintf("%s %s: %s", styles.StatusIcon(string(p.Status)), p.Key, p.Status)
	if p.ErrorMessage != nil && *p.ErrorMessage != "" {
		line += " (" + *p.ErrorMessage + ")"
	}
	if p.Datetime != "" {
		line += " at " + p.Datetime
	}
	fmt.Fprintln(w, line)
}
