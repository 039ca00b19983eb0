// Package components renders the header, footer and status line that frame
// every ccev terminal view. They are plain render functions, not models.
package components

import (
	"strings"

	"nathanbeddoewebdev/ccev/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

// KeyBinding is one footer hint.
type KeyBinding struct {
	Key  string
	Desc string
}

// minWidth is the narrowest terminal the chrome draws in.
const minWidth = 10

func bar(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 2).
		BorderForeground(styles.DimGray)
}

// Header renders "ccev > view" on the left and the site on the right,
// underlined.
func Header(width int, view, site string) string {
	if width < minWidth {
		return ""
	}

	left := styles.Title.Foreground(styles.Blue).Render("ccev")
	if view != "" {
		left += styles.MutedText.Render(" > ") + styles.Title.Render(view)
	}
	right := ""
	if site != "" {
		right = styles.Subtitle.Render(site)
	}

	gap := max(width-4-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return bar(width).
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderBottom(true).
		Render(left + strings.Repeat(" ", gap) + right)
}

// Footer renders the key hints above a rule.
func Footer(width int, bindings []KeyBinding) string {
	if width < minWidth || len(bindings) == 0 {
		return ""
	}
	parts := make([]string, len(bindings))
	for i, b := range bindings {
		parts[i] = styles.FormatKeyBinding(b.Key, b.Desc)
	}
	return bar(width).
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderTop(true).
		Render(strings.Join(parts, styles.KeySepStyle.Render("  ")))
}

// StatusBar renders a one-line message, red when it reports an error.
func StatusBar(width int, message string, isError bool) string {
	if message == "" {
		return ""
	}
	style := styles.MutedText
	if isError {
		style = styles.ErrorText
	}
	return bar(width).Render(style.Render(message))
}
