// Package styles holds the palette and lipgloss styles shared by the ccev
// terminal views.
package styles

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	White   = lipgloss.Color("#E2E2E2")
	Gray    = lipgloss.Color("#888888")
	Muted   = lipgloss.Color("#5C5C5C")
	DimGray = lipgloss.Color("#444444")

	Blue   = lipgloss.Color("#5FAFFF")
	Green  = lipgloss.Color("#5FD787")
	Yellow = lipgloss.Color("#FFD787")
	Red    = lipgloss.Color("#FF8787")
)

// Text styles.
var (
	Title       = lipgloss.NewStyle().Bold(true).Foreground(White)
	Subtitle    = lipgloss.NewStyle().Foreground(Gray)
	Label       = lipgloss.NewStyle().Bold(true).Foreground(Gray)
	Value       = lipgloss.NewStyle().Foreground(White)
	MutedText   = lipgloss.NewStyle().Foreground(Muted)
	ErrorText   = lipgloss.NewStyle().Bold(true).Foreground(Red)
	SuccessText = lipgloss.NewStyle().Bold(true).Foreground(Green)
)

// Card frames a block of content.
var Card = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(DimGray).
	Padding(1, 2)

// Footer key hints.
var (
	KeyStyle     = lipgloss.NewStyle().Bold(true).Foreground(Blue)
	KeyDescStyle = lipgloss.NewStyle().Foreground(Muted)
	KeySepStyle  = lipgloss.NewStyle().Foreground(DimGray)
)

// FormatKeyBinding renders "key desc" for the footer.
func FormatKeyBinding(key, desc string) string {
	return KeyStyle.Render(key) + " " + KeyDescStyle.Render(desc)
}

// statusLook maps a result status to its color and marker. Unknown
// statuses, including never-run actions, render as an empty gray circle.
var statusLook = map[string]struct {
	color lipgloss.Color
	bold  bool
	icon  string
}{
	"success": {Green, true, "✓"},
	"running": {Blue, true, "●"},
	"info":    {Yellow, false, "i"},
	"fail":    {Red, true, "✗"},
	"skipped": {Gray, false, "–"},
}

// StatusStyle returns the style for an action result status.
func StatusStyle(status string) lipgloss.Style {
	look, ok := statusLook[status]
	if !ok {
		return lipgloss.NewStyle().Foreground(Gray)
	}
	return lipgloss.NewStyle().Foreground(look.color).Bold(look.bold)
}

// StatusIcon returns a one-cell marker for a result status.
func StatusIcon(status string) string {
	icon := "○"
	if look, ok := statusLook[status]; ok {
		icon = look.icon
	}
	return StatusStyle(status).Render(icon)
}
