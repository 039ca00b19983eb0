package tui

import (
	"errors"
	"fmt"
	"strings"

	"nathanbeddoewebdev/ccev/internal/services/auth"
	"nathanbeddoewebdev/ccev/internal/tui/components"
	"nathanbeddoewebdev/ccev/internal/tui/styles"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SecretState is the lookup result for one keyring entry.
type SecretState struct {
	Name   string
	Stored bool
	Detail string
}

// SecretStates checks every known entry in store.
func SecretStates(store auth.Store) []SecretState {
	names := auth.KnownEntries()
	out := make([]SecretState, 0, len(names))
	for _, name := range names {
		st := SecretState{Name: name}
		_, err := store.GetToken(name)
		switch {
		case err == nil:
			st.Stored = true
			st.Detail = "stored"
		case errors.Is(err, auth.ErrTokenNotFound):
			st.Detail = missingDetail(name)
		default:
			st.Detail = fmt.Sprintf("error: %v", err)
		}
		out = append(out, st)
	}
	return out
}

func missingDetail(name string) string {
	switch name {
	case auth.EntryTriggerSecret:
		return "generated on first 'ccev token issue'"
	case auth.EntryCloudflare:
		return "not set; Cloudflare purge is skipped"
	}
	return "not set"
}

type authStatusModel struct {
	states []SecretState

	width  int
	height int
}

// RunAuthStatus shows which secrets are present in the keyring.
func RunAuthStatus(store auth.Store) error {
	m := authStatusModel{states: SecretStates(store)}
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m authStatusModel) Init() tea.Cmd { return nil }

func (m authStatusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc", "enter":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m authStatusModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	header := components.Header(m.width, "auth status", "")
	footer := components.Footer(m.width, []components.KeyBinding{{Key: "q", Desc: "quit"}})
	contentH := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 1)

	lines := make([]string, 0, len(m.states))
	for _, st := range m.states {
		icon := styles.StatusIcon("fail")
		detail := styles.MutedText.Render(st.Detail)
		if st.Stored {
			icon = styles.StatusIcon("success")
			detail = styles.SuccessText.Render(st.Detail)
		}
		lines = append(lines, icon+" "+styles.Label.Width(18).Render(st.Name)+detail)
	}

	card := styles.Card.Render(strings.Join(lines, "\n"))
	body := lipgloss.JoinVertical(lipgloss.Center, styles.Title.Render("Stored Secrets"), "", card)
	content := lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center, body)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}
