package tui

import (
	"fmt"
	"strings"

	"nathanbeddoewebdev/ccev/internal/services/auth"
	"nathanbeddoewebdev/ccev/internal/tui/components"
	"nathanbeddoewebdev/ccev/internal/tui/styles"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type secretSavedMsg struct{}

type secretSaveErrorMsg struct {
	err error
}

type authLoginModel struct {
	entry string
	store auth.Store

	secretInput textinput.Model

	width  int
	height int

	err      error
	saved    bool
}

// RunAuthLogin prompts for a secret and stores it under entry. It reports
// false when the user cancels.
func RunAuthLogin(entry string, store auth.Store) (bool, error) {
	p := tea.NewProgram(newAuthLoginModel(entry, store), tea.WithAltScreen())
	result, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("failed to run auth login: %w", err)
	}
	return result.(authLoginModel).saved, nil
}

func newAuthLoginModel(entry string, store auth.Store) authLoginModel {
	ti := textinput.New()
	ti.Placeholder = "paste the secret here"
	ti.Focus()
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '*'
	ti.Width = 50
	return authLoginModel{entry: entry, store: store, secretInput: ti}
}

func (m authLoginModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m authLoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case secretSavedMsg:
		m.saved = true
		return m, tea.Quit

	case secretSaveErrorMsg:
		m.err = msg.err
		return m, nil
	}

	var cmd tea.Cmd
	m.secretInput, cmd = m.secretInput.Update(msg)
	return m, cmd
}

func (m authLoginModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "enter":
		secret := strings.TrimSpace(m.secretInput.Value())
		if secret == "" {
			m.err = fmt.Errorf("secret cannot be empty")
			return m, nil
		}
		m.err = nil
		return m, m.save(secret)
	}

	var cmd tea.Cmd
	m.secretInput, cmd = m.secretInput.Update(msg)
	m.err = nil
	return m, cmd
}

func (m authLoginModel) save(secret string) tea.Cmd {
	return func() tea.Msg {
		if err := m.store.SetToken(m.entry, secret); err != nil {
			return secretSaveErrorMsg{err: err}
		}
		return secretSavedMsg{}
	}
}

func (m authLoginModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	header := components.Header(m.width, "auth login", m.entry)
	footerBindings := []components.KeyBinding{
		{Key: "enter", Desc: "save"},
		{Key: "esc", Desc: "cancel"},
	}
	footer := components.Footer(m.width, footerBindings)

	headerH := lipgloss.Height(header)
	footerH := lipgloss.Height(footer)
	contentH := m.height - headerH - footerH
	if contentH < 1 {
		contentH = 1
	}

	content := m.renderContent(contentH)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (m authLoginModel) renderContent(height int) string {
	title := styles.Title.Render(m.entry)
	hint := styles.MutedText.Render(loginHint(m.entry))

	inputView := m.secretInput.View()

	var errLine string
	if m.err != nil {
		errLine = "\n" + styles.ErrorText.Render(m.err.Error())
	}

	card := lipgloss.JoinVertical(lipgloss.Left,
		title,
		hint,
		"",
		inputView,
		errLine,
	)

	return lipgloss.Place(
		m.width, height,
		lipgloss.Center, lipgloss.Center,
		card,
	)
}

func loginHint(entry string) string {
	switch entry {
	case auth.EntryCloudflare:
		return "Cloudflare API token with Zone > Cache Purge permission"
	case auth.EntryTriggerSecret:
		return "HMAC secret for trigger links; replacing it revokes issued links"
	}
	return "Secret for " + entry
}
