package tui

import (
	"context"
	"fmt"
	"strings"

	"nathanbeddoewebdev/ccev/internal/domain"
	"nathanbeddoewebdev/ccev/internal/services/clearing"
	"nathanbeddoewebdev/ccev/internal/tui/components"
	"nathanbeddoewebdev/ccev/internal/tui/styles"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// ActionRunner runs a single action by key.
type ActionRunner interface {
	RunAction(ctx context.Context, key string, anyContext bool) (clearing.Payload, error)
}

// --- Messages ---

type actionDoneMsg struct {
	index   int
	payload clearing.Payload
	err     error
}

// --- Progress model ---

// progressRow is one action line in the progress view.
type progressRow struct {
	key     string
	title   string
	status  domain.Status
	message string
}

type clearProgressModel struct {
	ctx    context.Context
	runner ActionRunner
	site   string

	rows    []progressRow
	current int
	done    bool

	spinner spinner.Model

	width  int
	height int
}

// ClearProgressResult holds the final row states.
type ClearProgressResult struct {
	Results map[string]domain.Status
	Aborted bool
}

// ProgressOrder returns the actions an incremental clear runs: enabled
// immediate actions, then enabled deferred ones.
func ProgressOrder(actions []domain.Action) []domain.Action {
	var immediate, deferred []domain.Action
	for _, a := range actions {
		if !a.Enabled {
			continue
		}
		if a.Context == domain.ContextDeferred {
			deferred = append(deferred, a)
		} else {
			immediate = append(immediate, a)
		}
	}
	return append(immediate, deferred...)
}

func newClearProgressModel(ctx context.Context, runner ActionRunner, actions []domain.Action, site string) clearProgressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Blue)

	order := ProgressOrder(actions)
	rows := make([]progressRow, len(order))
	for i, a := range order {
		rows[i] = progressRow{key: a.Key, title: a.Title}
	}
	return clearProgressModel{ctx: ctx, runner: runner, site: site, rows: rows, spinner: s, done: len(rows) == 0}
}

// RunClearProgress runs every enabled action one at a time, showing each
// result as it arrives.
func RunClearProgress(ctx context.Context, runner ActionRunner, actions []domain.Action, site string) (*ClearProgressResult, error) {
	m := newClearProgressModel(ctx, runner, actions, site)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to run clear progress: %w", err)
	}

	fm := final.(clearProgressModel)
	res := &ClearProgressResult{Results: make(map[string]domain.Status, len(fm.rows)), Aborted: !fm.done}
	for _, r := range fm.rows {
		if r.status != "" {
			res.Results[r.key] = r.status
		}
	}
	return res, nil
}

func (m clearProgressModel) Init() tea.Cmd {
	if m.done {
		return nil
	}
	return tea.Batch(m.spinner.Tick, m.runNext())
}

// runNext invokes the current row's action. Deferred actions are asked for
// by name, so the context restriction is lifted.
func (m clearProgressModel) runNext() tea.Cmd {
	i := m.current
	key := m.rows[i].key
	return func() tea.Msg {
		p, err := m.runner.RunAction(m.ctx, key, true)
		return actionDoneMsg{index: i, payload: p, err: err}
	}
}

func (m clearProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case actionDoneMsg:
		row := &m.rows[msg.index]
		if msg.err != nil {
			row.status = domain.StatusFail
			row.message = msg.err.Error()
		} else {
			row.status = msg.payload.Status
			if msg.payload.ErrorMessage != nil {
				row.message = *msg.payload.ErrorMessage
			}
		}
		m.current++
		if m.current >= len(m.rows) {
			m.done = true
			return m, nil
		}
		return m, m.runNext()
	}
	return m, nil
}

func (m clearProgressModel) counts() (ok, failed, other int) {
	for _, r := range m.rows {
		switch r.status {
		case "":
		case domain.StatusSuccess:
			ok++
		case domain.StatusFail:
			failed++
		default:
			other++
		}
	}
	return ok, failed, other
}

func (m clearProgressModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	header := components.Header(m.width, "clear", m.site)
	footer := components.Footer(m.width, []components.KeyBinding{{Key: "q", Desc: "quit"}})

	ok, failed, other := m.counts()
	status := fmt.Sprintf("%d cleared, %d failed, %d skipped", ok, failed, other)
	if !m.done {
		status = fmt.Sprintf("Running %d of %d... ", m.current+1, len(m.rows)) + status
	}
	statusBar := components.StatusBar(m.width, status, failed > 0 && m.done)

	contentH := m.height - lipgloss.Height(header) - lipgloss.Height(footer) - lipgloss.Height(statusBar)
	if contentH < 1 {
		contentH = 1
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, m.renderRows(contentH), statusBar, footer)
}

func (m clearProgressModel) renderRows(height int) string {
	if len(m.rows) == 0 {
		return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center,
			styles.MutedText.Render("No enabled actions."))
	}

	const titleWidth = 22
	maxMsg := max(m.width-titleWidth-10, 10)

	lines := make([]string, 0, len(m.rows))
	for i, r := range m.rows {
		var icon string
		switch {
		case r.status != "":
			icon = styles.StatusIcon(string(r.status))
		case i == m.current && !m.done:
			icon = m.spinner.View()
		default:
			icon = styles.MutedText.Render("·")
		}

		title := styles.Value.Width(titleWidth).Render(r.title)
		line := "  " + icon + " " + title
		if r.message != "" {
			line += styles.StatusStyle(string(r.status)).Render(ansi.Truncate(r.message, maxMsg, "…"))
		}
		lines = append(lines, line)
	}

	// Keep the running row visible on short terminals.
	if len(lines) > height {
		start := min(max(m.current-height/2, 0), len(lines)-height)
		lines = lines[start : start+height]
	}
	return lipgloss.NewStyle().Height(height).Render(strings.Join(lines, "\n"))
}
