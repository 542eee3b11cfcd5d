package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"formsuggest/internal/popup"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Outcome is how a preview ended.
type Outcome struct {
	Accepted bool   `json:"accepted"`
	Value    string `json:"value,omitempty"`
	Disabled bool   `json:"disabled"`
}

// Model is the bubbletea model for one popup preview.
type Model struct {
	host    *Host
	styles  Styles
	spinner spinner.Model

	view    popup.View
	open    bool
	outcome Outcome
	done    bool
}

func NewModel(host *Host, styles Styles) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner
	return Model{host: host, styles: styles, spinner: sp}
}

// Outcome is valid once the program has exited.
func (m Model) Outcome() Outcome {
	return m.outcome
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForEvent(), m.act(func() { m.host.Trigger() }))
}

// waitForEvent delivers the next queued host message.
func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return <-m.host.events
	}
}

// act runs fn off the event loop; controller calls may block on the host.
func (m Model) act(fn func()) tea.Cmd {
	return func() tea.Msg {
		fn()
		return nil
	}
}

func (m Model) action(kind popup.ActionKind) tea.Cmd {
	a := popup.Action{Kind: kind, PopupID: m.view.PopupID}
	return m.act(func() { m.host.Act(a) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case viewMsg:
		m.view = msg.view
		m.open = true
		return m, m.waitForEvent()

	case filledMsg:
		m.outcome.Accepted = true
		m.outcome.Value = msg.value
		return m, m.waitForEvent()

	case removedMsg:
		if msg.popupID != m.view.PopupID {
			return m, m.waitForEvent()
		}
		m.open = false
		m.done = true
		return m, tea.Quit

	case tea.KeyMsg:
		if !m.open {
			if msg.String() == "ctrl+c" {
				m.done = true
				return m, tea.Quit
			}
			return m, nil
		}
		switch msg.String() {
		case "enter":
			if !m.view.AcceptEnabled {
				return m, nil
			}
			return m, m.action(popup.ActionAccept)
		case "esc", "q", "ctrl+c":
			return m, m.action(popup.ActionEscape)
		case "x":
			m.outcome.Disabled = true
			return m, m.action(popup.ActionClose)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	if m.done {
		return ""
	}
	if !m.open {
		return m.spinner.View() + " Opening popup…\n"
	}

	s := m.styles
	lines := []string{s.Header.Render(m.view.TypeLabel)}
	if m.view.Question != "" {
		lines = append(lines, s.Question.Render(m.view.Question))
	}
	lines = append(lines, "")

	switch m.view.State {
	case popup.StateLoading:
		lines = append(lines, m.spinner.View()+" Generating suggestion…")
	case popup.StateReady:
		if r := m.view.Result; r != nil {
			if r.Failed() {
				lines = append(lines, s.Error.Render(r.Explanation))
			} else {
				lines = append(lines,
					s.Answer.Render(r.AnswerText),
					s.Confidence.Render(fmt.Sprintf("%.0f%% confident", r.Confidence)),
				)
				if r.Explanation != "" {
					lines = append(lines, s.Explanation.Render(r.Explanation))
				}
			}
		}
	case popup.StateError:
		lines = append(lines, s.Error.Render(m.view.Message))
	}

	keys := []string{"esc dismiss", "x don't suggest here"}
	if m.view.AcceptEnabled {
		keys = append([]string{"enter accept"}, keys...)
	}
	footer := strings.Join(keys, " · ")
	if m.view.ShortcutHint != "" {
		footer += "\n" + m.view.ShortcutHint + " opens this popup"
	}
	lines = append(lines, "", s.Footer.Render(footer))

	return s.Card.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)) + "\n"
}

// RunOptions configure Run.
type RunOptions struct {
	Input  io.Reader
	Output io.Writer
	Styles *Styles
}

// Run starts ctrl against host and shows the popup until it closes.
func Run(ctx context.Context, ctrl *popup.Controller, host *Host, opts RunOptions) (Outcome, error) {
	if err := ctrl.Start(ctx); err != nil {
		return Outcome{}, err
	}
	defer ctrl.Wait()

	styles := NewStyles(DetectTheme())
	if opts.Styles != nil {
		styles = *opts.Styles
	}

	progOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.Input != nil {
		progOpts = append(progOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		progOpts = append(progOpts, tea.WithOutput(opts.Output))
	}

	final, err := tea.NewProgram(NewModel(host, styles), progOpts...).Run()
	if err != nil {
		return Outcome{}, fmt.Errorf("preview: %w", err)
	}
	return final.(Model).Outcome(), nil
}
