// Package tui provides the terminal user interface for resolv.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kestrelworks/resolv/internal/orchestrator"
	"github.com/kestrelworks/resolv/pkg/models"
)

// maxLogLines caps the visible event log.
const maxLogLines = 20

// EventMsg wraps an orchestrator event for the watch view.
type EventMsg struct {
	Event orchestrator.Event
}

// SessionsMsg carries a fresh session snapshot on each refresh tick.
type SessionsMsg struct {
	Sessions []*models.Session
}

// tickMsg drives the periodic session refresh.
type tickMsg time.Time

// LogEntry is one line in the event log.
type LogEntry struct {
	Timestamp time.Time
	SessionID string
	State     models.SessionState
	Message   string
}

// Watch is the bubbletea model for `resolv resolve --watch`. It renders
// live session state while the orchestrator works.
type Watch struct {
	orch        *orchestrator.Orchestrator
	refreshRate time.Duration

	spinner  spinner.Model
	sessions []*models.Session
	logs     []LogEntry
	width    int
	height   int
	quitting bool

	titleStyle   lipgloss.Style
	stateStyles  map[models.SessionState]lipgloss.Style
	dimStyle     lipgloss.Style
	successStyle lipgloss.Style
	errorStyle   lipgloss.Style
}

// NewWatch creates a watch model bound to an orchestrator.
func NewWatch(orch *orchestrator.Orchestrator, refreshRate time.Duration) *Watch {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))

	running := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))

	return &Watch{
		orch:        orch,
		refreshRate: refreshRate,
		spinner:     sp,
		width:       80,

		titleStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("57")).
			Bold(true).
			Padding(0, 1),
		stateStyles: map[models.SessionState]lipgloss.Style{
			models.StateCompleted: lipgloss.NewStyle().Foreground(lipgloss.Color("28")).Bold(true),
			models.StateFailed:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
			models.StateAnalyzing: running,
			models.StateSpawning:  running,
		},
		dimStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		successStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("28")).Bold(true),
		errorStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
}

// Init implements tea.Model.
func (w *Watch) Init() tea.Cmd {
	return tea.Batch(w.spinner.Tick, w.waitForEvent(), w.tick())
}

// Update implements tea.Model.
func (w *Watch) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			w.quitting = true
			return w, tea.Quit
		}

	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.height = msg.Height

	case EventMsg:
		w.logs = append(w.logs, LogEntry{
			Timestamp: msg.Event.Time,
			SessionID: msg.Event.SessionID,
			State:     msg.Event.State,
			Message:   msg.Event.Message,
		})
		if len(w.logs) > maxLogLines {
			w.logs = w.logs[len(w.logs)-maxLogLines:]
		}
		return w, w.waitForEvent()

	case SessionsMsg:
		w.sessions = msg.Sessions

	case tickMsg:
		return w, tea.Batch(w.refreshSessions(), w.tick())

	case spinner.TickMsg:
		var cmd tea.Cmd
		w.spinner, cmd = w.spinner.Update(msg)
		return w, cmd
	}

	return w, nil
}

// View implements tea.Model.
func (w *Watch) View() string {
	if w.quitting {
		return ""
	}

	header := w.titleStyle.Render("resolv") + " " +
		w.dimStyle.Render("task resolution pipeline")

	return fmt.Sprintf("%s\n\n%s\n\n%s\n\n%s",
		header, w.viewSessions(), w.viewLogs(), w.viewFooter())
}

// viewSessions renders one line per session.
func (w *Watch) viewSessions() string {
	if len(w.sessions) == 0 {
		return w.dimStyle.Render("  waiting for sessions...")
	}

	var view string
	for _, sess := range w.sessions {
		view += "  " + w.sessionLine(sess) + "\n"
	}
	return view
}

// sessionLine renders a single session row.
func (w *Watch) sessionLine(sess *models.Session) string {
	marker := w.spinner.View()
	switch sess.State {
	case models.StateCompleted:
		marker = w.successStyle.Render("+")
	case models.StateFailed:
		marker = w.errorStyle.Render("x")
	}

	state := string(sess.State)
	if style, ok := w.stateStyles[sess.State]; ok {
		state = style.Render(state)
	}

	line := fmt.Sprintf("%s %s  task %s  %s", marker, sess.ID, sess.TaskID, state)
	if sess.State == models.StateCompleted && sess.Assessment != nil {
		line += w.dimStyle.Render(fmt.Sprintf("  score %.2f", sess.Assessment.Score))
	}
	if sess.State == models.StateFailed && sess.FailureMessage != "" {
		line += w.dimStyle.Render("  " + sess.FailureMessage)
	}
	return line
}

// viewLogs renders the most recent pipeline events.
func (w *Watch) viewLogs() string {
	if len(w.logs) == 0 {
		return w.dimStyle.Render("  no events yet")
	}

	var view string
	for _, entry := range w.logs {
		ts := w.dimStyle.Render(entry.Timestamp.Format("15:04:05"))
		view += fmt.Sprintf("  %s %s [%s] %s\n",
			ts, entry.SessionID, entry.State, entry.Message)
	}
	return view
}

// viewFooter renders the key hints.
func (w *Watch) viewFooter() string {
	return w.dimStyle.Render("  q to quit")
}

// waitForEvent blocks on the orchestrator event channel. Returns nil
// when the channel is closed so the command chain stops.
func (w *Watch) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		event, ok := <-w.orch.Events()
		if !ok {
			return nil
		}
		return EventMsg{Event: event}
	}
}

// refreshSessions snapshots orchestrator state off the event path.
func (w *Watch) refreshSessions() tea.Cmd {
	return func() tea.Msg {
		return SessionsMsg{Sessions: w.orch.Sessions()}
	}
}

// tick schedules the next refresh.
func (w *Watch) tick() tea.Cmd {
	return tea.Tick(w.refreshRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Run starts the watch view and blocks until the user quits.
func Run(orch *orchestrator.Orchestrator, refreshRate time.Duration) error {
	p := tea.NewProgram(NewWatch(orch, refreshRate), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
