package notifpanel

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/blackenaxe/icom/internal/model"
	"github.com/blackenaxe/icom/internal/notify"
	"github.com/blackenaxe/icom/internal/theme"
	"github.com/blackenaxe/icom/internal/ui"
)

// CloseMsg is dispatched when the user dismisses the panel.
type CloseMsg struct{}

// readDoneMsg is sent after a mark-read round trip (and its follow-up
// poll) completed.
type readDoneMsg struct {
	err error
}

// Model is the notification overlay. Entries come from the
// reconciler's snapshot; selecting one marks it read on the server.
type Model struct {
	reconciler *notify.Reconciler
	entries    []model.Notification
	cursor     int
	width      int
	height     int
}

// New creates the notification panel model.
func New(rec *notify.Reconciler, width, height int) Model {
	return Model{
		reconciler: rec,
		width:      width,
		height:     height,
	}
}

// Refresh re-reads the reconciler's snapshot.
func (m *Model) Refresh() {
	m.entries = m.reconciler.Entries()
	if m.cursor >= len(m.entries) {
		m.cursor = 0
	}
}

// Update handles messages for the panel.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case readDoneMsg:
		m.Refresh()
		if msg.err != nil {
			return m, ui.Fail(msg.err)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "b", "q":
			return m, func() tea.Msg { return CloseMsg{} }

		case "j", "down":
			if m.cursor < len(m.entries)-1 {
				m.cursor++
			}

		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}

		case "enter":
			if len(m.entries) == 0 {
				return m, nil
			}
			entry := m.entries[m.cursor]
			if entry.Read {
				return m, nil
			}
			return m, m.markRead(entry.ID)
		}
	}

	return m, nil
}

// markRead flips one entry server-side; the reconciler re-fetches the
// feed afterwards so the panel never shows an optimistic state.
func (m *Model) markRead(id int) tea.Cmd {
	rec := m.reconciler
	return func() tea.Msg {
		err := rec.MarkRead(context.Background(), id)
		return readDoneMsg{err: err}
	}
}

// View renders the panel.
func (m Model) View() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).
		Render(fmt.Sprintf("Notifications (%d unread)", m.reconciler.UnreadCount()))

	var body string
	if len(m.entries) == 0 {
		body = theme.HelpStyle.Render("No notifications.")
	} else {
		lines := make([]string, 0, len(m.entries))
		for i, n := range m.entries {
			style := lipgloss.NewStyle().Foreground(theme.ColorGray)
			if !n.Read {
				style = lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
			}
			line := style.Render(n.Message) + " " +
				theme.HelpStyle.Render(n.CreatedAt.Format("2006-01-02 15:04"))
			if i == m.cursor {
				line = theme.SelectedItemStyle.Render(line)
			} else {
				line = lipgloss.NewStyle().PaddingLeft(2).Render(line)
			}
			lines = append(lines, line)
		}
		body = lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	hint := theme.HelpStyle.Render("enter mark read | esc close")

	panel := theme.BorderStyle.
		Padding(1, 2).
		Width(min(m.width-4, 80)).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", hint))

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(panel)
}

// SetSize updates the panel dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
