package dashboard

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/blackenaxe/icom/internal/model"
	"github.com/blackenaxe/icom/internal/theme"
	"github.com/blackenaxe/icom/internal/ui"
)

// Model is the landing screen shown after login.
type Model struct {
	user   *model.User
	width  int
	height int
}

// New creates the dashboard model.
func New(width, height int) Model {
	return Model{width: width, height: height}
}

// SetUser sets the profile shown in the greeting.
func (m *Model) SetUser(user *model.User) {
	m.user = user
}

// Update handles messages for the dashboard.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "w", "enter":
			return m, ui.Navigate(ui.ScreenWorkOrderList, 0)
		case "n":
			return m, ui.Navigate(ui.ScreenWorkOrderCreate, 0)
		}
	}
	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	greeting := "Welcome"
	if m.user != nil {
		greeting = "Welcome, " + m.user.Username
	}

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorBlue).
		Render("Work Order Management")

	menu := lipgloss.JoinVertical(lipgloss.Left,
		"w  work orders",
		"n  new work order",
		"b  notifications",
		"",
		theme.HelpStyle.Render("ctrl+o sign out | q quit"),
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		greeting+".",
		"",
		menu,
	)

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(theme.BorderStyle.Padding(1, 4).Render(content))
}

// SetSize updates the dashboard dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
