package loginform

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/blackenaxe/icom/internal/model"
	"github.com/blackenaxe/icom/internal/session"
	"github.com/blackenaxe/icom/internal/theme"
	"github.com/blackenaxe/icom/internal/ui"
)

// LoggedInMsg is dispatched when the login round trips both succeeded.
type LoggedInMsg struct {
	User *model.User
}

// loginResultMsg carries the outcome of the login attempt.
type loginResultMsg struct {
	user *model.User
	err  error
}

// formBindings holds field values on the heap so huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	username string
	password string
}

// Model is the login screen: a credential form whose submit refuses
// re-entry while a login is in flight.
type Model struct {
	form       *huh.Form
	fb         *formBindings
	session    *session.Controller
	submitting bool
	width      int
	height     int
}

// New creates the login form model.
func New(sess *session.Controller, width, height int) Model {
	return Model{
		fb:      &formBindings{},
		session: sess,
		width:   width,
		height:  height,
	}
}

// Start resets the form for a fresh login attempt.
func (m *Model) Start() tea.Cmd {
	m.submitting = false
	m.fb.password = ""
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the login screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		m.submitting = false
		if msg.err != nil {
			// Keep the username, clear the password, let the user
			// retry; the root model shows the error.
			cmd := m.Start()
			return m, tea.Batch(cmd, ui.Fail(msg.err))
		}
		user := msg.user
		return m, func() tea.Msg { return LoggedInMsg{User: user} }
	}

	if m.form == nil || m.submitting {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.submitting = true
		return m, m.login()
	}
	if m.form.State == huh.StateAborted {
		// Nothing to cancel into; restart the form.
		return m, m.Start()
	}

	return m, cmd
}

// login performs the two sequential round trips via the session
// controller.
func (m *Model) login() tea.Cmd {
	sess := m.session
	username := strings.TrimSpace(m.fb.username)
	password := m.fb.password
	return func() tea.Msg {
		user, err := sess.Login(context.Background(), username, password)
		return loginResultMsg{user: user, err: err}
	}
}

// View renders the login screen.
func (m Model) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1).
		Render("Sign In")

	var body string
	switch {
	case m.submitting:
		body = theme.HelpStyle.Render("Signing in...")
	case m.form != nil:
		body = m.form.View()
	}

	hint := theme.HelpStyle.Render("ctrl+r register | ctrl+c quit")

	content := fmt.Sprintf("%s\n%s\n\n%s", title, body, hint)
	return lipgloss.NewStyle().Padding(1, 2).Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&m.fb.username).
				Validate(required("Username")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password).
				Validate(required("Password")),
		),
	).WithWidth(formWidth(m.width)).WithShowHelp(false)
}

func required(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func formWidth(width int) int {
	w := width - 4
	if w < 40 {
		w = 40
	}
	if w > 80 {
		w = 80
	}
	return w
}
