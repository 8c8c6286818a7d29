package registerform

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/blackenaxe/icom/internal/api"
	"github.com/blackenaxe/icom/internal/theme"
	"github.com/blackenaxe/icom/internal/ui"
)

// RegisteredMsg is dispatched when the account was created. Message is
// the backend's success text.
type RegisteredMsg struct {
	Message string
}

// CancelMsg is dispatched when the user abandons registration.
type CancelMsg struct{}

type registerResultMsg struct {
	message string
	err     error
}

type formBindings struct {
	username string
	email    string
	password string
}

// Model is the registration screen.
type Model struct {
	form       *huh.Form
	fb         *formBindings
	client     *api.Client
	submitting bool
	width      int
	height     int
}

// New creates the registration form model.
func New(client *api.Client, width, height int) Model {
	return Model{
		fb:     &formBindings{},
		client: client,
		width:  width,
		height: height,
	}
}

// Start resets the form for a fresh registration.
func (m *Model) Start() tea.Cmd {
	m.submitting = false
	m.fb.username = ""
	m.fb.email = ""
	m.fb.password = ""
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the registration screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case registerResultMsg:
		m.submitting = false
		if msg.err != nil {
			cmd := m.Start()
			return m, tea.Batch(cmd, ui.Fail(msg.err))
		}
		message := msg.message
		return m, func() tea.Msg { return RegisteredMsg{Message: message} }
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
		return m, m.register()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

func (m *Model) register() tea.Cmd {
	client := m.client
	username := strings.TrimSpace(m.fb.username)
	email := strings.TrimSpace(m.fb.email)
	password := m.fb.password
	return func() tea.Msg {
		message, err := client.Register(context.Background(), username, email, password)
		return registerResultMsg{message: message, err: err}
	}
}

// View renders the registration screen.
func (m Model) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1).
		Render("Create Account")

	var body string
	switch {
	case m.submitting:
		body = theme.HelpStyle.Render("Creating account...")
	case m.form != nil:
		body = m.form.View()
	}

	hint := theme.HelpStyle.Render("esc back to sign in")

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
				Title("E-mail").
				Value(&m.fb.email).
				Validate(validateEmail),
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

func validateEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("E-mail is required")
	}
	if !strings.Contains(s, "@") {
		return fmt.Errorf("E-mail looks invalid")
	}
	return nil
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
