package orderform

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/blackenaxe/icom/internal/api"
	"github.com/blackenaxe/icom/internal/model"
	"github.com/blackenaxe/icom/internal/theme"
	"github.com/blackenaxe/icom/internal/ui"
)

// SavedMsg is dispatched when the work order was persisted.
type SavedMsg struct {
	Order   *model.WorkOrder
	Created bool
}

// CancelMsg is dispatched when the user abandons the form.
type CancelMsg struct{}

type saveResultMsg struct {
	order   *model.WorkOrder
	created bool
	err     error
}

// formBindings holds field values on the heap so huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title          string
	description    string
	priority       string
	status         string
	assignedUserID int
}

// Model is the work order create/edit form.
type Model struct {
	form       *huh.Form
	fb         *formBindings
	client     *api.Client
	users      []model.User
	editMode   bool
	editID     int
	submitting bool
	width      int
	height     int
}

// New creates the work order form model.
func New(client *api.Client, width, height int) Model {
	return Model{
		fb:     &formBindings{priority: model.PriorityNormal, status: model.StatusPending},
		client: client,
		width:  width,
		height: height,
	}
}

// StartCreate initializes the form for a new work order. users feeds
// the assignee selector.
func (m *Model) StartCreate(users []model.User) tea.Cmd {
	m.editMode = false
	m.editID = 0
	m.submitting = false
	m.users = users
	m.fb.title = ""
	m.fb.description = ""
	m.fb.priority = model.PriorityNormal
	m.fb.status = model.StatusPending
	m.fb.assignedUserID = 0
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit initializes the form with an existing work order's fields.
func (m *Model) StartEdit(order *model.WorkOrder, users []model.User) tea.Cmd {
	m.editMode = true
	m.editID = order.ID
	m.submitting = false
	m.users = users
	m.fb.title = order.Title
	m.fb.description = order.Description
	m.fb.priority = order.Priority
	m.fb.status = order.Status
	if order.AssignedUserID != nil {
		m.fb.assignedUserID = *order.AssignedUserID
	} else {
		m.fb.assignedUserID = 0
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case saveResultMsg:
		m.submitting = false
		if msg.err != nil {
			// Rebuild the form with the entered values intact so the
			// user can correct and resubmit; root shows the error.
			m.form = m.buildForm()
			return m, tea.Batch(m.form.Init(), ui.Fail(msg.err))
		}
		order := msg.order
		created := msg.created
		return m, func() tea.Msg { return SavedMsg{Order: order, Created: created} }

	case ui.RequestFailedMsg:
		if m.form == nil {
			// The options fetch failed before the form was built, so
			// there is nothing to show or retry here; leave instead of
			// trapping the user on an empty screen.
			return m, func() tea.Msg { return CancelMsg{} }
		}
		return m, nil
	}

	if m.form == nil || m.submitting {
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" && !m.submitting {
			return m, func() tea.Msg { return CancelMsg{} }
		}
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.submitting = true
		return m, m.save()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// save persists the form through the gateway.
func (m *Model) save() tea.Cmd {
	client := m.client
	editMode := m.editMode
	editID := m.editID

	in := model.WorkOrderInput{
		Title:       strings.TrimSpace(m.fb.title),
		Description: m.fb.description,
		Priority:    m.fb.priority,
		Status:      m.fb.status,
	}
	if m.fb.assignedUserID != 0 {
		id := m.fb.assignedUserID
		in.AssignedUserID = &id
	}

	return func() tea.Msg {
		if editMode {
			order, err := client.UpdateWorkOrder(context.Background(), editID, in)
			return saveResultMsg{order: order, err: err}
		}
		order, err := client.CreateWorkOrder(context.Background(), in)
		return saveResultMsg{order: order, created: true, err: err}
	}
}

// View renders the form.
func (m Model) View() string {
	titleText := "New Work Order"
	if m.editMode {
		titleText = "Edit Work Order"
	}

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1).
		Render(titleText)

	var body string
	switch {
	case m.submitting:
		body = theme.HelpStyle.Render("Saving...")
	case m.form != nil:
		body = m.form.View()
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(title + "\n" + body)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	statusOpts := make([]huh.Option[string], len(model.Statuses))
	for i, s := range model.Statuses {
		statusOpts[i] = huh.NewOption(s, s)
	}
	priorityOpts := make([]huh.Option[string], len(model.Priorities))
	for i, p := range model.Priorities {
		priorityOpts[i] = huh.NewOption(p, p)
	}

	assigneeOpts := []huh.Option[int]{
		huh.NewOption("Unassigned", 0),
	}
	for _, u := range m.users {
		assigneeOpts = append(assigneeOpts, huh.NewOption(u.Username, u.ID))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Placeholder("Short summary").
				Value(&m.fb.title).
				Validate(required("Title")),
			huh.NewText().
				Title("Description").
				Placeholder("Details...").
				Value(&m.fb.description),
			huh.NewSelect[string]().
				Title("Priority").
				Options(priorityOpts...).
				Value(&m.fb.priority),
			huh.NewSelect[string]().
				Title("Status").
				Options(statusOpts...).
				Value(&m.fb.status),
			huh.NewSelect[int]().
				Title("Assignee").
				Options(assigneeOpts...).
				Value(&m.fb.assignedUserID),
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
	if w > 100 {
		w = 100
	}
	return w
}
