package orderdetail

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/blackenaxe/icom/internal/api"
	"github.com/blackenaxe/icom/internal/model"
	"github.com/blackenaxe/icom/internal/theme"
	"github.com/blackenaxe/icom/internal/ui"
)

// loadedMsg carries a fetched work order. The id is checked against
// the most recent request so responses for an order the user has
// already navigated away from are discarded.
type loadedMsg struct {
	id    int
	order *model.WorkOrder
}

// annotationSavedMsg is sent after an annotation write succeeded.
type annotationSavedMsg struct {
	id int
}

// Model is the work order detail view with its annotation thread.
type Model struct {
	order       *model.WorkOrder
	client      *api.Client
	requestedID int
	loading     bool

	annotating    bool
	editingUpdate int
	input         textinput.Model
	cursor        int

	width  int
	height int
}

// New creates the detail view model.
func New(client *api.Client, width, height int) Model {
	in := textinput.New()
	in.Placeholder = "annotation text..."
	in.Prompt = "> "
	in.Width = width - 8

	return Model{
		client: client,
		input:  in,
		width:  width,
		height: height,
	}
}

// Load returns a command that fetches the work order with the given id.
func (m *Model) Load(id int) tea.Cmd {
	m.requestedID = id
	m.loading = true
	m.annotating = false
	m.cursor = 0
	client := m.client
	return func() tea.Msg {
		order, err := client.WorkOrder(context.Background(), id)
		if err != nil {
			return ui.RequestFailedMsg{Err: err}
		}
		return loadedMsg{id: id, order: order}
	}
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.id != m.requestedID {
			// Stale response for a previously viewed order.
			return m, nil
		}
		m.loading = false
		m.order = msg.order
		if m.cursor >= len(m.order.Updates) {
			m.cursor = 0
		}
		return m, nil

	case annotationSavedMsg:
		return m, tea.Batch(
			m.Load(msg.id),
			ui.Toast("Annotation saved.", false),
		)

	case ui.RequestFailedMsg:
		m.loading = false
		return m, nil

	case tea.KeyMsg:
		if m.annotating {
			return m.handleAnnotationKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	return m, nil
}

func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, ui.Navigate(ui.ScreenWorkOrderList, 0)

	case "e":
		if m.order != nil {
			return m, ui.Navigate(ui.ScreenWorkOrderEdit, m.order.ID)
		}

	case "a":
		m.annotating = true
		m.editingUpdate = 0
		m.input.Reset()
		return m, m.input.Focus()

	case "u":
		if m.order != nil && len(m.order.Updates) > 0 {
			update := m.order.Updates[m.cursor]
			m.annotating = true
			m.editingUpdate = update.ID
			m.input.SetValue(update.Description)
			return m, m.input.Focus()
		}

	case "j", "down":
		if m.order != nil && m.cursor < len(m.order.Updates)-1 {
			m.cursor++
		}

	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}

	case "r":
		if m.order != nil {
			return m, m.Load(m.order.ID)
		}
	}

	return m, nil
}

func (m Model) handleAnnotationKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		m.annotating = false
		m.input.Blur()
		return m, m.saveAnnotation(text)

	case "esc":
		m.annotating = false
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// saveAnnotation writes a new or edited annotation, then triggers a
// reload so the thread reflects server truth.
func (m *Model) saveAnnotation(text string) tea.Cmd {
	client := m.client
	orderID := m.requestedID
	updateID := m.editingUpdate
	return func() tea.Msg {
		var err error
		if updateID != 0 {
			_, err = client.EditWorkOrderUpdate(context.Background(), updateID, text)
		} else {
			_, err = client.AddWorkOrderUpdate(context.Background(), orderID, text)
		}
		if err != nil {
			return ui.RequestFailedMsg{Err: err}
		}
		return annotationSavedMsg{id: orderID}
	}
}

// View renders the detail view.
func (m Model) View() string {
	if m.loading || m.order == nil {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("Loading work order...")
	}

	order := m.order

	title := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).
		Render(fmt.Sprintf("%s  %s", order.Number, order.Title))

	status := theme.StatusStyle(order.Status).Render(order.Status)
	priority := theme.PriorityStyle(order.Priority).Render(order.Priority)
	badges := fmt.Sprintf("%s  %s", status, priority)

	assignee := "Unassigned"
	if order.AssignedToUser != nil {
		assignee = order.AssignedToUser.Username
	}

	meta := theme.HelpStyle.Render(fmt.Sprintf(
		"assignee: %s | created: %s | updated: %s",
		assignee,
		order.CreatedAt.Format("2006-01-02 15:04"),
		order.UpdatedAt.Format("2006-01-02 15:04"),
	))

	sections := []string{title, badges, meta}
	if order.Description != "" {
		sections = append(sections, "", order.Description)
	}
	sections = append(sections, "", m.renderAnnotations())

	if m.annotating {
		label := "New annotation"
		if m.editingUpdate != 0 {
			label = "Edit annotation"
		}
		sections = append(sections, "",
			theme.HelpStyle.Render(label+" (enter to save, esc to cancel)"),
			m.input.View(),
		)
	} else {
		sections = append(sections, "",
			theme.HelpStyle.Render("a annotate | u edit annotation | e edit | r reload | esc back"),
		)
	}

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) renderAnnotations() string {
	header := lipgloss.NewStyle().Bold(true).
		Render(fmt.Sprintf("Annotations (%d)", len(m.order.Updates)))

	if len(m.order.Updates) == 0 {
		return header + "\n" + theme.HelpStyle.Render("none yet")
	}

	lines := []string{header}
	for i, u := range m.order.Updates {
		line := fmt.Sprintf("%s (%s, %s)",
			u.Description,
			u.User.Username,
			u.CreatedAt.Format("2006-01-02 15:04"),
		)
		if i == m.cursor {
			lines = append(lines, theme.SelectedItemStyle.Render(line))
		} else {
			lines = append(lines, lipgloss.NewStyle().PaddingLeft(2).Render(line))
		}
	}
	return strings.Join(lines, "\n")
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 8
}
