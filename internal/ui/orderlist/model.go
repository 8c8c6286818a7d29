package orderlist

import (
	"context"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/blackenaxe/icom/internal/api"
	"github.com/blackenaxe/icom/internal/theme"
	"github.com/blackenaxe/icom/internal/ui"
)

// loadedMsg is sent when the work orders have been fetched.
type loadedMsg struct {
	orders []Item
}

// deletedMsg is sent after a successful delete.
type deletedMsg struct{}

// Model is the work order list view.
type Model struct {
	list    list.Model
	client  *api.Client
	loading bool
	width   int
	height  int
}

// New creates the work order list model.
func New(client *api.Client, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.Title = "Work Orders"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:   l,
		client: client,
		width:  width,
		height: height,
	}
}

// Load returns a command that fetches the full work order list.
func (m *Model) Load() tea.Cmd {
	m.loading = true
	client := m.client
	return func() tea.Msg {
		orders, err := client.WorkOrders(context.Background())
		if err != nil {
			return ui.RequestFailedMsg{Err: err}
		}
		items := make([]Item, len(orders))
		for i, o := range orders {
			items[i] = Item{Order: o}
		}
		return loadedMsg{orders: items}
	}
}

// Update handles messages for the list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.loading = false
		items := make([]list.Item, len(msg.orders))
		for i, it := range msg.orders {
			items[i] = it
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case ui.RequestFailedMsg:
		// Root already handled the error; stop the loading state.
		m.loading = false
		return m, nil

	case deletedMsg:
		return m, tea.Batch(
			m.Load(),
			ui.Toast("Work order deleted.", false),
		)

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if it, ok := m.list.SelectedItem().(Item); ok {
				return m, ui.Navigate(ui.ScreenWorkOrderDetail, it.Order.ID)
			}
			return m, nil

		case "e":
			if it, ok := m.list.SelectedItem().(Item); ok {
				return m, ui.Navigate(ui.ScreenWorkOrderEdit, it.Order.ID)
			}
			return m, nil

		case "n":
			return m, ui.Navigate(ui.ScreenWorkOrderCreate, 0)

		case "d":
			if it, ok := m.list.SelectedItem().(Item); ok {
				return m, m.deleteOrder(it.Order.ID)
			}
			return m, nil

		case "r":
			return m, m.Load()

		case "esc":
			return m, ui.Navigate(ui.ScreenDashboard, 0)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) deleteOrder(id int) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		if err := client.DeleteWorkOrder(context.Background(), id); err != nil {
			return ui.RequestFailedMsg{Err: err}
		}
		return deletedMsg{}
	}
}

// View renders the list view.
func (m Model) View() string {
	if m.loading && len(m.list.Items()) == 0 {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("Loading work orders...")
	}

	if len(m.list.Items()) == 0 {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No work orders yet.\n\nPress n to create one.")
	}

	return m.list.View()
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}
