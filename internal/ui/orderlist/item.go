package orderlist

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/blackenaxe/icom/internal/model"
	"github.com/blackenaxe/icom/internal/theme"
)

// Item wraps a model.WorkOrder so it can be used in a bubbles/list.
type Item struct {
	Order model.WorkOrder
}

// FilterValue returns the string used for fuzzy filtering.
func (i Item) FilterValue() string {
	return i.Order.Title
}

// ItemDelegate renders one work order per line.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single work order line: number, title, status,
// priority, and assignee when present.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(Item)
	if !ok {
		return
	}
	order := it.Order

	number := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(order.Number)
	status := theme.StatusStyle(order.Status).Render(order.Status)
	priority := theme.PriorityStyle(order.Priority).Render(order.Priority)

	parts := []string{number, order.Title, status, priority}
	if order.AssignedToUser != nil {
		parts = append(parts, "@"+order.AssignedToUser.Username)
	}
	line := strings.Join(parts, "  ")

	if index == m.Index() {
		fmt.Fprint(w, theme.SelectedItemStyle.Render(line))
		return
	}
	fmt.Fprint(w, lipgloss.NewStyle().PaddingLeft(2).Render(line))
}
