// Package app holds the root Bubble Tea model: a finite-state router
// over the application's screens. All session and navigation state
// lives here and in the controllers it owns; view code never mutates
// it directly.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/blackenaxe/icom/internal/api"
	"github.com/blackenaxe/icom/internal/model"
	"github.com/blackenaxe/icom/internal/notify"
	"github.com/blackenaxe/icom/internal/session"
	"github.com/blackenaxe/icom/internal/ui"
	"github.com/blackenaxe/icom/internal/ui/dashboard"
	"github.com/blackenaxe/icom/internal/ui/loginform"
	"github.com/blackenaxe/icom/internal/ui/notifpanel"
	"github.com/blackenaxe/icom/internal/ui/orderdetail"
	"github.com/blackenaxe/icom/internal/ui/orderform"
	"github.com/blackenaxe/icom/internal/ui/orderlist"
	"github.com/blackenaxe/icom/internal/ui/registerform"
)

// toastDuration is how long a status bar toast stays visible.
const toastDuration = 4 * time.Second

// notificationsMsg reports the outcome of a navigation-triggered poll.
type notificationsMsg struct {
	err error
}

// formOptionsMsg carries the user directory for the create form.
type formOptionsMsg struct {
	users []model.User
}

// editContextMsg carries everything the edit form needs.
type editContextMsg struct {
	order *model.WorkOrder
	users []model.User
}

// toastExpiredMsg clears a toast; seq guards against clearing a newer
// one.
type toastExpiredMsg struct {
	seq int
}

// Model is the root application model.
type Model struct {
	screen    ui.Screen
	contextID int

	client     *api.Client
	session    *session.Controller
	reconciler *notify.Reconciler
	keys       *KeyMap

	layout ui.Layout
	ready  bool

	showNotifications bool
	toast             string
	toastErr          bool
	toastSeq          int

	loginView    loginform.Model
	registerView registerform.Model
	dashView     dashboard.Model
	listView     orderlist.Model
	formView     orderform.Model
	detailView   orderdetail.Model
	notifView    notifpanel.Model

	initCmd tea.Cmd
}

// New creates the root model. The session is restored from the
// credential store here, before the program starts: a stored profile
// lands the user on the dashboard, otherwise on the login screen.
func New(client *api.Client, sess *session.Controller, rec *notify.Reconciler) Model {
	m := Model{
		client:       client,
		session:      sess,
		reconciler:   rec,
		keys:         DefaultKeyMap(),
		loginView:    loginform.New(sess, 80, 24),
		registerView: registerform.New(client, 80, 24),
		dashView:     dashboard.New(80, 24),
		listView:     orderlist.New(client, 80, 24),
		formView:     orderform.New(client, 80, 24),
		detailView:   orderdetail.New(client, 80, 24),
		notifView:    notifpanel.New(rec, 80, 24),
	}

	if user := sess.Restore(); user != nil {
		m.dashView.SetUser(user)
		m.screen = ui.ScreenDashboard
		m.initCmd = m.pollNotifications()
	} else {
		m.screen = ui.ScreenLogin
		m.initCmd = m.loginView.Start()
	}

	return m
}

// Init returns the initial command chosen during construction.
func (m Model) Init() tea.Cmd {
	return m.initCmd
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w := m.layout.ContentWidth()
		h := m.layout.ContentHeight()
		m.loginView.SetSize(w, h)
		m.registerView.SetSize(w, h)
		m.dashView.SetSize(w, h)
		m.listView.SetSize(w, h)
		m.formView.SetSize(w, h)
		m.detailView.SetSize(w, h)
		m.notifView.SetSize(w, h)
		return m.updateActiveView(msg)

	case ui.NavigateMsg:
		return m, m.navigate(msg.Screen, msg.ContextID)

	case ui.ToastMsg:
		return m, m.setToast(msg.Text, msg.IsError)

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil

	case ui.RequestFailedMsg:
		if m.session.HandleAuthError(msg.Err) {
			// Authentication rejection: equivalent to logout. The
			// gateway already cleared stored credentials.
			m.reconciler.Reset()
			m.showNotifications = false
			m.dashView.SetUser(nil)
			cmd := m.navigate(ui.ScreenLogin, 0)
			return m, tea.Batch(cmd, m.setToast(msg.Err.Error(), true))
		}
		toastCmd := m.setToast(errorText(msg.Err), true)
		// Let the active view clear its loading state too.
		mdl, viewCmd := m.updateActiveView(msg)
		return mdl, tea.Batch(toastCmd, viewCmd)

	case notificationsMsg:
		if msg.err != nil {
			if m.session.HandleAuthError(msg.err) {
				m.reconciler.Reset()
				m.showNotifications = false
				m.dashView.SetUser(nil)
				cmd := m.navigate(ui.ScreenLogin, 0)
				return m, tea.Batch(cmd, m.setToast(msg.err.Error(), true))
			}
			// A broken feed never tears down the session.
			return m, m.setToast("Notifications are unavailable.", true)
		}
		m.notifView.Refresh()
		return m, nil

	case loginform.LoggedInMsg:
		m.dashView.SetUser(msg.User)
		cmd := m.navigate(ui.ScreenDashboard, 0)
		return m, tea.Batch(cmd, m.setToast("Signed in.", false))

	case registerform.RegisteredMsg:
		cmd := m.navigate(ui.ScreenLogin, 0)
		return m, tea.Batch(cmd, m.setToast(msg.Message, false))

	case registerform.CancelMsg:
		return m, m.navigate(ui.ScreenLogin, 0)

	case orderform.SavedMsg:
		text := "Work order updated."
		if msg.Created {
			text = "Work order created."
		}
		cmd := m.navigate(ui.ScreenWorkOrderList, 0)
		return m, tea.Batch(cmd, m.setToast(text, false))

	case orderform.CancelMsg:
		return m, m.navigate(ui.ScreenWorkOrderList, 0)

	case formOptionsMsg:
		if m.screen != ui.ScreenWorkOrderCreate {
			return m, nil
		}
		return m, m.formView.StartCreate(msg.users)

	case editContextMsg:
		if m.screen != ui.ScreenWorkOrderEdit || msg.order.ID != m.contextID {
			// Stale load for an edit the user already left.
			return m, nil
		}
		return m, m.formView.StartEdit(msg.order, msg.users)

	case notifpanel.CloseMsg:
		m.showNotifications = false
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}

		if m.showNotifications {
			var cmd tea.Cmd
			m.notifView, cmd = m.notifView.Update(msg)
			return m, cmd
		}

		switch m.screen {
		case ui.ScreenLogin:
			if key.Matches(msg, m.keys.Register) {
				return m, m.navigate(ui.ScreenRegister, 0)
			}

		case ui.ScreenDashboard, ui.ScreenWorkOrderList:
			switch {
			case key.Matches(msg, m.keys.Notifications):
				m.showNotifications = true
				m.notifView.Refresh()
				return m, m.pollNotifications()

			case key.Matches(msg, m.keys.Logout):
				return m, m.logout()

			case msg.String() == "q" && m.screen == ui.ScreenDashboard:
				return m, tea.Quit
			}

		case ui.ScreenWorkOrderDetail:
			if key.Matches(msg, m.keys.Logout) {
				return m, m.logout()
			}
		}
	}

	return m.updateActiveView(msg)
}

// navigate performs a screen transition. Edit/Detail without a work
// order id is a contract violation: the transition is redirected to
// the list with an explanatory message instead of rendering a broken
// screen. Every successful transition while logged in triggers one
// notification poll; navigation is the sole polling trigger.
func (m *Model) navigate(screen ui.Screen, contextID int) tea.Cmd {
	var cmds []tea.Cmd

	if screen.NeedsContext() && contextID == 0 {
		screen = ui.ScreenWorkOrderList
		cmds = append(cmds, m.setToast("Select a work order first.", false))
	}

	m.screen = screen
	m.contextID = contextID

	switch screen {
	case ui.ScreenLogin:
		m.contextID = 0
		cmds = append(cmds, m.loginView.Start())
	case ui.ScreenRegister:
		cmds = append(cmds, m.registerView.Start())
	case ui.ScreenWorkOrderList:
		cmds = append(cmds, m.listView.Load())
	case ui.ScreenWorkOrderCreate:
		cmds = append(cmds, m.loadFormOptions())
	case ui.ScreenWorkOrderEdit:
		cmds = append(cmds, m.loadEditContext(contextID))
	case ui.ScreenWorkOrderDetail:
		cmds = append(cmds, m.detailView.Load(contextID))
	}

	if m.session.LoggedIn() {
		cmds = append(cmds, m.pollNotifications())
	}

	return tea.Batch(cmds...)
}

// logout clears the session and returns to the login screen. Safe to
// call when already anonymous.
func (m *Model) logout() tea.Cmd {
	if err := m.session.Logout(); err != nil {
		return m.setToast(errorText(err), true)
	}
	m.reconciler.Reset()
	m.showNotifications = false
	m.dashView.SetUser(nil)
	cmd := m.navigate(ui.ScreenLogin, 0)
	return tea.Batch(cmd, m.setToast("Signed out.", false))
}

// pollNotifications returns a command that reconciles the feed.
func (m *Model) pollNotifications() tea.Cmd {
	rec := m.reconciler
	return func() tea.Msg {
		_, err := rec.Poll(context.Background())
		return notificationsMsg{err: err}
	}
}

// loadFormOptions fetches the user directory for the create form.
func (m *Model) loadFormOptions() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		users, err := client.Users(context.Background())
		if err != nil {
			return ui.RequestFailedMsg{Err: err}
		}
		return formOptionsMsg{users: users}
	}
}

// loadEditContext fetches the work order and the user directory for
// the edit form.
func (m *Model) loadEditContext(id int) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		order, err := client.WorkOrder(context.Background(), id)
		if err != nil {
			return ui.RequestFailedMsg{Err: err}
		}
		users, err := client.Users(context.Background())
		if err != nil {
			return ui.RequestFailedMsg{Err: err}
		}
		return editContextMsg{order: order, users: users}
	}
}

// setToast shows a transient status bar message.
func (m *Model) setToast(text string, isError bool) tea.Cmd {
	m.toast = text
	m.toastErr = isError
	m.toastSeq++
	seq := m.toastSeq
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

// updateActiveView dispatches the message to the currently active
// view. Responses for screens the user has navigated away from land
// here on the wrong view and are ignored, which is exactly the stale-
// response behavior we want.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.screen {
	case ui.ScreenLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	case ui.ScreenRegister:
		m.registerView, cmd = m.registerView.Update(msg)
	case ui.ScreenDashboard:
		m.dashView, cmd = m.dashView.Update(msg)
	case ui.ScreenWorkOrderList:
		m.listView, cmd = m.listView.Update(msg)
	case ui.ScreenWorkOrderCreate, ui.ScreenWorkOrderEdit:
		m.formView, cmd = m.formView.Update(msg)
	case ui.ScreenWorkOrderDetail:
		m.detailView, cmd = m.detailView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("Work Order Management", m.headerRight())

	var content string
	if m.showNotifications {
		content = m.notifView.View()
	} else {
		content = m.renderContent()
	}

	statusText := m.toast
	if statusText == "" {
		statusText = m.keyHints()
	}
	statusBar := m.layout.RenderStatusBar(statusText, m.toast != "" && m.toastErr)

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the active screen.
func (m Model) renderContent() string {
	switch m.screen {
	case ui.ScreenLogin:
		return m.loginView.View()
	case ui.ScreenRegister:
		return m.registerView.View()
	case ui.ScreenDashboard:
		return m.dashView.View()
	case ui.ScreenWorkOrderList:
		return m.listView.View()
	case ui.ScreenWorkOrderCreate, ui.ScreenWorkOrderEdit:
		return m.formView.View()
	case ui.ScreenWorkOrderDetail:
		return m.detailView.View()
	default:
		return ""
	}
}

// headerRight builds the right side of the header: greeting plus the
// unread badge. The badge count is always derived from the snapshot.
func (m Model) headerRight() string {
	user := m.session.User()
	if user == nil {
		return ""
	}
	if unread := m.reconciler.UnreadCount(); unread > 0 {
		return fmt.Sprintf("[%d new]  %s", unread, user.Username)
	}
	return user.Username
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.showNotifications {
		return "enter mark read | j/k move | esc close"
	}

	switch m.screen {
	case ui.ScreenLogin:
		return "enter sign in | ctrl+r register | ctrl+c quit"
	case ui.ScreenRegister:
		return "enter submit | esc back"
	case ui.ScreenDashboard:
		return "w work orders | n new | b notifications | ctrl+o sign out | q quit"
	case ui.ScreenWorkOrderList:
		return "enter detail | e edit | n new | d delete | r reload | b notifications | esc dashboard"
	case ui.ScreenWorkOrderCreate, ui.ScreenWorkOrderEdit:
		return "enter submit | esc cancel"
	case ui.ScreenWorkOrderDetail:
		return "a annotate | u edit annotation | e edit | esc back"
	default:
		return ""
	}
}

// errorText extracts the user-presentable message from an error. The
// gateway has already normalized backend failures; anything else gets
// a generic prefix.
func errorText(err error) string {
	if err == nil {
		return ""
	}
	var de *api.DisplayError
	if errors.As(err, &de) {
		return de.Message
	}
	return "Request failed: " + err.Error()
}
