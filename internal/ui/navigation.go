package ui

import tea "github.com/charmbracelet/bubbletea"

// Screen identifies one of the application's views. The set is closed;
// rendering switches over it exhaustively.
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenRegister
	ScreenDashboard
	ScreenWorkOrderList
	ScreenWorkOrderCreate
	ScreenWorkOrderEdit
	ScreenWorkOrderDetail
)

func (s Screen) String() string {
	switch s {
	case ScreenLogin:
		return "login"
	case ScreenRegister:
		return "register"
	case ScreenDashboard:
		return "dashboard"
	case ScreenWorkOrderList:
		return "work-order-list"
	case ScreenWorkOrderCreate:
		return "work-order-create"
	case ScreenWorkOrderEdit:
		return "work-order-edit"
	case ScreenWorkOrderDetail:
		return "work-order-detail"
	default:
		return "unknown"
	}
}

// NeedsContext reports whether the screen requires a work order id.
func (s Screen) NeedsContext() bool {
	return s == ScreenWorkOrderEdit || s == ScreenWorkOrderDetail
}

// NavigateMsg asks the root model for a screen transition. ContextID
// carries the selected work order for Edit/Detail and is zero
// otherwise.
type NavigateMsg struct {
	Screen    Screen
	ContextID int
}

// Navigate returns a command that requests a screen transition.
func Navigate(screen Screen, contextID int) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Screen: screen, ContextID: contextID}
	}
}

// ToastMsg surfaces a transient message in the status bar.
type ToastMsg struct {
	Text    string
	IsError bool
}

// Toast returns a command that shows a transient status bar message.
func Toast(text string, isError bool) tea.Cmd {
	return func() tea.Msg {
		return ToastMsg{Text: text, IsError: isError}
	}
}

// RequestFailedMsg reports a failed backend call to the root model,
// which decides between a forced logout (authentication rejection) and
// a plain error toast.
type RequestFailedMsg struct {
	Err error
}

// Fail returns a command that reports a failed backend call.
func Fail(err error) tea.Cmd {
	return func() tea.Msg {
		return RequestFailedMsg{Err: err}
	}
}
