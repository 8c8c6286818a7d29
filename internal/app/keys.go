package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings handled by the root model.
// Screen-local keys live with their sub-models.
type KeyMap struct {
	Quit          key.Binding
	Logout        key.Binding
	Notifications key.Binding
	Register      key.Binding
}

// DefaultKeyMap returns the default set of global keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Logout: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "sign out"),
		),
		Notifications: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "notifications"),
		),
		Register: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "register"),
		),
	}
}
