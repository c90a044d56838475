package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application.
type KeyMap struct {
	Up          key.Binding
	Down        key.Binding
	Left        key.Binding
	Right       key.Binding
	Enter       key.Binding
	Escape      key.Binding
	Quit        key.Binding
	Refresh     key.Binding
	AutoRefresh key.Binding
	Test        key.Binding
	Collect     key.Binding
	Hosts       key.Binding
	New         key.Binding
	Delete      key.Binding
	Simulate    key.Binding
	Theme       key.Binding
	Help        key.Binding
	Yes         key.Binding
	No          key.Binding
}

// DefaultKeyMap provides the default set of key bindings.
var DefaultKeyMap = KeyMap{
	Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("up/k", "up")),
	Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("down/j", "down")),
	Left:        key.NewBinding(key.WithKeys("left"), key.WithHelp("left", "left")),
	Right:       key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("right/l", "right")),
	Enter:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "detail")),
	Escape:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Refresh:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	AutoRefresh: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "auto refresh")),
	Test:        key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "test")),
	Collect:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "collect")),
	Hosts:       key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "hosts")),
	New:         key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
	Delete:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
	Simulate:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "simulate")),
	Theme:       key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "theme")),
	Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Yes:         key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "yes")),
	No:          key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n", "no")),
}
