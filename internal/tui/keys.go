package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap lists the bindings of the record browser.
type KeyMap struct {
	Search  key.Binding
	Sort    key.Binding
	Next    key.Binding
	Prev    key.Binding
	Down    key.Binding
	Up      key.Binding
	Delete  key.Binding
	Confirm key.Binding
	Cancel  key.Binding
	Refresh key.Binding
	Chart   key.Binding
	Theme   key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Sort:    key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "sort column")),
		Next:    key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n/→", "next page")),
		Prev:    key.NewBinding(key.WithKeys("p", "left"), key.WithHelp("p/←", "prev page")),
		Down:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		Up:      key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Confirm: key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "confirm")),
		Cancel:  key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n", "cancel")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Chart:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "bars/shares/off")),
		Theme:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "light/dark")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Sort, k.Next, k.Prev, k.Delete, k.Chart, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Search, k.Sort, k.Refresh},
		{k.Next, k.Prev, k.Down, k.Up},
		{k.Delete, k.Chart, k.Theme, k.Quit},
	}
}
