// ABOUTME: Key bindings of the terminal editor.
// ABOUTME: Ctrl+S is forwarded to the editor through the keyboard registry.

package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the terminal editor's bindings.
type KeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Save   key.Binding
	Delete key.Binding
	New    key.Binding
	Yes    key.Binding
	No     key.Binding
	Quit   key.Binding
}

// DefaultKeyMap is the built-in binding set.
var DefaultKeyMap = KeyMap{
	Next: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next field"),
	),
	Prev: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "previous field"),
	),
	Save: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "save"),
	),
	Delete: key.NewBinding(
		key.WithKeys("ctrl+d"),
		key.WithHelp("ctrl+d", "delete"),
	),
	New: key.NewBinding(
		key.WithKeys("ctrl+n"),
		key.WithHelp("ctrl+n", "new"),
	),
	Yes: key.NewBinding(key.WithKeys("y", "Y")),
	No:  key.NewBinding(key.WithKeys("n", "N", "esc")),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "esc"),
		key.WithHelp("esc", "quit"),
	),
}

func (k KeyMap) help() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Save, k.Delete, k.New, k.Quit}
}
