package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts.
type KeyMap struct {
	// Tabs and fields
	NextTab   key.Binding
	PrevTab   key.Binding
	NextField key.Binding
	PrevField key.Binding

	// Decisions
	Approve key.Binding
	Reject  key.Binding
	Clear   key.Binding

	// Application
	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextTab: key.NewBinding(
			key.WithKeys("ctrl+n", "f3"),
			key.WithHelp("Ctrl+N", "próxima aba"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("ctrl+p", "f2"),
			key.WithHelp("Ctrl+P", "aba anterior"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "próximo campo"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("Shift+Tab", "campo anterior"),
		),
		Approve: key.NewBinding(
			key.WithKeys("ctrl+a"),
			key.WithHelp("Ctrl+A", "aprovar"),
		),
		Reject: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("Ctrl+R", "recusar"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("Ctrl+X", "limpar"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("F1", "ajuda"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("Ctrl+C", "sair"),
		),
	}
}

// ShortHelp returns key bindings for the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Approve, k.Reject, k.Clear, k.NextTab, k.Help, k.Quit}
}

// FullHelp returns all key bindings for the help screen.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTab, k.PrevTab, k.NextField, k.PrevField},
		{k.Approve, k.Reject, k.Clear},
		{k.Help, k.Quit},
	}
}
