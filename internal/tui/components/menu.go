// Package components holds the reusable widgets of the review desk.
package components

import (
	"strings"

	"github.com/Veraticus/proposal-desk/internal/tui/themes"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// MenuModel is a single-choice drop-down rendered as a cursor list.
type MenuModel struct {
	theme    themes.Theme
	id       string
	title    string
	selected string
	options  []string
	cursor   int
	height   int
	enabled  bool
	focused  bool
}

// NewMenu creates a disabled, empty menu.
func NewMenu(id, title string, theme themes.Theme) MenuModel {
	return MenuModel{id: id, title: title, theme: theme, height: 6}
}

// SetOptions replaces the options and the current selection.
// The cursor follows the selection when it is present.
func (m *MenuModel) SetOptions(options []string, selected string, enabled bool) {
	m.options = options
	m.selected = selected
	m.enabled = enabled
	m.cursor = 0
	for i, o := range options {
		if o == selected {
			m.cursor = i
			break
		}
	}
}

// Focus gives the menu keyboard focus.
func (m *MenuModel) Focus() { m.focused = true }

// Blur removes keyboard focus.
func (m *MenuModel) Blur() { m.focused = false }

// Focused reports whether the menu has focus.
func (m MenuModel) Focused() bool { return m.focused }

// Enabled reports whether the menu accepts a choice.
func (m MenuModel) Enabled() bool { return m.enabled && len(m.options) > 0 }

// Selected returns the confirmed option.
func (m MenuModel) Selected() string { return m.selected }

// Cursor returns the highlighted index.
func (m MenuModel) Cursor() int { return m.cursor }

// Update handles navigation keys while focused.
func (m MenuModel) Update(msg tea.Msg) (MenuModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || !m.focused || !m.Enabled() {
		return m, nil
	}

	switch keyMsg.String() {
	case "down", "j":
		m.cursor = min(m.cursor+1, len(m.options)-1)
	case "up", "k":
		m.cursor = max(m.cursor-1, 0)
	case "home":
		m.cursor = 0
	case "end":
		m.cursor = len(m.options) - 1
	case "enter", " ":
		value := m.options[m.cursor]
		id := m.id
		return m, func() tea.Msg {
			return OptionChosenMsg{Menu: id, Value: value}
		}
	}
	return m, nil
}

// View renders the menu. Unfocused menus collapse to their selection.
func (m MenuModel) View() string {
	label := m.theme.Bold.Render(m.title + ":")
	muted := lipgloss.NewStyle().Foreground(m.theme.Muted)

	if !m.Enabled() {
		return label + " " + muted.Render("—")
	}

	current := m.selected
	if current == "" {
		current = "Selecione..."
	}
	if !m.focused {
		return label + " " + m.theme.Normal.Render(current)
	}

	start := 0
	if m.cursor >= m.height {
		start = m.cursor - m.height + 1
	}
	end := min(start+m.height, len(m.options))

	var b strings.Builder
	b.WriteString(label + " " + m.theme.Highlighted.Render(current) + "\n")
	for i := start; i < end; i++ {
		line := "  " + m.options[i]
		switch {
		case i == m.cursor:
			line = m.theme.Selected.Render("▸ " + m.options[i])
		case m.options[i] == m.selected:
			line = m.theme.Bold.Render("  " + m.options[i])
		}
		b.WriteString(line)
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	if end < len(m.options) {
		b.WriteString("\n" + muted.Render("  ..."))
	}
	return b.String()
}
