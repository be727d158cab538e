package components

import (
	"fmt"
	"strings"

	"github.com/Veraticus/proposal-desk/internal/checklist"
	"github.com/Veraticus/proposal-desk/internal/tui/themes"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ChecklistModel renders a tracker's items with a cursor.
type ChecklistModel struct {
	theme   themes.Theme
	tracker *checklist.Tracker
	cursor  int
	height  int
	focused bool
}

// NewChecklist creates a view over tracker.
func NewChecklist(tracker *checklist.Tracker, theme themes.Theme) ChecklistModel {
	return ChecklistModel{tracker: tracker, theme: theme, height: 10}
}

// Focus gives the checklist keyboard focus.
func (m *ChecklistModel) Focus() { m.focused = true }

// Blur removes keyboard focus.
func (m *ChecklistModel) Blur() { m.focused = false }

// Reset moves the cursor back to the first item.
func (m *ChecklistModel) Reset() { m.cursor = 0 }

// Resize sets how many items are visible at once.
func (m *ChecklistModel) Resize(height int) {
	m.height = max(height, 3)
}

// Cursor returns the highlighted index.
func (m ChecklistModel) Cursor() int { return m.cursor }

// Update handles navigation and toggling while focused.
func (m ChecklistModel) Update(msg tea.Msg) (ChecklistModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || !m.focused || !m.tracker.Enabled() {
		return m, nil
	}

	items := m.tracker.Items()
	switch keyMsg.String() {
	case "down", "j":
		m.cursor = min(m.cursor+1, len(items)-1)
	case "up", "k":
		m.cursor = max(m.cursor-1, 0)
	case " ", "enter", "x":
		if m.cursor < len(items) {
			key := items[m.cursor].Key
			return m, func() tea.Msg { return ItemToggledMsg{Key: key} }
		}
	}
	return m, nil
}

// View renders the visible window of items and the progress line.
func (m ChecklistModel) View() string {
	items := m.tracker.Items()
	done, total := m.tracker.Progress()
	muted := lipgloss.NewStyle().Foreground(m.theme.Muted)

	header := m.theme.Bold.Render("Checklist") + " " + muted.Render(fmt.Sprintf("(%d/%d)", done, total))
	if !m.tracker.Enabled() {
		return header + "\n" + muted.Render("  Informe um número de contrato válido")
	}

	start := 0
	if m.cursor >= m.height {
		start = m.cursor - m.height + 1
	}
	end := min(start+m.height, len(items))

	var b strings.Builder
	b.WriteString(header)
	for i := start; i < end; i++ {
		box := "[ ]"
		if m.tracker.IsChecked(items[i].Key) {
			box = m.theme.StatusSuccess.Render("[x]")
		}
		line := fmt.Sprintf("%s %s", box, items[i].Label)
		if m.focused && i == m.cursor {
			line = m.theme.Highlighted.Render(line)
		}
		b.WriteString("\n" + line)
	}
	if end < len(items) {
		b.WriteString("\n" + muted.Render(fmt.Sprintf("  ... mais %d", len(items)-end)))
	}
	return b.String()
}
