package components

import (
	"fmt"
	"strings"

	"github.com/Veraticus/proposal-desk/internal/model"
	"github.com/Veraticus/proposal-desk/internal/tui/themes"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ReasonPickerModel lets the analyst pick exactly one rejection reason.
// Typing digits jumps to the first code with that prefix.
type ReasonPickerModel struct {
	theme   themes.Theme
	typed   string
	reasons []model.RejectionReason
	cursor  int
	height  int
}

// NewReasonPicker creates a picker over reasons.
func NewReasonPicker(reasons []model.RejectionReason, theme themes.Theme) ReasonPickerModel {
	return ReasonPickerModel{reasons: reasons, theme: theme, height: 12}
}

// Cursor returns the highlighted index.
func (m ReasonPickerModel) Cursor() int { return m.cursor }

// Highlighted returns the reason under the cursor.
func (m ReasonPickerModel) Highlighted() model.RejectionReason {
	if len(m.reasons) == 0 {
		return model.RejectionReason{}
	}
	return m.reasons[m.cursor]
}

// Resize sets how many reasons are visible at once.
func (m *ReasonPickerModel) Resize(height int) {
	m.height = max(height, 5)
}

// Update handles navigation, code typing and confirmation.
func (m ReasonPickerModel) Update(msg tea.Msg) (ReasonPickerModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || len(m.reasons) == 0 {
		return m, nil
	}

	switch s := keyMsg.String(); s {
	case "down", "j":
		m.cursor = min(m.cursor+1, len(m.reasons)-1)
		m.typed = ""
	case "up", "k":
		m.cursor = max(m.cursor-1, 0)
		m.typed = ""
	case "pgdown":
		m.cursor = min(m.cursor+m.height, len(m.reasons)-1)
	case "pgup":
		m.cursor = max(m.cursor-m.height, 0)
	case "backspace":
		if m.typed != "" {
			m.typed = m.typed[:len(m.typed)-1]
		}
	case "enter":
		reason := m.reasons[m.cursor]
		return m, func() tea.Msg { return ReasonPickedMsg{Reason: reason} }
	case "esc":
		return m, func() tea.Msg { return ReasonCancelledMsg{} }
	default:
		if len(s) == 1 && s[0] >= '0' && s[0] <= '9' {
			m.jump(m.typed + s)
		}
	}
	return m, nil
}

func (m *ReasonPickerModel) jump(prefix string) {
	for i, r := range m.reasons {
		if strings.HasPrefix(r.Code, prefix) {
			m.cursor = i
			m.typed = prefix
			return
		}
	}
	// No code starts with the extended prefix: start over with the last digit.
	last := prefix[len(prefix)-1:]
	for i, r := range m.reasons {
		if strings.HasPrefix(r.Code, last) {
			m.cursor = i
			m.typed = last
			return
		}
	}
}

// View renders the reason list.
func (m ReasonPickerModel) View() string {
	muted := lipgloss.NewStyle().Foreground(m.theme.Muted)

	start := 0
	if m.cursor >= m.height {
		start = m.cursor - m.height + 1
	}
	end := min(start+m.height, len(m.reasons))

	var b strings.Builder
	b.WriteString(m.theme.Title.Render("Motivo da Recusa"))
	b.WriteString("\n")
	for i := start; i < end; i++ {
		line := fmt.Sprintf("%s  %s", m.reasons[i].Code, m.reasons[i].Description)
		if i == m.cursor {
			line = m.theme.Selected.Render("▸ " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")
	b.WriteString(muted.Render("[↑↓] Navegar | [0-9] Código | [Enter] Selecionar | [Esc] Cancelar"))

	return m.theme.RoundedBox.
		BorderForeground(m.theme.Warning).
		Render(b.String())
}
