package components

import (
	"strings"

	"github.com/Veraticus/proposal-desk/internal/tui/themes"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DialogKind picks the frame colour of a dialog.
type DialogKind int

// Dialog kinds.
const (
	DialogQuestion DialogKind = iota
	DialogWarning
	DialogError
	DialogInfo
)

// DialogModel is a blocking modal with a row of buttons.
// Esc presses the last button.
type DialogModel struct {
	theme   themes.Theme
	id      string
	title   string
	body    string
	choices []string
	cursor  int
	width   int
	kind    DialogKind
}

// NewDialog creates a modal. A dialog with no choices gets a single "OK".
func NewDialog(id, title, body string, choices []string, kind DialogKind, theme themes.Theme) DialogModel {
	if len(choices) == 0 {
		choices = []string{"OK"}
	}
	return DialogModel{
		id:      id,
		title:   title,
		body:    body,
		choices: choices,
		kind:    kind,
		theme:   theme,
		width:   60,
	}
}

// ID identifies the dialog in ChoiceMadeMsg.
func (m DialogModel) ID() string { return m.id }

// Body returns the dialog text.
func (m DialogModel) Body() string { return m.body }

// Choices returns the button labels.
func (m DialogModel) Choices() []string { return m.choices }

// Cursor returns the highlighted button.
func (m DialogModel) Cursor() int { return m.cursor }

// Resize sets the dialog width.
func (m *DialogModel) Resize(width int) {
	m.width = max(min(width-4, 72), 30)
}

// Update handles button navigation.
func (m DialogModel) Update(msg tea.Msg) (DialogModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "right", "l", "tab":
		m.cursor = (m.cursor + 1) % len(m.choices)
	case "left", "h", "shift+tab":
		m.cursor = (m.cursor + len(m.choices) - 1) % len(m.choices)
	case "enter", " ":
		return m, m.choose(m.cursor)
	case "esc":
		return m, m.choose(len(m.choices) - 1)
	default:
		// Number keys pick a button directly.
		if s := keyMsg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			if idx := int(s[0] - '1'); idx < len(m.choices) {
				return m, m.choose(idx)
			}
		}
	}
	return m, nil
}

func (m DialogModel) choose(idx int) tea.Cmd {
	id, choice := m.id, m.choices[idx]
	return func() tea.Msg {
		return ChoiceMadeMsg{Dialog: id, Index: idx, Choice: choice}
	}
}

// View renders the dialog box.
func (m DialogModel) View() string {
	var color lipgloss.Color
	var titleStyle lipgloss.Style
	switch m.kind {
	case DialogError:
		color, titleStyle = m.theme.Error, m.theme.StatusError
	case DialogWarning:
		color, titleStyle = m.theme.Warning, m.theme.StatusWarning
	case DialogInfo:
		color, titleStyle = m.theme.Success, m.theme.StatusSuccess
	default:
		color, titleStyle = m.theme.Primary, m.theme.Bold
	}

	buttons := make([]string, len(m.choices))
	for i, c := range m.choices {
		label := "[ " + c + " ]"
		if i == m.cursor {
			buttons[i] = m.theme.Selected.Render(label)
		} else {
			buttons[i] = m.theme.Normal.Render(label)
		}
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render(m.title),
		"",
		lipgloss.NewStyle().Width(m.width-6).Render(m.body),
		"",
		strings.Join(buttons, "  "),
	)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(1, 2).
		Width(m.width).
		Render(content)
}
