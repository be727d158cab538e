package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/proposal-desk/internal/contract"
	"github.com/Veraticus/proposal-desk/internal/decision"
	"github.com/Veraticus/proposal-desk/internal/model"
	"github.com/Veraticus/proposal-desk/internal/workflow"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
)

// View renders the current state.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch {
	case m.showHelp:
		body = m.renderHelp()
	case m.activeForm() == nil:
		body = m.history.View()
	default:
		body = m.renderForm(m.activeForm())
	}

	screen := lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderTabs(),
		body,
		m.renderFooter(),
	)

	switch {
	case m.dialog != nil:
		return m.overlay(m.dialog.View())
	case m.reasons != nil:
		return m.overlay(m.reasons.View())
	}
	return screen
}

func (m Model) overlay(content string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) renderTabs() string {
	muted := lipgloss.NewStyle().Foreground(m.theme.Muted)
	active := lipgloss.NewStyle().
		Bold(true).
		Foreground(m.theme.Foreground).
		Background(m.theme.Primary).
		Padding(0, 1)
	normal := lipgloss.NewStyle().Padding(0, 1)

	tabs := make([]string, len(m.tabs))
	for i, tab := range m.tabs {
		label := tabLabel(tab)
		switch {
		case i == m.active:
			tabs[i] = active.Render(label)
		case !m.desk.Lock().TabEnabled(tab):
			tabs[i] = muted.Padding(0, 1).Strikethrough(true).Render(label)
		default:
			tabs[i] = normal.Render(label)
		}
	}

	user := m.user.Login
	if m.user.FullName != "" {
		user = m.user.FullName
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	if user != "" {
		row += "  " + muted.Render("Analista: "+user)
	}

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(m.theme.Border).
		Width(m.width).
		Render(row)
}

func tabLabel(tab workflow.Tab) string {
	if tab == workflow.TabHistory {
		return "Histórico"
	}
	return model.ProposalType(tab).DisplayName()
}

func (m Model) renderForm(f *form) string {
	left := []string{
		f.number.View() + "  " + m.renderValidity(f),
		m.renderState(f),
		"",
		f.region.View(),
		f.agreement.View(),
		f.product.View(),
		m.renderStatus(f),
		"",
		f.cpf.View(),
		f.amount.View(),
		f.term.View(),
	}
	if f.ctrl.Type().RequiresTroco() {
		left = append(left, f.troco.View())
	}
	left = append(left, f.notes.View())

	half := max(m.width/2, 40)
	leftCol := lipgloss.NewStyle().Width(half).Render(strings.Join(left, "\n"))
	rightCol := m.theme.BorderedBox.Render(f.checklist.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, leftCol, rightCol)
}

func (m Model) renderValidity(f *form) string {
	style := m.theme.Validity(f.ctrl.Validity())
	switch f.ctrl.Validity() {
	case contract.Complete:
		return style.Render("✓ válido")
	case contract.Incomplete:
		return style.Render("✗ incompleto")
	}
	return ""
}

func (m Model) renderState(f *form) string {
	muted := lipgloss.NewStyle().Foreground(m.theme.Muted)
	var parts []string

	switch f.ctrl.State() {
	case workflow.StateIdle:
		parts = append(parts, muted.Render("Aguardando número do contrato"))
	case workflow.StateNumberPending:
		parts = append(parts, muted.Render("Número em digitação"))
	case workflow.StateDuplicateCheck:
		parts = append(parts, m.theme.StatusWarning.Render("Proposta já analisada"))
	case workflow.StateInProgress:
		parts = append(parts, m.theme.StatusInfo.Render("Em análise "+f.ctrl.Elapsed()))
	case workflow.StateConcluding:
		parts = append(parts, m.theme.StatusPending.Render("Salvando "+f.ctrl.Elapsed()))
	}
	if f.ctrl.Reanalysis() {
		parts = append(parts, m.theme.StatusWarning.Render("[REANÁLISE]"))
	}
	if f.pending != "" {
		parts = append(parts, m.spinner.View()+" "+muted.Render(f.pending))
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderStatus(f *form) string {
	chain := f.ctrl.Chain()
	label := m.theme.Bold.Render("Status:")
	if chain.Status == "" {
		return label + " " + lipgloss.NewStyle().Foreground(m.theme.Muted).Render("—")
	}
	return label + " " + m.theme.ToneStyle(chain.StatusTone).Render(chain.Status)
}

func (m Model) renderFooter() string {
	var lines []string

	if f := m.activeForm(); f != nil && f.ctrl.InputsEnabled() {
		lines = append(lines, m.renderGate(f))
	}
	if m.flash != "" {
		lines = append(lines, m.flashStyle().Render(m.flash))
	}

	h := help.New()
	h.Styles.ShortKey = lipgloss.NewStyle().Foreground(m.theme.Secondary)
	h.Styles.ShortDesc = lipgloss.NewStyle().Foreground(m.theme.Muted)
	lines = append(lines, h.ShortHelpView(m.keymap.ShortHelp()))

	return strings.Join(lines, "\n")
}

func (m Model) renderGate(f *form) string {
	gate := f.ctrl.Gate()
	approve := m.theme.StatusPending.Render("Aprovar")
	if gate.ApproveEnabled {
		approve = m.theme.StatusSuccess.Render("Aprovar")
	}
	reject := m.theme.StatusPending.Render("Recusar")
	if gate.RejectEnabled {
		reject = m.theme.StatusError.Render("Recusar")
	}

	line := approve + "  " + reject
	if missing := f.ctrl.MissingFields(); len(missing) > 0 {
		line += "  " + m.theme.StatusWarning.Render("Faltando: "+joinFields(missing))
	}
	if done, total := f.ctrl.Checklist().Progress(); done < total {
		line += "  " + lipgloss.NewStyle().Foreground(m.theme.Muted).Render(fmt.Sprintf("Checklist %d/%d", done, total))
	}
	return line
}

func joinFields(fields []decision.Field) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.String()
	}
	return strings.Join(names, ", ")
}

func (m Model) flashStyle() lipgloss.Style {
	switch m.flashKind {
	case FlashSuccess:
		return m.theme.StatusSuccess
	case FlashWarning:
		return m.theme.StatusWarning
	case FlashError:
		return m.theme.StatusError
	}
	return m.theme.StatusInfo
}

func (m Model) renderHelp() string {
	h := help.New()
	h.ShowAll = true
	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.theme.Title.Render("Atalhos"),
		h.FullHelpView(m.keymap.FullHelp()),
		"",
		lipgloss.NewStyle().Foreground(m.theme.Muted).Render("Esc ou F1 para voltar"),
	)
}
