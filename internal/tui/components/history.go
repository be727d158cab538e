package components

import (
	"fmt"
	"strings"

	"github.com/Veraticus/proposal-desk/internal/decision"
	"github.com/Veraticus/proposal-desk/internal/model"
	"github.com/Veraticus/proposal-desk/internal/tui/themes"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HistoryFilter is what the history tab asks the store for.
type HistoryFilter struct {
	Type   model.ProposalType
	Status model.Status
}

// HistoryFilterChangedMsg asks the desk to reload the history.
type HistoryFilterChangedMsg struct {
	Filter HistoryFilter
}

var historyStatuses = []model.Status{"", model.StatusApproved, model.StatusRejected}

// HistoryModel is the read-only record table of the history tab.
type HistoryModel struct {
	theme   themes.Theme
	filter  HistoryFilter
	records []model.Record
	table   table.Model
	width   int
	height  int
	loading bool
}

// NewHistory creates an empty history table.
func NewHistory(theme themes.Theme) HistoryModel {
	t := table.New(
		table.WithColumns(historyColumns(100)),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.Border).
		BorderBottom(true).
		Bold(true)
	s.Selected = theme.Selected
	t.SetStyles(s)

	return HistoryModel{theme: theme, table: t, width: 100, height: 20}
}

func historyColumns(width int) []table.Column {
	agreement := max(width-88, 10)
	return []table.Column{
		{Title: "Concluída em", Width: 16},
		{Title: "Número", Width: 16},
		{Title: "Tipo", Width: 28},
		{Title: "Analista", Width: 14},
		{Title: "Status", Width: 9},
		{Title: "Duração", Width: 9},
		{Title: "Convênio", Width: agreement},
	}
}

// Filter returns the active filter.
func (m HistoryModel) Filter() HistoryFilter { return m.filter }

// Records returns the loaded records.
func (m HistoryModel) Records() []model.Record { return m.records }

// SetLoading shows or hides the loading indicator.
func (m *HistoryModel) SetLoading(loading bool) { m.loading = loading }

// SetRecords replaces the rows.
func (m *HistoryModel) SetRecords(records []model.Record) {
	m.records = records
	m.loading = false

	rows := make([]table.Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, table.Row{
			r.ConcludedAt.Local().Format("02/01/2006 15:04"),
			r.Number,
			r.TypeLabel,
			r.Analyst,
			string(r.Status),
			r.Duration,
			r.Filters.Agreement,
		})
	}
	m.table.SetRows(rows)
	if len(rows) > 0 && m.table.Cursor() >= len(rows) {
		m.table.SetCursor(len(rows) - 1)
	}
}

// Resize adapts the table to the terminal.
func (m *HistoryModel) Resize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetColumns(historyColumns(width))
	m.table.SetHeight(max(height-8, 3))
}

// Update handles table navigation and filter cycling.
func (m HistoryModel) Update(msg tea.Msg) (HistoryModel, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "t":
			m.filter.Type = nextType(m.filter.Type)
			return m, m.reload()
		case "s":
			m.filter.Status = nextStatus(m.filter.Status)
			return m, m.reload()
		case "r":
			return m, m.reload()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m HistoryModel) reload() tea.Cmd {
	filter := m.filter
	return func() tea.Msg { return HistoryFilterChangedMsg{Filter: filter} }
}

func nextType(t model.ProposalType) model.ProposalType {
	all := append([]model.ProposalType{""}, model.AllProposalTypes()...)
	for i, candidate := range all {
		if candidate == t {
			return all[(i+1)%len(all)]
		}
	}
	return ""
}

func nextStatus(s model.Status) model.Status {
	for i, candidate := range historyStatuses {
		if candidate == s {
			return historyStatuses[(i+1)%len(historyStatuses)]
		}
	}
	return ""
}

// View renders the filter line, the table and the selected record's details.
func (m HistoryModel) View() string {
	muted := lipgloss.NewStyle().Foreground(m.theme.Muted)

	typeLabel := "Todos"
	if m.filter.Type != "" {
		typeLabel = m.filter.Type.DisplayName()
	}
	statusLabel := "Todos"
	if m.filter.Status != "" {
		statusLabel = string(m.filter.Status)
	}
	header := fmt.Sprintf("%s %s   %s %s   %s",
		m.theme.Bold.Render("Tipo:"), typeLabel,
		m.theme.Bold.Render("Status:"), statusLabel,
		muted.Render(fmt.Sprintf("(%d registros)", len(m.records))))

	if m.loading {
		return lipgloss.JoinVertical(lipgloss.Left, header, "", muted.Render("Carregando histórico..."))
	}
	if len(m.records) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, header, "", muted.Render("Nenhuma proposta encontrada."))
	}

	details := ""
	if idx := m.table.Cursor(); idx >= 0 && idx < len(m.records) {
		r := m.records[idx]
		details = muted.Render(fmt.Sprintf("Região: %s | Produto: %s | Status do produto: %s",
			r.Filters.Region, r.Filters.Product, r.Filters.Status))
		if amounts := recordAmounts(r.Filters); amounts != "" {
			details += "\n" + muted.Render(amounts)
		}
		if r.Filters.RejectionReasonID != "" {
			details += "\n" + m.theme.StatusError.Render(fmt.Sprintf("Motivo: %s - %s",
				r.Filters.RejectionReasonID, r.Filters.RejectionReasonDesc))
		}
	}

	help := muted.Render("[↑↓] Navegar | [t] Tipo | [s] Status | [r] Recarregar")
	return lipgloss.JoinVertical(lipgloss.Left, header, "", m.table.View(), "", details, help)
}

func recordAmounts(fd model.FilterData) string {
	var parts []string
	if v := decision.DisplayAmount(fd.AmountReleased); v != "" {
		parts = append(parts, "Valor liberado: "+v)
	}
	if v := decision.DisplayAmount(fd.Troco); v != "" {
		parts = append(parts, "Troco: "+v)
	}
	return strings.Join(parts, " | ")
}
