package tui

import (
	"context"
	"time"

	"github.com/Veraticus/proposal-desk/internal/common"
	"github.com/Veraticus/proposal-desk/internal/filters"
	"github.com/Veraticus/proposal-desk/internal/model"
	"github.com/Veraticus/proposal-desk/internal/service"
	"github.com/Veraticus/proposal-desk/internal/tui/components"
	tea "github.com/charmbracelet/bubbletea"
)

// Commands run off the update loop. They receive plain values captured in
// Update and never touch a controller.

func (m Model) callContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), m.config.CallTimeout)
}

// lookupNumber runs the duplicate check.
func (m Model) lookupNumber(typ model.ProposalType, number string) tea.Cmd {
	desk := m.desk
	return func() tea.Msg {
		ctx, cancel := m.callContext()
		defer cancel()
		return lookupDoneMsg{typ: typ, res: desk.Resolve(ctx, typ, number)}
	}
}

// loadFilter fetches the options for the stage after the one just chosen.
// stage is the stage whose value was chosen, or -1 for the initial regions.
// ticket comes from the controller's RequestFilter.
func (m Model) loadFilter(typ model.ProposalType, ticket uint64, stage filters.Stage, agreement, value string) tea.Cmd {
	loader := m.desk.Loader()
	return func() tea.Msg {
		ctx, cancel := m.callContext()
		defer cancel()

		var (
			ev  filters.Event
			err error
		)
		switch stage {
		case filters.StageRegion:
			ev, err = loader.RegionSelected(ctx, value)
		case filters.StageAgreement:
			ev, err = loader.AgreementSelected(ctx, value)
		case filters.StageProduct:
			ev, err = loader.ProductSelected(ctx, agreement, value)
		default:
			ev, err = loader.NumberCompleted(ctx)
		}
		if err != nil {
			common.LogError(err, "Catalog call failed", common.Fields{
				"type":  string(typ),
				"stage": stage.String(),
				"value": value,
			})
		}
		return filterLoadedMsg{typ: typ, ticket: ticket, stage: stage, event: ev, err: err}
	}
}

// conclude persists a submission.
func (m Model) conclude(sub model.Submission) tea.Cmd {
	desk := m.desk
	return func() tea.Msg {
		ctx, cancel := m.callContext()
		defer cancel()
		rec, err := desk.Persist(ctx, sub)
		if err != nil {
			common.LogError(err, "Failed to persist proposal", common.Fields{
				"number": sub.Number,
				"type":   string(sub.Type),
				"status": string(sub.Status),
			})
		}
		return concludedMsg{typ: sub.Type, status: sub.Status, record: rec, err: err}
	}
}

// loadHistory lists records for the history tab. Analysts without elevated
// profiles only see their own records.
func (m Model) loadHistory(filter components.HistoryFilter) tea.Cmd {
	desk := m.desk
	query := service.RecordFilter{
		Type:   filter.Type,
		Status: filter.Status,
		Limit:  m.config.HistoryLimit,
	}
	if !m.user.SeesAllAnalysts() {
		query.Analyst = m.user.Login
	}
	return func() tea.Msg {
		ctx, cancel := m.callContext()
		defer cancel()
		records, err := desk.History(ctx, query)
		return historyLoadedMsg{records: records, err: err}
	}
}

// secondTicker drives the elapsed-time display.
func secondTicker(typ model.ProposalType, generation uint64) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{typ: typ, generation: generation}
	})
}

func expireFlash(id int, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return flashExpiredMsg{id: id}
	})
}
