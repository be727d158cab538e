package tui

import (
	"github.com/Veraticus/proposal-desk/internal/filters"
	"github.com/Veraticus/proposal-desk/internal/model"
	"github.com/Veraticus/proposal-desk/internal/workflow"
)

// Results of background calls. Every message carries the proposal type it
// belongs to. Catalog answers carry the ticket of their request so answers
// superseded by a newer selection or a clear are dropped.
type lookupDoneMsg struct {
	typ model.ProposalType
	res workflow.Resolution
}

type filterLoadedMsg struct {
	err    error
	event  filters.Event
	typ    model.ProposalType
	ticket uint64
	stage  filters.Stage
}

type concludedMsg struct {
	err    error
	record *model.Record
	typ    model.ProposalType
	status model.Status
}

type historyLoadedMsg struct {
	err     error
	records []model.Record
}

// Timer messages.
type tickMsg struct {
	typ        model.ProposalType
	generation uint64
}

type flashExpiredMsg struct {
	id int
}
