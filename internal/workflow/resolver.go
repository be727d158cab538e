package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/proposal-desk/internal/common"
	"github.com/Veraticus/proposal-desk/internal/model"
	"github.com/Veraticus/proposal-desk/internal/service"
)

// Labels of the three duplicate-prompt choices.
const (
	ChoiceReanalyze       = "Sim, Fazer Reanálise"
	ChoiceDifferentNumber = "Não, Digitar Outra"
	ChoiceCancel          = "Cancelar"
)

// Resolution is the result of a duplicate lookup.
type Resolution struct {
	Existing     *model.Record
	Err          error
	Number       string
	Type         model.ProposalType
	Skipped      bool
	LookupFailed bool
}

// Resolver looks a completed number up in the store.
type Resolver struct {
	store service.ProposalStore
}

// NewResolver creates a resolver over store.
func NewResolver(store service.ProposalStore) *Resolver {
	return &Resolver{store: store}
}

// Check searches every logical store for number. Types without duplicate checks
// are skipped. A failed lookup is logged and reported as no duplicate so the
// analyst can proceed.
func (r *Resolver) Check(ctx context.Context, t model.ProposalType, number string) Resolution {
	res := Resolution{Type: t, Number: strings.TrimSpace(number)}
	if !t.ChecksDuplicates() || r.store == nil {
		res.Skipped = true
		return res
	}

	existing, err := r.store.FindByNumber(ctx, res.Number)
	if err != nil {
		common.LogError(err, "Duplicate lookup failed, proceeding as a new proposal", common.Fields{
			"number": res.Number,
			"type":   string(t),
		})
		res.LookupFailed = true
		res.Err = err
		return res
	}
	res.Existing = existing
	return res
}

// DuplicatePrompt is the question shown when number was already analysed.
func DuplicatePrompt(existing *model.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A proposta %s já foi analisada anteriormente.\n\n", existing.Number)
	b.WriteString(PreviousAnalysisSummary(existing))
	b.WriteString("\n\nDeseja fazer uma reanálise?")
	return b.String()
}

// PreviousAnalysisSummary describes the earlier analysis of a record.
func PreviousAnalysisSummary(r *model.Record) string {
	lines := []string{
		"Tipo: " + r.TypeLabel,
		"Analista: " + r.Analyst,
		"Status: " + string(r.Status),
		"Criada em: " + formatTimestamp(r.CreatedAt),
		"Concluída em: " + formatTimestamp(r.ConcludedAt),
		"Duração: " + r.Duration,
	}
	return strings.Join(lines, "\n")
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("02/01/2006 15:04:05")
}
