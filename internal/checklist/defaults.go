package checklist

import (
	"fmt"

	"github.com/Veraticus/proposal-desk/internal/model"
)

// Bounds on the number of items a checklist may carry.
const (
	MinItems = 8
	MaxItems = 22
)

// Item is one named checklist task.
type Item struct {
	Key   string `yaml:"key"`
	Label string `yaml:"label"`
}

// Definitions maps each proposal type to its ordered checklist.
type Definitions map[model.ProposalType][]Item

func numbered(labels ...string) []Item {
	items := make([]Item, len(labels))
	for i, label := range labels {
		items[i] = Item{Key: fmt.Sprintf("tarefa_%d", i+1), Label: label}
	}
	return items
}

// DefaultDefinitions returns the built-in checklists.
func DefaultDefinitions() Definitions {
	return Definitions{
		model.TypeSaqueFacil: numbered(
			"Verificar elegibilidade do cliente",
			"Confirmar documentação completa",
			"Validar score de crédito",
			"Analisar histórico bancário",
			"Verificar limite disponível",
			"Confirmar taxa de juros",
			"Validar prazo de pagamento",
			"Emitir contrato digital",
		),
		model.TypeRefin: numbered(
			"Analisar proposta atual",
			"Verificar histórico de pagamentos",
			"Calcular nova taxa de juros",
			"Validar documentação para refin",
			"Simular novas condições",
			"Verificar elegibilidade para melhoria",
			"Confirmar redução de parcelas",
			"Emitir nova proposta",
		),
		model.TypeSaqueDirecionado: numbered(
			"Identificar finalidade do saque",
			"Validar destino dos recursos",
			"Verificar documentação específica",
			"Analisar compatibilidade com produto",
			"Confirmar limites setoriais",
			"Validar restrições legais",
			"Verificar aprovação prévia",
			"Emitir autorização direcionada",
		),
		// Placeholder items: internal requests have no upstream checklist, so
		// each deployment replaces this list through the workflow definitions file.
		model.TypeSolicitacaoInterna: numbered(
			"Identificar área solicitante",
			"Confirmar motivo da solicitação",
			"Localizar contrato vinculado",
			"Validar dados cadastrais do cliente",
			"Conferir documentação anexada",
			"Verificar alçada de aprovação",
			"Validar valor de troco",
			"Registrar parecer da análise",
			"Comunicar área responsável",
			"Encerrar solicitação no sistema",
		),
	}
}

// Merge returns a copy of d with the types present in overrides replaced.
func (d Definitions) Merge(overrides Definitions) Definitions {
	out := make(Definitions, len(d))
	for t, items := range d {
		out[t] = append([]Item(nil), items...)
	}
	for t, items := range overrides {
		if len(items) > 0 {
			out[t] = append([]Item(nil), items...)
		}
	}
	return out
}

// Validate checks that every known type has a well-formed checklist.
func (d Definitions) Validate() error {
	for _, t := range model.AllProposalTypes() {
		items := d[t]
		if len(items) < MinItems || len(items) > MaxItems {
			return fmt.Errorf("%w: %s has %d items, want %d-%d", ErrInvalidDefinition, t, len(items), MinItems, MaxItems)
		}
		seen := make(map[string]bool, len(items))
		for i, item := range items {
			if item.Key == "" || item.Label == "" {
				return fmt.Errorf("%w: %s item %d needs a key and a label", ErrInvalidDefinition, t, i+1)
			}
			if seen[item.Key] {
				return fmt.Errorf("%w: %s repeats key %q", ErrInvalidDefinition, t, item.Key)
			}
			seen[item.Key] = true
		}
	}
	return nil
}
