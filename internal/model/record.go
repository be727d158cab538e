package model

import "time"

// Currency and term units stored with every record.
const (
	CurrencyBRL = "R$"
	TermUnit    = "Meses"
)

// FilterData is the filter/extra-field sub-object persisted with every record.
type FilterData struct {
	Region              string `json:"regiao" dynamodbav:"regiao"`
	Agreement           string `json:"convenio" dynamodbav:"convenio"`
	Product             string `json:"produto" dynamodbav:"produto"`
	Status              string `json:"status" dynamodbav:"status"`
	CPF                 string `json:"cpf" dynamodbav:"cpf"`
	AmountReleased      string `json:"valor_liberado" dynamodbav:"valor_liberado"`
	Currency            string `json:"moeda" dynamodbav:"moeda"`
	Term                string `json:"prazo" dynamodbav:"prazo"`
	TermUnit            string `json:"unidade_prazo" dynamodbav:"unidade_prazo"`
	Notes               string `json:"observacoes" dynamodbav:"observacoes"`
	Troco               string `json:"valor_troco,omitempty" dynamodbav:"valor_troco,omitempty"`
	TrocoCurrency       string `json:"moeda_troco,omitempty" dynamodbav:"moeda_troco,omitempty"`
	RejectionReasonID   string `json:"motivo_recusa_id,omitempty" dynamodbav:"motivo_recusa_id,omitempty"`
	RejectionReasonDesc string `json:"motivo_recusa_descricao,omitempty" dynamodbav:"motivo_recusa_descricao,omitempty"`
	RejectionType       string `json:"tipo_recusa,omitempty" dynamodbav:"tipo_recusa,omitempty"`
}

// Record is a concluded proposal as persisted.
type Record struct {
	CreatedAt   time.Time
	ConcludedAt time.Time
	Timestamp   time.Time
	Checklist   map[string]bool
	ID          string
	Number      string
	Analyst     string
	TypeLabel   string
	Duration    string
	Status      Status
	Type        ProposalType
	Filters     FilterData
}

// IsReanalysis reports whether the record was stored as a reanalysis.
func (r Record) IsReanalysis() bool {
	_, reanalysis, _ := TypeFromStoredLabel(r.TypeLabel)
	return reanalysis
}

// Submission is everything the store needs to create and finalize a record.
type Submission struct {
	CreatedAt   time.Time
	ConcludedAt time.Time
	Checklist   map[string]bool
	Number      string
	Analyst     string
	Duration    string
	Status      Status
	Type        ProposalType
	Reanalysis  bool
	Filters     FilterData
}

// TypeLabel returns the stored type label for the submission.
func (s Submission) TypeLabel() string {
	return s.Type.StoredLabel(s.Reanalysis)
}

// NewFilterData builds the persisted filter sub-object for a proposal.
// Troco fields are only written for types that require troco, and rejection
// fields only when a reason is present.
func NewFilterData(t ProposalType, f FilterSelection, e ExtraFields, reason *RejectionReason) FilterData {
	fd := FilterData{
		Region:         f.Region,
		Agreement:      f.Agreement,
		Product:        f.Product,
		Status:         f.ProductStatus,
		CPF:            e.CPF,
		AmountReleased: e.AmountReleased,
		Currency:       CurrencyBRL,
		Term:           e.TermMonths,
		TermUnit:       TermUnit,
		Notes:          e.Notes,
	}
	if t.RequiresTroco() {
		fd.Troco = e.TrocoAmount
		fd.TrocoCurrency = CurrencyBRL
	}
	if reason != nil {
		fd.RejectionReasonID = reason.Code
		fd.RejectionReasonDesc = reason.Description
		fd.RejectionType = reason.Label()
	}
	return fd
}
