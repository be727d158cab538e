// Package model defines the core domain models used throughout the application.
package model

import (
	"fmt"
	"strings"
	"time"
)

// ProposalType selects the number patterns, checklist and mandatory fields of a proposal.
type ProposalType string

// Proposal types, one per desk tab.
const (
	TypeSaqueFacil         ProposalType = "saque_facil"
	TypeRefin              ProposalType = "refin"
	TypeSaqueDirecionado   ProposalType = "saque_direcionado"
	TypeSolicitacaoInterna ProposalType = "solicitacao_interna"
)

// ReanalysisSuffix is appended to the stored type label of a reanalysed proposal.
const ReanalysisSuffix = " - Reanalise"

// AllProposalTypes returns the proposal types in tab order.
func AllProposalTypes() []ProposalType {
	return []ProposalType{
		TypeSaqueFacil,
		TypeRefin,
		TypeSaqueDirecionado,
		TypeSolicitacaoInterna,
	}
}

// DisplayName returns the label analysts see on the tab.
func (t ProposalType) DisplayName() string {
	switch t {
	case TypeSaqueFacil:
		return "Saque Fácil"
	case TypeRefin:
		return "Refin"
	case TypeSaqueDirecionado:
		return "Saque Direcionado"
	case TypeSolicitacaoInterna:
		return "Solicitação Interna"
	}
	return string(t)
}

// StoreName returns the logical store (collection/table) holding records of this type.
func (t ProposalType) StoreName() string {
	switch t {
	case TypeSaqueFacil:
		return "tarefas1_saquefacil"
	case TypeRefin:
		return "tarefas2_refin"
	case TypeSaqueDirecionado:
		return "tarefas3_saquedirecionado"
	case TypeSolicitacaoInterna:
		return "tarefas4_solicitacao_interna"
	}
	return ""
}

// RequiresTroco reports whether a non-zero troco amount is mandatory before conclusion.
func (t ProposalType) RequiresTroco() bool {
	return t == TypeRefin || t == TypeSolicitacaoInterna
}

// ChecksDuplicates reports whether a completed number is looked up in the store.
func (t ProposalType) ChecksDuplicates() bool {
	return t != TypeSolicitacaoInterna
}

// IsValid reports whether t is one of the known proposal types.
func (t ProposalType) IsValid() bool {
	for _, known := range AllProposalTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// StoredLabel returns the type label written to the store.
// SolicitacaoInterna is never labelled as a reanalysis.
func (t ProposalType) StoredLabel(reanalysis bool) string {
	if reanalysis && t != TypeSolicitacaoInterna {
		return t.DisplayName() + ReanalysisSuffix
	}
	return t.DisplayName()
}

// ParseProposalType accepts either the identifier or the display name of a type.
func ParseProposalType(s string) (ProposalType, error) {
	s = strings.TrimSpace(s)
	for _, t := range AllProposalTypes() {
		if strings.EqualFold(s, string(t)) || s == t.DisplayName() {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown proposal type %q", s)
}

// TypeFromStoredLabel maps a stored label (possibly with the reanalysis suffix) back to its type.
func TypeFromStoredLabel(label string) (ProposalType, bool, error) {
	reanalysis := strings.HasSuffix(label, ReanalysisSuffix)
	t, err := ParseProposalType(strings.TrimSuffix(label, ReanalysisSuffix))
	return t, reanalysis, err
}

// Status is the review outcome of a proposal.
type Status string

// Proposal status values as stored.
const (
	StatusPending  Status = "Pendente"
	StatusApproved Status = "Aprovada"
	StatusRejected Status = "Recusada"
)

// IsConcluded reports whether the status is a final review outcome.
func (s Status) IsConcluded() bool {
	return s == StatusApproved || s == StatusRejected
}

// FilterSelection holds the four eligibility filters.
type FilterSelection struct {
	Region        string
	Agreement     string
	Product       string
	ProductStatus string
}

// Complete reports whether all four filters are populated.
func (f FilterSelection) Complete() bool {
	return f.Region != "" && f.Agreement != "" && f.Product != "" && f.ProductStatus != ""
}

// ExtraFields are the free-form fields typed alongside the filters.
type ExtraFields struct {
	CPF            string
	AmountReleased string
	TermMonths     string
	Notes          string
	TrocoAmount    string
}

// RejectionReason is one entry of the fixed rejection taxonomy.
type RejectionReason struct {
	Code        string
	Description string
}

// Label renders the reason the way it is echoed back and stored.
func (r RejectionReason) Label() string {
	return r.Code + " - " + r.Description
}

// Proposal is the in-memory unit under review. It is persisted only at conclusion.
type Proposal struct {
	CreatedAt       time.Time
	ConcludedAt     *time.Time
	RejectionReason *RejectionReason
	Checklist       map[string]bool
	Number          string
	Analyst         string
	Duration        string
	Type            ProposalType
	Status          Status
	Filters         FilterSelection
	Extra           ExtraFields
	IsReanalysis    bool
}

// StoredType returns the type label written to the store.
func (p Proposal) StoredType() string {
	return p.Type.StoredLabel(p.IsReanalysis)
}
