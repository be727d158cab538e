// Package decision evaluates whether a proposal may be approved or rejected.
//
// Every function here is pure: the gate is recomputed from scratch after each
// mutation of the proposal, so no enablement state is stored.
package decision

import (
	"errors"
	"strings"

	"github.com/Veraticus/proposal-desk/internal/model"
)

// Errors returned by Check.
var (
	ErrMissingFields       = errors.New("mandatory fields missing")
	ErrChecklistIncomplete = errors.New("checklist incomplete")
)

// Field is a mandatory input that can block a decision.
type Field int

// Mandatory fields in the order they are reported.
const (
	FieldRegion Field = iota
	FieldAgreement
	FieldProduct
	FieldStatus
	FieldTroco
)

func (f Field) String() string {
	switch f {
	case FieldRegion:
		return "Região"
	case FieldAgreement:
		return "Convênio"
	case FieldProduct:
		return "Produto"
	case FieldStatus:
		return "Status"
	case FieldTroco:
		return "Valor de Troco"
	}
	return "?"
}

// Input is everything the gate looks at.
type Input struct {
	Type              model.ProposalType
	Troco             string
	Filters           model.FilterSelection
	ChecklistComplete bool
}

// Gate is the enablement of the two decision actions.
type Gate struct {
	ApproveEnabled bool
	RejectEnabled  bool
}

// Evaluate computes the gate. Approve implies reject.
func Evaluate(in Input) Gate {
	ready := in.Filters.Complete() && TrocoSatisfied(in.Type, in.Troco)
	return Gate{
		ApproveEnabled: ready && in.ChecklistComplete,
		RejectEnabled:  ready,
	}
}

// MissingFields lists the mandatory fields that are not filled.
func MissingFields(in Input) []Field {
	var missing []Field
	if in.Filters.Region == "" {
		missing = append(missing, FieldRegion)
	}
	if in.Filters.Agreement == "" {
		missing = append(missing, FieldAgreement)
	}
	if in.Filters.Product == "" {
		missing = append(missing, FieldProduct)
	} else if in.Filters.ProductStatus == "" {
		missing = append(missing, FieldStatus)
	}
	if !TrocoSatisfied(in.Type, in.Troco) {
		missing = append(missing, FieldTroco)
	}
	return missing
}

// MissingFieldsError carries the fields that blocked a decision.
type MissingFieldsError struct {
	Fields []Field
}

func (e *MissingFieldsError) Error() string {
	var b strings.Builder
	b.WriteString("Preencha todos os filtros obrigatórios:")
	for _, f := range e.Fields {
		b.WriteString("\n• ")
		b.WriteString(f.String())
	}
	return b.String()
}

// Is makes errors.Is(err, ErrMissingFields) hold.
func (e *MissingFieldsError) Is(target error) bool {
	return target == ErrMissingFields
}

// Check re-validates the input before a decision is submitted.
func Check(in Input, approve bool) error {
	if missing := MissingFields(in); len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}
	if approve && !in.ChecklistComplete {
		return ErrChecklistIncomplete
	}
	return nil
}
