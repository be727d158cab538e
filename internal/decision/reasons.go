package decision

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/proposal-desk/internal/model"
)

// ErrUnknownReason is returned for a code outside the rejection taxonomy.
var ErrUnknownReason = errors.New("unknown rejection reason")

var reasons = []model.RejectionReason{
	{Code: "101", Description: "MARGEM"},
	{Code: "102", Description: "VÍNCULO/CATEGORIA"},
	{Code: "103", Description: "POLÍTICA DE IDADE"},
	{Code: "104", Description: "ÓRGÃO"},
	{Code: "105", Description: "EMPREGADOR"},
	{Code: "106", Description: "MATRÍCULA"},
	{Code: "107", Description: "SERVIDOR NÃO LOCALIZADO"},
	{Code: "108", Description: "CONTRATO EM ATRASO FUNÇÃO"},
	{Code: "109", Description: "LIBERAR DADOS FUNCIONAIS"},
	{Code: "110", Description: "CARGO"},
	{Code: "111", Description: "PROBLEMAS NA AVERBAÇÃO"},
	{Code: "112", Description: "PORTAL INDISPONÍVEL"},
	{Code: "113", Description: "TROCA DE PROCESSADORA"},
	{Code: "114", Description: "VALIDAÇÃO DE VÍNCULO"},
	{Code: "115", Description: "VALIDAÇÃO DE ÓRGÃO"},
	{Code: "116", Description: "AGUARDANDO ANUÊNCIA"},
	{Code: "117", Description: "NOME DIVERGENTE"},
	{Code: "118", Description: "SITUAÇÃO CPF IRREGULAR"},
	{Code: "119", Description: "DATA DE NASCIMENTO INCORRETA"},
	{Code: "120", Description: "IDADE X PRAZO"},
	{Code: "121", Description: "ATRELADO A OUTRA CONSIGNATÁRIA"},
	{Code: "122", Description: "REFIN CONTEMPLAR CONTRATOS EM ABERTOS"},
	{Code: "123", Description: "REFIN PARCELAS BAIXADAS"},
	{Code: "124", Description: "TEMPO MINÍMO DE VÍNCULO"},
	{Code: "125", Description: "VALOR DA OPERAÇÃO MAIOR DO QUE O PERMITIDO"},
}

// Reasons returns the rejection taxonomy in code order.
func Reasons() []model.RejectionReason {
	return append([]model.RejectionReason(nil), reasons...)
}

// LookupReason finds a reason by code.
func LookupReason(code string) (model.RejectionReason, error) {
	code = strings.TrimSpace(code)
	for _, r := range reasons {
		if r.Code == code {
			return r, nil
		}
	}
	return model.RejectionReason{}, fmt.Errorf("%w: %q", ErrUnknownReason, code)
}

// ConfirmRejectText is the confirmation prompt shown before a rejection is submitted.
func ConfirmRejectText(r model.RejectionReason) string {
	return "Tem certeza que deseja recusar a proposta?\n\nMotivo: " + r.Label()
}
