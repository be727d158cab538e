package decision

import (
	"errors"
	"testing"

	"github.com/Veraticus/proposal-desk/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fullFilters = model.FilterSelection{
	Region:        "Sul",
	Agreement:     "GOV-RS",
	Product:       "Consignado",
	ProductStatus: "Ativo",
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name        string
		in          Input
		wantApprove bool
		wantReject  bool
	}{
		{
			name:        "all satisfied",
			in:          Input{Type: model.TypeSaqueFacil, Filters: fullFilters, ChecklistComplete: true},
			wantApprove: true,
			wantReject:  true,
		},
		{
			name:       "checklist incomplete allows reject only",
			in:         Input{Type: model.TypeSaqueFacil, Filters: fullFilters},
			wantReject: true,
		},
		{
			name: "missing product blocks both",
			in: Input{Type: model.TypeSaqueFacil, ChecklistComplete: true,
				Filters: model.FilterSelection{Region: "Sul", Agreement: "GOV-RS"}},
		},
		{
			name: "refin without troco blocks both",
			in:   Input{Type: model.TypeRefin, Filters: fullFilters, ChecklistComplete: true},
		},
		{
			name: "refin with zero troco blocks both",
			in:   Input{Type: model.TypeRefin, Filters: fullFilters, ChecklistComplete: true, Troco: "0,00"},
		},
		{
			name:        "refin with troco",
			in:          Input{Type: model.TypeRefin, Filters: fullFilters, ChecklistComplete: true, Troco: "1.250,00"},
			wantApprove: true,
			wantReject:  true,
		},
		{
			name:       "internal request with troco and open checklist",
			in:         Input{Type: model.TypeSolicitacaoInterna, Filters: fullFilters, Troco: "10"},
			wantReject: true,
		},
		{
			name:        "troco ignored for saque direcionado",
			in:          Input{Type: model.TypeSaqueDirecionado, Filters: fullFilters, ChecklistComplete: true, Troco: "abc"},
			wantApprove: true,
			wantReject:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Evaluate(tt.in)
			assert.Equal(t, tt.wantApprove, g.ApproveEnabled)
			assert.Equal(t, tt.wantReject, g.RejectEnabled)
			if g.ApproveEnabled {
				assert.True(t, g.RejectEnabled, "approve must imply reject")
			}
		})
	}
}

func TestMissingFields(t *testing.T) {
	in := Input{Type: model.TypeRefin, Filters: model.FilterSelection{Region: "Sul"}}
	assert.Equal(t, []Field{FieldAgreement, FieldProduct, FieldTroco}, MissingFields(in))

	in = Input{Type: model.TypeSaqueFacil}
	assert.Equal(t, []Field{FieldRegion, FieldAgreement, FieldProduct}, MissingFields(in))

	in = Input{Type: model.TypeSaqueFacil, Filters: fullFilters}
	assert.Empty(t, MissingFields(in))
}

func TestCheck(t *testing.T) {
	err := Check(Input{Type: model.TypeRefin}, false)
	require.ErrorIs(t, err, ErrMissingFields)

	var mfe *MissingFieldsError
	require.True(t, errors.As(err, &mfe))
	assert.Equal(t,
		"Preencha todos os filtros obrigatórios:\n• Região\n• Convênio\n• Produto\n• Valor de Troco",
		mfe.Error())

	err = Check(Input{Type: model.TypeSaqueFacil, Filters: fullFilters}, true)
	require.ErrorIs(t, err, ErrChecklistIncomplete)

	require.NoError(t, Check(Input{Type: model.TypeSaqueFacil, Filters: fullFilters}, false))
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "1.234,56", want: "1234.56"},
		{raw: "R$ 10,00", want: "10"},
		{raw: "0,00", want: "0"},
		{raw: "350", want: "350"},
		{raw: "", wantErr: true},
		{raw: "   ", wantErr: true},
		{raw: "1,2,3", wantErr: true},
		{raw: "dez", wantErr: true},
		{raw: "-5,00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseAmount(tt.raw)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestTrocoSatisfied(t *testing.T) {
	assert.True(t, TrocoSatisfied(model.TypeSaqueFacil, ""))
	assert.False(t, TrocoSatisfied(model.TypeRefin, ""))
	assert.False(t, TrocoSatisfied(model.TypeRefin, " "))
	assert.False(t, TrocoSatisfied(model.TypeRefin, "0,00"))
	assert.True(t, TrocoSatisfied(model.TypeRefin, "0,01"))
	assert.True(t, TrocoSatisfied(model.TypeSolicitacaoInterna, "12,50"))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1.234.567,80", FormatAmount(decimal.RequireFromString("1234567.8")))
	assert.Equal(t, "0,00", FormatAmount(decimal.Zero))
	assert.Equal(t, "999,99", FormatAmount(decimal.RequireFromString("999.99")))
}

func TestDisplayAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "  ", want: ""},
		{in: "1500,75", want: "R$ 1.500,75"},
		{in: "R$ 320,1", want: "R$ 320,10"},
		{in: "12.000", want: "R$ 12.000,00"},
		{in: "abc", want: "abc"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DisplayAmount(tt.in), tt.in)
	}
}

func TestSanitizeAmountInput(t *testing.T) {
	assert.Equal(t, "1234,56", SanitizeAmountInput("R$ 1.234,567"))
	assert.Equal(t, "10,50", SanitizeAmountInput("10,5,0"))
	assert.Equal(t, "", SanitizeAmountInput("abc"))
}

func TestReasons(t *testing.T) {
	all := Reasons()
	require.Len(t, all, 25)
	assert.Equal(t, "101", all[0].Code)
	assert.Equal(t, "125", all[24].Code)

	r, err := LookupReason("117")
	require.NoError(t, err)
	assert.Equal(t, "NOME DIVERGENTE", r.Description)
	assert.Equal(t,
		"Tem certeza que deseja recusar a proposta?\n\nMotivo: 117 - NOME DIVERGENTE",
		ConfirmRejectText(r))

	_, err = LookupReason("999")
	require.ErrorIs(t, err, ErrUnknownReason)
}
