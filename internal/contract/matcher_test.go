package contract

import (
	"testing"

	"github.com/Veraticus/proposal-desk/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcher_Match(t *testing.T) {
	m := MustDefaultMatcher()

	tests := []struct {
		name string
		raw  string
		typ  model.ProposalType
		want Validity
	}{
		{name: "empty is untouched", raw: "", typ: model.TypeSaqueFacil, want: Untouched},
		{name: "whitespace is untouched", raw: "   ", typ: model.TypeRefin, want: Untouched},
		{name: "standard shape", raw: "50-12345678900", typ: model.TypeSaqueFacil, want: Complete},
		{name: "standard shape with spaces", raw: " 50-12345678900 ", typ: model.TypeRefin, want: Complete},
		{name: "one digit short", raw: "50-1234567890", typ: model.TypeSaqueFacil, want: Incomplete},
		{name: "one digit long", raw: "50-123456789000", typ: model.TypeSaqueDirecionado, want: Incomplete},
		{name: "prefix too long", raw: "500-12345678900", typ: model.TypeRefin, want: Incomplete},
		{name: "missing hyphen", raw: "5012345678900", typ: model.TypeSaqueFacil, want: Incomplete},
		{name: "letter prefix rejected for loan types", raw: "A00-12345678900", typ: model.TypeSaqueFacil, want: Incomplete},
		{name: "letters in body", raw: "50-1234567890A", typ: model.TypeRefin, want: Incomplete},
		{name: "internal standard shape", raw: "50-12345678900", typ: model.TypeSolicitacaoInterna, want: Complete},
		{name: "internal ten digits", raw: "50-1234567890", typ: model.TypeSolicitacaoInterna, want: Complete},
		{name: "internal letter ten digits", raw: "A00-1234567890", typ: model.TypeSolicitacaoInterna, want: Complete},
		{name: "internal letter eleven digits", raw: "b12-12345678901", typ: model.TypeSolicitacaoInterna, want: Complete},
		{name: "internal letter twelve digits", raw: "A00-123456789012", typ: model.TypeSolicitacaoInterna, want: Incomplete},
		{name: "internal grouped", raw: "AB12CD34-EF56-7", typ: model.TypeSolicitacaoInterna, want: Complete},
		{name: "internal grouped short", raw: "AB12CD3-EF56-7", typ: model.TypeSolicitacaoInterna, want: Incomplete},
		{name: "internal grouped trailing", raw: "AB12CD34-EF56-78", typ: model.TypeSolicitacaoInterna, want: Incomplete},
		{name: "internal nine digits", raw: "50-123456789", typ: model.TypeSolicitacaoInterna, want: Incomplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Match(tt.raw, tt.typ)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want == Complete, m.IsComplete(tt.raw, tt.typ))
		})
	}
}

func TestNewMatcher_Errors(t *testing.T) {
	t.Run("missing type", func(t *testing.T) {
		patterns := DefaultPatterns()
		delete(patterns, model.TypeRefin)
		_, err := NewMatcher(patterns)
		require.ErrorIs(t, err, ErrNoPatterns)
	})

	t.Run("bad regex", func(t *testing.T) {
		patterns := DefaultPatterns().Merge(Patterns{
			model.TypeRefin: {{Expr: `^(\d{2}-\d{11}$`}},
		})
		_, err := NewMatcher(patterns)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "refin")
	})
}

func TestPatterns_MergeAnchorsOverrides(t *testing.T) {
	patterns := DefaultPatterns().Merge(Patterns{
		model.TypeSaqueFacil: {{Expr: `\d{3}-\d{4}`, Example: "123-4567"}},
	})
	m, err := NewMatcher(patterns)
	require.NoError(t, err)

	assert.True(t, m.IsComplete("123-4567", model.TypeSaqueFacil))
	assert.False(t, m.IsComplete("x123-4567", model.TypeSaqueFacil), "override must match the whole string")
	assert.False(t, m.IsComplete("50-12345678900", model.TypeSaqueFacil))
	assert.True(t, m.IsComplete("50-12345678900", model.TypeRefin), "other types keep defaults")

	// The source table is not mutated by Merge.
	assert.Len(t, DefaultPatterns()[model.TypeSaqueFacil], 1)
}

func TestMatcher_InvalidNumberMessage(t *testing.T) {
	m := MustDefaultMatcher()
	msg := m.InvalidNumberMessage(model.TypeSolicitacaoInterna)
	assert.Contains(t, msg, "A00-1234567890")
	assert.Contains(t, msg, "50-12345678900")
	assert.Len(t, m.Examples(model.TypeRefin), 1)
}

func TestValidity_String(t *testing.T) {
	assert.Equal(t, "untouched", Untouched.String())
	assert.Equal(t, "incomplete", Incomplete.String())
	assert.Equal(t, "complete", Complete.String())
}
