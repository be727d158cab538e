package filters

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filledChain(t *testing.T) Chain {
	t.Helper()
	c, err := Apply(New(), NumberCompleted{Regions: []string{"Sul", "Norte"}})
	require.NoError(t, err)
	c, err = Apply(c, RegionSelected{Region: "Sul", Agreements: []string{"GOV-RS", "PREF-POA"}})
	require.NoError(t, err)
	c, err = Apply(c, AgreementSelected{Agreement: "GOV-RS", Products: []string{"Consignado"}})
	require.NoError(t, err)
	c, err = Apply(c, ProductSelected{Product: "Consignado", Status: "Ativo"})
	require.NoError(t, err)
	return c
}

func TestApply_InitialChainIsDisabled(t *testing.T) {
	c := New()
	assert.False(t, c.Region.Enabled)
	assert.False(t, c.Agreement.Enabled)
	assert.False(t, c.Product.Enabled)
	assert.False(t, c.Complete())

	_, err := Apply(c, RegionSelected{Region: "Sul"})
	require.ErrorIs(t, err, ErrStageDisabled)
}

func TestApply_FullCascade(t *testing.T) {
	c := filledChain(t)

	assert.True(t, c.Complete())
	assert.Equal(t, "Sul", c.Region.Selected)
	assert.Equal(t, "GOV-RS", c.Agreement.Selected)
	assert.Equal(t, "Consignado", c.Product.Selected)
	assert.Equal(t, "Ativo", c.Status)
	assert.Equal(t, TonePositive, c.StatusTone)
}

func TestApply_RegionChangeClearsDownstream(t *testing.T) {
	c := filledChain(t)

	c, err := Apply(c, RegionSelected{Region: "Norte", Agreements: []string{"GOV-AM"}})
	require.NoError(t, err)

	assert.Equal(t, "Norte", c.Region.Selected)
	assert.Empty(t, c.Agreement.Selected)
	assert.Equal(t, []string{"GOV-AM"}, c.Agreement.Options)
	assert.True(t, c.Agreement.Enabled)
	assert.Empty(t, c.Product.Selected)
	assert.False(t, c.Product.Enabled)
	assert.Empty(t, c.Status)
	assert.Equal(t, ToneNeutral, c.StatusTone)
	assert.False(t, c.Complete())
}

func TestApply_AgreementChangeClearsProductAndStatus(t *testing.T) {
	c := filledChain(t)

	c, err := Apply(c, AgreementSelected{Agreement: "PREF-POA", Products: []string{"Cartão"}})
	require.NoError(t, err)

	assert.Equal(t, "Sul", c.Region.Selected)
	assert.Empty(t, c.Product.Selected)
	assert.True(t, c.Product.Enabled)
	assert.Empty(t, c.Status)
}

func TestApply_EmptySelectionClearsDownstream(t *testing.T) {
	c := filledChain(t)

	c, err := Apply(c, RegionSelected{})
	require.NoError(t, err)

	assert.True(t, c.Region.Enabled)
	assert.Empty(t, c.Region.Selected)
	assert.False(t, c.Agreement.Enabled)
	assert.False(t, c.Product.Enabled)
}

func TestApply_UnknownOption(t *testing.T) {
	c, err := Apply(New(), NumberCompleted{Regions: []string{"Sul"}})
	require.NoError(t, err)

	next, err := Apply(c, RegionSelected{Region: "Leste"})
	require.ErrorIs(t, err, ErrUnknownOption)
	assert.Equal(t, c, next, "chain must be unchanged on error")
}

func TestApply_InvalidationAndReset(t *testing.T) {
	for _, ev := range []Event{NumberInvalidated{}, Reset{}} {
		c, err := Apply(filledChain(t), ev)
		require.NoError(t, err)
		assert.Equal(t, New(), c)
	}
}

func TestApply_MissingStatus(t *testing.T) {
	c := filledChain(t)
	c, err := Apply(c, ProductSelected{Product: "Consignado"})
	require.NoError(t, err)
	assert.Equal(t, StatusNotInformed, c.Status)
	assert.Equal(t, ToneNeutral, c.StatusTone)
	assert.True(t, c.Complete())
}

func TestApply_OptionsAreCopied(t *testing.T) {
	regions := []string{"Sul"}
	c, err := Apply(New(), NumberCompleted{Regions: regions})
	require.NoError(t, err)
	regions[0] = "changed"
	assert.Equal(t, "Sul", c.Region.Options[0])
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status string
		want   Tone
	}{
		{"Ativo", TonePositive},
		{"DISPONÍVEL", TonePositive},
		{"Liberado para operação", TonePositive},
		{"Inativo", ToneNegative},
		{"Indisponível", ToneNegative},
		{"Bloqueado judicialmente", ToneNegative},
		{"Em análise", ToneNeutral},
		{"", ToneNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyStatus(tt.status))
		})
	}
}

type mockCatalog struct {
	err   error
	calls []string
	mu    sync.Mutex
}

func (m *mockCatalog) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *mockCatalog) Regions(_ context.Context) ([]string, error) {
	m.record("regions")
	return []string{"Sul"}, m.err
}

func (m *mockCatalog) Agreements(_ context.Context, region string) ([]string, error) {
	m.record("agreements:" + region)
	return []string{"GOV-RS"}, m.err
}

func (m *mockCatalog) Products(_ context.Context, agreement string) ([]string, error) {
	m.record("products:" + agreement)
	return []string{"Consignado"}, m.err
}

func (m *mockCatalog) Status(_ context.Context, agreement, product string) (string, error) {
	m.record("status:" + agreement + "/" + product)
	return "Ativo", m.err
}

func TestLoader_DrivesChain(t *testing.T) {
	ctx := context.Background()
	cat := &mockCatalog{}
	l := NewLoader(cat)

	c := New()
	steps := []func() (Event, error){
		func() (Event, error) { return l.NumberCompleted(ctx) },
		func() (Event, error) { return l.RegionSelected(ctx, "Sul") },
		func() (Event, error) { return l.AgreementSelected(ctx, "GOV-RS") },
		func() (Event, error) { return l.ProductSelected(ctx, "GOV-RS", "Consignado") },
	}
	for _, step := range steps {
		ev, err := step()
		require.NoError(t, err)
		c, err = Apply(c, ev)
		require.NoError(t, err)
	}

	assert.True(t, c.Complete())
	assert.Equal(t, []string{"regions", "agreements:Sul", "products:GOV-RS", "status:GOV-RS/Consignado"}, cat.calls)
}

func TestLoader_EmptySelectionSkipsCatalog(t *testing.T) {
	cat := &mockCatalog{}
	l := NewLoader(cat)

	ev, err := l.RegionSelected(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, RegionSelected{}, ev)
	assert.Empty(t, cat.calls)
}

func TestLoader_PropagatesErrors(t *testing.T) {
	boom := errors.New("sheet unavailable")
	l := NewLoader(&mockCatalog{err: boom})

	_, err := l.NumberCompleted(context.Background())
	require.ErrorIs(t, err, boom)
	_, err = l.ProductSelected(context.Background(), "GOV-RS", "Consignado")
	require.ErrorIs(t, err, boom)
}
