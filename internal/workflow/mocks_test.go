package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/Veraticus/proposal-desk/internal/model"
	"github.com/Veraticus/proposal-desk/internal/service"
)

type mockStore struct {
	existing  map[string]*model.Record
	findErr   error
	createErr error
	created   []model.Submission
	mu        sync.Mutex
}

func newMockStore() *mockStore {
	return &mockStore{existing: make(map[string]*model.Record)}
}

func (m *mockStore) CreateAndFinalize(_ context.Context, sub model.Submission) (*model.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created = append(m.created, sub)
	rec := &model.Record{
		ID:          "rec-1",
		Number:      sub.Number,
		Analyst:     sub.Analyst,
		TypeLabel:   sub.TypeLabel(),
		Type:        sub.Type,
		Status:      sub.Status,
		Checklist:   sub.Checklist,
		CreatedAt:   sub.CreatedAt,
		ConcludedAt: sub.ConcludedAt,
		Duration:    sub.Duration,
		Filters:     sub.Filters,
	}
	m.existing[sub.Number] = rec
	return rec, nil
}

func (m *mockStore) FindByNumber(_ context.Context, number string) (*model.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.existing[number], nil
}

func (m *mockStore) ListByAnalyst(_ context.Context, _ string) ([]model.Record, error) {
	return nil, nil
}

func (m *mockStore) ListByDateRange(_ context.Context, _, _ time.Time) ([]model.Record, error) {
	return nil, nil
}

func (m *mockStore) ListWithFilters(_ context.Context, _ service.RecordFilter) ([]model.Record, error) {
	return nil, nil
}

func (m *mockStore) Close() error { return nil }

func (m *mockStore) createdCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.created)
}

type mockCatalog struct{}

func (mockCatalog) Regions(_ context.Context) ([]string, error) {
	return []string{"Norte", "Sul"}, nil
}

func (mockCatalog) Agreements(_ context.Context, region string) ([]string, error) {
	if region == "Norte" {
		return []string{"GOV-AM", "GOV-PA"}, nil
	}
	return []string{"GOV-RS"}, nil
}

func (mockCatalog) Products(_ context.Context, _ string) ([]string, error) {
	return []string{"Consignado", "Cartão"}, nil
}

func (mockCatalog) Status(_ context.Context, _, product string) (string, error) {
	if product == "Cartão" {
		return "Inativo", nil
	}
	return "Ativo", nil
}
