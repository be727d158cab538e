package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/proposal-desk/internal/model"
	"github.com/Veraticus/proposal-desk/internal/service"
	"github.com/google/uuid"
)

const proposalColumns = `id, proposal_type, numero_proposta, analista, tipo_proposta, tarefas_concluidas,
	status, data_criacao, data_conclusao, duracao_total, dados_filtro, timestamp`

// CreateAndFinalize writes a concluded proposal into the store of its type.
func (s *SQLiteStorage) CreateAndFinalize(ctx context.Context, sub model.Submission) (*model.Record, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateSubmission(sub); err != nil {
		return nil, err
	}

	checklist, err := json.Marshal(sub.Checklist)
	if err != nil {
		return nil, fmt.Errorf("failed to encode checklist: %w", err)
	}
	filters, err := json.Marshal(sub.Filters)
	if err != nil {
		return nil, fmt.Errorf("failed to encode filter data: %w", err)
	}

	rec := &model.Record{
		ID:          uuid.NewString(),
		Number:      strings.TrimSpace(sub.Number),
		Analyst:     sub.Analyst,
		TypeLabel:   sub.TypeLabel(),
		Type:        sub.Type,
		Checklist:   sub.Checklist,
		Status:      sub.Status,
		CreatedAt:   sub.CreatedAt.UTC(),
		ConcludedAt: sub.ConcludedAt.UTC(),
		Duration:    sub.Duration,
		Filters:     sub.Filters,
		Timestamp:   time.Now().UTC(),
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO proposals (id, store_name, proposal_type, numero_proposta, analista, tipo_proposta,
			tarefas_concluidas, status, data_criacao, data_conclusao, duracao_total, dados_filtro, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, sub.Type.StoreName(), string(sub.Type), rec.Number, rec.Analyst, rec.TypeLabel,
		string(checklist), string(rec.Status), rec.CreatedAt, rec.ConcludedAt, rec.Duration,
		string(filters), rec.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("failed to insert proposal %s: %w", rec.Number, err)
	}

	return rec, nil
}

// FindByNumber returns the most recently concluded record for number across the
// stores that take part in duplicate checks. It returns (nil, nil) when absent.
func (s *SQLiteStorage) FindByNumber(ctx context.Context, number string) (*model.Record, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(number, "number"); err != nil {
		return nil, err
	}

	var stores []any
	for _, t := range model.AllProposalTypes() {
		if t.ChecksDuplicates() {
			stores = append(stores, t.StoreName())
		}
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(stores)), ",")

	args := append([]any{strings.TrimSpace(number)}, stores...)
	row := s.db.QueryRowContext(ctx, `
		SELECT `+proposalColumns+`
		FROM proposals
		WHERE numero_proposta = ? AND store_name IN (`+placeholders+`)
		ORDER BY data_conclusao DESC
		LIMIT 1`, args...)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find proposal %s: %w", number, err)
	}
	return rec, nil
}

// ListByAnalyst returns every record of analyst, newest first.
func (s *SQLiteStorage) ListByAnalyst(ctx context.Context, analyst string) ([]model.Record, error) {
	if err := validateString(analyst, "analyst"); err != nil {
		return nil, err
	}
	return s.ListWithFilters(ctx, service.RecordFilter{Analyst: analyst})
}

// ListByDateRange returns records concluded within [start, end], newest first.
func (s *SQLiteStorage) ListByDateRange(ctx context.Context, start, end time.Time) ([]model.Record, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, end, start)
	}
	return s.ListWithFilters(ctx, service.RecordFilter{StartDate: &start, EndDate: &end})
}

// ListWithFilters returns records matching every set field of filter, newest first.
func (s *SQLiteStorage) ListWithFilters(ctx context.Context, filter service.RecordFilter) ([]model.Record, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, *filter.EndDate, *filter.StartDate)
	}

	var (
		where []string
		args  []any
	)
	if filter.StartDate != nil {
		where = append(where, "data_conclusao >= ?")
		args = append(args, filter.StartDate.UTC())
	}
	if filter.EndDate != nil {
		where = append(where, "data_conclusao <= ?")
		args = append(args, filter.EndDate.UTC())
	}
	if filter.Analyst != "" {
		where = append(where, "analista = ?")
		args = append(args, filter.Analyst)
	}
	if filter.Type != "" {
		where = append(where, "store_name = ?")
		args = append(args, filter.Type.StoreName())
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}

	query := "SELECT " + proposalColumns + " FROM proposals"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY data_conclusao DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query proposals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan proposal: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating proposals: %w", err)
	}
	return records, nil
}

// CountProposals returns the number of stored records per logical store.
func (s *SQLiteStorage) CountProposals(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT store_name, COUNT(*) FROM proposals GROUP BY store_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to count proposals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var store string
		var n int
		if err := rows.Scan(&store, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[store] = n
	}
	return counts, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*model.Record, error) {
	var (
		rec       model.Record
		typ       string
		status    string
		checklist string
		filters   string
		timestamp sql.NullTime
	)
	if err := row.Scan(&rec.ID, &typ, &rec.Number, &rec.Analyst, &rec.TypeLabel, &checklist,
		&status, &rec.CreatedAt, &rec.ConcludedAt, &rec.Duration, &filters, &timestamp); err != nil {
		return nil, err
	}

	rec.Type = model.ProposalType(typ)
	rec.Status = model.Status(status)
	if timestamp.Valid {
		rec.Timestamp = timestamp.Time
	}
	if err := json.Unmarshal([]byte(checklist), &rec.Checklist); err != nil {
		return nil, fmt.Errorf("failed to decode checklist of %s: %w", rec.ID, err)
	}
	if err := json.Unmarshal([]byte(filters), &rec.Filters); err != nil {
		return nil, fmt.Errorf("failed to decode filter data of %s: %w", rec.ID, err)
	}
	return &rec, nil
}
