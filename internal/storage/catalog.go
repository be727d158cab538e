package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/proposal-desk/internal/common"
	"github.com/Veraticus/proposal-desk/internal/service"
)

// ReplaceCatalog swaps the catalog snapshot for rows in one transaction.
// progress, when non-nil, is called after each row is written.
func (s *SQLiteStorage) ReplaceCatalog(ctx context.Context, rows []service.CatalogRow, progress func()) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(rows) == 0 {
		return common.ErrCatalogEmpty
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM catalog_entries`); err != nil {
		return fmt.Errorf("failed to clear catalog: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO catalog_entries (region, agreement, product, status, synced_at)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().UTC()
	for _, row := range rows {
		if _, err = stmt.ExecContext(ctx, row.Region, row.Agreement, row.Product, row.Status, now); err != nil {
			return fmt.Errorf("failed to insert catalog row %s/%s/%s: %w", row.Region, row.Agreement, row.Product, err)
		}
		if progress != nil {
			progress()
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit catalog: %w", err)
	}
	return nil
}

// CatalogSyncedAt returns when the snapshot was last replaced, or zero if empty.
func (s *SQLiteStorage) CatalogSyncedAt(ctx context.Context) (time.Time, error) {
	var synced sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT synced_at FROM catalog_entries ORDER BY synced_at DESC LIMIT 1`).Scan(&synced)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read catalog sync time: %w", err)
	}
	return synced.Time, nil
}

// Regions lists the distinct regions of the snapshot.
func (s *SQLiteStorage) Regions(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, `SELECT DISTINCT region FROM catalog_entries ORDER BY region`)
}

// Agreements lists the agreements offered in region.
func (s *SQLiteStorage) Agreements(ctx context.Context, region string) ([]string, error) {
	if err := validateString(region, "region"); err != nil {
		return nil, err
	}
	return s.distinct(ctx, `SELECT DISTINCT agreement FROM catalog_entries WHERE region = ? ORDER BY agreement`, region)
}

// Products lists the products offered under agreement.
func (s *SQLiteStorage) Products(ctx context.Context, agreement string) ([]string, error) {
	if err := validateString(agreement, "agreement"); err != nil {
		return nil, err
	}
	return s.distinct(ctx, `SELECT DISTINCT product FROM catalog_entries WHERE agreement = ? ORDER BY product`, agreement)
}

// Status resolves the status of product within agreement. An unknown pair yields "".
func (s *SQLiteStorage) Status(ctx context.Context, agreement, product string) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	var status string
	err := s.db.QueryRowContext(ctx, `
		SELECT status FROM catalog_entries
		WHERE agreement = ? AND product = ? AND status NOT IN ('', 'N/A')
		ORDER BY id LIMIT 1`, agreement, product).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve status: %w", err)
	}
	return status, nil
}

func (s *SQLiteStorage) distinct(ctx context.Context, query string, args ...any) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan catalog value: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
