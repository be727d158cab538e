package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 4

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

func execAll(tx *sql.Tx, queries []string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Proposal records",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS proposals (
					id TEXT PRIMARY KEY,
					store_name TEXT NOT NULL,
					proposal_type TEXT NOT NULL,
					numero_proposta TEXT NOT NULL,
					analista TEXT NOT NULL,
					tipo_proposta TEXT NOT NULL,
					tarefas_concluidas TEXT NOT NULL,
					status TEXT NOT NULL,
					data_criacao DATETIME NOT NULL,
					data_conclusao DATETIME NOT NULL,
					duracao_total TEXT NOT NULL,
					dados_filtro TEXT NOT NULL,
					timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_proposals_number ON proposals(numero_proposta)`,
				`CREATE INDEX idx_proposals_store ON proposals(store_name)`,
				`CREATE INDEX idx_proposals_analyst ON proposals(analista)`,
				`CREATE INDEX idx_proposals_concluded ON proposals(data_conclusao)`,
			})
		},
	},
	{
		Version:     2,
		Description: "Analyst directory",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS users (
					login TEXT PRIMARY KEY,
					full_name TEXT NOT NULL DEFAULT '',
					profile TEXT NOT NULL DEFAULT 'analista',
					status TEXT NOT NULL DEFAULT 'Ativo',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
			})
		},
	},
	{
		Version:     3,
		Description: "Catalog snapshot",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS catalog_entries (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					region TEXT NOT NULL,
					agreement TEXT NOT NULL,
					product TEXT NOT NULL,
					status TEXT NOT NULL DEFAULT '',
					synced_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_catalog_region ON catalog_entries(region)`,
				`CREATE INDEX idx_catalog_agreement ON catalog_entries(agreement, product)`,
			})
		},
	},
	{
		Version:     4,
		Description: "Checkpoint metadata",
		Up: func(tx *sql.Tx) error {
			if err := execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS checkpoint_metadata (
					id TEXT PRIMARY KEY,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					description TEXT,
					file_size INTEGER,
					row_counts TEXT,
					schema_version INTEGER,
					is_auto BOOLEAN DEFAULT 0
				)`,
			}); err != nil {
				return err
			}
			slog.Info("Created checkpoint metadata table")
			return nil
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	// Get current version
	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	// Apply migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		// Update version
		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	// Verify we're at the expected schema version
	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

// SchemaVersion returns the current PRAGMA user_version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
