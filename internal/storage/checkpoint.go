package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// maxAutoCheckpoints is how many automatic checkpoints are retained.
const maxAutoCheckpoints = 5

// Checkpoint errors.
var (
	ErrCheckpointNotFound  = errors.New("checkpoint not found")
	ErrCheckpointCorrupted = errors.New("checkpoint integrity check failed")
	ErrCheckpointExists    = errors.New("checkpoint already exists")
	ErrInvalidCheckpointID = errors.New("invalid checkpoint id")
)

// CheckpointManager snapshots the proposal database next to its file.
type CheckpointManager struct {
	db             *sql.DB
	dbPath         string
	checkpointsDir string
}

// CheckpointInfo describes one snapshot.
type CheckpointInfo struct {
	CreatedAt     time.Time      `json:"created_at"`
	RowCounts     map[string]int `json:"row_counts"`
	ID            string         `json:"id"`
	Description   string         `json:"description"`
	FileSize      int64          `json:"file_size"`
	SchemaVersion int            `json:"schema_version"`
	IsAuto        bool           `json:"is_auto"`
}

// Proposals returns the number of proposal records in the snapshot.
func (c CheckpointInfo) Proposals() int { return c.RowCounts["proposals"] }

// NewCheckpointManager creates a new checkpoint manager.
func NewCheckpointManager(db *sql.DB, dbPath string) (*CheckpointManager, error) {
	if dbPath == ":memory:" {
		return nil, errors.New("checkpoints require a file-backed database")
	}
	checkpointsDir := filepath.Join(filepath.Dir(dbPath), "checkpoints")
	if err := os.MkdirAll(checkpointsDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create checkpoints directory: %w", err)
	}

	return &CheckpointManager{
		db:             db,
		dbPath:         dbPath,
		checkpointsDir: checkpointsDir,
	}, nil
}

// Create snapshots the database under tag.
func (cm *CheckpointManager) Create(ctx context.Context, tag, description string) (*CheckpointInfo, error) {
	return cm.create(ctx, tag, description, false)
}

// AutoCheckpoint snapshots the database before an operation and prunes old automatic snapshots.
func (cm *CheckpointManager) AutoCheckpoint(ctx context.Context, operation string) error {
	tag := fmt.Sprintf("auto-%s-%s", operation, time.Now().Format("2006-01-02-150405"))
	if _, err := cm.create(ctx, tag, "Automatic checkpoint before "+operation, true); err != nil {
		return fmt.Errorf("failed to create auto-checkpoint: %w", err)
	}
	if err := cm.pruneAuto(ctx); err != nil {
		slog.Warn("failed to prune auto-checkpoints", "error", err)
	}
	return nil
}

func (cm *CheckpointManager) create(ctx context.Context, tag, description string, auto bool) (*CheckpointInfo, error) {
	if tag == "" {
		tag = "checkpoint-" + time.Now().Format("2006-01-02-150405")
	}
	if err := validateCheckpointID(tag); err != nil {
		return nil, err
	}

	dbFile := cm.path(tag, ".db")
	if _, err := os.Stat(dbFile); err == nil {
		return nil, ErrCheckpointExists
	}

	var schemaVersion int
	if err := cm.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&schemaVersion); err != nil {
		return nil, fmt.Errorf("failed to get schema version: %w", err)
	}

	if err := cm.backup(ctx, dbFile); err != nil {
		return nil, fmt.Errorf("failed to backup database: %w", err)
	}
	stat, err := os.Stat(dbFile)
	if err != nil {
		return nil, fmt.Errorf("failed to stat checkpoint: %w", err)
	}

	info := CheckpointInfo{
		ID:            tag,
		CreatedAt:     time.Now(),
		Description:   description,
		FileSize:      stat.Size(),
		RowCounts:     cm.rowCounts(ctx),
		SchemaVersion: schemaVersion,
		IsAuto:        auto,
	}

	if err := writeJSONAtomic(cm.path(tag, ".meta.json"), info); err != nil {
		if rmErr := os.Remove(dbFile); rmErr != nil {
			slog.Error("failed to remove checkpoint after metadata failure", "error", rmErr)
		}
		return nil, fmt.Errorf("failed to save metadata: %w", err)
	}

	counts, _ := json.Marshal(info.RowCounts)
	if _, err := cm.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO checkpoint_metadata
		(id, created_at, description, file_size, row_counts, schema_version, is_auto)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		info.ID, info.CreatedAt, info.Description, info.FileSize, string(counts), info.SchemaVersion, info.IsAuto); err != nil {
		slog.Warn("failed to record checkpoint in database", "error", err)
	}

	return &info, nil
}

// List returns every checkpoint, newest first. Unreadable metadata is skipped.
func (cm *CheckpointManager) List(_ context.Context) ([]CheckpointInfo, error) {
	entries, err := os.ReadDir(cm.checkpointsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoints directory: %w", err)
	}

	var out []CheckpointInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".meta.json") {
			continue
		}
		info, err := readMetadata(filepath.Join(cm.checkpointsDir, entry.Name()))
		if err != nil {
			continue
		}
		out = append(out, *info)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Restore replaces the database file with checkpoint id. The storage instance
// owning the connection is unusable afterwards and must be reopened.
func (cm *CheckpointManager) Restore(_ context.Context, id string) error {
	if err := validateCheckpointID(id); err != nil {
		return err
	}
	dbFile := cm.path(id, ".db")
	if _, err := os.Stat(dbFile); err != nil {
		if os.IsNotExist(err) {
			return ErrCheckpointNotFound
		}
		return fmt.Errorf("failed to access checkpoint: %w", err)
	}
	if err := verifyIntegrity(dbFile); err != nil {
		return fmt.Errorf("%w: %v", ErrCheckpointCorrupted, err)
	}

	if err := cm.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	safety := cm.dbPath + ".restore-backup"
	if err := copyFile(cm.dbPath, safety); err != nil {
		return fmt.Errorf("failed to backup current database: %w", err)
	}
	if err := copyFile(dbFile, cm.dbPath); err != nil {
		if restoreErr := copyFile(safety, cm.dbPath); restoreErr != nil {
			slog.Error("failed to put the database back after a failed restore", "error", restoreErr)
		}
		return fmt.Errorf("failed to restore checkpoint: %w", err)
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		_ = os.Remove(cm.dbPath + suffix)
	}
	if err := os.Remove(safety); err != nil {
		slog.Debug("failed to remove restore backup", "error", err)
	}
	return nil
}

// Delete removes checkpoint id.
func (cm *CheckpointManager) Delete(ctx context.Context, id string) error {
	if err := validateCheckpointID(id); err != nil {
		return err
	}
	if err := os.Remove(cm.path(id, ".db")); err != nil {
		if os.IsNotExist(err) {
			return ErrCheckpointNotFound
		}
		return fmt.Errorf("failed to remove checkpoint file: %w", err)
	}
	if err := os.Remove(cm.path(id, ".meta.json")); err != nil {
		slog.Debug("failed to remove metadata file", "error", err, "id", id)
	}
	if _, err := cm.db.ExecContext(ctx, "DELETE FROM checkpoint_metadata WHERE id = ?", id); err != nil {
		slog.Debug("failed to remove checkpoint metadata from database", "error", err, "id", id)
	}
	return nil
}

func (cm *CheckpointManager) pruneAuto(ctx context.Context) error {
	all, err := cm.List(ctx)
	if err != nil {
		return err
	}
	kept := 0
	for _, cp := range all {
		if !cp.IsAuto {
			continue
		}
		kept++
		if kept > maxAutoCheckpoints {
			if err := cm.Delete(ctx, cp.ID); err != nil {
				slog.Debug("failed to delete old auto-checkpoint", "error", err, "id", cp.ID)
			}
		}
	}
	return nil
}

func (cm *CheckpointManager) path(id, suffix string) string {
	return filepath.Join(cm.checkpointsDir, id+suffix)
}

func (cm *CheckpointManager) rowCounts(ctx context.Context) map[string]int {
	queries := map[string]string{
		"proposals":       "SELECT COUNT(*) FROM proposals",
		"users":           "SELECT COUNT(*) FROM users",
		"catalog_entries": "SELECT COUNT(*) FROM catalog_entries",
	}
	counts := make(map[string]int, len(queries))
	for table, query := range queries {
		var n int
		if err := cm.db.QueryRowContext(ctx, query).Scan(&n); err == nil {
			counts[table] = n
		}
	}
	return counts
}

func (cm *CheckpointManager) backup(ctx context.Context, dest string) error {
	if _, err := cm.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("failed to checkpoint WAL: %w", err)
	}
	if strings.ContainsAny(dest, `'";`) {
		return fmt.Errorf("invalid destination path %q", dest)
	}
	// #nosec G201 - dest is built from a validated id inside the checkpoints directory
	if _, err := cm.db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", dest)); err != nil {
		slog.Debug("VACUUM INTO failed, copying file instead", "error", err)
		return copyFile(cm.dbPath, dest)
	}
	return nil
}

func validateCheckpointID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\'";`) || strings.Contains(id, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidCheckpointID, id)
	}
	return nil
}

func copyFile(src, dst string) error {
	// #nosec G304 - paths are built by the checkpoint manager
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	tmp := dst + ".tmp"
	// #nosec G304 - paths are built by the checkpoint manager
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}

func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func readMetadata(path string) (*CheckpointInfo, error) {
	// #nosec G304 - path comes from the checkpoints directory listing
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var info CheckpointInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func verifyIntegrity(path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return err
	}
	if result != "ok" {
		return fmt.Errorf("integrity check: %s", result)
	}
	return nil
}
