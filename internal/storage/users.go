package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/proposal-desk/internal/common"
	"github.com/Veraticus/proposal-desk/internal/model"
)

// GetUser returns the directory entry for login.
func (s *SQLiteStorage) GetUser(ctx context.Context, login string) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(login, "login"); err != nil {
		return nil, err
	}

	var u model.User
	var createdAt sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT login, full_name, profile, status, created_at
		FROM users WHERE login = ?`, strings.TrimSpace(login)).
		Scan(&u.Login, &u.FullName, &u.Profile, &u.Status, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", login, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %q: %w", login, err)
	}
	if createdAt.Valid {
		u.CreatedAt = createdAt.Time
	}
	return &u, nil
}

// ListUsers returns every directory entry ordered by login.
func (s *SQLiteStorage) ListUsers(ctx context.Context) ([]model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT login, full_name, profile, status, created_at
		FROM users ORDER BY login`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []model.User
	for rows.Next() {
		var u model.User
		var createdAt sql.NullTime
		if err := rows.Scan(&u.Login, &u.FullName, &u.Profile, &u.Status, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		if createdAt.Valid {
			u.CreatedAt = createdAt.Time
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// SaveUser inserts or updates a directory entry.
func (s *SQLiteStorage) SaveUser(ctx context.Context, user *model.User) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateUser(user); err != nil {
		return err
	}

	profile := user.Profile
	if profile == "" {
		profile = "analista"
	}
	status := user.Status
	if status == "" {
		status = model.UserStatusActive
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (login, full_name, profile, status)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(login) DO UPDATE SET
			full_name = excluded.full_name,
			profile = excluded.profile,
			status = excluded.status`,
		strings.TrimSpace(user.Login), user.FullName, profile, status)
	if err != nil {
		return fmt.Errorf("failed to save user %q: %w", user.Login, err)
	}
	return nil
}
