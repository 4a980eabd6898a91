package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"askpilot/internal/core"
)

// CreateUser inserts a new account. Returns core.ErrEmailExists when the
// email is already registered.
func (s *Store) CreateUser(ctx context.Context, user core.User) error {
	createdAt := user.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (user_id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		user.UserID, user.Email, user.PasswordHash, createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return core.ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByEmail looks up a user by email. Returns core.ErrUserNotFound when no
// account matches.
func (s *Store) FindByEmail(ctx context.Context, email string) (*core.User, error) {
	return s.queryUser(ctx,
		`SELECT user_id, email, password_hash, created_at FROM users WHERE email = ?`, email)
}

// FindByID looks up a user by id. Returns core.ErrUserNotFound when no
// account matches.
func (s *Store) FindByID(ctx context.Context, userID string) (*core.User, error) {
	return s.queryUser(ctx,
		`SELECT user_id, email, password_hash, created_at FROM users WHERE user_id = ?`, userID)
}

func (s *Store) queryUser(ctx context.Context, query string, arg string) (*core.User, error) {
	var (
		user      core.User
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&user.UserID, &user.Email, &user.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user query failed: %w", err)
	}
	user.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &user, nil
}
