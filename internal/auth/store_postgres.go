package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	id "tome/pkg/domain"
	"tome/pkg/platform/sentinel"
	txcontext "tome/pkg/platform/tx"
)

// Store persists user accounts.
type Store interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, userID id.UserID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
}

// PostgresStore is the production Store. All methods run through whatever
// transaction the context carries; the users table has RLS enabled, so
// callers must already be inside a scoped or bypass transaction.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, email, display_name, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	execer := txcontext.ExecutorFrom(ctx, s.db)
	_, err := execer.ExecContext(ctx, query,
		user.ID.String(), user.Email, user.DisplayName, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("email already registered: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*User, error) {
	query := `
		SELECT id, email, display_name, password_hash, created_at
		FROM users
		WHERE id = $1
	`
	execer := txcontext.ExecutorFrom(ctx, s.db)
	return scanUser(execer.QueryRowContext(ctx, query, userID.String()))
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, email, display_name, password_hash, created_at
		FROM users
		WHERE email = $1
	`
	execer := txcontext.ExecutorFrom(ctx, s.db)
	return scanUser(execer.QueryRowContext(ctx, query, email))
}

func scanUser(row *sql.Row) (*User, error) {
	var (
		user  User
		rawID string
	)
	err := row.Scan(&rawID, &user.Email, &user.DisplayName, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	userID, err := id.ParseUserID(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse stored user id: %w", err)
	}
	user.ID = userID
	return &user, nil
}
