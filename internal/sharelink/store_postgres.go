package sharelink

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	id "tome/pkg/domain"
	"tome/pkg/platform/sentinel"
	txcontext "tome/pkg/platform/tx"
)

// Store persists share links.
type Store interface {
	Create(ctx context.Context, link *ShareLink) error
	FindByToken(ctx context.Context, token string) (*ShareLink, error)
	Deactivate(ctx context.Context, linkID id.ShareLinkID) error
}

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, link *ShareLink) error {
	query := `
		INSERT INTO share_links (id, token, workspace_id, created_by, is_active, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	var expiresAt sql.NullTime
	if !link.ExpiresAt.IsZero() {
		expiresAt = sql.NullTime{Time: link.ExpiresAt, Valid: true}
	}
	execer := txcontext.ExecutorFrom(ctx, s.db)
	if _, err := execer.ExecContext(ctx, query,
		link.ID.String(), link.Token, link.WorkspaceID.String(), link.CreatedBy.String(),
		link.IsActive, expiresAt, link.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert share link: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByToken(ctx context.Context, token string) (*ShareLink, error) {
	query := `
		SELECT id, token, workspace_id, created_by, is_active, expires_at, created_at
		FROM share_links
		WHERE token = $1
	`
	execer := txcontext.ExecutorFrom(ctx, s.db)
	row := execer.QueryRowContext(ctx, query, token)

	var (
		link         ShareLink
		rawID, rawWS string
		rawBy        string
		expiresAt    sql.NullTime
	)
	err := row.Scan(&rawID, &link.Token, &rawWS, &rawBy, &link.IsActive, &expiresAt, &link.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan share link: %w", err)
	}
	if link.ID, err = id.ParseShareLinkID(rawID); err != nil {
		return nil, fmt.Errorf("parse stored share link id: %w", err)
	}
	if link.WorkspaceID, err = id.ParseWorkspaceID(rawWS); err != nil {
		return nil, fmt.Errorf("parse stored workspace id: %w", err)
	}
	if link.CreatedBy, err = id.ParseUserID(rawBy); err != nil {
		return nil, fmt.Errorf("parse stored creator id: %w", err)
	}
	if expiresAt.Valid {
		link.ExpiresAt = expiresAt.Time
	}
	return &link, nil
}

func (s *PostgresStore) Deactivate(ctx context.Context, linkID id.ShareLinkID) error {
	query := `UPDATE share_links SET is_active = FALSE WHERE id = $1`
	execer := txcontext.ExecutorFrom(ctx, s.db)
	res, err := execer.ExecContext(ctx, query, linkID.String())
	if err != nil {
		return fmt.Errorf("deactivate share link: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate share link rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
