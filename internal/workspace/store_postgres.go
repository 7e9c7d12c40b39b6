package workspace

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	id "tome/pkg/domain"
	"tome/pkg/platform/sentinel"
	txcontext "tome/pkg/platform/tx"
)

// Store persists workspaces and memberships. Implementations do not filter by
// caller: inside a scoped transaction the row-level security policies already
// restrict what each query can see.
type Store interface {
	Create(ctx context.Context, ws *Workspace) error
	FindByID(ctx context.Context, wsID id.WorkspaceID) (*Workspace, error)
	List(ctx context.Context) ([]Workspace, error)
	AddMember(ctx context.Context, member *Member) error
	RemoveMember(ctx context.Context, wsID id.WorkspaceID, userID id.UserID) error
	ListMembers(ctx context.Context, wsID id.WorkspaceID) ([]Member, error)
}

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, ws *Workspace) error {
	query := `
		INSERT INTO workspaces (id, name, owner_id, created_at)
		VALUES ($1, $2, $3, $4)
	`
	execer := txcontext.ExecutorFrom(ctx, s.db)
	if _, err := execer.ExecContext(ctx, query,
		ws.ID.String(), ws.Name, ws.OwnerID.String(), ws.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert workspace: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, wsID id.WorkspaceID) (*Workspace, error) {
	query := `
		SELECT id, name, owner_id, created_at
		FROM workspaces
		WHERE id = $1
	`
	execer := txcontext.ExecutorFrom(ctx, s.db)
	return scanWorkspace(execer.QueryRowContext(ctx, query, wsID.String()))
}

func (s *PostgresStore) List(ctx context.Context) ([]Workspace, error) {
	query := `
		SELECT id, name, owner_id, created_at
		FROM workspaces
		ORDER BY created_at
	`
	execer := txcontext.ExecutorFrom(ctx, s.db)
	rows, err := execer.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Workspace
	for rows.Next() {
		var (
			ws            Workspace
			rawID, rawOwn string
		)
		if err := rows.Scan(&rawID, &ws.Name, &rawOwn, &ws.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan workspace: %w", err)
		}
		if ws.ID, err = id.ParseWorkspaceID(rawID); err != nil {
			return nil, fmt.Errorf("parse stored workspace id: %w", err)
		}
		if ws.OwnerID, err = id.ParseUserID(rawOwn); err != nil {
			return nil, fmt.Errorf("parse stored owner id: %w", err)
		}
		out = append(out, ws)
	}
	return out, rows.Err()
}

func (s *PostgresStore) AddMember(ctx context.Context, member *Member) error {
	query := `
		INSERT INTO workspace_members (workspace_id, user_id, role, added_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (workspace_id, user_id) DO NOTHING
	`
	execer := txcontext.ExecutorFrom(ctx, s.db)
	if _, err := execer.ExecContext(ctx, query,
		member.WorkspaceID.String(), member.UserID.String(), string(member.Role), member.AddedAt,
	); err != nil {
		return fmt.Errorf("insert workspace member: %w", err)
	}
	return nil
}

func (s *PostgresStore) RemoveMember(ctx context.Context, wsID id.WorkspaceID, userID id.UserID) error {
	query := `
		DELETE FROM workspace_members
		WHERE workspace_id = $1 AND user_id = $2
	`
	execer := txcontext.ExecutorFrom(ctx, s.db)
	res, err := execer.ExecContext(ctx, query, wsID.String(), userID.String())
	if err != nil {
		return fmt.Errorf("delete workspace member: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete workspace member rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListMembers(ctx context.Context, wsID id.WorkspaceID) ([]Member, error) {
	query := `
		SELECT workspace_id, user_id, role, added_at
		FROM workspace_members
		WHERE workspace_id = $1
		ORDER BY added_at
	`
	execer := txcontext.ExecutorFrom(ctx, s.db)
	rows, err := execer.QueryContext(ctx, query, wsID.String())
	if err != nil {
		return nil, fmt.Errorf("list workspace members: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Member
	for rows.Next() {
		var (
			m              Member
			rawWS, rawUser string
			role           string
		)
		if err := rows.Scan(&rawWS, &rawUser, &role, &m.AddedAt); err != nil {
			return nil, fmt.Errorf("scan workspace member: %w", err)
		}
		if m.WorkspaceID, err = id.ParseWorkspaceID(rawWS); err != nil {
			return nil, fmt.Errorf("parse stored workspace id: %w", err)
		}
		if m.UserID, err = id.ParseUserID(rawUser); err != nil {
			return nil, fmt.Errorf("parse stored user id: %w", err)
		}
		m.Role = Role(role)
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanWorkspace(row *sql.Row) (*Workspace, error) {
	var (
		ws            Workspace
		rawID, rawOwn string
	)
	err := row.Scan(&rawID, &ws.Name, &rawOwn, &ws.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan workspace: %w", err)
	}
	if ws.ID, err = id.ParseWorkspaceID(rawID); err != nil {
		return nil, fmt.Errorf("parse stored workspace id: %w", err)
	}
	if ws.OwnerID, err = id.ParseUserID(rawOwn); err != nil {
		return nil, fmt.Errorf("parse stored owner id: %w", err)
	}
	return &ws, nil
}
