package document

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	id "tome/pkg/domain"
	"tome/pkg/platform/sentinel"
	txcontext "tome/pkg/platform/tx"
)

// Store persists documents. Queries carry no caller filter; inside a scoped
// transaction the policies restrict rows to the caller's workspaces.
type Store interface {
	Create(ctx context.Context, doc *Document) error
	FindByID(ctx context.Context, docID id.DocumentID) (*Document, error)
	ListByWorkspace(ctx context.Context, wsID id.WorkspaceID) ([]Document, error)
	Delete(ctx context.Context, docID id.DocumentID) error
	Search(ctx context.Context, query string) ([]Document, error)
	Reindex(ctx context.Context, docID id.DocumentID) error
}

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const documentColumns = `id, workspace_id, uploader_id, title, content, file_url, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, doc *Document) error {
	query := `
		INSERT INTO documents (id, workspace_id, uploader_id, title, content, file_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	execer := txcontext.ExecutorFrom(ctx, s.db)
	if _, err := execer.ExecContext(ctx, query,
		doc.ID.String(), doc.WorkspaceID.String(), doc.UploaderID.String(),
		doc.Title, doc.Content, doc.FileURL, doc.CreatedAt, doc.UpdatedAt,
	); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, docID id.DocumentID) (*Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	execer := txcontext.ExecutorFrom(ctx, s.db)

	row := execer.QueryRowContext(ctx, query, docID.String())
	doc, err := scanDocument(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return doc, err
}

func (s *PostgresStore) ListByWorkspace(ctx context.Context, wsID id.WorkspaceID) ([]Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE workspace_id = $1
		ORDER BY created_at DESC
	`
	execer := txcontext.ExecutorFrom(ctx, s.db)
	rows, err := execer.QueryContext(ctx, query, wsID.String())
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return collectDocuments(rows)
}

func (s *PostgresStore) Delete(ctx context.Context, docID id.DocumentID) error {
	execer := txcontext.ExecutorFrom(ctx, s.db)
	res, err := execer.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, docID.String())
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// Search ranks documents against the stored tsvector. Rows whose vector has
// not been computed yet are simply not matched; the indexer fills them in.
func (s *PostgresStore) Search(ctx context.Context, query string) ([]Document, error) {
	sqlQuery := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE search_vector @@ plainto_tsquery('english', $1)
		ORDER BY ts_rank(search_vector, plainto_tsquery('english', $1)) DESC
	`
	execer := txcontext.ExecutorFrom(ctx, s.db)
	rows, err := execer.QueryContext(ctx, sqlQuery, query)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	return collectDocuments(rows)
}

// Reindex recomputes the search vector from the current title and content.
func (s *PostgresStore) Reindex(ctx context.Context, docID id.DocumentID) error {
	query := `
		UPDATE documents
		SET search_vector = to_tsvector('english', title || ' ' || content)
		WHERE id = $1
	`
	execer := txcontext.ExecutorFrom(ctx, s.db)
	res, err := execer.ExecContext(ctx, query, docID.String())
	if err != nil {
		return fmt.Errorf("reindex document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reindex document rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func collectDocuments(rows *sql.Rows) ([]Document, error) {
	defer func() { _ = rows.Close() }()
	var out []Document
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *doc)
	}
	return out, rows.Err()
}

func scanDocument(scan func(dest ...any) error) (*Document, error) {
	var (
		doc                 Document
		rawID, rawWS, rawUp string
	)
	err := scan(&rawID, &rawWS, &rawUp, &doc.Title, &doc.Content, &doc.FileURL, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	if doc.ID, err = id.ParseDocumentID(rawID); err != nil {
		return nil, fmt.Errorf("parse stored document id: %w", err)
	}
	if doc.WorkspaceID, err = id.ParseWorkspaceID(rawWS); err != nil {
		return nil, fmt.Errorf("parse stored workspace id: %w", err)
	}
	if doc.UploaderID, err = id.ParseUserID(rawUp); err != nil {
		return nil, fmt.Errorf("parse stored uploader id: %w", err)
	}
	return &doc, nil
}
