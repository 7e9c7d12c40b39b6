package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"tome/internal/indexer"
	"tome/internal/objstore"
	"tome/internal/platform/metrics"
	"tome/internal/rls"
	id "tome/pkg/domain"
	dErrors "tome/pkg/domainerrors"
	"tome/pkg/platform/sentinel"
	"tome/pkg/requestcontext"
)

// Presigner mints signed download URLs for validated storage keys.
// Implemented by objstore.Store; nil when object storage is not configured.
type Presigner interface {
	PresignDownload(ctx context.Context, key string) (string, error)
}

// Enqueuer accepts reindex tasks. Implemented by indexer.Worker.
type Enqueuer interface {
	Enqueue(task indexer.Task)
}

// Service implements document operations under the caller's scope.
type Service struct {
	scoper    rls.Scoper
	store     Store
	presigner Presigner
	indexer   Enqueuer
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewService(scoper rls.Scoper, store Store, presigner Presigner, enqueuer Enqueuer, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		scoper:    scoper,
		store:     store,
		presigner: presigner,
		indexer:   enqueuer,
		metrics:   m,
		logger:    logger,
	}
}

// CreateRequest carries the fields for a new document. Filename is the
// original upload name; when present the service derives a storage key for
// it.
type CreateRequest struct {
	WorkspaceID id.WorkspaceID
	Title       string
	Content     string
	Filename    string
}

// Create inserts a document and queues it for search indexing. Inserting
// into a workspace the caller is not a member of fails inside the scoped
// transaction: the policy WITH CHECK rejects the row.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Document, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "document title is required")
	}
	if req.WorkspaceID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "workspace id is required")
	}

	userID, err := requestcontext.RequireUserID(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeUnauthorized, "authentication required", err)
	}

	var fileURL string
	if req.Filename != "" {
		fileURL = objstore.NewKey(req.Filename)
	}

	now := requestcontext.Now(ctx)
	doc := &Document{
		ID:          id.NewDocumentID(),
		WorkspaceID: req.WorkspaceID,
		UploaderID:  userID,
		Title:       strings.TrimSpace(req.Title),
		Content:     req.Content,
		FileURL:     fileURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.scoper.WithCurrentUser(ctx, func(txCtx context.Context) error {
		return s.store.Create(txCtx, doc)
	})
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	s.metrics.DocumentsCreated.Inc()
	s.indexer.Enqueue(indexer.Task{DocumentID: doc.ID, UploaderID: doc.UploaderID})

	s.logger.InfoContext(ctx, "document created",
		"document_id", doc.ID,
		"workspace_id", doc.WorkspaceID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return doc, nil
}

// Get returns one document. Documents outside the caller's workspaces are
// indistinguishable from missing ones.
func (s *Service) Get(ctx context.Context, docID id.DocumentID) (*Document, error) {
	var doc *Document
	err := s.scoper.WithCurrentUser(ctx, func(txCtx context.Context) error {
		found, err := s.store.FindByID(txCtx, docID)
		if err != nil {
			return err
		}
		doc = found
		return nil
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "document not found")
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// List returns the documents of one workspace visible to the caller.
func (s *Service) List(ctx context.Context, wsID id.WorkspaceID) ([]Document, error) {
	var out []Document
	err := s.scoper.WithCurrentUser(ctx, func(txCtx context.Context) error {
		list, err := s.store.ListByWorkspace(txCtx, wsID)
		if err != nil {
			return err
		}
		out = list
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return out, nil
}

// Delete removes a document.
func (s *Service) Delete(ctx context.Context, docID id.DocumentID) error {
	err := s.scoper.WithCurrentUser(ctx, func(txCtx context.Context) error {
		return s.store.Delete(txCtx, docID)
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "document not found")
		}
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// DownloadURL mints a signed download link for the document's file. A
// document without a file, a stored key that fails validation, or missing
// object storage all yield an empty URL and no error: the caller simply has
// no link to offer.
func (s *Service) DownloadURL(ctx context.Context, docID id.DocumentID) (string, error) {
	doc, err := s.Get(ctx, docID)
	if err != nil {
		return "", err
	}

	key, ok := objstore.ExtractKey(doc.FileURL)
	if !ok {
		if doc.FileURL != "" {
			s.logger.WarnContext(ctx, "stored file url failed key validation",
				"document_id", doc.ID,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
		return "", nil
	}
	if s.presigner == nil {
		return "", nil
	}

	url, err := s.presigner.PresignDownload(ctx, key)
	if err != nil {
		return "", fmt.Errorf("presign document download: %w", err)
	}
	return url, nil
}
