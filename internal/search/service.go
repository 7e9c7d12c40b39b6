// Package search exposes full-text search over documents. It reuses the
// document store's tsvector query; the caller's scope decides which rows can
// match at all.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"tome/internal/document"
	"tome/internal/rls"
	dErrors "tome/pkg/domainerrors"
)

// Store is the slice of the document store search needs.
type Store interface {
	Search(ctx context.Context, query string) ([]document.Document, error)
}

type Service struct {
	scoper rls.Scoper
	store  Store
	logger *slog.Logger
}

func NewService(scoper rls.Scoper, store Store, logger *slog.Logger) *Service {
	return &Service{scoper: scoper, store: store, logger: logger}
}

// Search ranks the caller's visible documents against a plain-language query.
func (s *Service) Search(ctx context.Context, query string) ([]document.Document, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "search query is required")
	}

	var out []document.Document
	err := s.scoper.WithCurrentUser(ctx, func(txCtx context.Context) error {
		list, err := s.store.Search(txCtx, query)
		if err != nil {
			return err
		}
		out = list
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	return out, nil
}
