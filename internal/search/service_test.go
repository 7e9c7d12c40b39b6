package search

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tome/internal/document"
	id "tome/pkg/domain"
	dErrors "tome/pkg/domainerrors"
	"tome/pkg/requestcontext"
	"tome/pkg/testutil"
)

func seedDocument(t *testing.T, store *document.InMemoryStore, title, content string) document.Document {
	t.Helper()
	doc := document.Document{
		ID:          id.NewDocumentID(),
		WorkspaceID: id.NewWorkspaceID(),
		UploaderID:  id.NewUserID(),
		Title:       title,
		Content:     content,
	}
	require.NoError(t, store.Create(context.Background(), &doc))
	require.NoError(t, store.Reindex(context.Background(), doc.ID))
	return doc
}

func TestSearch(t *testing.T) {
	store := document.NewInMemoryStore()
	service := NewService(&testutil.ScoperSpy{}, store, slog.Default())
	ctx := requestcontext.WithUserID(context.Background(), id.NewUserID())

	match := seedDocument(t, store, "Postgres tuning guide", "notes on vacuum settings")
	seedDocument(t, store, "Holiday plans", "beach and hiking")

	results, err := service.Search(ctx, "postgres")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, match.ID, results[0].ID)
}

func TestSearchRequiresQuery(t *testing.T) {
	service := NewService(&testutil.ScoperSpy{}, document.NewInMemoryStore(), slog.Default())
	ctx := requestcontext.WithUserID(context.Background(), id.NewUserID())

	_, err := service.Search(ctx, "   ")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestSearchRequiresIdentity(t *testing.T) {
	service := NewService(&testutil.ScoperSpy{}, document.NewInMemoryStore(), slog.Default())

	_, err := service.Search(context.Background(), "postgres")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
