package indexer

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "tome/pkg/domain"
	"tome/pkg/platform/sentinel"
	"tome/pkg/testutil"
)

type recordingStore struct {
	mu      sync.Mutex
	indexed []id.DocumentID
	missing map[id.DocumentID]bool
	done    chan struct{}
}

func (s *recordingStore) Reindex(_ context.Context, docID id.DocumentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() {
		if s.done != nil {
			s.done <- struct{}{}
		}
	}()
	if s.missing[docID] {
		return sentinel.ErrNotFound
	}
	s.indexed = append(s.indexed, docID)
	return nil
}

func TestWorkerIndexesUnderUploaderScope(t *testing.T) {
	scoper := &testutil.ScoperSpy{}
	store := &recordingStore{done: make(chan struct{}, 4)}
	worker := NewWorker(scoper, store, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = worker.Run(ctx) }()

	uploader := id.NewUserID()
	docID := id.NewDocumentID()
	worker.Enqueue(Task{DocumentID: docID, UploaderID: uploader})

	select {
	case <-store.done:
	case <-time.After(2 * time.Second):
		t.Fatal("task was not processed")
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Equal(t, []id.DocumentID{docID}, store.indexed)
	assert.Equal(t, []id.UserID{uploader}, scoper.ForUserIDs)
}

func TestWorkerSkipsDeletedDocuments(t *testing.T) {
	scoper := &testutil.ScoperSpy{}
	gone := id.NewDocumentID()
	kept := id.NewDocumentID()
	store := &recordingStore{
		missing: map[id.DocumentID]bool{gone: true},
		done:    make(chan struct{}, 4),
	}
	worker := NewWorker(scoper, store, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = worker.Run(ctx) }()

	uploader := id.NewUserID()
	worker.Enqueue(Task{DocumentID: gone, UploaderID: uploader})
	worker.Enqueue(Task{DocumentID: kept, UploaderID: uploader})

	for range 2 {
		select {
		case <-store.done:
		case <-time.After(2 * time.Second):
			t.Fatal("tasks were not processed")
		}
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Equal(t, []id.DocumentID{kept}, store.indexed)
}

func TestWorkerRefusesNilUploader(t *testing.T) {
	scoper := &testutil.ScoperSpy{}
	store := &recordingStore{done: make(chan struct{}, 1)}
	worker := NewWorker(scoper, store, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = worker.Run(ctx) }()

	worker.Enqueue(Task{DocumentID: id.NewDocumentID()})

	select {
	case <-store.done:
		t.Fatal("store must not be reached without a scoping identity")
	case <-time.After(200 * time.Millisecond):
	}
}
