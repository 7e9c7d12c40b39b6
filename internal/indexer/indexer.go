// Package indexer recomputes document search vectors in the background.
// Tasks are enqueued by the document service on every write; the worker
// replays them one at a time under the uploader's identity, so even the
// maintenance path never touches rows its acting user could not see.
package indexer

import (
	"context"
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"tome/internal/rls"
	id "tome/pkg/domain"
	"tome/pkg/platform/sentinel"
)

var tasksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "tome_indexer_tasks_total",
	Help: "Indexing tasks processed, by outcome",
}, []string{"outcome"})

// Task identifies one document to reindex and the identity to do it as.
type Task struct {
	DocumentID id.DocumentID
	UploaderID id.UserID
}

// Store is the slice of the document store the worker needs.
type Store interface {
	Reindex(ctx context.Context, docID id.DocumentID) error
}

// Worker drains the task queue. One instance per process.
type Worker struct {
	scoper rls.Scoper
	store  Store
	logger *slog.Logger
	inbox  chan Task
}

func NewWorker(scoper rls.Scoper, store Store, logger *slog.Logger) *Worker {
	return &Worker{
		scoper: scoper,
		store:  store,
		logger: logger,
		inbox:  make(chan Task, 256),
	}
}

// Enqueue submits a task without blocking the caller. A full queue drops the
// task; the document stays unsearchable until its next write, which is an
// acceptable trade against stalling request handling.
func (w *Worker) Enqueue(task Task) {
	select {
	case w.inbox <- task:
	default:
		tasksTotal.WithLabelValues("dropped").Inc()
		w.logger.Warn("indexer queue full, dropping task",
			"document_id", task.DocumentID,
		)
	}
}

// Run processes tasks until ctx is cancelled. Task failures are logged and
// skipped; a poisoned task must not stop indexing for everyone else.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case task := <-w.inbox:
			w.process(ctx, task)
		}
	}
}

func (w *Worker) process(ctx context.Context, task Task) {
	err := w.scoper.ForUser(ctx, task.UploaderID, func(txCtx context.Context) error {
		return w.store.Reindex(txCtx, task.DocumentID)
	})
	switch {
	case err == nil:
		tasksTotal.WithLabelValues("indexed").Inc()
	case errors.Is(err, sentinel.ErrNotFound):
		// Deleted between enqueue and processing.
		tasksTotal.WithLabelValues("gone").Inc()
	default:
		tasksTotal.WithLabelValues("error").Inc()
		w.logger.ErrorContext(ctx, "reindex failed",
			"document_id", task.DocumentID,
			"uploader_id", task.UploaderID,
			"error", err,
		)
	}
}
