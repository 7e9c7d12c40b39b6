package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Publisher is the Kafka surface the worker needs.
type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// Worker drains unpublished outbox rows to Kafka. It operates on the bare
// pool handle: the outbox table carries no tenant rows and has no RLS
// policies, and routing the drain through the bypass facade would bury the
// real bypass audit trail under scheduled noise.
type Worker struct {
	db        *sql.DB
	publisher Publisher
	topic     string
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

// WorkerOption configures the Worker.
type WorkerOption func(*Worker)

// WithInterval overrides the poll interval.
func WithInterval(d time.Duration) WorkerOption {
	return func(w *Worker) { w.interval = d }
}

func NewWorker(db *sql.DB, publisher Publisher, topic string, logger *slog.Logger, opts ...WorkerOption) *Worker {
	w := &Worker{
		db:        db,
		publisher: publisher,
		topic:     topic,
		logger:    logger,
		interval:  5 * time.Second,
		batchSize: 100,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run drains the outbox until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.drainOnce(ctx); err != nil {
				// Publishing failures are retried on the next tick; rows stay
				// unpublished until acked.
				w.logger.ErrorContext(ctx, "outbox drain failed", "error", err)
			}
		}
	}
}

func (w *Worker) drainOnce(ctx context.Context) error {
	rows, err := w.db.QueryContext(ctx, `
		SELECT id, event_type, payload
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`, w.batchSize)
	if err != nil {
		return fmt.Errorf("select unpublished outbox rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	type entry struct {
		id        uuid.UUID
		eventType string
		payload   []byte
	}
	var entries []entry
	for rows.Next() {
		var e entry
		if err := rows.Scan(&e.id, &e.eventType, &e.payload); err != nil {
			return fmt.Errorf("scan outbox row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate outbox rows: %w", err)
	}

	for _, e := range entries {
		if err := w.publisher.Publish(ctx, w.topic, []byte(e.eventType), e.payload); err != nil {
			return err
		}
		if _, err := w.db.ExecContext(ctx,
			`UPDATE outbox SET published_at = $1 WHERE id = $2`,
			time.Now(), e.id,
		); err != nil {
			return fmt.Errorf("mark outbox row published: %w", err)
		}
	}
	return nil
}
