package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	txcontext "tome/pkg/platform/tx"
	"tome/pkg/requestcontext"
)

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// PostgresStore implements Store using the transactional outbox pattern:
// Append writes to the outbox table through whatever transaction the context
// carries, so the audit row commits or rolls back atomically with the
// operation it describes.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Append writes an audit event to the outbox table for Kafka publishing.
func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	aggregateID := event.UserID
	if aggregateID == "" {
		aggregateID = "anonymous"
	}

	query := `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	execer := txcontext.ExecutorFrom(ctx, s.db)
	if _, err := execer.ExecContext(ctx, query,
		uuid.New(),
		"audit",
		aggregateID,
		string(event.Kind),
		payload,
		time.Now(),
	); err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// RecordBypass satisfies rls.BypassRecorder: it rides the bypassed
// transaction itself, so a rolled-back bypass leaves no half-written trace
// in the outbox (the structured log entry is emitted regardless by rls).
func (s *PostgresStore) RecordBypass(ctx context.Context, reason string) error {
	return s.Append(ctx, Event{
		Kind:      KindRLSBypass,
		Reason:    reason,
		ClientIP:  requestcontext.ClientIP(ctx),
		UserAgent: requestcontext.UserAgent(ctx),
	})
}
