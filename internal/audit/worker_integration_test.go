//go:build integration

package audit_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"tome/internal/audit"
	"tome/internal/platform/kafka"
	"tome/internal/platform/postgres"
	"tome/internal/rls"
	"tome/pkg/testutil/containers"
)

// Covers the full audit trail: a bypass records an outbox row inside its own
// transaction, the worker drains it to the broker, and the row is marked
// published so it is never delivered twice.
func TestOutboxWorkerPublishesBypassEvents(t *testing.T) {
	ctx := context.Background()
	const topic = "tome.audit.events"

	pg := containers.NewPostgresContainer(t)
	rp := containers.NewRedpandaContainer(t)

	db, err := postgres.Open(ctx, pg.AppDSN)
	require.NoError(t, err)
	defer db.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := audit.NewPostgresStore(db)
	scoper := rls.New(db, logger, rls.WithBypassRecorder(store))

	err = scoper.WithoutRLS(ctx, "user-registration", func(txCtx context.Context) error {
		return nil
	})
	require.NoError(t, err)

	producer, err := kafka.NewProducer(ctx, []string{rp.Broker}, topic)
	require.NoError(t, err)
	require.NotNil(t, producer)
	defer producer.Close()

	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	worker := audit.NewWorker(db, producer, topic, logger, audit.WithInterval(100*time.Millisecond))
	go func() { _ = worker.Run(workerCtx) }()

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(rp.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	var record *kgo.Record
	require.Eventually(t, func() bool {
		pollCtx, pollCancel := context.WithTimeout(ctx, time.Second)
		defer pollCancel()
		fetches := consumer.PollFetches(pollCtx)
		fetches.EachRecord(func(r *kgo.Record) {
			record = r
		})
		return record != nil
	}, 15*time.Second, 100*time.Millisecond)

	var event audit.Event
	require.NoError(t, json.Unmarshal(record.Value, &event))
	assert.Equal(t, audit.KindRLSBypass, event.Kind)
	assert.Equal(t, "user-registration", event.Reason)

	// The acked row must be marked published so the next tick skips it.
	require.Eventually(t, func() bool {
		var pending int
		if err := db.QueryRow(`SELECT count(*) FROM outbox WHERE published_at IS NULL`).Scan(&pending); err != nil {
			return false
		}
		return pending == 0
	}, 5*time.Second, 100*time.Millisecond)
}
