package rls

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"

	"tome/pkg/requestcontext"
)

// BypassEventTag is the structured log event tag for bypass invocations.
// Audit review filters on this value; do not rename.
const BypassEventTag = "RLS_BYPASS"

// auditBypass emits the mandatory warning for a bypass invocation. It runs
// synchronously before the bypassed transaction is even opened, so an
// operator sees the event even when the callback later fails. The stack
// trace is intentional high-volume logging: it makes every call site of the
// bypass forensically traceable.
func (d *DB) auditBypass(ctx context.Context, reason string) {
	bypassTotal.WithLabelValues(reason).Inc()
	d.logger.LogAttrs(ctx, slog.LevelWarn, "row-level security bypassed",
		slog.String("event", BypassEventTag),
		slog.String("reason", reason),
		slog.Time("timestamp", time.Now()),
		slog.String("request_id", requestcontext.RequestID(ctx)),
		slog.String("stack_trace", string(debug.Stack())),
	)
}
