// Package tx carries the current scoped *sql.Tx through context so stores
// issue their queries inside the transaction that bound the row-level
// security identity. Stores that find no transaction fall back to the bare
// pool, where no identity is bound and RLS filters everything - queries fail
// closed rather than open.
package tx

import (
	"context"
	"database/sql"
)

type ctxKey struct{}

var txKey = ctxKey{}

// Executor is the subset of *sql.Tx / *sql.DB stores need. Using the
// interface keeps store code identical inside and outside a transaction.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx stores a SQL transaction in context for downstream store usage.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extracts a SQL transaction from context if present.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}

// ExecutorFrom returns the context transaction when present, otherwise the
// fallback (normally the pool handle).
func ExecutorFrom(ctx context.Context, fallback Executor) Executor {
	if tx, ok := From(ctx); ok {
		return tx
	}
	return fallback
}
