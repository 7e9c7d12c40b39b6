// Package rls is the single sanctioned entry point for tenant-scoped
// database access. Every operation opens one transaction whose first
// statement binds the acting identity into the transaction-local session
// variable app.current_user_id; the row-level security policies installed by
// the migrations read that variable to filter every query issued inside the
// transaction. The variable is set with is_local=true, so commit or rollback
// clears it and a pooled connection can never carry one request's identity
// into the next borrower's transaction.
//
// Application services must not touch *sql.DB directly for tenant-owned
// tables. They call ForUser, WithCurrentUser, or - for the narrow, audited
// set of system operations - WithoutRLS, and run their store calls against
// the transaction carried in the callback context (see pkg/platform/tx).
package rls

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	id "tome/pkg/domain"
	dErrors "tome/pkg/domainerrors"
	txcontext "tome/pkg/platform/tx"
	"tome/pkg/requestcontext"
)

// ErrNoIdentity is surfaced by WithCurrentUser when the calling context has
// no bound identity. Alias of the requestcontext sentinel so callers can
// errors.Is against either package.
var ErrNoIdentity = requestcontext.ErrNoIdentity

// identity is the value bound into the session variable. It is constructed
// only inside this package: either from a parsed user ID or the bypass
// sentinel. Keeping the type unexported means no caller can smuggle an
// arbitrary string into the bind statement.
type identity string

// systemIdentity is the bypass sentinel recognized by the RLS policies as
// "match everything". It must stay in sync with the policy predicates in
// db/migrations.
const systemIdentity identity = "SYSTEM"

func userIdentity(userID id.UserID) identity {
	return identity(userID.String())
}

// setIdentitySQL binds the identity with transaction-local scope
// (is_local=true). Parameterized: the identity value never appears in SQL
// text, which closes injection through a crafted identity.
const setIdentitySQL = `SELECT set_config('app.current_user_id', $1, true)`

// Scoper is the facade surface services depend on. *DB is the production
// implementation; tests substitute fakes that run the callback directly.
type Scoper interface {
	ForUser(ctx context.Context, userID id.UserID, fn func(ctx context.Context) error) error
	WithCurrentUser(ctx context.Context, fn func(ctx context.Context) error) error
	WithoutRLS(ctx context.Context, reason string, fn func(ctx context.Context) error) error
}

// BypassRecorder persists a bypass audit event inside the bypassed
// transaction itself, typically into the audit outbox. Optional; the
// structured log entry is always emitted regardless.
type BypassRecorder interface {
	RecordBypass(ctx context.Context, reason string) error
}

// DB composes the connection pool with the session binder. Construct once at
// startup and hand to services.
type DB struct {
	db       *sql.DB
	logger   *slog.Logger
	tracer   trace.Tracer
	recorder BypassRecorder
}

// Option configures a DB.
type Option func(*DB)

// WithBypassRecorder wires an audit sink that records each bypass inside the
// bypassed transaction.
func WithBypassRecorder(rec BypassRecorder) Option {
	return func(d *DB) { d.recorder = rec }
}

// New constructs the scoped-access facade over an open pool.
func New(db *sql.DB, logger *slog.Logger, opts ...Option) *DB {
	d := &DB{
		db:     db,
		logger: logger,
		tracer: otel.Tracer("tome/internal/rls"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// ForUser runs fn inside a transaction scoped to the given user. Use it from
// background jobs and from code acting on behalf of a known identity that is
// not the ambient request identity.
func (d *DB) ForUser(ctx context.Context, userID id.UserID, fn func(ctx context.Context) error) error {
	if userID.IsNil() {
		return dErrors.Wrap(dErrors.CodeUnauthorized, "refusing to scope transaction to nil user id", ErrNoIdentity)
	}
	return d.scoped(ctx, userIdentity(userID), "for_user", fn)
}

// WithCurrentUser runs fn scoped to the ambient request identity installed
// by the auth middleware. Fails before any database work when no identity is
// bound; fn is never invoked in that case.
func (d *DB) WithCurrentUser(ctx context.Context, fn func(ctx context.Context) error) error {
	userID, err := requestcontext.RequireUserID(ctx)
	if err != nil {
		return dErrors.Wrap(dErrors.CodeUnauthorized, "no authenticated identity in context", err)
	}
	return d.scoped(ctx, userIdentity(userID), "with_current_user", fn)
}

// WithoutRLS runs fn with tenant filtering disabled by binding the SYSTEM
// sentinel. This is the highest-risk primitive in the codebase. Callers must
// have performed an independent authorization check first (a share-link
// token lookup, a credential check) and must pass a stable reason used for
// audit. Every invocation emits a warning-level RLS_BYPASS event with a
// stack trace before fn executes.
func (d *DB) WithoutRLS(ctx context.Context, reason string, fn func(ctx context.Context) error) error {
	d.auditBypass(ctx, reason)
	return d.scoped(ctx, systemIdentity, "bypass", func(txCtx context.Context) error {
		if d.recorder != nil {
			if err := d.recorder.RecordBypass(txCtx, reason); err != nil {
				return fmt.Errorf("record rls bypass: %w", err)
			}
		}
		return fn(txCtx)
	})
}

// scoped is the transaction-scoped session binder: one transaction, bind
// first, then the caller's statements, then commit or rollback atomically.
func (d *DB) scoped(ctx context.Context, ident identity, mode string, fn func(ctx context.Context) error) error {
	ctx, span := d.tracer.Start(ctx, "rls.scoped",
		trace.WithAttributes(attribute.String("rls.mode", mode)))
	defer span.End()

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		span.SetStatus(codes.Error, "begin failed")
		scopedTxTotal.WithLabelValues(mode, "begin_error").Inc()
		return fmt.Errorf("begin scoped transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, setIdentitySQL, string(ident)); err != nil {
		_ = tx.Rollback()
		span.SetStatus(codes.Error, "bind failed")
		scopedTxTotal.WithLabelValues(mode, "bind_error").Inc()
		return fmt.Errorf("bind rls identity: %w", err)
	}

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		// Rollback also discards the session-variable bind. The callback's
		// error propagates unchanged; a rollback failure is only logged so
		// the original cause is what callers see.
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			d.logger.ErrorContext(ctx, "rollback of scoped transaction failed",
				"error", rbErr,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
		span.SetStatus(codes.Error, "callback failed")
		scopedTxTotal.WithLabelValues(mode, "rollback").Inc()
		return err
	}

	if err := tx.Commit(); err != nil {
		span.SetStatus(codes.Error, "commit failed")
		scopedTxTotal.WithLabelValues(mode, "commit_error").Inc()
		return fmt.Errorf("commit scoped transaction: %w", err)
	}

	scopedTxTotal.WithLabelValues(mode, "commit").Inc()
	return nil
}
