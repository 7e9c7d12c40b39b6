// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// This package defines context keys and getter/setter functions for values
// that are typically set by middleware but consumed by services. By keeping
// this package free of net/http dependencies, background jobs and tests can
// bind an identity the same way the middleware does.
//
// The authenticated user identity stored here is the ambient input to
// rls.WithCurrentUser. A derived context is a new nested scope: binding a
// different identity with WithUserID never mutates the parent context, so
// concurrent requests and nested on-behalf-of sections cannot observe each
// other's identity.
//
// Usage in services (read values):
//
//	userID, err := requestcontext.RequireUserID(ctx)
//	requestID := requestcontext.RequestID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithUserID(ctx, userID)
//	ctx = requestcontext.WithRequestID(ctx, requestID)
package requestcontext

import (
	"context"
	"errors"
	"time"

	id "tome/pkg/domain"
)

// ErrNoIdentity is returned by RequireUserID when no authenticated identity
// has been bound in the calling context's lineage. This is a programmer
// error: proceeding would run a query with no tenant scope. Callers must
// surface it, never swallow it.
var ErrNoIdentity = errors.New("no authenticated identity bound in context")

// Context key types (unexported for encapsulation).
type (
	userIDKey      struct{}
	tokenIDKey     struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
	clientIPKey    struct{}
	userAgentKey   struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyUserID      = userIDKey{}
	ContextKeyTokenID     = tokenIDKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
	ContextKeyClientIP    = clientIPKey{}
	ContextKeyUserAgent   = userAgentKey{}
)

// UserID retrieves the authenticated user ID from the context.
// Returns the zero value (nil UUID) if not set - use this only where
// anonymous access is legitimate. Everywhere else, use RequireUserID.
func UserID(ctx context.Context) id.UserID {
	if userID, ok := ctx.Value(ContextKeyUserID).(id.UserID); ok {
		return userID
	}
	return id.UserID{}
}

// RequireUserID retrieves the authenticated user ID or fails with
// ErrNoIdentity. The loud failure is deliberate: it turns "forgot to
// authenticate this code path" into a visible error instead of a silent
// unscoped query.
func RequireUserID(ctx context.Context) (id.UserID, error) {
	userID, ok := ctx.Value(ContextKeyUserID).(id.UserID)
	if !ok || userID.IsNil() {
		return id.UserID{}, ErrNoIdentity
	}
	return userID, nil
}

// WithUserID injects a user ID into the context. The returned context is a
// nested scope; the parent keeps its previous identity.
func WithUserID(ctx context.Context, userID id.UserID) context.Context {
	return context.WithValue(ctx, ContextKeyUserID, userID)
}

// TokenID retrieves the JTI of the access token that authenticated this
// request. Empty for anonymous requests. Used by logout to revoke the exact
// presented token.
func TokenID(ctx context.Context) string {
	if jti, ok := ctx.Value(ContextKeyTokenID).(string); ok {
		return jti
	}
	return ""
}

// WithTokenID injects a token JTI into the context.
func WithTokenID(ctx context.Context, jti string) context.Context {
	return context.WithValue(ctx, ContextKeyTokenID, jti)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// ClientIP retrieves the client IP address from the context.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(ContextKeyClientIP).(string); ok {
		return ip
	}
	return ""
}

// UserAgent retrieves the User-Agent from the context.
func UserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(ContextKeyUserAgent).(string); ok {
		return ua
	}
	return ""
}

// WithClientMetadata injects client IP and User-Agent into a context.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyClientIP, clientIP)
	return context.WithValue(ctx, ContextKeyUserAgent, userAgent)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() for non-HTTP contexts (workers, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Useful for service unit
// tests and for workers that need a consistent time within a batch.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
