// Package auth installs the verified request identity into the context.
// It runs after credential verification and before any handler logic; the
// identity it installs is the ambient input to rls.WithCurrentUser.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	id "tome/pkg/domain"
	"tome/pkg/requestcontext"
)

// TokenValidator defines the interface for validating access tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

// RevocationChecker defines the interface for checking if tokens are revoked.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Claims represents the claims we expect from the token validator.
type Claims struct {
	UserID string
	JTI    string // token ID for revocation tracking
}

// writeJSONError writes a JSON error response with the given status code.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireAuth rejects requests without a valid bearer token and installs the
// verified subject into the request context. Handlers behind this middleware
// may rely on requestcontext.RequireUserID succeeding.
func RequireAuth(validator TokenValidator, revocation RevocationChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			userID, jti, ok := verify(ctx, r, validator, revocation, logger)
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing, invalid, or revoked token")
				return
			}

			ctx = requestcontext.WithUserID(ctx, userID)
			ctx = requestcontext.WithTokenID(ctx, jti)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth installs an identity when a valid credential is present and
// otherwise passes the request through untouched. It must never install an
// empty or bogus identity: downstream code distinguishes "anonymous" from
// "authenticated" solely by whether the context carries a user ID.
func OptionalAuth(validator TokenValidator, revocation RevocationChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}
			if userID, jti, ok := verify(ctx, r, validator, revocation, logger); ok {
				ctx = requestcontext.WithUserID(ctx, userID)
				ctx = requestcontext.WithTokenID(ctx, jti)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func verify(ctx context.Context, r *http.Request, validator TokenValidator, revocation RevocationChecker, logger *slog.Logger) (id.UserID, string, bool) {
	requestID := requestcontext.RequestID(ctx)

	const bearerPrefix = "Bearer "
	token, hasBearer := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
	if !hasBearer {
		logger.WarnContext(ctx, "unauthorized access - missing token", "request_id", requestID)
		return id.UserID{}, "", false
	}

	claims, err := validator.ValidateToken(token)
	if err != nil {
		logger.WarnContext(ctx, "unauthorized access - invalid token",
			"error", err,
			"request_id", requestID,
		)
		return id.UserID{}, "", false
	}

	if revocation != nil {
		if claims.JTI == "" {
			logger.WarnContext(ctx, "unauthorized access - missing token jti", "request_id", requestID)
			return id.UserID{}, "", false
		}
		revoked, err := revocation.IsRevoked(ctx, claims.JTI)
		if err != nil {
			logger.ErrorContext(ctx, "failed to check token revocation",
				"error", err,
				"request_id", requestID,
			)
			return id.UserID{}, "", false
		}
		if revoked {
			logger.WarnContext(ctx, "unauthorized access - token revoked",
				"jti", claims.JTI,
				"request_id", requestID,
			)
			return id.UserID{}, "", false
		}
	}

	// The subject must parse as a real user ID; a malformed subject must not
	// become an ambient identity.
	userID, err := id.ParseUserID(claims.UserID)
	if err != nil {
		logger.WarnContext(ctx, "unauthorized access - malformed subject",
			"error", err,
			"request_id", requestID,
		)
		return id.UserID{}, "", false
	}
	return userID, claims.JTI, true
}
