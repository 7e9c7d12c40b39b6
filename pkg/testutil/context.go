package testutil

import (
	"net/http"

	id "tome/pkg/domain"
	"tome/pkg/requestcontext"
)

// WithUserID binds an authenticated identity on the request context,
// simulating what the auth middleware does for authenticated requests.
// Invalid UUIDs are silently ignored so tests can also exercise the
// anonymous path.
func WithUserID(req *http.Request, userID string) *http.Request {
	parsed, err := id.ParseUserID(userID)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithUserID(req.Context(), parsed))
}

// WithIdentity binds a typed user ID on the request context.
func WithIdentity(req *http.Request, userID id.UserID) *http.Request {
	return req.WithContext(requestcontext.WithUserID(req.Context(), userID))
}

// WithRequestID stamps a request ID for log-correlation assertions.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
