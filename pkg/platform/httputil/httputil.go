// Package httputil centralizes JSON encoding and domain-error translation for
// the HTTP transport so every handler produces the same envelopes.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	dErrors "tome/pkg/domainerrors"
)

// WriteJSON encodes v as the response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates err into a JSON error envelope. Internal errors omit
// the description so storage details never reach clients; every other code is
// caller-facing and keeps its message.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := dErrors.ToHTTPStatus(code)

	body := map[string]string{"error": string(code)}
	var de *dErrors.Error
	if code != dErrors.CodeInternal && errors.As(err, &de) && de.Message != "" {
		body["error_description"] = de.Message
	}
	WriteJSON(w, status, body)
}

// DecodeAndPrepare decodes the request body into T and writes a bad-request
// envelope on malformed JSON. The second return is false when the caller
// should stop.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "malformed request body",
			"request_id", requestID,
			"error", err,
		)
		WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "malformed request body"))
		return req, false
	}
	return req, true
}
