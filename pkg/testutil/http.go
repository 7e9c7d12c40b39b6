// Package testutil provides shared helpers for handler and router tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewRequest builds a bodyless test request.
func NewRequest(t *testing.T, method, path string) *http.Request {
	t.Helper()
	return httptest.NewRequest(method, path, nil)
}

// NewJSONRequest builds a test request carrying body marshaled as JSON.
func NewJSONRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err, "marshal request body")
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// DoRequest runs the request through the handler and returns the recorder.
func DoRequest(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// UnmarshalResponse decodes the recorded body into T.
func UnmarshalResponse[T any](t *testing.T, rec *httptest.ResponseRecorder) *T {
	t.Helper()
	var result T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result), "unmarshal response body")
	return &result
}

// AssertStatus checks the recorded status code.
func AssertStatus(t *testing.T, rec *httptest.ResponseRecorder, expected int) {
	t.Helper()
	assert.Equal(t, expected, rec.Code, "unexpected status code")
}

// AssertStatusOK checks for 200 OK.
func AssertStatusOK(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	AssertStatus(t, rec, http.StatusOK)
}

// AssertStatusAndError checks the status code and the "error" field of the
// JSON error body written by httputil.WriteError.
func AssertStatusAndError(t *testing.T, rec *httptest.ResponseRecorder, expectedStatus int, expectedCode string) {
	t.Helper()
	AssertStatus(t, rec, expectedStatus)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "unmarshal error body")
	assert.Equal(t, expectedCode, body["error"], "unexpected error code")
}

// AssertJSONContains checks one top-level key of the recorded JSON body.
func AssertJSONContains(t *testing.T, rec *httptest.ResponseRecorder, key string, expected any) {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "unmarshal response body")
	assert.Equal(t, expected, body[key], "unexpected value for key %q", key)
}
