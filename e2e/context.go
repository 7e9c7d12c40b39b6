// Package e2e drives a running tome server over HTTP with godog scenarios.
// Point TOME_E2E_BASE_URL at a server started with the full stack (Postgres
// with the migrations applied, connecting as the tome_app role) and run the
// suite with `go test ./e2e`.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TestContext carries HTTP state across steps within one scenario: the last
// response, the bearer token of the acting user, and IDs saved by earlier
// steps for later ones to reference.
type TestContext struct {
	baseURL string
	client  *http.Client

	lastStatus int
	lastBody   map[string]interface{}
	lastRaw    []byte

	accessToken string
	workspaceID string
	shareToken  string
}

func NewTestContext(baseURL string) *TestContext {
	return &TestContext{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Reset clears all scenario state. Registered as a before-scenario hook so
// scenarios cannot leak tokens or IDs into each other.
func (tc *TestContext) Reset() {
	tc.lastStatus = 0
	tc.lastBody = nil
	tc.lastRaw = nil
	tc.accessToken = ""
	tc.workspaceID = ""
	tc.shareToken = ""
}

// POST sends a JSON body. The current access token, if any, is attached.
func (tc *TestContext) POST(path string, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, tc.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return tc.do(req, nil)
}

// GET sends a GET request with optional extra headers.
func (tc *TestContext) GET(path string, headers map[string]string) error {
	req, err := http.NewRequest(http.MethodGet, tc.baseURL+path, nil)
	if err != nil {
		return err
	}
	return tc.do(req, headers)
}

// DELETE sends a DELETE request.
func (tc *TestContext) DELETE(path string) error {
	req, err := http.NewRequest(http.MethodDelete, tc.baseURL+path, nil)
	if err != nil {
		return err
	}
	return tc.do(req, nil)
}

func (tc *TestContext) do(req *http.Request, headers map[string]string) error {
	if tc.accessToken != "" && req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+tc.accessToken)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	tc.lastStatus = res.StatusCode
	tc.lastRaw = raw
	tc.lastBody = nil
	if len(raw) > 0 {
		var parsed map[string]interface{}
		if err := json.Unmarshal(raw, &parsed); err == nil {
			tc.lastBody = parsed
		}
	}
	return nil
}

// LastStatus returns the status code of the most recent response.
func (tc *TestContext) LastStatus() int { return tc.lastStatus }

// GetResponseField returns a top-level field from the last JSON response.
func (tc *TestContext) GetResponseField(field string) (interface{}, error) {
	if tc.lastBody == nil {
		return nil, fmt.Errorf("last response was not a JSON object: %q", tc.lastRaw)
	}
	val, ok := tc.lastBody[field]
	if !ok {
		return nil, fmt.Errorf("response has no field %q: %q", field, tc.lastRaw)
	}
	return val, nil
}

// ResponseContains reports whether the last JSON response has the field.
func (tc *TestContext) ResponseContains(field string) bool {
	_, ok := tc.lastBody[field]
	return ok
}

func (tc *TestContext) GetAccessToken() string      { return tc.accessToken }
func (tc *TestContext) SetAccessToken(token string) { tc.accessToken = token }

func (tc *TestContext) GetWorkspaceID() string   { return tc.workspaceID }
func (tc *TestContext) SetWorkspaceID(id string) { tc.workspaceID = id }

func (tc *TestContext) GetShareToken() string      { return tc.shareToken }
func (tc *TestContext) SetShareToken(token string) { tc.shareToken = token }
