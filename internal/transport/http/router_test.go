package httptransport

import (
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tome/internal/audit"
	"tome/internal/auth"
	"tome/internal/document"
	"tome/internal/indexer"
	"tome/internal/jwtoken"
	"tome/internal/platform/metrics"
	"tome/internal/search"
	"tome/internal/sharelink"
	"tome/internal/workspace"
	"tome/pkg/testutil"
)

type nopEnqueuer struct{}

func (nopEnqueuer) Enqueue(indexer.Task) {}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := slog.Default()
	m := metrics.NewNop()
	scoper := &testutil.ScoperSpy{}
	auditStore := audit.NewInMemoryStore()

	jwtSvc := jwtoken.NewService("test-signing-key", "tome", "tome-api")
	revocations := auth.NewInMemoryRevocationList()

	authSvc := auth.NewService(scoper, auth.NewInMemoryStore(), revocations, jwtSvc, auditStore, logger, 15*time.Minute)

	wsStore := workspace.NewInMemoryStore()
	wsSvc := workspace.NewService(scoper, wsStore, logger)

	docStore := document.NewInMemoryStore()
	docSvc := document.NewService(scoper, docStore, nil, nopEnqueuer{}, m, logger)

	searchSvc := search.NewService(scoper, docStore, logger)
	linkSvc := sharelink.NewService(scoper, sharelink.NewInMemoryStore(), wsStore, docStore, auditStore, m, logger, time.Hour)

	return NewRouter(Deps{
		Auth:           auth.NewHandler(authSvc, logger),
		Workspaces:     workspace.NewHandler(wsSvc, logger),
		Documents:      document.NewHandler(docSvc, logger),
		Search:         search.NewHandler(searchSvc, logger),
		ShareLinks:     sharelink.NewHandler(linkSvc, logger),
		TokenValidator: jwtoken.NewMiddlewareAdapter(jwtSvc),
		Revocation:     revocations,
		Metrics:        m,
		Logger:         logger,
	})
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)

	rec := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
	testutil.AssertStatusOK(t, rec)
}

func TestAuthenticatedSurfaceRejectsAnonymous(t *testing.T) {
	router := newTestRouter(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/workspaces"},
		{http.MethodGet, "/workspaces"},
		{http.MethodPost, "/documents"},
		{http.MethodGet, "/search?q=x"},
		{http.MethodPost, "/auth/logout"},
		{http.MethodGet, "/me"},
	} {
		req := testutil.NewRequest(t, route.method, route.path)
		rec := testutil.DoRequest(router, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", route.method, route.path)
	}
}

func TestRegisterLoginAndUseAPI(t *testing.T) {
	router := newTestRouter(t)

	rec := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/auth/register", map[string]string{
		"email":        "river@example.com",
		"display_name": "River",
		"password":     "correct-horse",
	}))
	testutil.AssertStatus(t, rec, http.StatusCreated)

	rec = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "river@example.com",
		"password": "correct-horse",
	}))
	testutil.AssertStatusOK(t, rec)
	login := testutil.UnmarshalResponse[struct {
		AccessToken string `json:"access_token"`
	}](t, rec)
	require.NotEmpty(t, login.AccessToken)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/workspaces", map[string]string{"name": "field notes"})
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	rec = testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rec, http.StatusCreated)

	req = testutil.NewRequest(t, http.MethodGet, "/me")
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	rec = testutil.DoRequest(router, req)
	testutil.AssertStatusOK(t, rec)
	testutil.AssertJSONContains(t, rec, "email", "river@example.com")
}

func TestLogoutRevokesToken(t *testing.T) {
	router := newTestRouter(t)

	rec := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/auth/register", map[string]string{
		"email":        "logout@example.com",
		"display_name": "Out",
		"password":     "correct-horse",
	}))
	testutil.AssertStatus(t, rec, http.StatusCreated)

	rec = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "logout@example.com",
		"password": "correct-horse",
	}))
	login := testutil.UnmarshalResponse[struct {
		AccessToken string `json:"access_token"`
	}](t, rec)

	req := testutil.NewRequest(t, http.MethodPost, "/auth/logout")
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	rec = testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rec, http.StatusNoContent)

	req = testutil.NewRequest(t, http.MethodGet, "/me")
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	rec = testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rec, http.StatusUnauthorized)
}

func TestPublicShareRouteOutcomes(t *testing.T) {
	router := newTestRouter(t)

	rec := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/share/nonexistent-token"))
	testutil.AssertStatusAndError(t, rec, http.StatusNotFound, "not_found")
}
