// Package httptransport assembles the chi router: shared middleware chain,
// public routes, and the authenticated API surface.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tome/internal/auth"
	"tome/internal/document"
	"tome/internal/platform/metrics"
	"tome/internal/platform/middleware"
	"tome/internal/search"
	"tome/internal/sharelink"
	"tome/internal/workspace"
	authmw "tome/pkg/platform/middleware/auth"
)

// Deps carries everything the router mounts.
type Deps struct {
	Auth       *auth.Handler
	Workspaces *workspace.Handler
	Documents  *document.Handler
	Search     *search.Handler
	ShareLinks *sharelink.Handler

	TokenValidator authmw.TokenValidator
	Revocation     authmw.RevocationChecker
	Metrics        *metrics.Metrics
	Logger         *slog.Logger
}

// NewRouter wires the full HTTP surface. Identity installation happens
// per-group: RequireAuth guards the API, the public share routes run with
// OptionalAuth so a logged-in visitor still resolves links anonymously-safe.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.Latency(deps.Metrics))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Public surface.
	r.Group(func(r chi.Router) {
		deps.Auth.RegisterPublic(r)
	})
	r.Group(func(r chi.Router) {
		r.Use(authmw.OptionalAuth(deps.TokenValidator, deps.Revocation, deps.Logger))
		deps.ShareLinks.RegisterPublic(r)
	})

	// Authenticated API.
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(deps.TokenValidator, deps.Revocation, deps.Logger))
		deps.Auth.RegisterProtected(r)
		deps.Workspaces.Register(r)
		deps.Documents.Register(r)
		deps.Search.Register(r)
		deps.ShareLinks.RegisterProtected(r)
	})

	return r
}
