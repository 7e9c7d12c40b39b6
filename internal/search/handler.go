package search

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"tome/internal/document"
	"tome/pkg/platform/httputil"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the search endpoint. Requires authentication.
func (h *Handler) Register(r chi.Router) {
	r.Get("/search", h.HandleSearch)
}

type resultResponse struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspace_id"`
	Title       string `json:"title"`
}

func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	results, err := h.service.Search(ctx, r.URL.Query().Get("q"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"results": lo.Map(results, func(doc document.Document, _ int) resultResponse {
			return resultResponse{
				ID:          doc.ID.String(),
				WorkspaceID: doc.WorkspaceID.String(),
				Title:       doc.Title,
			}
		}),
	})
}
