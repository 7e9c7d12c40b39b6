package sharelink

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"tome/internal/document"
	id "tome/pkg/domain"
	dErrors "tome/pkg/domainerrors"
	"tome/pkg/platform/httputil"
)

// Handler wires share link endpoints to the service.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterProtected mounts the management endpoints.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Post("/workspaces/{workspaceID}/share-links", h.HandleCreate)
	r.Delete("/share-links/{shareLinkID}", h.HandleRevoke)
}

// RegisterPublic mounts the anonymous resolution endpoint.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/share/{token}", h.HandleResolve)
}

type linkResponse struct {
	ID          string     `json:"id"`
	Token       string     `json:"token"`
	WorkspaceID string     `json:"workspace_id"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toLinkResponse(link *ShareLink) linkResponse {
	resp := linkResponse{
		ID:          link.ID.String(),
		Token:       link.Token,
		WorkspaceID: link.WorkspaceID.String(),
		CreatedAt:   link.CreatedAt,
	}
	if !link.ExpiresAt.IsZero() {
		expires := link.ExpiresAt
		resp.ExpiresAt = &expires
	}
	return resp
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	wsID, err := id.ParseWorkspaceID(chi.URLParam(r, "workspaceID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid workspace id"))
		return
	}

	link, err := h.service.Create(ctx, wsID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toLinkResponse(link))
}

func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	linkID, err := id.ParseShareLinkID(chi.URLParam(r, "shareLinkID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid share link id"))
		return
	}

	if err := h.service.Revoke(ctx, linkID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type sharedDocumentResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	share, err := h.service.Resolve(ctx, chi.URLParam(r, "token"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"workspace_name": share.WorkspaceName,
		"documents": lo.Map(share.Documents, func(doc document.Document, _ int) sharedDocumentResponse {
			return sharedDocumentResponse{
				ID:        doc.ID.String(),
				Title:     doc.Title,
				Content:   doc.Content,
				CreatedAt: doc.CreatedAt,
			}
		}),
	})
}
