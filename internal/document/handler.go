package document

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	id "tome/pkg/domain"
	dErrors "tome/pkg/domainerrors"
	"tome/pkg/platform/httputil"
	"tome/pkg/requestcontext"
)

// Handler wires document endpoints to the document service.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts document endpoints. All of them require authentication.
func (h *Handler) Register(r chi.Router) {
	r.Post("/documents", h.HandleCreate)
	r.Get("/workspaces/{workspaceID}/documents", h.HandleList)
	r.Get("/documents/{documentID}", h.HandleGet)
	r.Delete("/documents/{documentID}", h.HandleDelete)
	r.Get("/documents/{documentID}/download", h.HandleDownloadURL)
}

type createRequest struct {
	WorkspaceID string `json:"workspace_id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	Filename    string `json:"filename,omitempty"`
}

type documentResponse struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	UploaderID  string    `json:"uploader_id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	HasFile     bool      `json:"has_file"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toDocumentResponse(doc Document) documentResponse {
	return documentResponse{
		ID:          doc.ID.String(),
		WorkspaceID: doc.WorkspaceID.String(),
		UploaderID:  doc.UploaderID.String(),
		Title:       doc.Title,
		Content:     doc.Content,
		HasFile:     doc.FileURL != "",
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[createRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	wsID, err := id.ParseWorkspaceID(req.WorkspaceID)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid workspace id"))
		return
	}

	doc, err := h.service.Create(ctx, CreateRequest{
		WorkspaceID: wsID,
		Title:       req.Title,
		Content:     req.Content,
		Filename:    req.Filename,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "document creation failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toDocumentResponse(*doc))
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	wsID, err := id.ParseWorkspaceID(chi.URLParam(r, "workspaceID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid workspace id"))
		return
	}

	docs, err := h.service.List(ctx, wsID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"documents": lo.Map(docs, func(doc Document, _ int) documentResponse {
			return toDocumentResponse(doc)
		}),
	})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	docID, err := id.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid document id"))
		return
	}

	doc, err := h.service.Get(ctx, docID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDocumentResponse(*doc))
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	docID, err := id.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid document id"))
		return
	}

	if err := h.service.Delete(ctx, docID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDownloadURL returns a signed URL for the document's file, or an empty
// URL when the document has no downloadable file.
func (h *Handler) HandleDownloadURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	docID, err := id.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid document id"))
		return
	}

	url, err := h.service.DownloadURL(ctx, docID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"download_url": url})
}
