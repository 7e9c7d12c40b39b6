package workspace

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

// Handler wires workspace endpoints to the workspace service.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts workspace endpoints. All of them require authentication.
func (h *Handler) Register(r chi.Router) {
	r.Post("/workspaces", h.HandleCreate)
	r.Get("/workspaces", h.HandleList)
	r.Get("/workspaces/{workspaceID}", h.HandleGet)
	r.Post("/workspaces/{workspaceID}/members", h.HandleAddMember)
	r.Delete("/workspaces/{workspaceID}/members/{userID}", h.HandleRemoveMember)
}

type createRequest struct {
	Name string `json:"name"`
}

type workspaceResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

type memberResponse struct {
	UserID  string    `json:"user_id"`
	Role    string    `json:"role"`
	AddedAt time.Time `json:"added_at"`
}

type workspaceDetailResponse struct {
	workspaceResponse
	Members []memberResponse `json:"members"`
}

func toWorkspaceResponse(ws Workspace) workspaceResponse {
	return workspaceResponse{
		ID:        ws.ID.String(),
		Name:      ws.Name,
		OwnerID:   ws.OwnerID.String(),
		CreatedAt: ws.CreatedAt,
	}
}

func toMemberResponse(m Member) memberResponse {
	return memberResponse{
		UserID:  m.UserID.String(),
		Role:    string(m.Role),
		AddedAt: m.AddedAt,
	}
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[createRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	ws, err := h.service.Create(ctx, req.Name)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toWorkspaceResponse(*ws))
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	workspaces, err := h.service.List(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"workspaces": lo.Map(workspaces, func(ws Workspace, _ int) workspaceResponse {
			return toWorkspaceResponse(ws)
		}),
	})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	wsID, err := id.ParseWorkspaceID(chi.URLParam(r, "workspaceID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid workspace id"))
		return
	}

	ws, members, err := h.service.Get(ctx, wsID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, workspaceDetailResponse{
		workspaceResponse: toWorkspaceResponse(*ws),
		Members: lo.Map(members, func(m Member, _ int) memberResponse {
			return toMemberResponse(m)
		}),
	})
}

type addMemberRequest struct {
	UserID string `json:"user_id"`
}

func (h *Handler) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	wsID, err := id.ParseWorkspaceID(chi.URLParam(r, "workspaceID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid workspace id"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[addMemberRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	userID, err := id.ParseUserID(req.UserID)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid member user id"))
		return
	}

	if err := h.service.AddMember(ctx, wsID, userID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	wsID, err := id.ParseWorkspaceID(chi.URLParam(r, "workspaceID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid workspace id"))
		return
	}
	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid member user id"))
		return
	}

	if err := h.service.RemoveMember(ctx, wsID, userID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
