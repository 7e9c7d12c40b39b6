package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"tome/internal/rls"
	id "tome/pkg/domain"
	dErrors "tome/pkg/domainerrors"
	"tome/pkg/platform/sentinel"
	"tome/pkg/requestcontext"
)

// Service implements workspace operations. Every operation runs under
// WithCurrentUser: the database policies decide which rows the caller can
// see, the service only adds role checks the policies cannot express in a
// caller-facing way (a policy violation surfaces as "not found", an owner
// check here surfaces as "forbidden").
type Service struct {
	scoper rls.Scoper
	store  Store
	logger *slog.Logger
}

func NewService(scoper rls.Scoper, store Store, logger *slog.Logger) *Service {
	return &Service{scoper: scoper, store: store, logger: logger}
}

// Create inserts the workspace and the owner membership in one scoped
// transaction, so a workspace can never exist without its owner being a
// member.
func (s *Service) Create(ctx context.Context, name string) (*Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "workspace name is required")
	}

	userID, err := requestcontext.RequireUserID(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeUnauthorized, "authentication required", err)
	}

	now := requestcontext.Now(ctx)
	ws := &Workspace{
		ID:        id.NewWorkspaceID(),
		Name:      name,
		OwnerID:   userID,
		CreatedAt: now,
	}

	err = s.scoper.WithCurrentUser(ctx, func(txCtx context.Context) error {
		if err := s.store.Create(txCtx, ws); err != nil {
			return err
		}
		return s.store.AddMember(txCtx, &Member{
			WorkspaceID: ws.ID,
			UserID:      userID,
			Role:        RoleOwner,
			AddedAt:     now,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}

	s.logger.InfoContext(ctx, "workspace created",
		"workspace_id", ws.ID,
		"owner_id", userID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return ws, nil
}

// Get returns a workspace with its members. A workspace outside the caller's
// memberships is indistinguishable from a missing one.
func (s *Service) Get(ctx context.Context, wsID id.WorkspaceID) (*Workspace, []Member, error) {
	var (
		ws      *Workspace
		members []Member
	)
	err := s.scoper.WithCurrentUser(ctx, func(txCtx context.Context) error {
		found, err := s.store.FindByID(txCtx, wsID)
		if err != nil {
			return err
		}
		ws = found
		members, err = s.store.ListMembers(txCtx, wsID)
		return err
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, dErrors.New(dErrors.CodeNotFound, "workspace not found")
		}
		return nil, nil, fmt.Errorf("get workspace: %w", err)
	}
	return ws, members, nil
}

// List returns the workspaces visible to the caller.
func (s *Service) List(ctx context.Context) ([]Workspace, error) {
	var out []Workspace
	err := s.scoper.WithCurrentUser(ctx, func(txCtx context.Context) error {
		list, err := s.store.List(txCtx)
		if err != nil {
			return err
		}
		out = list
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	return out, nil
}

// AddMember grants a user membership. Owner-only.
func (s *Service) AddMember(ctx context.Context, wsID id.WorkspaceID, userID id.UserID) error {
	if userID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "member user id is required")
	}

	err := s.scoper.WithCurrentUser(ctx, func(txCtx context.Context) error {
		if _, err := s.requireOwner(txCtx, ctx, wsID); err != nil {
			return err
		}
		return s.store.AddMember(txCtx, &Member{
			WorkspaceID: wsID,
			UserID:      userID,
			Role:        RoleMember,
			AddedAt:     requestcontext.Now(ctx),
		})
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "workspace not found")
		}
		var de *dErrors.Error
		if errors.As(err, &de) {
			return err
		}
		return fmt.Errorf("add workspace member: %w", err)
	}
	return nil
}

// RemoveMember revokes a membership. Owner-only; the owner's own membership
// cannot be removed.
func (s *Service) RemoveMember(ctx context.Context, wsID id.WorkspaceID, userID id.UserID) error {
	err := s.scoper.WithCurrentUser(ctx, func(txCtx context.Context) error {
		ws, err := s.requireOwner(txCtx, ctx, wsID)
		if err != nil {
			return err
		}
		if userID == ws.OwnerID {
			return dErrors.New(dErrors.CodeInvalidInput, "the owner cannot be removed from their workspace")
		}
		return s.store.RemoveMember(txCtx, wsID, userID)
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "workspace or membership not found")
		}
		var de *dErrors.Error
		if errors.As(err, &de) {
			return err
		}
		return fmt.Errorf("remove workspace member: %w", err)
	}
	return nil
}

func (s *Service) requireOwner(txCtx, ctx context.Context, wsID id.WorkspaceID) (*Workspace, error) {
	ws, err := s.store.FindByID(txCtx, wsID)
	if err != nil {
		return nil, err
	}
	callerID, err := requestcontext.RequireUserID(ctx)
	if err != nil {
		return nil, err
	}
	if ws.OwnerID != callerID {
		return nil, dErrors.New(dErrors.CodeForbidden, "only the workspace owner can manage members")
	}
	return ws, nil
}
