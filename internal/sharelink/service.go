package sharelink

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mssola/useragent"

	"tome/internal/audit"
	"tome/internal/document"
	"tome/internal/platform/metrics"
	"tome/internal/rls"
	"tome/internal/workspace"
	id "tome/pkg/domain"
	dErrors "tome/pkg/domainerrors"
	"tome/pkg/platform/sentinel"
	"tome/pkg/requestcontext"
)

const reasonResolve = "share-link-resolve"

// WorkspaceFinder is the slice of the workspace store resolution needs.
type WorkspaceFinder interface {
	FindByID(ctx context.Context, wsID id.WorkspaceID) (*workspace.Workspace, error)
}

// DocumentLister is the slice of the document store resolution needs.
type DocumentLister interface {
	ListByWorkspace(ctx context.Context, wsID id.WorkspaceID) ([]document.Document, error)
}

// Service implements share link management and public resolution.
type Service struct {
	scoper     rls.Scoper
	links      Store
	workspaces WorkspaceFinder
	documents  DocumentLister
	audit      audit.Store
	metrics    *metrics.Metrics
	logger     *slog.Logger
	linkTTL    time.Duration
}

func NewService(scoper rls.Scoper, links Store, workspaces WorkspaceFinder, documents DocumentLister, auditStore audit.Store, m *metrics.Metrics, logger *slog.Logger, linkTTL time.Duration) *Service {
	return &Service{
		scoper:     scoper,
		links:      links,
		workspaces: workspaces,
		documents:  documents,
		audit:      auditStore,
		metrics:    m,
		logger:     logger,
		linkTTL:    linkTTL,
	}
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate share token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Create mints a share link for a workspace the caller can see. The insert
// runs under the caller's own scope, so sharing a foreign workspace fails
// inside the transaction.
func (s *Service) Create(ctx context.Context, wsID id.WorkspaceID) (*ShareLink, error) {
	if wsID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "workspace id is required")
	}
	userID, err := requestcontext.RequireUserID(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeUnauthorized, "authentication required", err)
	}

	token, err := newToken()
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	link := &ShareLink{
		ID:          id.NewShareLinkID(),
		Token:       token,
		WorkspaceID: wsID,
		CreatedBy:   userID,
		IsActive:    true,
		CreatedAt:   now,
	}
	if s.linkTTL > 0 {
		link.ExpiresAt = now.Add(s.linkTTL)
	}

	err = s.scoper.WithCurrentUser(ctx, func(txCtx context.Context) error {
		// The caller must be able to see the workspace; under the policies a
		// foreign workspace reads as missing.
		if _, err := s.workspaces.FindByID(txCtx, wsID); err != nil {
			return err
		}
		return s.links.Create(txCtx, link)
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "workspace not found")
		}
		return nil, fmt.Errorf("create share link: %w", err)
	}

	s.logger.InfoContext(ctx, "share link created",
		"share_link_id", link.ID,
		"workspace_id", wsID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return link, nil
}

// Revoke deactivates a link. Any member who can see the link may revoke it.
func (s *Service) Revoke(ctx context.Context, linkID id.ShareLinkID) error {
	err := s.scoper.WithCurrentUser(ctx, func(txCtx context.Context) error {
		return s.links.Deactivate(txCtx, linkID)
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "share link not found")
		}
		return fmt.Errorf("revoke share link: %w", err)
	}
	return nil
}

// ResolvedShare is the read-only view a valid link exposes.
type ResolvedShare struct {
	WorkspaceName string
	Documents     []document.Document
}

// Resolve turns a token into workspace content. The token lookup is the only
// step that runs unscoped, because an anonymous visitor has no identity to
// scope by; the token itself is the proof of access. Everything after runs
// as the link creator. Outcomes are deliberately distinct: an unknown token
// is "not found", a known but revoked or expired one is "forbidden".
func (s *Service) Resolve(ctx context.Context, token string) (*ResolvedShare, error) {
	if token == "" {
		s.metrics.ShareLinkResolves.WithLabelValues("invalid").Inc()
		return nil, dErrors.New(dErrors.CodeNotFound, "unknown share link")
	}

	var link *ShareLink
	err := s.scoper.WithoutRLS(ctx, reasonResolve, func(txCtx context.Context) error {
		found, err := s.links.FindByToken(txCtx, token)
		if err != nil {
			return err
		}
		link = found
		return nil
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.ShareLinkResolves.WithLabelValues("unknown").Inc()
			return nil, dErrors.New(dErrors.CodeNotFound, "unknown share link")
		}
		return nil, fmt.Errorf("resolve share token: %w", err)
	}

	now := requestcontext.Now(ctx)
	if !link.IsActive {
		s.metrics.ShareLinkResolves.WithLabelValues("revoked").Inc()
		return nil, dErrors.New(dErrors.CodeForbidden, "share link has been revoked")
	}
	if link.expired(now) {
		s.metrics.ShareLinkResolves.WithLabelValues("expired").Inc()
		return nil, dErrors.New(dErrors.CodeForbidden, "share link has expired")
	}

	var out ResolvedShare
	err = s.scoper.ForUser(ctx, link.CreatedBy, func(txCtx context.Context) error {
		ws, err := s.workspaces.FindByID(txCtx, link.WorkspaceID)
		if err != nil {
			return err
		}
		docs, err := s.documents.ListByWorkspace(txCtx, link.WorkspaceID)
		if err != nil {
			return err
		}
		out.WorkspaceName = ws.Name
		out.Documents = docs
		return s.audit.Append(txCtx, audit.Event{
			Kind:      audit.KindShareLinkAccess,
			UserID:    link.CreatedBy.String(),
			ClientIP:  requestcontext.ClientIP(ctx),
			UserAgent: requestcontext.UserAgent(ctx),
			Detail:    describeClient(requestcontext.UserAgent(ctx)),
		})
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			// The workspace vanished, or the creator lost access after the
			// link was minted. Either way the link no longer grants anything.
			s.metrics.ShareLinkResolves.WithLabelValues("stale").Inc()
			return nil, dErrors.New(dErrors.CodeForbidden, "share link is no longer valid")
		}
		return nil, fmt.Errorf("load shared workspace: %w", err)
	}

	s.metrics.ShareLinkResolves.WithLabelValues("ok").Inc()
	return &out, nil
}

// describeClient condenses the visitor's user agent for the audit trail.
func describeClient(rawUA string) string {
	if rawUA == "" {
		return ""
	}
	ua := useragent.New(rawUA)
	name, version := ua.Browser()
	if name == "" {
		return rawUA
	}
	return fmt.Sprintf("%s %s on %s", name, version, ua.OS())
}
