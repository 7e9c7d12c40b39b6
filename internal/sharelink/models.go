// Package sharelink implements public, token-addressed read access to a
// workspace. Resolution is the codebase's token-then-scope pattern: the
// token lookup is the authorization check and runs on the audited bypass
// path, then every data query re-scopes to the link creator's identity so
// a link can never expose more than its creator could see.
package sharelink

import (
	"time"

	id "tome/pkg/domain"
)

// ShareLink grants anonymous read access to a workspace while it is active
// and unexpired. A zero ExpiresAt means the link does not expire.
type ShareLink struct {
	ID          id.ShareLinkID
	Token       string
	WorkspaceID id.WorkspaceID
	CreatedBy   id.UserID
	IsActive    bool
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

func (l *ShareLink) expired(now time.Time) bool {
	return !l.ExpiresAt.IsZero() && now.After(l.ExpiresAt)
}
