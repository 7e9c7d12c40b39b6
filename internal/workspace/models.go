// Package workspace implements workspace membership and the operations that
// define what a tenant can see. A workspace is the unit of isolation: the
// row-level security policies expose a workspace's rows only to its members.
package workspace

import (
	"time"

	id "tome/pkg/domain"
)

// Role of a workspace member.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

// Workspace is the unit of tenancy. Documents and share links hang off it.
type Workspace struct {
	ID        id.WorkspaceID
	Name      string
	OwnerID   id.UserID
	CreatedAt time.Time
}

// Member is one user's membership in a workspace.
type Member struct {
	WorkspaceID id.WorkspaceID
	UserID      id.UserID
	Role        Role
	AddedAt     time.Time
}
