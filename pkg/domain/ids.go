// Package domain holds typed identifiers shared across features. Each ID is
// a distinct type over uuid.UUID so the compiler rejects cross-type mixups
// (passing a workspace ID where a user ID is expected is a security bug, not
// a style issue).
package domain

import (
	"fmt"

	"github.com/google/uuid"

	dErrors "tome/pkg/domainerrors"
)

// Typed identifiers. Construct via New* or Parse*; never cast raw strings.
type (
	UserID      uuid.UUID
	WorkspaceID uuid.UUID
	DocumentID  uuid.UUID
	ShareLinkID uuid.UUID
)

func NewUserID() UserID           { return UserID(uuid.New()) }
func NewWorkspaceID() WorkspaceID { return WorkspaceID(uuid.New()) }
func NewDocumentID() DocumentID   { return DocumentID(uuid.New()) }
func NewShareLinkID() ShareLinkID { return ShareLinkID(uuid.New()) }

// parseUUID enforces the shared invariant: IDs must be valid, non-empty,
// non-nil UUIDs. Enforced at trust boundaries so internal code can assume it.
func parseUUID(kind, s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("%s is required", kind))
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(dErrors.CodeInvalidInput, fmt.Sprintf("%s is not a valid UUID", kind), err)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("%s must not be the nil UUID", kind))
	}
	return parsed, nil
}

func ParseUserID(s string) (UserID, error) {
	parsed, err := parseUUID("user id", s)
	if err != nil {
		return UserID{}, err
	}
	return UserID(parsed), nil
}

func ParseWorkspaceID(s string) (WorkspaceID, error) {
	parsed, err := parseUUID("workspace id", s)
	if err != nil {
		return WorkspaceID{}, err
	}
	return WorkspaceID(parsed), nil
}

func ParseDocumentID(s string) (DocumentID, error) {
	parsed, err := parseUUID("document id", s)
	if err != nil {
		return DocumentID{}, err
	}
	return DocumentID(parsed), nil
}

func ParseShareLinkID(s string) (ShareLinkID, error) {
	parsed, err := parseUUID("share link id", s)
	if err != nil {
		return ShareLinkID{}, err
	}
	return ShareLinkID(parsed), nil
}

func (id UserID) String() string      { return uuid.UUID(id).String() }
func (id WorkspaceID) String() string { return uuid.UUID(id).String() }
func (id DocumentID) String() string  { return uuid.UUID(id).String() }
func (id ShareLinkID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id WorkspaceID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id DocumentID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id ShareLinkID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
