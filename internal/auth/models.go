// Package auth implements account registration, credential login, and token
// revocation. Registration and credential lookup are the two places in the
// codebase that legitimately run before any identity exists, so they go
// through the audited bypass path with fixed reasons.
package auth

import (
	"time"

	id "tome/pkg/domain"
)

// User is an account row. PasswordHash is a bcrypt hash and never leaves the
// service layer.
type User struct {
	ID           id.UserID
	Email        string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
}
