package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and infrastructure layers
// return these (optionally wrapped) so services can translate them into
// domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in store (or is invisible under the
//   caller's row-level scope, which must be indistinguishable)
// - ErrExpired: token/link has passed its expiry
// - ErrInactive: resource exists but has been switched off
// - ErrConflict: uniqueness or state conflict
// - ErrUnavailable: service or resource temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domainerrors.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrExpired     = errors.New("expired")
	ErrInactive    = errors.New("inactive")
	ErrUnavailable = errors.New("unavailable")
)
