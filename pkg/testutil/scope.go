package testutil

import (
	"context"
	"sync"

	id "tome/pkg/domain"
	dErrors "tome/pkg/domainerrors"
	"tome/pkg/requestcontext"
)

// ScoperSpy satisfies rls.Scoper for service unit tests. It mirrors the
// facade's identity checks but runs callbacks directly, with no database, and
// records every call so tests can assert how a service scoped its work.
type ScoperSpy struct {
	mu sync.Mutex

	ForUserIDs       []id.UserID
	CurrentUserCalls int
	BypassReasons    []string

	// Err, when set, is returned instead of running any callback. Simulates
	// an unreachable pool.
	Err error
}

func (s *ScoperSpy) ForUser(ctx context.Context, userID id.UserID, fn func(ctx context.Context) error) error {
	if userID.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "refusing to scope transaction to nil user id")
	}
	s.mu.Lock()
	s.ForUserIDs = append(s.ForUserIDs, userID)
	err := s.Err
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return fn(ctx)
}

func (s *ScoperSpy) WithCurrentUser(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, err := requestcontext.RequireUserID(ctx); err != nil {
		return dErrors.Wrap(dErrors.CodeUnauthorized, "no authenticated identity in context", err)
	}
	s.mu.Lock()
	s.CurrentUserCalls++
	err := s.Err
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return fn(ctx)
}

func (s *ScoperSpy) WithoutRLS(ctx context.Context, reason string, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	s.BypassReasons = append(s.BypassReasons, reason)
	err := s.Err
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return fn(ctx)
}
