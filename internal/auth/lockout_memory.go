package auth

import (
	"context"
	"sync"
	"time"

	"tome/pkg/requestcontext"
)

type lockoutRecord struct {
	failures    int
	windowEnds  time.Time
	lockedUntil time.Time
}

// InMemoryLockout implements Lockout for tests and single-instance dev runs.
// Uses the request time from context so tests can steer the clock.
type InMemoryLockout struct {
	mu      sync.Mutex
	records map[string]*lockoutRecord
}

func NewInMemoryLockout() *InMemoryLockout {
	return &InMemoryLockout{records: make(map[string]*lockoutRecord)}
}

func (l *InMemoryLockout) IsLocked(ctx context.Context, identifier string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[identifier]
	if !ok {
		return false, nil
	}
	return requestcontext.Now(ctx).Before(rec.lockedUntil), nil
}

func (l *InMemoryLockout) RecordFailure(ctx context.Context, identifier string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := requestcontext.Now(ctx)
	rec, ok := l.records[identifier]
	if !ok || now.After(rec.windowEnds) {
		rec = &lockoutRecord{windowEnds: now.Add(failureWindow)}
		l.records[identifier] = rec
	}
	rec.failures++
	if rec.failures >= lockoutThreshold {
		rec.lockedUntil = now.Add(lockoutDuration)
		rec.failures = 0
	}
	return nil
}

func (l *InMemoryLockout) Clear(ctx context.Context, identifier string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.records, identifier)
	return nil
}
