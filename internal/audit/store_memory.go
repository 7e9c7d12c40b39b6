package audit

import (
	"context"
	"sync"
)

// InMemoryStore collects events for unit tests.
type InMemoryStore struct {
	mu     sync.Mutex
	events []Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *InMemoryStore) RecordBypass(ctx context.Context, reason string) error {
	return s.Append(ctx, Event{Kind: KindRLSBypass, Reason: reason})
}

// Events returns a copy of everything appended so far.
func (s *InMemoryStore) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event{}, s.events...)
}
