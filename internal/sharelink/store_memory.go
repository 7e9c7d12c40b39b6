package sharelink

import (
	"context"
	"sync"

	id "tome/pkg/domain"
	"tome/pkg/platform/sentinel"
)

// InMemoryStore is a map-backed Store for unit tests.
type InMemoryStore struct {
	mu      sync.RWMutex
	byID    map[id.ShareLinkID]*ShareLink
	byToken map[string]*ShareLink
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:    make(map[id.ShareLinkID]*ShareLink),
		byToken: make(map[string]*ShareLink),
	}
}

func (s *InMemoryStore) Create(_ context.Context, link *ShareLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *link
	s.byID[link.ID] = &copied
	s.byToken[link.Token] = &copied
	return nil
}

func (s *InMemoryStore) FindByToken(_ context.Context, token string) (*ShareLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	link, ok := s.byToken[token]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *link
	return &copied, nil
}

func (s *InMemoryStore) Deactivate(_ context.Context, linkID id.ShareLinkID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	link, ok := s.byID[linkID]
	if !ok {
		return sentinel.ErrNotFound
	}
	link.IsActive = false
	return nil
}
