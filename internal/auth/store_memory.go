package auth

import (
	"context"
	"fmt"
	"sync"

	id "tome/pkg/domain"
	"tome/pkg/platform/sentinel"
)

// InMemoryStore is a map-backed Store for unit tests. It enforces the email
// uniqueness constraint the database schema carries.
type InMemoryStore struct {
	mu      sync.RWMutex
	byID    map[id.UserID]*User
	byEmail map[string]*User
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:    make(map[id.UserID]*User),
		byEmail: make(map[string]*User),
	}
}

func (s *InMemoryStore) Create(_ context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[user.Email]; exists {
		return fmt.Errorf("email already registered: %w", sentinel.ErrConflict)
	}
	copied := *user
	s.byID[user.ID] = &copied
	s.byEmail[user.Email] = &copied
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, userID id.UserID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byID[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byEmail[email]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *user
	return &copied, nil
}
