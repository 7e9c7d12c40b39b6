package auth

import (
	"context"
	"sync"
	"time"
)

// InMemoryRevocationList is a single-process RevocationList for tests and
// local development.
type InMemoryRevocationList struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
}

func NewInMemoryRevocationList() *InMemoryRevocationList {
	return &InMemoryRevocationList{revoked: make(map[string]time.Time)}
}

func (t *InMemoryRevocationList) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.revoked[jti] = time.Now().Add(ttl)
	return nil
}

func (t *InMemoryRevocationList) IsRevoked(_ context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	expiry, ok := t.revoked[jti]
	if !ok {
		return false, nil
	}
	return time.Now().Before(expiry), nil
}
