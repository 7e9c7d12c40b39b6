package workspace

import (
	"context"
	"sync"

	id "tome/pkg/domain"
	"tome/pkg/platform/sentinel"
)

// InMemoryStore is a map-backed Store for unit tests. It does not emulate
// row visibility: in production that is the database policies' job, covered
// by the integration suite.
type InMemoryStore struct {
	mu         sync.RWMutex
	workspaces map[id.WorkspaceID]*Workspace
	members    map[id.WorkspaceID][]Member
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		workspaces: make(map[id.WorkspaceID]*Workspace),
		members:    make(map[id.WorkspaceID][]Member),
	}
}

func (s *InMemoryStore) Create(_ context.Context, ws *Workspace) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *ws
	s.workspaces[ws.ID] = &copied
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, wsID id.WorkspaceID) (*Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ws, ok := s.workspaces[wsID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *ws
	return &copied, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Workspace, 0, len(s.workspaces))
	for _, ws := range s.workspaces {
		out = append(out, *ws)
	}
	return out, nil
}

func (s *InMemoryStore) AddMember(_ context.Context, member *Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.members[member.WorkspaceID] {
		if m.UserID == member.UserID {
			return nil
		}
	}
	s.members[member.WorkspaceID] = append(s.members[member.WorkspaceID], *member)
	return nil
}

func (s *InMemoryStore) RemoveMember(_ context.Context, wsID id.WorkspaceID, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.members[wsID]
	for i, m := range current {
		if m.UserID == userID {
			s.members[wsID] = append(current[:i:i], current[i+1:]...)
			return nil
		}
	}
	return sentinel.ErrNotFound
}

func (s *InMemoryStore) ListMembers(_ context.Context, wsID id.WorkspaceID) ([]Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Member{}, s.members[wsID]...), nil
}
