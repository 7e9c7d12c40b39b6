package document

import (
	"context"
	"strings"
	"sync"

	id "tome/pkg/domain"
	"tome/pkg/platform/sentinel"
)

// InMemoryStore is a map-backed Store for unit tests. Search emulates the
// production behavior that only indexed documents match: a document becomes
// searchable after Reindex has run for it.
type InMemoryStore struct {
	mu        sync.RWMutex
	documents map[id.DocumentID]*Document
	indexed   map[id.DocumentID]bool
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		documents: make(map[id.DocumentID]*Document),
		indexed:   make(map[id.DocumentID]bool),
	}
}

func (s *InMemoryStore) Create(_ context.Context, doc *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *doc
	s.documents[doc.ID] = &copied
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, docID id.DocumentID) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[docID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

func (s *InMemoryStore) ListByWorkspace(_ context.Context, wsID id.WorkspaceID) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Document
	for _, doc := range s.documents {
		if doc.WorkspaceID == wsID {
			out = append(out, *doc)
		}
	}
	return out, nil
}

func (s *InMemoryStore) Delete(_ context.Context, docID id.DocumentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[docID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.documents, docID)
	delete(s.indexed, docID)
	return nil
}

func (s *InMemoryStore) Search(_ context.Context, query string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	needle := strings.ToLower(query)
	var out []Document
	for docID, doc := range s.documents {
		if !s.indexed[docID] {
			continue
		}
		if strings.Contains(strings.ToLower(doc.Title), needle) ||
			strings.Contains(strings.ToLower(doc.Content), needle) {
			out = append(out, *doc)
		}
	}
	return out, nil
}

func (s *InMemoryStore) Reindex(_ context.Context, docID id.DocumentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[docID]; !ok {
		return sentinel.ErrNotFound
	}
	s.indexed[docID] = true
	return nil
}

// Indexed reports whether Reindex has run for the document. Test helper.
func (s *InMemoryStore) Indexed(docID id.DocumentID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexed[docID]
}
