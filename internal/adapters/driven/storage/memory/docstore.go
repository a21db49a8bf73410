// Package memory provides in-memory implementations of the storage ports.
// Used in tests and as a fallback when no data directory is configured.
package memory

import (
	"context"
	"sync"

	"github.com/siftlabs/sift/internal/core/domain"
	"github.com/siftlabs/sift/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{documents: make(map[string]domain.Document)}
}

// Save stores or updates a document.
func (s *DocumentStore) Save(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = *doc
	return nil
}

// Get retrieves a document by ID.
func (s *DocumentStore) Get(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// Exists reports whether a document is present.
func (s *DocumentStore) Exists(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.documents[id]
	return ok, nil
}

// Delete removes a document. Absent ids are a no-op.
func (s *DocumentStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, id)
	return nil
}

// List returns documents for a source.
func (s *DocumentStore) List(_ context.Context, source string) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Document
	for id := range s.documents {
		doc := s.documents[id]
		if doc.Source == source {
			result = append(result, doc)
		}
	}
	return result, nil
}

// Count returns the number of documents, optionally restricted to a source.
func (s *DocumentStore) Count(_ context.Context, source string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if source == "" {
		return len(s.documents), nil
	}
	count := 0
	for _, doc := range s.documents {
		if doc.Source == source {
			count++
		}
	}
	return count, nil
}
