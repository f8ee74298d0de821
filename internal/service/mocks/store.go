package mocks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/godilite/review-server/internal/repository/models"
)

// MockReviewStore is a function-based mock of the ReviewStore interface.
// It counts calls so tests can assert on network side effects.
type MockReviewStore struct {
	CreateFunc func(ctx context.Context, doc models.ReviewDocument) (string, error)
	ListFunc   func(ctx context.Context) (map[string]models.ReviewDocument, error)

	CreateCalls atomic.Int32
	ListCalls   atomic.Int32
}

// Create implements the ReviewStore interface
func (m *MockReviewStore) Create(ctx context.Context, doc models.ReviewDocument) (string, error) {
	m.CreateCalls.Add(1)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, doc)
	}
	return "", errors.New("CreateFunc not implemented")
}

// List implements the ReviewStore interface
func (m *MockReviewStore) List(ctx context.Context) (map[string]models.ReviewDocument, error) {
	m.ListCalls.Add(1)
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, errors.New("ListFunc not implemented")
}

// MemoryStore is an in-memory document store with sequential keys.
type MemoryStore struct {
	mu   sync.Mutex
	docs map[string]models.ReviewDocument
	next int
}

func NewMemoryStore(seed map[string]models.ReviewDocument) *MemoryStore {
	docs := make(map[string]models.ReviewDocument, len(seed))
	for k, v := range seed {
		docs[k] = v
	}
	return &MemoryStore{docs: docs}
}

func (s *MemoryStore) Create(_ context.Context, doc models.ReviewDocument) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	id := fmt.Sprintf("mem-%03d", s.next)
	s.docs[id] = doc
	return id, nil
}

func (s *MemoryStore) List(_ context.Context) (map[string]models.ReviewDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]models.ReviewDocument, len(s.docs))
	for k, v := range s.docs {
		out[k] = v
	}
	return out, nil
}
