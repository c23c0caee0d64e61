package gueststore

import (
	"context"
	"sync"

	"storefront/internal/domain"
)

type memoryStore struct {
	mu    sync.RWMutex
	carts map[string][]domain.LineItem
}

// NewMemory returns an in-process Store. Used when no Redis address is
// configured, and by tests.
func NewMemory() Store {
	return &memoryStore{carts: make(map[string][]domain.LineItem)}
}

func (s *memoryStore) Load(_ context.Context, sessionID string) ([]domain.LineItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items, ok := s.carts[sessionID]
	if !ok {
		return nil, nil
	}
	out := make([]domain.LineItem, len(items))
	copy(out, items)
	return out, nil
}

func (s *memoryStore) Save(_ context.Context, sessionID string, items []domain.LineItem) error {
	cp := make([]domain.LineItem, len(items))
	copy(cp, items)
	s.mu.Lock()
	s.carts[sessionID] = cp
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.carts, sessionID)
	s.mu.Unlock()
	return nil
}
