package refresh

import (
	"context"
	"sync"
)

// MemoryStore is a simple in-memory store useful for tests.
// It is not intended for production use.
type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	byTok  map[string]Token
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, byTok: make(map[string]Token)}
}

func (s *MemoryStore) Insert(ctx context.Context, t Token) (Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.nextID
	s.nextID++
	s.byTok[t.Token] = t
	return t, nil
}

func (s *MemoryStore) FindByToken(ctx context.Context, token string) (Token, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.byTok[token]
	return t, ok, nil
}
