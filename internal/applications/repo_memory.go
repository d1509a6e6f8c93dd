package applications

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store used in tests.
type MemoryStore struct {
	mu   sync.Mutex
	apps map[int64]Application
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{apps: make(map[int64]Application)}
}

func (s *MemoryStore) Put(a Application) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apps[a.ID] = a
}

func (s *MemoryStore) FindByID(_ context.Context, id int64) (Application, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.apps[id]
	if !ok || a.IsDeleted {
		return Application{}, false, nil
	}
	return a, true, nil
}

func (s *MemoryStore) FindAllForAccount(_ context.Context, accountID int64, page, perPage int) ([]Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []Application
	for _, a := range s.apps {
		if a.AccountID == accountID && !a.IsDeleted {
			all = append(all, a)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	start := (page - 1) * perPage
	if start >= len(all) {
		return nil, nil
	}
	end := start + perPage
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}
