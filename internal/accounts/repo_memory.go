package accounts

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store used in tests.
type MemoryStore struct {
	mu       sync.Mutex
	accounts map[int64]Account
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[int64]Account)}
}

func (s *MemoryStore) Put(a Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.ID] = a
}

func (s *MemoryStore) FindByID(_ context.Context, id int64) (Account, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok || a.IsDeleted {
		return Account{}, false, nil
	}
	return a, true, nil
}

func (s *MemoryStore) FindAll(_ context.Context, page, perPage int) ([]Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []Account
	for _, a := range s.accounts {
		if !a.IsDeleted {
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
