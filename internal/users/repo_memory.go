package users

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore is a simple in-memory store useful for tests.
// It is not intended for production use.
type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, rows: make(map[int64]User)}
}

func (s *MemoryStore) FindByLogin(ctx context.Context, login string) (User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.rows {
		if u.Login == login && !u.IsDeleted {
			return u, true, nil
		}
	}
	return User{}, false, nil
}

func (s *MemoryStore) FindByID(ctx context.Context, id int64) (User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.rows[id]
	if !ok || u.IsDeleted {
		return User{}, false, nil
	}
	return u, true, nil
}

func (s *MemoryStore) FindOneForApplication(ctx context.Context, id, applicationID int64) (User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.rows[id]
	if !ok || u.IsDeleted || u.ApplicationID != applicationID {
		return User{}, false, nil
	}
	return u, true, nil
}

func (s *MemoryStore) FindAllForApplication(ctx context.Context, applicationID int64, page, perPage int) ([]User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if page < 1 {
		page = 1
	}
	var all []User
	for _, u := range s.rows {
		if u.ApplicationID == applicationID && !u.IsDeleted {
			all = append(all, u)
		}
	}
	slices.SortFunc(all, func(a, b User) int { return int(a.ID - b.ID) })

	start := (page - 1) * perPage
	if start >= len(all) {
		return nil, nil
	}
	end := min(start+perPage, len(all))
	return all[start:end], nil
}

func (s *MemoryStore) Insert(ctx context.Context, u User) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = s.nextID
	s.nextID++
	s.rows[u.ID] = u
	return u, nil
}

func (s *MemoryStore) Update(ctx context.Context, u User) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[u.ID]; !ok {
		return User{}, ErrNotFound
	}
	s.rows[u.ID] = u
	return u, nil
}
