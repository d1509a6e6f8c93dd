// Package accounts exposes the customer account, the top of the tenancy
// hierarchy. Accounts own applications; provisioning happens out of band, so
// this layer is read-only.
package accounts

import (
	"context"
	"errors"
	"time"
)

type Account struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"-"`
	IsDeleted bool       `json:"-"`
}

var ErrNotFound = errors.New("accounts: not found")

// Store lookups exclude soft-deleted rows.
type Store interface {
	FindByID(ctx context.Context, id int64) (Account, bool, error)
	FindAll(ctx context.Context, page, perPage int) ([]Account, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Get(ctx context.Context, id int64) (Account, error) {
	a, found, err := s.store.FindByID(ctx, id)
	if err != nil {
		return Account{}, err
	}
	if !found {
		return Account{}, ErrNotFound
	}
	return a, nil
}

func (s *Service) List(ctx context.Context, page, perPage int) ([]Account, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	return s.store.FindAll(ctx, page, perPage)
}
