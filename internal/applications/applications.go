// Package applications exposes the tenant boundary of the platform. Every
// user belongs to exactly one application; cross-application visibility is
// never allowed. Like accounts, provisioning happens out of band.
package applications

import (
	"context"
	"errors"
	"time"
)

type Application struct {
	ID int64 `json:"id"`

	// PublicID is the stable UUID clients use to address the application.
	// The numeric ID stays internal.
	PublicID string `json:"public_id"`

	Name         string     `json:"name"`
	ContactEmail string     `json:"contact_email"`
	AccountID    int64      `json:"account_id"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"-"`
	IsDeleted    bool       `json:"-"`
}

var ErrNotFound = errors.New("applications: not found")

// Store lookups exclude soft-deleted rows.
type Store interface {
	FindByID(ctx context.Context, id int64) (Application, bool, error)
	FindAllForAccount(ctx context.Context, accountID int64, page, perPage int) ([]Application, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Get(ctx context.Context, id int64) (Application, error) {
	a, found, err := s.store.FindByID(ctx, id)
	if err != nil {
		return Application{}, err
	}
	if !found {
		return Application{}, ErrNotFound
	}
	return a, nil
}

func (s *Service) ListForAccount(ctx context.Context, accountID int64, page, perPage int) ([]Application, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	return s.store.FindAllForAccount(ctx, accountID, page, perPage)
}
