package users

import "context"

// Store is the persistence contract for identity records.
//
// All lookups exclude soft-deleted rows. The auth core treats the record as
// read-only input; mutation happens only through Insert/Update here.
type Store interface {
	// FindByLogin resolves a non-deleted user by exact login.
	FindByLogin(ctx context.Context, login string) (User, bool, error)

	// FindByID resolves a non-deleted user by id.
	FindByID(ctx context.Context, id int64) (User, bool, error)

	// FindAllForApplication pages through the non-deleted users of one tenant.
	// page is 1-based.
	FindAllForApplication(ctx context.Context, applicationID int64, page, perPage int) ([]User, error)

	// FindOneForApplication resolves a non-deleted user by id within one tenant.
	FindOneForApplication(ctx context.Context, id, applicationID int64) (User, bool, error)

	Insert(ctx context.Context, u User) (User, error)
	Update(ctx context.Context, u User) (User, error)
}
