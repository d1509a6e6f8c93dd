package users

import (
	"context"
	"errors"
	"slices"
	"time"

	"identity-platform/pkg/password"
)

var (
	ErrNotFound        = errors.New("users: not found")
	ErrInvalidArgument = errors.New("users: invalid argument")
	ErrLoginTaken      = errors.New("users: login already exists")
	ErrCrossTenant     = errors.New("users: operation crosses application boundary")
	ErrSelfDelete      = errors.New("users: cannot delete yourself")
	ErrAlreadyPromoted = errors.New("users: already promoted")
	ErrNotPromoted     = errors.New("users: not promoted")
)

// Service provides tenant-scoped user management.
//
// Visibility rules:
// - Admins see every user of their application.
// - Non-admins see exactly one user: themselves.
type Service struct {
	store  Store
	hasher password.Hasher
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(store Store, hasher password.Hasher) *Service {
	return &Service{store: store, hasher: hasher, clock: time.Now}
}

// List returns the users visible to actor. page is 1-based.
func (s *Service) List(ctx context.Context, actor User, page, perPage int) ([]User, error) {
	if page < 1 || perPage < 1 {
		return nil, ErrInvalidArgument
	}
	if actor.HasRole(RoleAdmin) {
		return s.store.FindAllForApplication(ctx, actor.ApplicationID, page, perPage)
	}
	if page == 1 {
		return []User{actor}, nil
	}
	return nil, nil
}

// Get returns one user visible to actor.
func (s *Service) Get(ctx context.Context, actor User, id int64) (User, bool, error) {
	if actor.HasRole(RoleAdmin) {
		return s.store.FindOneForApplication(ctx, id, actor.ApplicationID)
	}
	if actor.ID == id {
		return actor, true, nil
	}
	return User{}, false, nil
}

// Create provisions a user inside the actor's application with ROLE_USER.
func (s *Service) Create(ctx context.Context, actor User, in NewUserInput) (User, error) {
	if in.Login == "" || in.Password == "" {
		return User{}, ErrInvalidArgument
	}
	if _, exists, err := s.store.FindByLogin(ctx, in.Login); err != nil {
		return User{}, err
	} else if exists {
		return User{}, ErrLoginTaken
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return User{}, err
	}

	actorID := actor.ID
	u := User{
		Email:         in.Email,
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Login:         in.Login,
		Roles:         []string{RoleUser},
		PasswordHash:  hash,
		ApplicationID: actor.ApplicationID,
		CreatedAt:     s.clock().UTC(),
		CreatedBy:     &actorID,
	}
	return s.store.Insert(ctx, u)
}

// UpdateProfile applies the mutable profile fields to target.
func (s *Service) UpdateProfile(ctx context.Context, actor, target User, in UpdateUserInput) (User, error) {
	if actor.ApplicationID != target.ApplicationID {
		return User{}, ErrCrossTenant
	}
	target.Email = in.Email
	target.FirstName = in.FirstName
	target.LastName = in.LastName
	return s.store.Update(ctx, target)
}

// Delete soft-deletes target on behalf of actor. Self-deletion is refused.
func (s *Service) Delete(ctx context.Context, actor, target User) error {
	if target.ID == actor.ID {
		return ErrSelfDelete
	}
	if actor.ApplicationID != target.ApplicationID {
		return ErrCrossTenant
	}
	now := s.clock().UTC()
	actorID := actor.ID
	target.DeletedAt = &now
	target.DeletedBy = &actorID
	target.IsDeleted = true
	_, err := s.store.Update(ctx, target)
	return err
}

// Promote grants ROLE_USER_ADMIN to target.
func (s *Service) Promote(ctx context.Context, target User) (User, error) {
	if target.HasRole(RoleAdmin) {
		return User{}, ErrAlreadyPromoted
	}
	target.Roles = append(slices.Clone(target.Roles), RoleAdmin)
	return s.store.Update(ctx, target)
}

// Demote removes ROLE_USER_ADMIN from target.
func (s *Service) Demote(ctx context.Context, target User) (User, error) {
	if !target.HasRole(RoleAdmin) {
		return User{}, ErrNotPromoted
	}
	roles := slices.Clone(target.Roles)
	roles = slices.DeleteFunc(roles, func(r string) bool { return r == RoleAdmin })
	target.Roles = roles
	return s.store.Update(ctx, target)
}
