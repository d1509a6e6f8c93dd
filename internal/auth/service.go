package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"identity-platform/internal/refresh"
	"identity-platform/internal/users"
	"identity-platform/pkg/password"
)

// UserNotFoundError reports an unknown or soft-deleted login.
// Internal only; the HTTP layer must collapse it with WrongPasswordError to
// avoid identity enumeration.
type UserNotFoundError struct {
	Login string
}

func (e *UserNotFoundError) Error() string {
	return fmt.Sprintf("auth: user %q not found", e.Login)
}

// WrongPasswordError carries the identity id for audit, never echoed to the
// caller.
type WrongPasswordError struct {
	UserID int64
}

func (e *WrongPasswordError) Error() string {
	return fmt.Sprintf("auth: wrong password for user %d", e.UserID)
}

// ErrOwnerNotFound reports a refresh token whose owner no longer resolves
// (deleted since issuance).
var ErrOwnerNotFound = errors.New("auth: token owner not found")

// Credentials is the (signed token, refresh token) pair returned on login and
// refresh.
type Credentials struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

// Service turns login attempts into authenticated identities and credential
// pairs.
type Service struct {
	users   users.Store
	hasher  password.Hasher
	tokens  *Manager
	refresh *refresh.Service
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(store users.Store, hasher password.Hasher, tokens *Manager, refreshSvc *refresh.Service) *Service {
	return &Service{
		users:   store,
		hasher:  hasher,
		tokens:  tokens,
		refresh: refreshSvc,
		clock:   time.Now,
	}
}

// Authenticate verifies a login/password pair against the stored hash.
func (s *Service) Authenticate(ctx context.Context, login, clearPassword string) (users.User, error) {
	u, ok, err := s.users.FindByLogin(ctx, login)
	if err != nil {
		return users.User{}, err
	}
	if !ok {
		return users.User{}, &UserNotFoundError{Login: login}
	}
	if !s.hasher.Compare(clearPassword, u.PasswordHash) {
		return users.User{}, &WrongPasswordError{UserID: u.ID}
	}
	return u, nil
}

// IssueCredentials mints a signed token and a refresh token for u.
// Either failure short-circuits; the JWT is stateless and not persisted, so
// there is nothing to roll back when the refresh-token insert fails.
func (s *Service) IssueCredentials(ctx context.Context, u users.User) (Credentials, error) {
	tok, err := s.tokens.Encode(u, s.clock().UTC())
	if err != nil {
		return Credentials{}, fmt.Errorf("auth: sign token: %w", err)
	}
	rt, err := s.refresh.IssueFor(ctx, u.ID)
	if err != nil {
		return Credentials{}, fmt.Errorf("auth: issue refresh token: %w", err)
	}
	return Credentials{Token: tok, RefreshToken: rt.Token}, nil
}

// Refresh exchanges a valid refresh token for a fresh credential pair.
// Typed validation failures (refresh.ErrNotFound, refresh.ExpiredError) pass
// through for the HTTP layer to map.
func (s *Service) Refresh(ctx context.Context, token string) (users.User, Credentials, error) {
	rt, err := s.refresh.Validate(ctx, token)
	if err != nil {
		return users.User{}, Credentials{}, err
	}

	u, ok, err := s.users.FindByID(ctx, rt.UserID)
	if err != nil {
		return users.User{}, Credentials{}, err
	}
	if !ok {
		return users.User{}, Credentials{}, ErrOwnerNotFound
	}

	creds, err := s.IssueCredentials(ctx, u)
	if err != nil {
		return users.User{}, Credentials{}, err
	}
	return u, creds, nil
}
