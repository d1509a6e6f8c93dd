package refresh

import (
	"context"
	"errors"
	"fmt"
	"time"

	"identity-platform/pkg/password"
)

// TokenLength is the size of the opaque token string.
const TokenLength = 128

// Token is a long-lived opaque credential exchanged for a fresh signed token.
//
// Lifecycle: created once per login/refresh cycle, then never updated or
// deleted; expiry is enforced only at validation time. A token therefore
// remains usable until its natural expiry even after newer ones have been
// issued for the same owner.
type Token struct {
	ID         int64     `json:"id" db:"id"`
	Token      string    `json:"token" db:"token"`
	UserID     int64     `json:"user_id" db:"user_id"`
	ValidUntil time.Time `json:"valid_until" db:"valid_until"`
}

// Store is the persistence contract for refresh tokens. Token string
// uniqueness is enforced by the storage layer, not by this package.
type Store interface {
	Insert(ctx context.Context, t Token) (Token, error)
	FindByToken(ctx context.Context, token string) (Token, bool, error)
}

var ErrNotFound = errors.New("refresh: token not found")

// ExpiredError reports a token past its validity window.
type ExpiredError struct {
	ValidUntil time.Time
}

func (e *ExpiredError) Error() string {
	return fmt.Sprintf("refresh: token expired since %s", e.ValidUntil.Format(time.RFC3339))
}

// Service issues and validates refresh tokens.
type Service struct {
	store Store
	ttl   time.Duration
	// clock and generate are injectable for deterministic tests.
	clock    func() time.Time
	generate func(size int) (string, error)
}

func NewService(store Store, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{
		store:    store,
		ttl:      ttl,
		clock:    time.Now,
		generate: password.GenerateSimpleSized,
	}
}

// IssueFor mints and persists a token for userID.
func (s *Service) IssueFor(ctx context.Context, userID int64) (Token, error) {
	raw, err := s.generate(TokenLength)
	if err != nil {
		return Token{}, fmt.Errorf("refresh: generate token: %w", err)
	}
	t := Token{
		Token:      raw,
		UserID:     userID,
		ValidUntil: s.clock().UTC().Add(s.ttl),
	}
	return s.store.Insert(ctx, t)
}

// Validate resolves a token string to its stored record.
// It is a pure read: the token is not consumed, rotated or deleted, so a
// valid token can be redeemed repeatedly until its timestamp lapses.
func (s *Service) Validate(ctx context.Context, token string) (Token, error) {
	t, ok, err := s.store.FindByToken(ctx, token)
	if err != nil {
		return Token{}, err
	}
	if !ok {
		return Token{}, ErrNotFound
	}
	if s.clock().UTC().After(t.ValidUntil) {
		return Token{}, &ExpiredError{ValidUntil: t.ValidUntil}
	}
	return t, nil
}
