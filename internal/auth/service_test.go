package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"identity-platform/internal/config"
	"identity-platform/internal/refresh"
	"identity-platform/internal/users"
	"identity-platform/pkg/password"
)

// Minimum cost keeps tests fast; production uses the configured cost.
const bcryptTestCost = 4

type authFixture struct {
	svc     *Service
	users   *users.MemoryStore
	refresh *refresh.MemoryStore
	tokens  *Manager
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	m := testManager(t, testPair(t), "identity-platform", time.Hour)
	userStore := users.NewMemoryStore()
	refreshStore := refresh.NewMemoryStore()
	refreshSvc := refresh.NewService(refreshStore, 24*time.Hour)

	svc := NewService(userStore, password.NewBcryptHasher(bcryptTestCost), m, refreshSvc)
	return &authFixture{svc: svc, users: userStore, refresh: refreshStore, tokens: m}
}

func (f *authFixture) seedAlice(t *testing.T) users.User {
	t.Helper()
	hash, err := password.NewBcryptHasher(bcryptTestCost).Hash("correct-pw")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u, err := f.users.Insert(context.Background(), users.User{
		Login:         "alice",
		Roles:         []string{users.RoleUser},
		PasswordHash:  hash,
		ApplicationID: 1,
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return u
}

func TestAuthenticate_Success(t *testing.T) {
	f := newAuthFixture(t)
	alice := f.seedAlice(t)

	got, err := f.svc.Authenticate(context.Background(), "alice", "correct-pw")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.ID != alice.ID || got.Login != "alice" {
		t.Fatalf("unexpected identity: %+v", got)
	}
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	alice := f.seedAlice(t)

	_, err := f.svc.Authenticate(context.Background(), "alice", "bad-pw")
	var wrongPw *WrongPasswordError
	if !errors.As(err, &wrongPw) {
		t.Fatalf("expected WrongPasswordError, got %v", err)
	}
	if wrongPw.UserID != alice.ID {
		t.Fatalf("expected audit id %d, got %d", alice.ID, wrongPw.UserID)
	}
}

func TestAuthenticate_UnknownLogin(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Authenticate(context.Background(), "nobody", "pw")
	var notFound *UserNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected UserNotFoundError, got %v", err)
	}
	if notFound.Login != "nobody" {
		t.Fatalf("expected login in error, got %q", notFound.Login)
	}
}

func TestAuthenticate_SoftDeletedUserCannotLogIn(t *testing.T) {
	f := newAuthFixture(t)
	alice := f.seedAlice(t)

	alice.IsDeleted = true
	if _, err := f.users.Update(context.Background(), alice); err != nil {
		t.Fatalf("update: %v", err)
	}

	_, err := f.svc.Authenticate(context.Background(), "alice", "correct-pw")
	var notFound *UserNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected UserNotFoundError for deleted user, got %v", err)
	}
}

func TestIssueCredentials_PairsTokenWithRefreshToken(t *testing.T) {
	f := newAuthFixture(t)
	alice := f.seedAlice(t)

	now := time.Unix(1700000000, 0).UTC()
	f.svc.clock = func() time.Time { return now }

	creds, err := f.svc.IssueCredentials(context.Background(), alice)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := f.tokens.Decode(creds.Token, now)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if claims.UserID != alice.ID {
		t.Fatalf("expected user_id %d, got %d", alice.ID, claims.UserID)
	}

	stored, ok, err := f.refresh.FindByToken(context.Background(), creds.RefreshToken)
	if err != nil || !ok {
		t.Fatalf("refresh token not stored: ok=%v err=%v", ok, err)
	}
	if stored.UserID != alice.ID {
		t.Fatalf("expected owner %d, got %d", alice.ID, stored.UserID)
	}
	wantUntil := now.Add(24 * time.Hour)
	if d := stored.ValidUntil.Sub(wantUntil); d < -time.Minute || d > time.Minute {
		t.Fatalf("expected valid_until near %v, got %v", wantUntil, stored.ValidUntil)
	}
}

func TestRefresh_IssuesFreshPairForOwner(t *testing.T) {
	f := newAuthFixture(t)
	alice := f.seedAlice(t)

	creds, err := f.svc.IssueCredentials(context.Background(), alice)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	owner, fresh, err := f.svc.Refresh(context.Background(), creds.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if owner.ID != alice.ID {
		t.Fatalf("expected owner %d, got %d", alice.ID, owner.ID)
	}
	if fresh.Token == "" || fresh.RefreshToken == "" {
		t.Fatalf("expected fresh credential pair")
	}
	if fresh.RefreshToken == creds.RefreshToken {
		t.Fatalf("expected a newly minted refresh token")
	}
}

func TestRefresh_UnknownToken(t *testing.T) {
	f := newAuthFixture(t)

	_, _, err := f.svc.Refresh(context.Background(), "never-issued")
	if !errors.Is(err, refresh.ErrNotFound) {
		t.Fatalf("expected refresh.ErrNotFound, got %v", err)
	}
}

func TestRefresh_OwnerDeletedSinceIssuance(t *testing.T) {
	f := newAuthFixture(t)
	alice := f.seedAlice(t)

	creds, err := f.svc.IssueCredentials(context.Background(), alice)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	alice.IsDeleted = true
	if _, err := f.users.Update(context.Background(), alice); err != nil {
		t.Fatalf("update: %v", err)
	}

	_, _, err = f.svc.Refresh(context.Background(), creds.RefreshToken)
	if !errors.Is(err, ErrOwnerNotFound) {
		t.Fatalf("expected ErrOwnerNotFound, got %v", err)
	}
}

func TestRefresh_IsReusableUntilExpiry(t *testing.T) {
	f := newAuthFixture(t)
	alice := f.seedAlice(t)

	creds, err := f.svc.IssueCredentials(context.Background(), alice)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Redeeming a refresh token does not consume it.
	for i := 0; i < 2; i++ {
		if _, _, err := f.svc.Refresh(context.Background(), creds.RefreshToken); err != nil {
			t.Fatalf("refresh round %d: %v", i, err)
		}
	}
}
