package refresh

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fixedClock(sec int64) func() time.Time {
	return func() time.Time { return time.Unix(sec, 0).UTC() }
}

func TestIssueFor_PersistsTokenWithTTL(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, 24*time.Hour)
	svc.clock = fixedClock(1700000000)

	tok, err := svc.IssueFor(context.Background(), 7)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if tok.ID == 0 {
		t.Fatalf("expected stored id")
	}
	if tok.UserID != 7 {
		t.Fatalf("expected owner 7, got %d", tok.UserID)
	}
	if len(tok.Token) != TokenLength {
		t.Fatalf("expected %d-char token, got %d", TokenLength, len(tok.Token))
	}
	want := time.Unix(1700000000, 0).UTC().Add(24 * time.Hour)
	if !tok.ValidUntil.Equal(want) {
		t.Fatalf("expected valid_until %v, got %v", want, tok.ValidUntil)
	}
}

func TestValidate_UnknownToken(t *testing.T) {
	svc := NewService(NewMemoryStore(), time.Hour)

	_, err := svc.Validate(context.Background(), "never-issued")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestValidate_ExpiredToken(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, time.Hour)
	svc.clock = fixedClock(1700000000)

	tok, err := svc.IssueFor(context.Background(), 7)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Jump past valid_until.
	svc.clock = fixedClock(1700000000 + 3601)

	_, err = svc.Validate(context.Background(), tok.Token)
	var expired *ExpiredError
	if !errors.As(err, &expired) {
		t.Fatalf("expected ExpiredError, got %v", err)
	}
	if !expired.ValidUntil.Equal(tok.ValidUntil) {
		t.Fatalf("expected valid_until %v in error, got %v", tok.ValidUntil, expired.ValidUntil)
	}
}

func TestValidate_ReturnsRecordAndDoesNotConsume(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, time.Hour)
	svc.clock = fixedClock(1700000000)

	issued, err := svc.IssueFor(context.Background(), 42)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	for i := 0; i < 3; i++ {
		got, err := svc.Validate(context.Background(), issued.Token)
		if err != nil {
			t.Fatalf("validate round %d: %v", i, err)
		}
		if got.UserID != 42 || got.ID != issued.ID {
			t.Fatalf("unexpected record: %+v", got)
		}
	}
}
