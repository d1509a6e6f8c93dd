package audit

import (
	"context"
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestAppendFillsIDAndTimestamp(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.clock = fixedClock(now)

	err := svc.Append(context.Background(), Event{Type: EventTypeLoginSucceeded, Login: "alice"})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	events := repo.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].ID == "" {
		t.Fatal("expected generated event id")
	}
	if !events[0].CreatedAt.Equal(now) {
		t.Fatalf("expected created_at %v, got %v", now, events[0].CreatedAt)
	}
}

func TestAppendRejectsMissingType(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	if err := svc.Append(context.Background(), Event{Login: "alice"}); err != ErrInvalidEvent {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
}

func TestAppendKeepsCallerID(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	err := svc.Append(context.Background(), Event{ID: "fixed-id", Type: EventTypeAccessDenied})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if got := repo.Events()[0].ID; got != "fixed-id" {
		t.Fatalf("expected caller id preserved, got %q", got)
	}
}

func TestHelpersSetEventTypes(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	if err := svc.LoginSucceeded(ctx, 3, 7, "alice", "10.0.0.1"); err != nil {
		t.Fatalf("login succeeded: %v", err)
	}
	if err := svc.LoginFailed(ctx, 0, "mallory", "10.0.0.2"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := svc.TokenRefreshed(ctx, 3, 7, "10.0.0.1"); err != nil {
		t.Fatalf("token refreshed: %v", err)
	}
	if err := svc.AccessDenied(ctx, 3, 7, "user", "delete", "10.0.0.1"); err != nil {
		t.Fatalf("access denied: %v", err)
	}

	events := repo.Events()
	want := []EventType{EventTypeLoginSucceeded, EventTypeLoginFailed, EventTypeTokenRefreshed, EventTypeAccessDenied}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(events))
	}
	for i, w := range want {
		if events[i].Type != w {
			t.Fatalf("event %d: expected type %q, got %q", i, w, events[i].Type)
		}
	}
	if events[1].ActorUserID != 0 {
		t.Fatalf("failed login for unknown user should carry zero actor id, got %d", events[1].ActorUserID)
	}
}
