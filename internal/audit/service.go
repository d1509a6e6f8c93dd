package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only; there are no update or delete methods.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service records security audit information.
//
// Audit is internal-only; these records are never exposed to tenant users.
// Callers should treat audit logging as best-effort.
type Service struct {
	repo Repository
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

// LoginSucceeded records a successful credential check.
func (s *Service) LoginSucceeded(ctx context.Context, applicationID, userID int64, login, ip string) error {
	return s.Append(ctx, Event{
		Type:          EventTypeLoginSucceeded,
		ApplicationID: applicationID,
		ActorUserID:   userID,
		Login:         login,
		IPAddress:     ip,
	})
}

// LoginFailed records a failed credential check. userID is zero when the
// login resolved to no identity.
func (s *Service) LoginFailed(ctx context.Context, userID int64, login, ip string) error {
	return s.Append(ctx, Event{
		Type:        EventTypeLoginFailed,
		ActorUserID: userID,
		Login:       login,
		IPAddress:   ip,
	})
}

// TokenRefreshed records a refresh-token redemption.
func (s *Service) TokenRefreshed(ctx context.Context, applicationID, userID int64, ip string) error {
	return s.Append(ctx, Event{
		Type:          EventTypeTokenRefreshed,
		ApplicationID: applicationID,
		ActorUserID:   userID,
		IPAddress:     ip,
	})
}

// AccessDenied records a denied authorization check.
func (s *Service) AccessDenied(ctx context.Context, applicationID, userID int64, subject, right, ip string) error {
	return s.Append(ctx, Event{
		Type:          EventTypeAccessDenied,
		ApplicationID: applicationID,
		ActorUserID:   userID,
		Subject:       subject,
		Right:         right,
		IPAddress:     ip,
		Message:       "access denied",
	})
}
