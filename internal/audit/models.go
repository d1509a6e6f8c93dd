package audit

import "time"

// Event is an immutable, append-only security audit record.
//
// Invariants:
// - Events are never updated or deleted.
// - Actor capture is best-effort; do not block auth flows on audit failures.
//
// Storage recommendation (Postgres):
// - Table audit_events with an INSERT-only policy.
// - Optional: partition by time for retention.
type Event struct {
	ID string `json:"id" db:"id"`

	// Type indicates the security category of the audit record.
	Type EventType `json:"type" db:"type"`

	// ApplicationID is the actor's tenant. Zero when the actor could not be
	// resolved (e.g. failed login for an unknown identifier).
	ApplicationID int64 `json:"application_id,omitempty" db:"application_id"`

	// ActorUserID is the identity the event concerns, when known.
	ActorUserID int64 `json:"actor_user_id,omitempty" db:"actor_user_id"`

	// Login is the submitted identifier, recorded even when it resolves to
	// no user.
	Login string `json:"login,omitempty" db:"login"`

	// IPAddress should capture the original client IP when available.
	IPAddress string `json:"ip_address,omitempty" db:"ip_address"`

	// Subject and Right identify the denied authorization check, for
	// access_denied events.
	Subject string `json:"subject,omitempty" db:"subject"`
	Right   string `json:"right,omitempty" db:"right"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeLoginSucceeded EventType = "login_succeeded"
	EventTypeLoginFailed    EventType = "login_failed"
	EventTypeTokenRefreshed EventType = "token_refreshed"
	EventTypeAccessDenied   EventType = "access_denied"
)
