// Package security implements attribute-based access control as a registry of
// per-subject voters. Every protected operation asks the registry whether the
// acting identity holds a right on a subject; any error path resolves to
// "denied", never to a default allow.
package security

import (
	"fmt"
	"log/slog"

	"identity-platform/internal/users"
)

// Context carries optional, loosely-typed values a contextual voter may
// require (e.g. "target_id"). No schema enforces which keys a voter expects.
type Context map[string]string

// Voter is a per-resource policy answering allow/deny for a
// (right, identity, context) triple.
//
// Implementations must return an UnsupportedRightError for any right they do
// not recognize; all call sites treat errors as denied, so an unknown right
// can never grant access.
type Voter interface {
	// Subject is the resource-type key the voter is registered under.
	Subject() string
	HasAccess(right string, u users.User, ctx Context) (bool, error)
}

// NoVoterError reports a subject no voter is registered for.
type NoVoterError struct {
	Subject string
}

func (e *NoVoterError) Error() string {
	return fmt.Sprintf("security: no voter registered for subject %q", e.Subject)
}

// UnsupportedRightError reports a right the subject's voter does not know.
type UnsupportedRightError struct {
	Subject string
	Right   string
}

func (e *UnsupportedRightError) Error() string {
	return fmt.Sprintf("security: unsupported right %q on subject %q", e.Right, e.Subject)
}

// MissingContextError reports a contextual rule invoked without its required
// context value. This is a voter-internal error, not a silent deny.
type MissingContextError struct {
	Subject string
	Right   string
	Key     string
}

func (e *MissingContextError) Error() string {
	return fmt.Sprintf("security: right %q on subject %q requires context key %q", e.Right, e.Subject, e.Key)
}

// Registry holds one voter per subject. It is populated once at startup and
// treated as read-only afterwards, so unsynchronized concurrent reads are
// safe.
type Registry struct {
	log    *slog.Logger
	voters map[string]Voter
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{log: log, voters: make(map[string]Voter)}
}

// Register adds a voter. Last write for a subject wins; re-registration is a
// configuration bug worth surfacing in the logs.
func (r *Registry) Register(v Voter) *Registry {
	subject := v.Subject()
	if _, dup := r.voters[subject]; dup {
		r.log.Warn("voter re-registered, previous one replaced", "subject", subject)
	}
	r.voters[subject] = v
	return r
}

// HasAccess reports whether u may perform right on subject given ctx.
// An unregistered subject is an error, never an allow.
func (r *Registry) HasAccess(subject, right string, u users.User, ctx Context) (bool, error) {
	v, ok := r.voters[subject]
	if !ok {
		return false, &NoVoterError{Subject: subject}
	}
	return v.HasAccess(right, u, ctx)
}

// IsUser reports whether u holds ROLE_USER.
func IsUser(u users.User) bool {
	return u.HasRole(users.RoleUser)
}

// IsAdmin reports whether u holds ROLE_USER_ADMIN.
func IsAdmin(u users.User) bool {
	return u.HasRole(users.RoleAdmin)
}

// IsA reports whether u holds the given role.
func IsA(role string, u users.User) bool {
	return u.HasRole(role)
}

// IsGranted reports whether u holds every role in roles.
func IsGranted(u users.User, roles ...string) bool {
	for _, role := range roles {
		if !u.HasRole(role) {
			return false
		}
	}
	return true
}
