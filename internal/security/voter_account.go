package security

import "identity-platform/internal/users"

// AccountVoter guards the account resource. Read-only for regular users.
type AccountVoter struct{}

func (AccountVoter) Subject() string { return "account" }

func (v AccountVoter) HasAccess(right string, u users.User, ctx Context) (bool, error) {
	switch right {
	case "list", "details":
		return IsUser(u), nil
	default:
		return false, &UnsupportedRightError{Subject: v.Subject(), Right: right}
	}
}
