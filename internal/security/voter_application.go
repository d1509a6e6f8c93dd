package security

import "identity-platform/internal/users"

// ApplicationVoter guards the application resource. Read-only for regular
// users; provisioning happens out of band.
type ApplicationVoter struct{}

func (ApplicationVoter) Subject() string { return "application" }

func (v ApplicationVoter) HasAccess(right string, u users.User, ctx Context) (bool, error) {
	switch right {
	case "list", "details":
		return IsUser(u), nil
	default:
		return false, &UnsupportedRightError{Subject: v.Subject(), Right: right}
	}
}
