package security

import (
	"strconv"

	"identity-platform/internal/users"
)

// ContextKeyTargetID names the user a contextual right operates on.
const ContextKeyTargetID = "target_id"

// UserVoter guards the user resource.
//
// "update" is contextual: admins may update anyone in their application, a
// plain user only their own record, identified by the target_id context value.
type UserVoter struct{}

func (UserVoter) Subject() string { return "user" }

func (v UserVoter) HasAccess(right string, u users.User, ctx Context) (bool, error) {
	switch right {
	case "list", "details":
		return IsUser(u), nil
	case "create", "delete", "promote", "demote":
		return IsAdmin(u), nil
	case "update":
		if IsAdmin(u) {
			return true, nil
		}
		target, ok := ctx[ContextKeyTargetID]
		if !ok {
			return false, &MissingContextError{Subject: v.Subject(), Right: right, Key: ContextKeyTargetID}
		}
		return IsUser(u) && target == strconv.FormatInt(u.ID, 10), nil
	default:
		return false, &UnsupportedRightError{Subject: v.Subject(), Right: right}
	}
}
