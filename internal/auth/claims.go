package auth

import "github.com/golang-jwt/jwt/v5"

// SubjectAuthorization is the fixed sub claim of every token this service mints.
const SubjectAuthorization = "authorization"

// Claims are the only supported JWT claims shape for this service.
// The custom fields are a snapshot of the identity at issuance time; they are
// not re-read from storage until the next issuance.
type Claims struct {
	jwt.RegisteredClaims

	UserID   int64    `json:"user_id"`
	Roles    []string `json:"roles"`
	Username string   `json:"username"`
}
