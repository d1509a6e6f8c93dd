package auth

import (
	"net/http"
	"strings"
	"time"

	"identity-platform/internal/users"
	"identity-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

const authorizationHeader = "Authorization"

// guardResultKey memoizes the guard outcome on the gin context.
const guardResultKey = "auth_guard_result"

// FailureReason is the terminal failure state of the per-request guard.
type FailureReason string

const (
	FailHeaderNotFound  FailureReason = "header_not_found"
	FailInvalidHeader   FailureReason = "invalid_header"
	FailMalformedHeader FailureReason = "malformed_header"
	FailInvalidJWT      FailureReason = "invalid_jwt"
	FailUserNotFound    FailureReason = "user_not_found"
)

// GuardResult is the outcome of resolving the caller's identity.
// Reason is empty on success.
type GuardResult struct {
	User   users.User
	Reason FailureReason
}

func (r GuardResult) OK() bool { return r.Reason == "" }

// Authenticator resolves the caller's identity from the Authorization header,
// at most once per request.
type Authenticator struct {
	tokens *Manager
	users  users.Store
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewAuthenticator(tokens *Manager, store users.Store) *Authenticator {
	return &Authenticator{tokens: tokens, users: store, clock: time.Now}
}

// Resolve runs the guard state machine. The result is memoized on the gin
// context, so downstream checks consulting it repeatedly pay for at most one
// token verification and one storage read. A failure is final for the request.
func (a *Authenticator) Resolve(c *gin.Context) GuardResult {
	if v, ok := c.Get(guardResultKey); ok {
		if cached, ok := v.(GuardResult); ok {
			return cached
		}
	}
	res := a.resolve(c)
	c.Set(guardResultKey, res)
	return res
}

func (a *Authenticator) resolve(c *gin.Context) GuardResult {
	header := c.GetHeader(authorizationHeader)
	if header == "" {
		return GuardResult{Reason: FailHeaderNotFound}
	}

	// Scheme keyword is case-insensitive.
	if !strings.Contains(strings.ToLower(header), "bearer ") {
		return GuardResult{Reason: FailInvalidHeader}
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 {
		return GuardResult{Reason: FailMalformedHeader}
	}

	claims, err := a.tokens.Decode(parts[1], a.clock().UTC())
	if err != nil {
		// Signature, issuer and expiry failures all collapse here; the
		// sub-reason must not leak to the caller.
		return GuardResult{Reason: FailInvalidJWT}
	}

	u, ok, err := a.users.FindByID(c.Request.Context(), claims.UserID)
	if err != nil {
		logger.FromGin(c).Error("guard user lookup failed", "err", err)
		return GuardResult{Reason: FailUserNotFound}
	}
	if !ok {
		return GuardResult{Reason: FailUserNotFound}
	}
	return GuardResult{User: u}
}

// Middleware aborts unauthenticated requests and injects the identity into
// the request context for downstream authorization checks.
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		res := a.Resolve(c)
		if !res.OK() {
			c.AbortWithStatusJSON(statusFor(res.Reason), gin.H{"error": "unauthorized"})
			return
		}

		ctx := WithIdentity(c.Request.Context(), res.User)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func statusFor(reason FailureReason) int {
	switch reason {
	case FailInvalidHeader, FailMalformedHeader:
		return http.StatusBadRequest
	case FailUserNotFound:
		return http.StatusNotFound
	default:
		return http.StatusUnauthorized
	}
}
