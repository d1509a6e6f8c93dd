package security

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"identity-platform/internal/audit"
	"identity-platform/internal/auth"
	"identity-platform/internal/users"
	"identity-platform/pkg/logger"
)

// ContextFunc extracts the voter context for a contextual right from the
// incoming request, typically from path parameters.
type ContextFunc func(c *gin.Context) Context

// Enforcer turns registry decisions into HTTP responses. Audit is optional;
// when set, every denial is recorded best-effort.
type Enforcer struct {
	registry *Registry
	audit    *audit.Service
}

func NewEnforcer(registry *Registry, auditSvc *audit.Service) *Enforcer {
	return &Enforcer{registry: registry, audit: auditSvc}
}

// Require guards a route with a non-contextual right.
func (e *Enforcer) Require(subject, right string) gin.HandlerFunc {
	return e.RequireContext(subject, right, nil)
}

// RequireContext guards a route with a contextual right, building the voter
// context from the request. Must run after the authentication middleware.
func (e *Enforcer) RequireContext(subject, right string, ctxFn ContextFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := auth.Identity(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var voterCtx Context
		if ctxFn != nil {
			voterCtx = ctxFn(c)
		}

		allowed, err := e.registry.HasAccess(subject, right, identity, voterCtx)
		if err != nil {
			logger.FromGin(c).Warn("access check failed",
				"subject", subject, "right", right, "user_id", identity.ID, "error", err)
		}
		if err != nil || !allowed {
			e.recordDenial(c, identity, subject, right)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		c.Next()
	}
}

func (e *Enforcer) recordDenial(c *gin.Context, identity users.User, subject, right string) {
	if e.audit == nil {
		return
	}
	err := e.audit.AccessDenied(c.Request.Context(), identity.ApplicationID, identity.ID, subject, right, c.ClientIP())
	if err != nil {
		logger.FromGin(c).Error("audit write failed", "error", err)
	}
}
