package security

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"identity-platform/internal/audit"
	"identity-platform/internal/auth"
	"identity-platform/internal/users"
)

func enforcerRouter(e *Enforcer, identity *users.User, guard gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/probe/:id",
		func(c *gin.Context) {
			if identity != nil {
				c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), *identity))
			}
		},
		guard,
		func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) },
	)
	return r
}

func probe(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestEnforcerAllows(t *testing.T) {
	e := NewEnforcer(testRegistry(), nil)
	u := plainUser(1)
	r := enforcerRouter(e, &u, e.Require("user", "list"))

	if w := probe(t, r, "/probe/1"); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestEnforcerRejectsAnonymous(t *testing.T) {
	e := NewEnforcer(testRegistry(), nil)
	r := enforcerRouter(e, nil, e.Require("user", "list"))

	if w := probe(t, r, "/probe/1"); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestEnforcerDeniesAndAudits(t *testing.T) {
	repo := audit.NewMemoryRepo()
	e := NewEnforcer(testRegistry(), audit.NewService(repo))
	u := plainUser(4)
	r := enforcerRouter(e, &u, e.Require("user", "delete"))

	if w := probe(t, r, "/probe/1"); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}

	events := repo.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 audit event, got %d", len(events))
	}
	got := events[0]
	if got.Type != audit.EventTypeAccessDenied {
		t.Fatalf("expected access_denied event, got %q", got.Type)
	}
	if got.ActorUserID != 4 || got.Subject != "user" || got.Right != "delete" {
		t.Fatalf("unexpected event payload: %+v", got)
	}
}

func TestEnforcerContextualUpdate(t *testing.T) {
	e := NewEnforcer(testRegistry(), nil)
	u := plainUser(7)
	targetFromPath := func(c *gin.Context) Context {
		return Context{ContextKeyTargetID: c.Param("id")}
	}
	r := enforcerRouter(e, &u, e.RequireContext("user", "update", targetFromPath))

	if w := probe(t, r, "/probe/7"); w.Code != http.StatusOK {
		t.Fatalf("own record: expected 200, got %d", w.Code)
	}
	if w := probe(t, r, "/probe/9"); w.Code != http.StatusForbidden {
		t.Fatalf("foreign record: expected 403, got %d", w.Code)
	}
}

func TestEnforcerUnknownSubjectFailsClosed(t *testing.T) {
	e := NewEnforcer(testRegistry(), nil)
	u := adminUser(1)
	r := enforcerRouter(e, &u, e.Require("invoice", "list"))

	if w := probe(t, r, "/probe/1"); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}
