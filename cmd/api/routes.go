package main

import (
	"database/sql"
	"net/http"
	"time"

	"identity-platform/internal/auth"
	"identity-platform/internal/httpapi"
	"identity-platform/internal/security"
	"identity-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, guard *auth.Authenticator, enforcer *security.Enforcer, db *sql.DB, rdb *redis.Client) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		if err := utils.HealthCheck(c.Request.Context(), db, 2*time.Second); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "postgres": err.Error()})
			return
		}
		if err := rdb.Ping(c.Request.Context()).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "redis": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// credential exchange, the only unauthenticated surface
	authGroup := r.Group("/v1/auth")
	{
		authGroup.POST("/token", h.Token)
		authGroup.POST("/refresh-token", h.RefreshToken)
	}

	targetFromPath := func(c *gin.Context) security.Context {
		return security.Context{security.ContextKeyTargetID: c.Param("id")}
	}

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(guard.Middleware())
	{
		v1.GET("/me", h.Me)

		usersGroup := v1.Group("/users")
		{
			usersGroup.GET("", enforcer.Require("user", "list"), h.ListUsers)
			usersGroup.GET("/:id", enforcer.Require("user", "details"), h.GetUser)
			usersGroup.POST("", enforcer.Require("user", "create"), h.CreateUser)
			usersGroup.PUT("/:id", enforcer.RequireContext("user", "update", targetFromPath), h.UpdateUser)
			usersGroup.DELETE("/:id", enforcer.Require("user", "delete"), h.DeleteUser)
			usersGroup.POST("/:id/promote", enforcer.Require("user", "promote"), h.PromoteUser)
			usersGroup.POST("/:id/demote", enforcer.Require("user", "demote"), h.DemoteUser)
		}

		accountsGroup := v1.Group("/accounts")
		{
			accountsGroup.GET("", enforcer.Require("account", "list"), h.ListAccounts)
			accountsGroup.GET("/:id", enforcer.Require("account", "details"), h.GetAccount)
		}

		applicationsGroup := v1.Group("/applications")
		{
			applicationsGroup.GET("", enforcer.Require("application", "list"), h.ListApplications)
			applicationsGroup.GET("/:id", enforcer.Require("application", "details"), h.GetApplication)
		}
	}
}
