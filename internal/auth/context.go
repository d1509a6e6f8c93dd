package auth

import (
	"context"

	"identity-platform/internal/users"
)

type ctxKey int

const ctxIdentity ctxKey = iota

// WithIdentity stores the authenticated user in ctx.
func WithIdentity(ctx context.Context, u users.User) context.Context {
	return context.WithValue(ctx, ctxIdentity, u)
}

// Identity returns the authenticated user stored by the guard middleware.
func Identity(ctx context.Context) (users.User, bool) {
	u, ok := ctx.Value(ctxIdentity).(users.User)
	return u, ok
}
