package middleware

import (
	"context"

	pkgAuth "github.com/smartkisan/kisan-backend/pkg/auth"
)

type contextKey string

const ctxGuestID contextKey = "guest_id"

// UserIDFromContext returns the authenticated user id, or "".
func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if identity, ok := pkgAuth.IdentityFromContext(ctx); ok {
		return identity.ID
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if identity, ok := pkgAuth.IdentityFromContext(ctx); ok {
		return string(identity.Role)
	}
	return ""
}

// GuestIDFromContext returns the guest id set by GuestSession, or "".
func GuestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxGuestID).(string); ok {
		return v
	}
	return ""
}

// WithGuestID injects the guest identifier into the context.
func WithGuestID(ctx context.Context, guestID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxGuestID, guestID)
}
