package auth

import (
	"context"

	"github.com/smartkisan/kisan-backend/pkg/enums"
)

// Identity is the caller attached to a request by the auth middleware.
type Identity struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  enums.Role `json:"role"`

	// SessionID is the token jti; empty for the demo identity.
	SessionID string `json:"-"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == enums.RoleAdmin
}

type identityKey struct{}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext returns the attached caller, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(Identity)
	return identity, ok && identity.ID != ""
}
