package controllers

import (
	"net/http"

	"github.com/smartkisan/kisan-backend/api/middleware"
	cartsvc "github.com/smartkisan/kisan-backend/internal/cart"
	pkgAuth "github.com/smartkisan/kisan-backend/pkg/auth"
	pkgerrors "github.com/smartkisan/kisan-backend/pkg/errors"
)

// requestOwner resolves the cart owner: the authenticated user when present,
// otherwise the guest id assigned by GuestSession.
func requestOwner(r *http.Request) (cartsvc.Owner, error) {
	if identity, ok := pkgAuth.IdentityFromContext(r.Context()); ok {
		return cartsvc.UserOwner(identity.ID), nil
	}
	if guestID := middleware.GuestIDFromContext(r.Context()); guestID != "" {
		return cartsvc.GuestOwner(guestID), nil
	}
	return cartsvc.Owner{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "Unable to resolve cart owner")
}

func requireIdentity(r *http.Request) (pkgAuth.Identity, error) {
	identity, ok := pkgAuth.IdentityFromContext(r.Context())
	if !ok {
		return pkgAuth.Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "Not authorized to access this route")
	}
	return identity, nil
}
