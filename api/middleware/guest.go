package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	pkgAuth "github.com/smartkisan/kisan-backend/pkg/auth"
	"github.com/smartkisan/kisan-backend/pkg/logger"
)

const (
	GuestIDHeader   = "X-Guest-Id"
	GuestCookieName = "ksk_guest_id"

	guestCookieMaxAge = 365 * 24 * time.Hour
)

// GuestSession assigns anonymous callers a stable guest id. Authenticated
// requests pass through untouched.
func GuestSession(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := pkgAuth.IdentityFromContext(r.Context()); ok {
				next.ServeHTTP(w, r)
				return
			}

			guestID := resolveGuestID(r)
			w.Header().Set(GuestIDHeader, guestID)
			http.SetCookie(w, &http.Cookie{
				Name:     GuestCookieName,
				Value:    guestID,
				Path:     "/",
				MaxAge:   int(guestCookieMaxAge.Seconds()),
				Expires:  time.Now().Add(guestCookieMaxAge),
				HttpOnly: true,
				Secure:   r.TLS != nil,
				SameSite: http.SameSiteLaxMode,
			})

			ctx := WithGuestID(r.Context(), guestID)
			if logg != nil {
				ctx = logg.WithGuestID(ctx, guestID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveGuestID(r *http.Request) string {
	if id, ok := parseGuestID(r.Header.Get(GuestIDHeader)); ok {
		return id
	}
	if cookie, err := r.Cookie(GuestCookieName); err == nil {
		if id, ok := parseGuestID(cookie.Value); ok {
			return id
		}
	}
	return uuid.NewString()
}

func parseGuestID(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return "", false
	}
	return id.String(), true
}
