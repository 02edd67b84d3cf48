package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/smartkisan/kisan-backend/api/responses"
	"github.com/smartkisan/kisan-backend/internal/users"
	pkgAuth "github.com/smartkisan/kisan-backend/pkg/auth"
	"github.com/smartkisan/kisan-backend/pkg/auth/session"
	"github.com/smartkisan/kisan-backend/pkg/config"
	"github.com/smartkisan/kisan-backend/pkg/db"
	"github.com/smartkisan/kisan-backend/pkg/db/models"
	"github.com/smartkisan/kisan-backend/pkg/enums"
	pkgerrors "github.com/smartkisan/kisan-backend/pkg/errors"
	"github.com/smartkisan/kisan-backend/pkg/logger"
)

const (
	msgNotAuthorized = "Not authorized to access this route"
	msgInvalidToken  = "Invalid token"
	msgTokenExpired  = "Token expired"
)

var errNoToken = errors.New("no bearer token")

// UserLoader resolves the subject of a verified token.
type UserLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// AuthParams wires the bearer token authenticator.
type AuthParams struct {
	JWT      config.JWTConfig
	Sessions session.AccessSessionChecker
	Users    UserLoader
	// DemoToken is accepted without a DB lookup when non-empty.
	DemoToken string
	Logger    *logger.Logger
}

// Authenticator resolves bearer tokens into request identities.
type Authenticator struct {
	jwt       config.JWTConfig
	sessions  session.AccessSessionChecker
	users     UserLoader
	demoToken string
	logg      *logger.Logger
}

func NewAuthenticator(params AuthParams) (*Authenticator, error) {
	if params.Users == nil {
		return nil, errors.New("user loader required")
	}
	return &Authenticator{
		jwt:       params.JWT,
		sessions:  params.Sessions,
		users:     params.Users,
		demoToken: strings.TrimSpace(params.DemoToken),
		logg:      params.Logger,
	}, nil
}

// Protect rejects requests without a valid bearer token.
func (a *Authenticator) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := a.identify(r)
		if err != nil {
			if errors.Is(err, errNoToken) {
				err = pkgerrors.New(pkgerrors.CodeUnauthorized, msgNotAuthorized)
			}
			responses.WriteError(r.Context(), a.logg, w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(a.attach(r.Context(), identity)))
	})
}

// Optional attaches the identity when the token is valid and otherwise
// continues anonymously.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := a.identify(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(a.attach(r.Context(), identity)))
	})
}

func (a *Authenticator) attach(ctx context.Context, identity pkgAuth.Identity) context.Context {
	ctx = pkgAuth.WithIdentity(ctx, identity)
	if a.logg != nil {
		ctx = a.logg.WithUserID(ctx, identity.ID)
		ctx = a.logg.WithActorRole(ctx, string(identity.Role))
	}
	return ctx
}

func (a *Authenticator) identify(r *http.Request) (pkgAuth.Identity, error) {
	token := BearerToken(r)
	if token == "" {
		return pkgAuth.Identity{}, errNoToken
	}

	if a.demoToken != "" && token == a.demoToken {
		demo := users.DemoUser()
		return pkgAuth.Identity{ID: demo.ID, Name: demo.Name, Email: demo.Email, Role: demo.Role}, nil
	}

	claims, err := pkgAuth.ParseAccessToken(a.jwt, token)
	if err != nil {
		if pkgAuth.IsExpired(err) {
			return pkgAuth.Identity{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, msgTokenExpired)
		}
		return pkgAuth.Identity{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, msgInvalidToken)
	}
	if claims.ID == "" {
		return pkgAuth.Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, msgInvalidToken)
	}

	ctx := r.Context()
	if a.sessions != nil {
		ok, err := a.sessions.HasSession(ctx, claims.ID)
		if err != nil {
			return pkgAuth.Identity{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session")
		}
		if !ok {
			return pkgAuth.Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, msgInvalidToken)
		}
	}

	user, err := a.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if db.IsNotFound(err) {
			return pkgAuth.Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, msgInvalidToken)
		}
		return pkgAuth.Identity{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if !user.IsActive {
		return pkgAuth.Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, msgInvalidToken)
	}

	return pkgAuth.Identity{
		ID:        user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		SessionID: claims.ID,
	}, nil
}

// Authorize allows only the listed roles. It must run after Protect.
func Authorize(logg *logger.Logger, roles ...enums.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := pkgAuth.IdentityFromContext(r.Context())
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, msgNotAuthorized))
				return
			}
			for _, role := range roles {
				if identity.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Newf(pkgerrors.CodeForbidden, "User role %s is not authorized to access this route", identity.Role))
		})
	}
}

// BearerToken extracts the token of an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(raw) < 7 || !strings.EqualFold(raw[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(raw[7:])
}
