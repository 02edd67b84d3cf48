package controllers

import (
	"net/http"

	"github.com/smartkisan/kisan-backend/api/middleware"
	"github.com/smartkisan/kisan-backend/api/responses"
	"github.com/smartkisan/kisan-backend/api/validators"
	authsvc "github.com/smartkisan/kisan-backend/internal/auth"
	"github.com/smartkisan/kisan-backend/internal/users"
	pkgAuth "github.com/smartkisan/kisan-backend/pkg/auth"
	"github.com/smartkisan/kisan-backend/pkg/config"
	pkgerrors "github.com/smartkisan/kisan-backend/pkg/errors"
	"github.com/smartkisan/kisan-backend/pkg/logger"
)

type authResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Token   string         `json:"token,omitempty"`
	User    *users.UserDTO `json:"user"`
}

func AuthRegister(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req authsvc.RegisterRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.Register(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusCreated, authResponse{
			Success: true,
			Message: "User registered successfully",
			Token:   resp.Token,
			User:    resp.User,
		})
	}
}

func AuthLogin(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req authsvc.LoginRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.Login(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, authResponse{
			Success: true,
			Message: "Login successful",
			Token:   resp.Token,
			User:    resp.User,
		})
	}
}

// AuthLogout revokes the session of the presented JWT, expired or not.
// Requests without a token, or with the demo token, succeed unchanged.
func AuthLogout(svc authsvc.Service, jwtCfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token := middleware.BearerToken(r); token != "" {
			if claims, err := pkgAuth.ParseAccessTokenAllowExpired(jwtCfg, token); err == nil {
				if err := svc.Logout(r.Context(), claims.ID); err != nil {
					responses.WriteError(r.Context(), logg, w, err)
					return
				}
			}
		}
		responses.WriteMessage(w, http.StatusOK, "Logged out successfully (demo)", nil)
	}
}

func AuthMe(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := requireIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		user, err := svc.Me(r.Context(), identity.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, authResponse{Success: true, User: user})
	}
}

// AuthDisabled answers account management endpoints that the demo build
// does not offer.
func AuthDisabled(feature string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteError(r.Context(), logg, w, pkgerrors.Newf(pkgerrors.CodeForbidden, "%s disabled in demo mode", feature))
	}
}
