package auth

import (
	"github.com/smartkisan/kisan-backend/internal/users"
	"github.com/smartkisan/kisan-backend/pkg/enums"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the public sign-up payload. Role is not accepted:
// every self-registered account is a farmer.
type RegisterRequest struct {
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Phone    string         `json:"phone"`
	Password string         `json:"password"`
	Language enums.Language `json:"language,omitempty"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string         `json:"token"`
	User  *users.UserDTO `json:"user"`
}
