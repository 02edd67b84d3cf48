package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/smartkisan/kisan-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Role   enums.Role
	// JTI doubles as the Redis session id; empty mints a fresh one.
	JTI string
}

// AccessTokenClaims is the typed JWT issued on register and login.
type AccessTokenClaims struct {
	UserID uuid.UUID  `json:"id"`
	Role   enums.Role `json:"role"`
	jwt.RegisteredClaims
}
