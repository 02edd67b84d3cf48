package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/smartkisan/kisan-backend/pkg/config"
	"github.com/smartkisan/kisan-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "smart-kisan-shakti", Expire: "30d"}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now().UTC()
	userID := uuid.New()

	token, minted, err := MintAccessToken(cfg, now, AccessTokenPayload{UserID: userID, Role: enums.RoleFarmer, JTI: "jti-1"})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != userID || claims.Subject != userID.String() {
		t.Fatalf("expected user %s, got %s/%s", userID, claims.UserID, claims.Subject)
	}
	if claims.Role != enums.RoleFarmer {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if claims.ID != "jti-1" || minted.ID != "jti-1" {
		t.Fatalf("jti not preserved: %s", claims.ID)
	}
	if got := claims.ExpiresAt.Sub(now); got < 30*24*time.Hour-time.Second || got > 30*24*time.Hour+time.Second {
		t.Fatalf("unexpected lifetime %v", got)
	}
}

func TestMintGeneratesJTI(t *testing.T) {
	_, claims, err := MintAccessToken(testJWTConfig(), time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: enums.RoleBuyer})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := uuid.Parse(claims.ID); err != nil {
		t.Fatalf("expected uuid jti, got %q", claims.ID)
	}
}

func TestMintRejectsInvalidPayload(t *testing.T) {
	cfg := testJWTConfig()
	if _, _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{Role: enums.RoleFarmer}); err == nil {
		t.Fatal("expected missing user id error")
	}
	if _, _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: "root"}); err == nil {
		t.Fatal("expected invalid role error")
	}
	cfg.Secret = ""
	if _, _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: enums.RoleFarmer}); err == nil {
		t.Fatal("expected missing secret error")
	}
}

func TestParseExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	cfg.Expire = "1h"
	token, _, err := MintAccessToken(cfg, time.Now().Add(-2*time.Hour), AccessTokenPayload{UserID: uuid.New(), Role: enums.RoleFarmer})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	_, err = ParseAccessToken(cfg, token)
	if !IsExpired(err) {
		t.Fatalf("expected expired error, got %v", err)
	}
	if _, err := ParseAccessTokenAllowExpired(cfg, token); err != nil {
		t.Fatalf("allow-expired parse failed: %v", err)
	}
}

func TestParseRejectsWrongSecretAndIssuer(t *testing.T) {
	cfg := testJWTConfig()
	token, _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: enums.RoleAdmin})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	other := cfg
	other.Secret = "other"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected signature failure")
	}
	other = cfg
	other.Issuer = "someone-else"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected issuer failure")
	}
	if _, err := ParseAccessToken(cfg, strings.Repeat("x", 20)); err == nil {
		t.Fatal("expected malformed token failure")
	}
}
