package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/smartkisan/kisan-backend/internal/users"
	pkgAuth "github.com/smartkisan/kisan-backend/pkg/auth"
	"github.com/smartkisan/kisan-backend/pkg/config"
	"github.com/smartkisan/kisan-backend/pkg/db/dbtest"
	"github.com/smartkisan/kisan-backend/pkg/enums"
	pkgerrors "github.com/smartkisan/kisan-backend/pkg/errors"
	"github.com/smartkisan/kisan-backend/pkg/security"
)

var testJWTConfig = config.JWTConfig{Secret: "secret", Expire: "30d", Issuer: "smart-kisan-shakti"}

func TestServiceRegisterIssuesFarmerToken(t *testing.T) {
	svc, sessions := buildTestService(t)

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Ramesh",
		Email:    "Ramesh@Example.com",
		Phone:    "9876543210",
		Password: "secret1",
		Language: enums.LanguageHindi,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.User.Role != enums.RoleFarmer || resp.User.Email != "ramesh@example.com" {
		t.Fatalf("unexpected user %+v", resp.User)
	}
	if resp.User.Language != enums.LanguageHindi {
		t.Fatalf("expected hindi, got %s", resp.User.Language)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.Token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID.String() != resp.User.ID || claims.Role != enums.RoleFarmer {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if sessions.started[claims.ID] != resp.User.ID {
		t.Fatalf("expected session for jti %s", claims.ID)
	}
}

func TestServiceRegisterValidation(t *testing.T) {
	svc, _ := buildTestService(t)
	valid := RegisterRequest{Name: "A", Email: "a@example.com", Phone: "9876543210", Password: "secret1"}

	cases := []struct {
		name   string
		mutate func(*RegisterRequest)
		want   string
	}{
		{"missing name", func(r *RegisterRequest) { r.Name = " " }, msgRegisterMissingFields},
		{"missing password", func(r *RegisterRequest) { r.Password = "" }, msgRegisterMissingFields},
		{"short password", func(r *RegisterRequest) { r.Password = "12345" }, msgPasswordTooShort},
		{"landline", func(r *RegisterRequest) { r.Phone = "0221234567" }, msgInvalidPhone},
		{"short phone", func(r *RegisterRequest) { r.Phone = "98765" }, msgInvalidPhone},
		{"bad email", func(r *RegisterRequest) { r.Email = "not-an-email" }, "Please provide a valid email"},
	}
	for _, tc := range cases {
		req := valid
		tc.mutate(&req)
		_, err := svc.Register(context.Background(), req)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation || typed.Message() != tc.want {
			t.Fatalf("%s: expected %q validation error, got %v", tc.name, tc.want, err)
		}
	}
}

func TestServiceRegisterRejectsDuplicates(t *testing.T) {
	svc, _ := buildTestService(t)
	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterRequest{Name: "A", Email: "a@example.com", Phone: "9876543210", Password: "secret1"}); err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err := svc.Register(ctx, RegisterRequest{Name: "B", Email: "b@example.com", Phone: "9876543210", Password: "secret1"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeBadRequest || typed.Message() != msgUserExists {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestServiceLogin(t *testing.T) {
	svc, _ := buildTestService(t)
	ctx := context.Background()
	registered, err := svc.Register(ctx, RegisterRequest{Name: "A", Email: "a@example.com", Phone: "9876543210", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	resp, err := svc.Login(ctx, LoginRequest{Email: " A@example.com ", Password: "secret1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.User.ID != registered.User.ID || resp.User.LastLoginAt == nil {
		t.Fatalf("expected last login to be recorded, got %+v", resp.User)
	}
	if resp.Token == "" || resp.Token == registered.Token {
		t.Fatal("expected a fresh token")
	}

	for _, req := range []LoginRequest{
		{Email: "a@example.com", Password: "wrong-pass"},
		{Email: "nobody@example.com", Password: "secret1"},
	} {
		_, err := svc.Login(ctx, req)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized || typed.Message() != invalidCredentialsMessage {
			t.Fatalf("expected invalid credentials for %+v, got %v", req, err)
		}
	}

	_, err = svc.Login(ctx, LoginRequest{Email: "a@example.com"})
	if typed := pkgerrors.As(err); typed == nil || typed.Message() != missingCredentialsMessage {
		t.Fatalf("expected missing credentials, got %v", err)
	}
}

func TestServiceMe(t *testing.T) {
	svc, _ := buildTestService(t)
	ctx := context.Background()

	demo, err := svc.Me(ctx, users.DemoUserID)
	if err != nil || demo.Name != "Demo User" {
		t.Fatalf("expected demo user, got %+v err=%v", demo, err)
	}

	registered, err := svc.Register(ctx, RegisterRequest{Name: "A", Email: "a@example.com", Phone: "9876543210", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	me, err := svc.Me(ctx, registered.User.ID)
	if err != nil || me.Email != "a@example.com" {
		t.Fatalf("unexpected me %+v err=%v", me, err)
	}

	for _, id := range []string{"not-a-uuid", uuid.NewString()} {
		if _, err := svc.Me(ctx, id); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			t.Fatalf("expected not found for %s, got %v", id, err)
		}
	}
}

func TestServiceLogout(t *testing.T) {
	svc, sessions := buildTestService(t)
	ctx := context.Background()

	if err := svc.Logout(ctx, ""); err != nil {
		t.Fatalf("logout without session: %v", err)
	}
	if err := svc.Logout(ctx, "jti-1"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "jti-1" {
		t.Fatalf("expected revoke of jti-1, got %v", sessions.revoked)
	}

	sessions.err = errors.New("redis down")
	if err := svc.Logout(ctx, "jti-2"); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func buildTestService(t *testing.T) (Service, *stubSessionManager) {
	t.Helper()
	sessions := &stubSessionManager{started: map[string]string{}}
	svc, err := NewService(ServiceParams{
		UserRepo:       users.NewRepository(dbtest.Open(t)),
		SessionManager: sessions,
		Hasher:         security.NewHasher(config.PasswordConfig{}),
		JWTConfig:      testJWTConfig,
		Now:            func() time.Time { return time.Now().Add(-time.Minute) },
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, sessions
}

type stubSessionManager struct {
	started map[string]string
	revoked []string
	err     error
}

func (s *stubSessionManager) Start(_ context.Context, accessID, userID string) error {
	if s.err != nil {
		return s.err
	}
	s.started[accessID] = userID
	return nil
}

func (s *stubSessionManager) Revoke(_ context.Context, accessID string) error {
	if s.err != nil {
		return s.err
	}
	s.revoked = append(s.revoked, accessID)
	return nil
}
