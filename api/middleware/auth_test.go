package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/smartkisan/kisan-backend/pkg/auth"
	"github.com/smartkisan/kisan-backend/pkg/config"
	"github.com/smartkisan/kisan-backend/pkg/db/models"
	"github.com/smartkisan/kisan-backend/pkg/enums"
)

var testJWT = config.JWTConfig{Secret: "test-secret", Expire: "1h", Issuer: "smart-kisan-shakti"}

type stubUsers map[uuid.UUID]*models.User

func (s stubUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := s[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubSessions map[string]bool

func (s stubSessions) HasSession(_ context.Context, accessID string) (bool, error) {
	return s[accessID], nil
}

type authFixture struct {
	auth     *Authenticator
	users    stubUsers
	sessions stubSessions
}

func newAuthFixture(t *testing.T, demoToken string) *authFixture {
	t.Helper()
	users := stubUsers{}
	sessions := stubSessions{}
	auth, err := NewAuthenticator(AuthParams{
		JWT:       testJWT,
		Sessions:  sessions,
		Users:     users,
		DemoToken: demoToken,
	})
	if err != nil {
		t.Fatalf("new authenticator: %v", err)
	}
	return &authFixture{auth: auth, users: users, sessions: sessions}
}

func (f *authFixture) addUser(role enums.Role, active bool) *models.User {
	user := &models.User{ID: uuid.New(), Name: "Ravi", Email: "ravi@example.com", Role: role, IsActive: active}
	f.users[user.ID] = user
	return user
}

func (f *authFixture) token(t *testing.T, user *models.User, issuedAt time.Time) string {
	t.Helper()
	token, claims, err := pkgAuth.MintAccessToken(testJWT, issuedAt, pkgAuth.AccessTokenPayload{UserID: user.ID, Role: user.Role})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	f.sessions[claims.ID] = true
	return token
}

func identityProbe(got *pkgAuth.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identity, ok := pkgAuth.IdentityFromContext(r.Context()); ok {
			*got = identity
		}
		w.WriteHeader(http.StatusOK)
	})
}

func bearerRequest(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	if payload.Success {
		t.Fatalf("expected failure envelope")
	}
	return payload.Message
}

func TestProtectRejectsMissingHeader(t *testing.T) {
	f := newAuthFixture(t, "demo-token-123")
	var got pkgAuth.Identity
	rec := httptest.NewRecorder()
	f.auth.Protect(identityProbe(&got)).ServeHTTP(rec, bearerRequest(""))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if msg := decodeMessage(t, rec); msg != "Not authorized to access this route" {
		t.Fatalf("unexpected message %q", msg)
	}
	if got.ID != "" {
		t.Fatalf("handler should not run")
	}
}

func TestProtectAcceptsDemoToken(t *testing.T) {
	f := newAuthFixture(t, "demo-token-123")
	var got pkgAuth.Identity
	rec := httptest.NewRecorder()
	f.auth.Protect(identityProbe(&got)).ServeHTTP(rec, bearerRequest("demo-token-123"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	want := pkgAuth.Identity{ID: "demo-id", Name: "Demo User", Email: "demo@gmail.com", Role: enums.RoleFarmer}
	if got != want {
		t.Fatalf("unexpected identity %+v", got)
	}
}

func TestProtectRejectsDemoTokenWhenDisabled(t *testing.T) {
	f := newAuthFixture(t, "")
	rec := httptest.NewRecorder()
	f.auth.Protect(identityProbe(new(pkgAuth.Identity))).ServeHTTP(rec, bearerRequest("demo-token-123"))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if msg := decodeMessage(t, rec); msg != "Invalid token" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestProtectAttachesUserFromJWT(t *testing.T) {
	f := newAuthFixture(t, "")
	user := f.addUser(enums.RoleBuyer, true)
	token := f.token(t, user, time.Now())

	var got pkgAuth.Identity
	rec := httptest.NewRecorder()
	f.auth.Protect(identityProbe(&got)).ServeHTTP(rec, bearerRequest(token))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got.ID != user.ID.String() || got.Role != enums.RoleBuyer || got.SessionID == "" {
		t.Fatalf("unexpected identity %+v", got)
	}
}

func TestProtectFailures(t *testing.T) {
	f := newAuthFixture(t, "")
	active := f.addUser(enums.RoleFarmer, true)
	inactive := f.addUser(enums.RoleFarmer, false)

	revoked := f.token(t, active, time.Now())
	for id := range f.sessions {
		f.sessions[id] = false
	}

	tests := []struct {
		name  string
		token string
		want  string
	}{
		{name: "garbage", token: "not-a-jwt", want: "Invalid token"},
		{name: "revoked session", token: revoked, want: "Invalid token"},
		{name: "expired", token: f.token(t, active, time.Now().Add(-2*time.Hour)), want: "Token expired"},
		{name: "inactive user", token: f.token(t, inactive, time.Now()), want: "Invalid token"},
		{name: "unknown user", token: f.token(t, &models.User{ID: uuid.New(), Role: enums.RoleFarmer}, time.Now()), want: "Invalid token"},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		f.auth.Protect(identityProbe(new(pkgAuth.Identity))).ServeHTTP(rec, bearerRequest(tt.token))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", tt.name, rec.Code)
		}
		if msg := decodeMessage(t, rec); msg != tt.want {
			t.Fatalf("%s: expected %q, got %q", tt.name, tt.want, msg)
		}
	}
}

func TestOptionalAuthContinuesAnonymously(t *testing.T) {
	f := newAuthFixture(t, "demo-token-123")
	user := f.addUser(enums.RoleFarmer, true)

	var anonymous pkgAuth.Identity
	rec := httptest.NewRecorder()
	f.auth.Optional(identityProbe(&anonymous)).ServeHTTP(rec, bearerRequest("broken"))
	if rec.Code != http.StatusOK || anonymous.ID != "" {
		t.Fatalf("expected anonymous pass-through, got %d %+v", rec.Code, anonymous)
	}

	var known pkgAuth.Identity
	rec = httptest.NewRecorder()
	f.auth.Optional(identityProbe(&known)).ServeHTTP(rec, bearerRequest(f.token(t, user, time.Now())))
	if known.ID != user.ID.String() {
		t.Fatalf("expected identity to be attached, got %+v", known)
	}
}

func TestAuthorizeChecksRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	handler := Authorize(nil, enums.RoleAdmin)(ok)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/api/orders/x/status", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPatch, "/api/orders/x/status", nil)
	req = req.WithContext(pkgAuth.WithIdentity(req.Context(), pkgAuth.Identity{ID: "u1", Role: enums.RoleFarmer}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if msg := decodeMessage(t, rec); msg != "User role farmer is not authorized to access this route" {
		t.Fatalf("unexpected message %q", msg)
	}

	req = req.WithContext(pkgAuth.WithIdentity(req.Context(), pkgAuth.Identity{ID: "a1", Role: enums.RoleAdmin}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected admin to pass, got %d", rec.Code)
	}
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer   abc ")
	if got := BearerToken(req); got != "abc" {
		t.Fatalf("expected abc, got %q", got)
	}
	req.Header.Set("Authorization", "Basic abc")
	if got := BearerToken(req); got != "" {
		t.Fatalf("expected empty token, got %q", got)
	}
}
