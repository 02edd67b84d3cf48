package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	pkgerrors "github.com/smartkisan/kisan-backend/pkg/errors"
)

func loginRequest(body, remote string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.RemoteAddr = remote
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return payload.Code, payload.Message
}

func TestAuthRateLimitPreservesBody(t *testing.T) {
	limiter := &fakeWindow{}
	policy := AuthPolicy{Name: "login", Window: time.Minute, PerIP: 2, PerAccount: 2}
	handler := AuthRateLimit(policy, limiter, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"email":"kisan@example.com"`) {
			t.Fatalf("body not restored: %s", body)
		}
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest(`{"email":"kisan@example.com","password":"secret"}`, "1.2.3.4:5678"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(limiter.counts) != 2 {
		t.Fatalf("expected ip and account windows, got %v", limiter.counts)
	}
	for scope := range limiter.counts {
		if strings.Contains(scope, "kisan@example.com") {
			t.Fatalf("raw email leaked into scope %q", scope)
		}
	}
}

func TestAuthRateLimitAccountWindowAcrossIPs(t *testing.T) {
	limiter := &fakeWindow{}
	policy := AuthPolicy{Name: "login", Window: time.Minute, PerAccount: 2}
	handler := AuthRateLimit(policy, limiter, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	remotes := []string{"1.1.1.1:1", "2.2.2.2:2", "3.3.3.3:3"}
	for i, remote := range remotes {
		rec := httptest.NewRecorder()
		// Case and padding differences still count against one account.
		email := []string{"Blocked@Example.com", " blocked@example.com", "BLOCKED@example.com"}[i]
		handler.ServeHTTP(rec, loginRequest(`{"email":"`+email+`","password":"x"}`, remote))
		if i < 2 && rec.Code != http.StatusOK {
			t.Fatalf("attempt %d: expected 200, got %d", i, rec.Code)
		}
		if i == 2 {
			if rec.Code != http.StatusTooManyRequests {
				t.Fatalf("expected 429, got %d", rec.Code)
			}
			if rec.Header().Get("Retry-After") != "60" {
				t.Fatalf("expected Retry-After 60, got %q", rec.Header().Get("Retry-After"))
			}
			code, message := decodeError(t, rec)
			if code != string(pkgerrors.CodeRateLimit) || message != msgAuthThrottled {
				t.Fatalf("unexpected payload %s %s", code, message)
			}
		}
	}
}

func TestAuthRateLimitPerIPUsesForwardedFor(t *testing.T) {
	limiter := &fakeWindow{}
	policy := AuthPolicy{Name: "register", Window: time.Minute, PerIP: 1}
	handler := AuthRateLimit(policy, limiter, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{"phone":"98765 43210"}`))
		req.RemoteAddr = "10.0.0.1:9999"
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("unexpected codes %v", codes)
	}
	if limiter.counts["auth:register:ip:203.0.113.7"] != 2 {
		t.Fatalf("expected forwarded client ip scope, got %v", limiter.counts)
	}
}

func TestAuthRateLimitFailsClosed(t *testing.T) {
	limiter := &fakeWindow{err: errors.New("redis down")}
	policy := AuthPolicy{Name: "login", Window: time.Minute, PerIP: 5}
	called := false
	handler := AuthRateLimit(policy, limiter, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest(`{}`, "1.2.3.4:1"))
	if rec.Code != http.StatusServiceUnavailable || called {
		t.Fatalf("expected 503 without reaching handler, got %d called=%v", rec.Code, called)
	}
}

func TestAuthRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	handler := AuthRateLimit(AuthPolicy{Name: "login"}, &fakeWindow{err: errors.New("unused")}, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest(`{}`, "1.2.3.4:1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through, got %d", rec.Code)
	}
}

func TestAccountIdentifier(t *testing.T) {
	a := accountIdentifier([]byte(`{"email":" Farmer@Example.com "}`))
	b := accountIdentifier([]byte(`{"email":"farmer@example.com","phone":"123"}`))
	if a == "" || a != b {
		t.Fatalf("expected normalized email hashes to match: %q %q", a, b)
	}
	if accountIdentifier([]byte(`{"phone":"+91 98765-43210"}`)) != accountIdentifier([]byte(`{"phone":"919876543210"}`)) {
		t.Fatal("phone digits should normalize")
	}
	if accountIdentifier([]byte(`not json`)) != "" || accountIdentifier([]byte(`{}`)) != "" {
		t.Fatal("expected empty identifier")
	}
}
