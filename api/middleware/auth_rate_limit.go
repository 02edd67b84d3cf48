package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/smartkisan/kisan-backend/api/responses"
	pkgerrors "github.com/smartkisan/kisan-backend/pkg/errors"
	"github.com/smartkisan/kisan-backend/pkg/logger"
)

const (
	msgAuthThrottled = "Too many authentication attempts, please try again later."
	// Credentials payloads are tiny; anything larger is not worth buffering.
	maxCredentialBody = 64 << 10
)

// AuthPolicy throttles one credential endpoint per client IP and per
// account identifier. A zero limit disables that dimension.
type AuthPolicy struct {
	Name       string
	Window     time.Duration
	PerIP      int
	PerAccount int
}

func (p AuthPolicy) enabled() bool {
	return p.Window > 0 && (p.PerIP > 0 || p.PerAccount > 0)
}

// AuthRateLimit guards login and register. Unlike the global limiter it
// fails closed: a Redis outage returns 503 rather than unthrottled access to
// password checks.
func AuthRateLimit(policy AuthPolicy, limiter fixedWindowLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil || !policy.enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			type window struct {
				scope string
				limit int
			}
			windows := make([]window, 0, 2)
			if policy.PerIP > 0 {
				windows = append(windows, window{"auth:" + policy.Name + ":ip:" + clientIP(r), policy.PerIP})
			}
			if policy.PerAccount > 0 {
				body, err := io.ReadAll(io.LimitReader(r.Body, maxCredentialBody))
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeBadRequest, err, "Unable to read request body"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))
				if account := accountIdentifier(body); account != "" {
					windows = append(windows, window{"auth:" + policy.Name + ":account:" + account, policy.PerAccount})
				}
			}

			for _, win := range windows {
				allowed, hits, err := limiter.FixedWindowAllow(ctx, win.scope, int64(win.limit), policy.Window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiter unavailable"))
					return
				}
				if allowed {
					continue
				}
				if logg != nil {
					logg.Warn(logg.WithFields(ctx, map[string]any{
						"policy": policy.Name,
						"scope":  win.scope,
						"hits":   hits,
						"limit":  win.limit,
					}), "auth.rate_limit.blocked")
				}
				w.Header().Set("Retry-After", strconv.Itoa(int(policy.Window.Seconds())))
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, msgAuthThrottled))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// accountIdentifier hashes the email, or the phone digits when no email is
// sent, so raw identifiers never land in Redis keys.
func accountIdentifier(payload []byte) string {
	var body struct {
		Email string `json:"email"`
		Phone string `json:"phone"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	id := strings.ToLower(strings.TrimSpace(body.Email))
	if id == "" {
		id = strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, body.Phone)
	}
	if id == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(id))
	return hex.EncodeToString(sum[:12])
}
