package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-gateway/api/responses"
	"github.com/angelmondragon/storefront-gateway/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-gateway/pkg/errors"
	"github.com/angelmondragon/storefront-gateway/pkg/logger"
)

// Upper bound on the bytes buffered while looking for the email.
const maxAuthBodyBytes = 16 << 10

type rateLimiterStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// AuthRateLimitPolicy throttles one auth surface (login, signup) per client IP and per
// submitted email. A zero limit disables that dimension.
type AuthRateLimitPolicy struct {
	name       string
	window     time.Duration
	ipLimit    int
	emailLimit int
}

func NewAuthRateLimitPolicy(name string, window time.Duration, ipLimit, emailLimit int) AuthRateLimitPolicy {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "auth"
	}
	return AuthRateLimitPolicy{name: name, window: window, ipLimit: ipLimit, emailLimit: emailLimit}
}

func LoginRateLimitPolicy(cfg config.AuthRateLimitConfig) AuthRateLimitPolicy {
	return NewAuthRateLimitPolicy("login", cfg.LoginWindow, cfg.LoginIPLimit, cfg.LoginEmailLimit)
}

func SignupRateLimitPolicy(cfg config.AuthRateLimitConfig) AuthRateLimitPolicy {
	return NewAuthRateLimitPolicy("signup", cfg.SignupWindow, cfg.SignupIPLimit, cfg.SignupEmailLimit)
}

func (p AuthRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.emailLimit > 0)
}

// counter is one throttled dimension of a request. value is what gets logged, never a raw email.
type counter struct {
	dimension string
	value     string
	limit     int
}

func (p AuthRateLimitPolicy) scope(c counter) string {
	return c.dimension + ":" + p.name + ":" + c.value
}

// AuthRateLimit rejects a request with 429 once any of its counters is past the limit.
// The IP counter is checked before the body is read.
func AuthRateLimit(policy AuthRateLimitPolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if policy.ipLimit > 0 {
				if ip := clientIP(r); ip != "" {
					if !policy.take(ctx, logg, w, store, counter{dimension: "ip", value: ip, limit: policy.ipLimit}) {
						return
					}
				}
			}

			if policy.emailLimit > 0 {
				body, err := io.ReadAll(io.LimitReader(r.Body, maxAuthBodyBytes+1))
				if err != nil {
					responses.WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "could not read request body"))
					return
				}
				rest := io.MultiReader(bytes.NewReader(body), r.Body)
				r.Body = struct {
					io.Reader
					io.Closer
				}{rest, r.Body}

				if email := emailFrom(body); email != "" {
					if !policy.take(ctx, logg, w, store, counter{dimension: "email", value: hashValue(email), limit: policy.emailLimit}) {
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// take counts one attempt and writes the rejection itself when it should not proceed.
func (p AuthRateLimitPolicy) take(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, store rateLimiterStore, c counter) bool {
	allowed, attempts, err := store.FixedWindowAllow(ctx, p.scope(c), int64(c.limit), p.window)
	if err != nil {
		responses.WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiter unavailable"))
		return false
	}
	if allowed {
		return true
	}

	logg.Warn(logg.WithFields(ctx, map[string]any{
		"policy":         p.name,
		"dimension":      c.dimension,
		"subject":        c.value,
		"attempts":       attempts,
		"limit":          c.limit,
		"window_seconds": int(p.window.Seconds()),
	}), "auth.rate_limit.blocked")

	w.Header().Set("Retry-After", strconv.Itoa(int(p.window.Seconds())))
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, please try again later"))
	return false
}

// clientIP prefers the left-most X-Forwarded-For hop, then X-Real-IP, then the socket peer.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func emailFrom(body []byte) string {
	var payload struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(payload.Email))
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
