package httpx

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig defines the parameters for a token-bucket limiter.
type RateLimitConfig struct {
	// RequestsPerWindow is the number of requests allowed per Window.
	RequestsPerWindow int
	// Window is the time window for the limit.
	Window time.Duration
	// Burst allows temporary bursts above the steady rate.
	Burst int
}

// Common profiles for different endpoint types.
var (
	// StrictLimit for authorization endpoints (abuse prevention).
	StrictLimit = RateLimitConfig{RequestsPerWindow: 10, Window: time.Minute, Burst: 10}

	// ModerateLimit for state-changing authenticated operations.
	ModerateLimit = RateLimitConfig{RequestsPerWindow: 30, Window: time.Minute, Burst: 30}

	// LenientLimit for page loads and health checks.
	LenientLimit = RateLimitConfig{RequestsPerWindow: 120, Window: time.Minute, Burst: 120}
)

// keyedLimiter tracks one limiter per key, pruning idle entries.
type keyedLimiter struct {
	mu      sync.Mutex
	cfg     RateLimitConfig
	entries map[string]*limiterEntry
}

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

const limiterIdleTTL = 10 * time.Minute

func newKeyedLimiter(cfg RateLimitConfig) *keyedLimiter {
	return &keyedLimiter{cfg: cfg, entries: make(map[string]*limiterEntry)}
}

func (kl *keyedLimiter) allow(key string) bool {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	now := time.Now()
	e, ok := kl.entries[key]
	if !ok {
		limit := rate.Limit(float64(kl.cfg.RequestsPerWindow) / kl.cfg.Window.Seconds())
		e = &limiterEntry{lim: rate.NewLimiter(limit, kl.cfg.Burst)}
		kl.entries[key] = e
	}
	e.lastSeen = now

	// Opportunistic pruning keeps the map from growing unbounded.
	if len(kl.entries) > 1024 {
		for k, v := range kl.entries {
			if now.Sub(v.lastSeen) > limiterIdleTTL {
				delete(kl.entries, k)
			}
		}
	}

	return e.lim.Allow()
}

// RateLimitByIP limits requests per remote IP address.
func RateLimitByIP(cfg RateLimitConfig) Middleware {
	kl := newKeyedLimiter(cfg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}
			if !kl.allow(host) {
				w.Header().Set("Retry-After", "60")
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitByCookie limits requests per value of the named cookie, falling
// back to the remote IP when the cookie is absent.
func RateLimitByCookie(cfg RateLimitConfig, cookieName string) Middleware {
	kl := newKeyedLimiter(cfg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.RemoteAddr
			if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
				key = c.Value
			}
			if !kl.allow(key) {
				w.Header().Set("Retry-After", "60")
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
