package middleware

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterConfig configures the rate limiter
type RateLimiterConfig struct {
	// RequestsPerSecond is the rate of token refill
	RequestsPerSecond float64

	// BurstSize is the maximum number of requests allowed in a burst
	BurstSize int

	// IdleTTL is how long an unused client entry is kept
	IdleTTL time.Duration

	// KeyFunc extracts the rate limit key from the request
	// Default: client IP address from context
	KeyFunc func(r *http.Request) string
}

// LookupRateLimiterConfig returns limits for the postal-code endpoints, which
// each may cost an upstream directory request.
func LookupRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		RequestsPerSecond: 2,
		BurstSize:         10,
		IdleTTL:           3 * time.Minute,
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is an in-memory per-client token bucket limiter
type RateLimiter struct {
	config RateLimiterConfig
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	visitors map[string]*visitor
}

// NewRateLimiter creates a new rate limiter. Idle entries are dropped by
// Cleanup, which the caller schedules.
func NewRateLimiter(config RateLimiterConfig, logger *slog.Logger) *RateLimiter {
	if config.KeyFunc == nil {
		config.KeyFunc = func(r *http.Request) string {
			if ip := GetClientIPFromContext(r.Context()); ip != "" {
				return ip
			}
			return ClientIP(r, false)
		}
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = 3 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &RateLimiter{
		config:   config,
		logger:   logger,
		now:      time.Now,
		visitors: make(map[string]*visitor),
	}
}

// Allow checks if a request should be allowed
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	v, exists := rl.visitors[key]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(rl.config.RequestsPerSecond), rl.config.BurstSize)}
		rl.visitors[key] = v
	}
	now := rl.now()
	v.lastSeen = now
	rl.mu.Unlock()

	return v.limiter.AllowN(now, 1)
}

// Cleanup removes entries idle for longer than IdleTTL and returns how many
// were removed.
func (rl *RateLimiter) Cleanup() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	removed := 0
	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > rl.config.IdleTTL {
			delete(rl.visitors, key)
			removed++
		}
	}
	return removed
}

// Middleware returns an HTTP middleware that applies rate limiting
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := rl.config.KeyFunc(r)

		if !rl.Allow(key) {
			GetLogger(r.Context(), rl.logger).Warn("rate limit exceeded", "key", key)
			w.Header().Set("Retry-After", "1")
			respondWithError(w, r, errTooManyLookup)
			return
		}

		next.ServeHTTP(w, r)
	})
}
