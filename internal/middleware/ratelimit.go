package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimiter keeps a sliding log of request times per client key.
// Idle keys are swept during Allow at most once per window, so no
// background goroutine outlives the limiter.
type RateLimiter struct {
	mu        sync.Mutex
	hits      map[string][]time.Time
	limit     int
	window    time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		hits:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Allow records a request for key and reports whether it fits the limit.
func (rl *RateLimiter) Allow(key string) bool {
	ok, _ := rl.take(key)
	return ok
}

// take is Allow plus the time until the oldest logged request leaves the
// window when the request is refused.
func (rl *RateLimiter) take(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.window)
	if now.Sub(rl.lastSweep) >= rl.window {
		rl.sweep(cutoff)
		rl.lastSweep = now
	}

	recent := trimBefore(rl.hits[key], cutoff)
	if len(recent) >= rl.limit {
		rl.hits[key] = recent
		return false, recent[0].Sub(cutoff)
	}
	rl.hits[key] = append(recent, now)
	return true, 0
}

// sweep drops keys whose newest request is outside the window.
func (rl *RateLimiter) sweep(cutoff time.Time) {
	for key, times := range rl.hits {
		if len(times) == 0 || !times[len(times)-1].After(cutoff) {
			delete(rl.hits, key)
		}
	}
}

// keys is the number of clients currently tracked.
func (rl *RateLimiter) keys() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.hits)
}

// trimBefore drops the leading times at or before cutoff. Times are
// appended in order, so the survivors are a suffix.
func trimBefore(times []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(times) && !times[i].After(cutoff) {
		i++
	}
	return times[i:]
}

// RateLimit creates middleware allowing limit requests per window per IP.
func RateLimit(limit int, window time.Duration) func(http.HandlerFunc) http.HandlerFunc {
	limiter := NewRateLimiter(limit, window)

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			ip := getClientIP(r)
			ok, wait := limiter.take(ip)
			if !ok {
				slog.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				jsonError(w, http.StatusTooManyRequests, "too many requests, please try again later")
				return
			}
			next(w, r)
		}
	}
}

// RateLimitAuth limits the OAuth endpoints: 10 requests per 15 minutes
// per IP (a sign-in is two requests).
func RateLimitAuth() func(http.HandlerFunc) http.HandlerFunc {
	return RateLimit(10, 15*time.Minute)
}

// RateLimitUpload limits note uploads: 30 per hour per IP.
func RateLimitUpload() func(http.HandlerFunc) http.HandlerFunc {
	return RateLimit(30, time.Hour)
}

// getClientIP prefers the first X-Forwarded-For hop, then X-Real-IP,
// then the connection address.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
