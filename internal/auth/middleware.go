package auth

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// rateLimiter tracks failed login attempts per IP.
type rateLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	now      func() time.Time
}

func newRateLimiter() *rateLimiter {
	return &rateLimiter{
		attempts: make(map[string][]time.Time),
		now:      time.Now,
	}
}

const (
	rateLimitWindow  = 1 * time.Minute
	rateLimitMaxFail = 10
)

// prune drops attempts older than the window. Callers hold rl.mu.
func (rl *rateLimiter) prune(ip string, now time.Time) []time.Time {
	cutoff := now.Add(-rateLimitWindow)
	valid := rl.attempts[ip][:0]
	for _, t := range rl.attempts[ip] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	if len(valid) == 0 {
		delete(rl.attempts, ip)
		return nil
	}
	rl.attempts[ip] = valid
	return valid
}

// limited reports whether ip has used up its failed attempts.
func (rl *rateLimiter) limited(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return len(rl.prune(ip, rl.now())) >= rateLimitMaxFail
}

// recordFailure records a failed attempt.
func (rl *rateLimiter) recordFailure(ip string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.attempts[ip] = append(rl.prune(ip, now), now)
}

// Middleware authenticates /api/ requests with HTTP Basic credentials
// checked against a Directory.
type Middleware struct {
	dir     *Directory
	limiter *rateLimiter
}

// NewMiddleware creates a Middleware over dir.
func NewMiddleware(dir *Directory) *Middleware {
	return &Middleware{dir: dir, limiter: newRateLimiter()}
}

// RequireUser wraps next. Non-API routes pass through untouched.
// Returns 401 for missing/invalid credentials, 429 for rate-limited IPs.
func (m *Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/") {
			next.ServeHTTP(w, r)
			return
		}

		ip := clientIP(r)
		if m.limiter.limited(ip) {
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}

		email, password, ok := r.BasicAuth()
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="client-visits"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		user, err := m.dir.Authenticate(email, password)
		if err != nil {
			m.limiter.recordFailure(ip)
			w.Header().Set("WWW-Authenticate", `Basic realm="client-visits"`)
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// RequireUser is a convenience for NewMiddleware(dir).RequireUser(next).
func RequireUser(dir *Directory, next http.Handler) http.Handler {
	return NewMiddleware(dir).RequireUser(next)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
