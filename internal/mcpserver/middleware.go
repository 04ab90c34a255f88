package mcpserver

import (
	"log"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultRequestBodyLimitBytes caps MCP request payloads. write_document
	// carries whole documents, so the cap is above the 2 MiB read limit.
	DefaultRequestBodyLimitBytes int64 = 8 << 20

	// DefaultRateLimitRequests is the request budget per client IP and window.
	DefaultRateLimitRequests = 600

	// DefaultRateLimitWindow is the throttle window.
	DefaultRateLimitWindow = time.Minute
)

const (
	headerNoSniff = "nosniff"
	headerNoFrame = "DENY"
	headerCSP     = "default-src 'none'; frame-ancestors 'none'"
)

type clientWindow struct {
	start time.Time
	count int
}

// rateLimiter is a fixed-window request counter keyed by client IP.
type rateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	windows map[string]clientWindow
}

func newRateLimiter(limit int, window time.Duration, now func() time.Time) *rateLimiter {
	if limit <= 0 {
		limit = DefaultRateLimitRequests
	}
	if window <= 0 {
		window = DefaultRateLimitWindow
	}
	if now == nil {
		now = time.Now
	}
	return &rateLimiter{
		limit:   limit,
		window:  window,
		now:     now,
		windows: make(map[string]clientWindow),
	}
}

func (l *rateLimiter) allow(client string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	// Drop stale windows to keep memory bounded.
	for ip, w := range l.windows {
		if now.Sub(w.start) >= 2*l.window {
			delete(l.windows, ip)
		}
	}

	w := l.windows[client]
	if w.start.IsZero() || now.Sub(w.start) >= l.window {
		l.windows[client] = clientWindow{start: now, count: 1}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	l.windows[client] = w
	return true
}

// middleware wraps each request before the limiter is consulted.
func (l *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.allow(clientIP(r)) {
			next.ServeHTTP(w, r)
			return
		}
		retryAfter := int(l.window.Seconds())
		if retryAfter <= 0 {
			retryAfter = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
	})
}

// clientIP returns the host part of the peer address. Forwarding headers
// are ignored; the server is meant to listen on a local or trusted address.
func clientIP(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if addr == "" {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(addr); err == nil && host != "" {
		return host
	}
	return addr
}

// bodySizeLimit caps request body size before the MCP transport reads it.
func bodySizeLimit(limit int64, next http.Handler) http.Handler {
	if limit <= 0 {
		limit = DefaultRequestBodyLimitBytes
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
		}
		next.ServeHTTP(w, r)
	})
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", headerNoSniff)
		w.Header().Set("X-Frame-Options", headerNoFrame)
		w.Header().Set("Content-Security-Policy", headerCSP)
		next.ServeHTTP(w, r)
	})
}

// recoveryMiddleware turns handler panics into a 500 response.
func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("panic in HTTP handler: %v\n%s", err, debug.Stack())
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"internal server error"}`))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
