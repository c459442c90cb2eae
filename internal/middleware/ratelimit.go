package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// IPRateLimiter keeps one token bucket per client address.
type IPRateLimiter struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// NewIPRateLimiter allows limit events per second per client with the given burst.
func NewIPRateLimiter(limit rate.Limit, burst int) *IPRateLimiter {
	return &IPRateLimiter{limit: limit, burst: burst, buckets: map[string]*rate.Limiter{}}
}

// AuthRateLimiter guards POST /auth/token: 10 exchanges per minute per client, burst 5.
func AuthRateLimiter() *IPRateLimiter {
	return NewIPRateLimiter(rate.Limit(10.0/60.0), 5)
}

func (l *IPRateLimiter) bucket(client string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[client]
	if !ok {
		b = rate.NewLimiter(l.limit, l.burst)
		l.buckets[client] = b
	}
	return b
}

// Middleware answers 429 with Retry-After once a client's bucket is empty.
func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	retryAfter := strconv.Itoa(l.retryAfterSeconds())
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := clientAddr(r)
		if l.bucket(client).Allow() {
			next.ServeHTTP(w, r)
			return
		}
		log.Warn().Str("client_ip", client).Str("path", r.URL.Path).Msg("rate limited")
		w.Header().Set("Retry-After", retryAfter)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"too many requests"}`))
	})
}

// retryAfterSeconds is the refill time of one token, rounded up.
func (l *IPRateLimiter) retryAfterSeconds() int {
	if l.limit <= 0 {
		return 60
	}
	return max(1, int(math.Ceil(1/float64(l.limit)-1e-9)))
}

// clientAddr prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// connection's host without its port.
func clientAddr(r *http.Request) string {
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
