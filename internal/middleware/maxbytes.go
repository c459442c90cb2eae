package middleware

import (
	"net/http"
)

// DefaultMaxBodyBytes is the default maximum request body size (64 KiB). Policy documents are a few hundred bytes.
const DefaultMaxBodyBytes = 64 << 10

// MaxBytes limits the request body size. Reads past maxBytes fail with *http.MaxBytesError,
// which the JSON handlers answer with 413. Apply to routes that accept a body (POST /auth/token, PUT schedules).
func MaxBytes(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
