package ratelimit

import (
	"net/http"
	"strconv"

	"github.com/getmockd/apisim/pkg/httputil"
)

// Middleware returns an HTTP middleware that enforces per-IP rate limiting.
// If limiter is nil, the middleware passes through without limiting.
func Middleware(limiter *PerIPLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, remaining := limiter.Allow(ClientIP(r))

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.Burst()))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if allowed {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Retry-After", strconv.FormatInt(limiter.RetryAfter(), 10))
			httputil.WriteTooManyRequests(w, "rate_limit_exceeded", "Too many requests. Please slow down.")
		})
	}
}
