package rest

import (
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimit answers 429 once more than rps requests per second (plus burst)
// arrive. rps <= 0 disables the limiter.
func RateLimit(rps, burst int, logger *slog.Logger) func(http.Handler) http.Handler {
	if rps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				logger.WarnContext(r.Context(), "rate limit exceeded", "path", r.URL.Path)
				writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: http.StatusText(http.StatusTooManyRequests)})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
