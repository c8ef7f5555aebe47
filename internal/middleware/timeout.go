package middleware

import (
	"context"
	"net/http"
	"time"
)

// DefaultRequestTimeout bounds a request when the caller passes no timeout.
const DefaultRequestTimeout = 30 * time.Second

// Timeout returns middleware that cancels the request context and cuts off
// the response after the given duration. Generation endpoints enqueue work
// rather than waiting on the AI provider, so a single bound covers the API.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	if d <= 0 {
		d = DefaultRequestTimeout
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			http.TimeoutHandler(next, d, "Request Timeout").ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
