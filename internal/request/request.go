// Package request holds helpers shared by middleware and handlers for
// reading per-request state: the authenticated user and the client IP.
package request

import (
	"context"
	"net/http"
	"strings"

	"github.com/nayan947211-pixel/study-buddy/internal/models"
)

type ctxKey int

const userKey ctxKey = iota

// UserContextKey exposes the user key so tests can inject arbitrary values.
func UserContextKey() any { return userKey }

// WithUser attaches the authenticated user to the context.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the authenticated user, or nil when absent.
func UserFromContext(r *http.Request) *models.User {
	u, _ := r.Context().Value(userKey).(*models.User)
	return u
}

// ClientIP resolves the originating client address. Proxy headers take
// precedence over the socket address: the first X-Forwarded-For entry,
// then X-Real-IP, then RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
