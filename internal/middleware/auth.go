package middleware

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/nayan947211-pixel/study-buddy/internal/database"
	"github.com/nayan947211-pixel/study-buddy/internal/models"
	"github.com/nayan947211-pixel/study-buddy/internal/request"
	"github.com/nayan947211-pixel/study-buddy/internal/services/auth"
)

// UserFromContext extracts the user from the request context
func UserFromContext(r *http.Request) *models.User {
	return request.UserFromContext(r)
}

// WithUser returns a copy of the request with the user attached to its context
func WithUser(r *http.Request, user *models.User) *http.Request {
	return r.WithContext(request.WithUser(r.Context(), user))
}

// Auth creates authentication middleware that validates bearer tokens and
// loads the authenticated user
func Auth(tokens *auth.TokenService, userRepo database.UserRepositoryInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, http.StatusUnauthorized, "Missing Authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondError(w, http.StatusUnauthorized, "Invalid Authorization header format")
				return
			}

			claims, err := tokens.Verify(parts[1])
			if err != nil {
				respondError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			userID, err := uuid.Parse(claims.Sub)
			if err != nil {
				respondError(w, http.StatusUnauthorized, "Invalid token subject")
				return
			}

			ctx := r.Context()
			user, err := userRepo.GetByID(ctx, userID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					respondError(w, http.StatusUnauthorized, "Unknown user")
					return
				}
				log.Printf("Database error while fetching user: %v", err)
				respondError(w, http.StatusInternalServerError, "Database error")
				return
			}

			next.ServeHTTP(w, WithUser(r, user))
		})
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success": false,
		"error":   message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}
