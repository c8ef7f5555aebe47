package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/nayan947211-pixel/study-buddy/internal/models"
	"github.com/nayan947211-pixel/study-buddy/internal/request"
)

func TestUserFromContext(t *testing.T) {
	t.Parallel()

	stored := &models.User{ID: uuid.New(), Email: "learner@example.com"}

	tests := []struct {
		name  string
		setup func(*http.Request) *http.Request
		want  *models.User
	}{
		{
			name: "user present",
			setup: func(r *http.Request) *http.Request {
				return r.WithContext(SetUserInContext(r.Context(), stored))
			},
			want: stored,
		},
		{
			name:  "empty context",
			setup: func(r *http.Request) *http.Request { return r },
			want:  nil,
		},
		{
			name: "wrong value type",
			setup: func(r *http.Request) *http.Request {
				ctx := context.WithValue(r.Context(), request.UserContextKey(), "not a user")
				return r.WithContext(ctx)
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := tt.setup(httptest.NewRequest("GET", "/dashboard", nil))
			got := UserFromContext(req)

			if got != tt.want {
				t.Errorf("UserFromContext() = %+v, want %+v", got, tt.want)
			}
			if got != nil && got.Email != stored.Email {
				t.Errorf("email = %q, want %q", got.Email, stored.Email)
			}
		})
	}
}
