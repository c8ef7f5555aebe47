package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nayan947211-pixel/study-buddy/internal/models"
)

// A single row keyed by "default" holds the active CORS policy.
const defaultCorsConfigKey = "default"

// CorsConfigRepository reads and writes the database-backed CORS policy
// consumed by the CORS reloader at runtime.
type CorsConfigRepository struct {
	db *DB
}

func NewCorsConfigRepository(db *DB) *CorsConfigRepository {
	return &CorsConfigRepository{db: db}
}

// Get returns the active CORS policy, or nil when none has been configured.
func (r *CorsConfigRepository) Get(ctx context.Context) (*models.CorsConfig, error) {
	const q = `
		SELECT config_key, allowed_origins, allow_credentials, max_age, created_at, updated_at
		FROM cors_config WHERE config_key = $1`

	var c models.CorsConfig
	err := r.db.QueryRowContext(ctx, q, defaultCorsConfigKey).Scan(
		&c.ConfigKey, &c.AllowedOrigins, &c.AllowCredentials, &c.MaxAge, &c.CreatedAt, &c.UpdatedAt,
	)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("get cors config: %w", err)
	}
	return &c, nil
}

// Set installs c as the active policy, replacing any previous one.
// AllowedOrigins carries a comma-separated origin list and must not be empty.
func (r *CorsConfigRepository) Set(ctx context.Context, c *models.CorsConfig) error {
	origins := strings.TrimSpace(c.AllowedOrigins)
	if origins == "" {
		return fmt.Errorf("allowed_origins cannot be empty")
	}

	const q = `
		INSERT INTO cors_config (config_key, allowed_origins, allow_credentials, max_age, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (config_key) DO UPDATE SET
			allowed_origins = EXCLUDED.allowed_origins,
			allow_credentials = EXCLUDED.allow_credentials,
			max_age = EXCLUDED.max_age,
			updated_at = EXCLUDED.updated_at`

	now := time.Now()
	if _, err := r.db.ExecContext(ctx, q, defaultCorsConfigKey, origins, c.AllowCredentials, c.MaxAge, now, now); err != nil {
		return fmt.Errorf("set cors config: %w", err)
	}
	return nil
}

// AllowedOriginsSlice splits a stored comma-separated origin list, trimming
// whitespace and dropping empties and duplicates while preserving order.
func AllowedOriginsSlice(raw string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		if _, dup := seen[origin]; dup {
			continue
		}
		seen[origin] = struct{}{}
		out = append(out, origin)
	}
	return out
}
