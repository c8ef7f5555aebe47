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

const defaultRatelimitConfigKey = "default"

// RatelimitConfigRepository reads and writes the database-backed rate limit,
// polled by the rate limit reloader.
type RatelimitConfigRepository struct {
	db *DB
}

func NewRatelimitConfigRepository(db *DB) *RatelimitConfigRepository {
	return &RatelimitConfigRepository{db: db}
}

// Get returns the active rate limit, or nil when none has been configured.
func (r *RatelimitConfigRepository) Get(ctx context.Context) (*models.RatelimitConfig, error) {
	const q = `
		SELECT config_key, rate, created_at, updated_at
		FROM ratelimit_config WHERE config_key = $1`

	var c models.RatelimitConfig
	err := r.db.QueryRowContext(ctx, q, defaultRatelimitConfigKey).Scan(
		&c.ConfigKey, &c.Rate, &c.CreatedAt, &c.UpdatedAt,
	)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("get ratelimit config: %w", err)
	}
	return &c, nil
}

// Set installs the rate as the active limit. The rate uses limiter's
// "<count>-<period>" notation, for example "5-S" or "100-M".
func (r *RatelimitConfigRepository) Set(ctx context.Context, c *models.RatelimitConfig) error {
	rate := strings.TrimSpace(c.Rate)
	if rate == "" {
		return fmt.Errorf("rate cannot be empty")
	}

	const q = `
		INSERT INTO ratelimit_config (config_key, rate, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (config_key) DO UPDATE SET
			rate = EXCLUDED.rate,
			updated_at = EXCLUDED.updated_at`

	now := time.Now()
	if _, err := r.db.ExecContext(ctx, q, defaultRatelimitConfigKey, rate, now, now); err != nil {
		return fmt.Errorf("set ratelimit config: %w", err)
	}
	return nil
}
