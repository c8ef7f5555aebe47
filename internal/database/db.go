package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Postgres driver
	_ "github.com/lib/pq"
)

const (
	// MaxOpenConns is the maximum number of open database connections
	MaxOpenConns = 25
	// MaxIdleConns is the maximum number of idle database connections
	MaxIdleConns = 5
	// ConnMaxLifetime is the maximum lifetime of a database connection
	ConnMaxLifetime = 5 * time.Minute
)

// DB wraps the sql database handle
type DB struct {
	*sql.DB
}

// New opens a Postgres connection pool and verifies it with a ping
func New(databaseURL string) (*DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(MaxOpenConns)
	db.SetMaxIdleConns(MaxIdleConns)
	db.SetConnMaxLifetime(ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			_ = closeErr
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}
