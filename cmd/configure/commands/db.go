package commands

import (
	"fmt"

	"github.com/nayan947211-pixel/study-buddy/internal/config"
	"github.com/nayan947211-pixel/study-buddy/internal/database"
)

// openDatabase loads the service config and connects to its database.
// The caller owns the returned handle.
func openDatabase() (*database.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}
