package models

import "time"

// RatelimitConfig is a keyed rate definition stored in the database and
// hot-reloaded by the API, in limiter notation ("5-S", "100-M").
type RatelimitConfig struct {
	ConfigKey string    `json:"config_key"`
	Rate      string    `json:"rate"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
