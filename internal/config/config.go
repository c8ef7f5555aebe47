// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config carries settings for the API server, the generation worker and the
// admin CLI. All three load the same struct; unused fields are ignored.
type Config struct {
	// Server
	ServerPort  string
	BaseURL     string
	FrontendURL string
	EnableHSTS  bool

	// Auth
	JWTSecret string
	JWTIssuer string

	// Backends
	DatabaseURL string
	RedisURL    string
	RabbitMQURL string

	// AI provider
	AIProvider string
	AIModel    string
	AIBaseURL  string
	OpenAIKey  string

	// Tuning
	RabbitMQPrefetch int
	RateLimit        string

	// Diagnostics
	ServerDebugMode bool
	WorkerDebugMode bool
	OTELEnabled     bool
	OTELEndpoint    string
}

// Load reads configuration from environment variables and validates the
// required settings.
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:  envOr("SERVER_PORT", "8080"),
		BaseURL:     envOr("BASE_URL", "http://localhost:8080"),
		FrontendURL: envOr("FRONTEND_URL", "http://localhost:3000"),
		EnableHSTS:  envBool("ENABLE_HSTS", false),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTIssuer: envOr("JWT_ISSUER", "study-buddy"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    envOr("REDIS_URL", "redis://localhost:6379/0"),
		RabbitMQURL: os.Getenv("RABBITMQ_URL"),

		AIProvider: envOr("AI_PROVIDER", "openai"),
		AIModel:    os.Getenv("AI_MODEL"),
		AIBaseURL:  os.Getenv("AI_BASE_URL"),
		OpenAIKey:  os.Getenv("OPENAI_API_KEY"),

		RabbitMQPrefetch: envInt("RABBITMQ_PREFETCH", 1),
		RateLimit:        envOr("RATE_LIMIT", "10-S"),

		ServerDebugMode: envBool("SERVER_DEBUG_MODE", false),
		WorkerDebugMode: envBool("WORKER_DEBUG_MODE", false),
		OTELEnabled:     envBool("OTEL_ENABLED", false),
		OTELEndpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.RabbitMQURL == "" {
		return fmt.Errorf("RABBITMQ_URL is required for generation jobs (AI features require RabbitMQ)")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v == "true" || v == "1" || v == "yes"
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
