// Package config loads server configuration from the environment, with an
// optional .env file for development.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// Addr is the listen address for the HTTP server.
	Addr string `env:"ADDR" envDefault:":8080"`
	// DatabaseURL selects the Postgres backend; empty keeps documents in
	// process memory.
	DatabaseURL string `env:"DATABASE_URL"`
	// DefaultGameCode is the shared code created games are placed at.
	DefaultGameCode string `env:"DEFAULT_GAME_CODE" envDefault:"3733"`
	// LogLevel is a zap level name: debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads .env if present, then parses the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
