// Package config loads server configuration from the environment, with
// an optional .env file for local development.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the server configuration
type Config struct {
	Host string `env:"JPX_HOST" envDefault:""`
	Port int    `env:"JPX_PORT" envDefault:"8080"`

	// Storage selects the backend: "memory" or "redis"
	Storage  string `env:"JPX_STORAGE" envDefault:"memory"`
	RedisURL string `env:"JPX_REDIS_URL" envDefault:""`

	// OwnerURL is the base URL of the platform that creates sessions
	// and receives their results
	OwnerURL string `env:"JPX_OWNER_URL" envDefault:"http://localhost:3000"`

	// OwnerHome is where clients are redirected after settlement
	OwnerHome string `env:"JPX_OWNER_HOME" envDefault:"/"`

	// OwnerKeyHash is the bcrypt hash of the shared management key.
	// Empty disables management auth (development only).
	OwnerKeyHash string `env:"JPX_OWNER_KEY_HASH" envDefault:""`

	// AllowSinglePlayer lowers the round start minimum to one
	// connected player
	AllowSinglePlayer bool `env:"JPX_ALLOW_SINGLE_PLAYER" envDefault:"false"`

	// Pacing delays between game phases
	NextRoundDelay     time.Duration `env:"JPX_NEXT_ROUND_DELAY" envDefault:"3s"`
	PersonalScoreDelay time.Duration `env:"JPX_PERSONAL_SCORE_DELAY" envDefault:"1s"`
	SettlementPace     time.Duration `env:"JPX_SETTLEMENT_PACE" envDefault:"2s"`
	RedirectDelay      time.Duration `env:"JPX_REDIRECT_DELAY" envDefault:"7500ms"`
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first if present; real environment
// variables win over it.
func Load() (*Config, error) {
	// Missing .env is the normal production case
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.Storage != "memory" && cfg.Storage != "redis" {
		return nil, fmt.Errorf("invalid JPX_STORAGE %q: must be 'memory' or 'redis'", cfg.Storage)
	}
	if cfg.Storage == "redis" && cfg.RedisURL == "" {
		return nil, fmt.Errorf("JPX_REDIS_URL required when JPX_STORAGE=redis")
	}

	return cfg, nil
}
