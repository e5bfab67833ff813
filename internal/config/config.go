package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/wam-arcade/games-service/internal/model"
)

// Config holds all process configuration, populated from the
// environment. A .env file in the working directory is honored when
// present.
type Config struct {
	Host string `env:"HOST" envDefault:""`
	Port int    `env:"PORT" envDefault:"8080"`

	// StorageType selects the storage backend ("memory" or "redis")
	StorageType string `env:"STORAGE_TYPE" envDefault:"memory"`
	RedisURL    string `env:"REDIS_URL"`

	// Remote collaborators
	UsersServiceURL    string `env:"USERS_SERVICE_URL"`
	VouchersServiceURL string `env:"VOUCHERS_SERVICE_URL"`

	// Admission feature toggles
	VouchersEnabled    bool `env:"ENABLE_VOUCHERS" envDefault:"false"`
	MaxPlayersEnforced bool `env:"ENFORCE_MAX_PLAYERS" envDefault:"true"`
	MaxPlayers         int  `env:"MAX_PLAYERS" envDefault:"25"`

	// GameCacheTTL bounds how long game projections stay cached
	GameCacheTTL time.Duration `env:"CACHE_TTL" envDefault:"5m"`
}

// Load reads configuration from a .env file (if present) and the
// environment
func Load() (Config, error) {
	// Missing .env is fine; real deployments set the environment
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}

// Admission returns the current admission toggle snapshot
func (c Config) Admission() model.AdmissionConfig {
	return model.AdmissionConfig{
		VouchersEnabled:    c.VouchersEnabled,
		MaxPlayersEnforced: c.MaxPlayersEnforced,
		MaxPlayers:         c.MaxPlayers,
	}
}

// CacheTTL returns the TTL applied to cached game projections
func (c Config) CacheTTL() time.Duration {
	return c.GameCacheTTL
}
