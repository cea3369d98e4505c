// Package config loads runtime configuration from the environment.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the settings shared by the CLI and embedding applications.
type Config struct {
	// BaseDir is the base storage path handed to the persistence backend.
	// Empty means the caller falls back to the user config directory.
	BaseDir string `env:"SAVESLOT_DIR"`

	// Debounce is the minimum interval between two rate-limited writes.
	Debounce time.Duration `env:"SAVESLOT_DEBOUNCE" envDefault:"5s"`

	// Debug enables debug logging.
	Debug bool `env:"SAVESLOT_DEBUG"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
