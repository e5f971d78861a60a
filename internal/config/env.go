// Package config reads CLI defaults from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds environment overrides for the codex CLI. Flags given on the
// command line take precedence.
type Config struct {
	Dir        string `env:"CODEX_DIR"`
	Format     string `env:"CODEX_FORMAT"  envDefault:"text"`
	Seed       uint64 `env:"CODEX_SEED"`
	Verbose    bool   `env:"CODEX_VERBOSE"`
	MaxQueries int    `env:"CODEX_MAX_QUERIES"` // reflect quota; 0 disables
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load returns the environment configuration.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
