// Package config loads service configuration by layering defaults, an
// optional YAML file, and BENEFIND_-prefixed environment variables.
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the full service configuration.
type Config struct {
	Addr     string `koanf:"addr"`
	LogLevel string `koanf:"log_level"`

	// SupportedJurisdictions is the rule-loading allow-list.
	SupportedJurisdictions []string `koanf:"supported_jurisdictions"`

	Postgres PostgresConfig `koanf:"postgres"`
	Redis    RedisConfig    `koanf:"redis"`
}

// PostgresConfig holds rule catalogue database settings. An empty URL selects
// the seeded in-memory stores (dev mode).
type PostgresConfig struct {
	URL string `koanf:"url"`
}

// RedisConfig holds shared rule cache settings. An empty URL selects the
// in-process cache.
type RedisConfig struct {
	URL      string        `koanf:"url"`
	CacheTTL time.Duration `koanf:"cache_ttl"`
}

// New returns the default configuration.
func New() *Config {
	return &Config{
		Addr:                   ":8080",
		LogLevel:               "info",
		SupportedJurisdictions: []string{"IL", "CA"},
		Redis: RedisConfig{
			CacheTTL: time.Hour,
		},
	}
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if BENEFIND_CONFIG is set
//  3. env (prefix BENEFIND_, nested keys split on __)
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("BENEFIND_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// BENEFIND_ADDR -> addr, BENEFIND_POSTGRES__URL -> postgres.url
	envProvider := env.Provider("BENEFIND_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "benefind_")
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if cfg.Addr == "" {
		return nil, errors.New("addr must not be empty")
	}
	if len(cfg.SupportedJurisdictions) == 0 {
		return nil, errors.New("at least one supported jurisdiction is required")
	}
	return &cfg, nil
}
