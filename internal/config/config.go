// Package config loads server configuration from defaults, an optional YAML
// file, and ATELIER_* environment variables.
package config

import (
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all server settings.
type Config struct {
	Addr            string `koanf:"addr"`
	DBPath          string `koanf:"db_path"`
	AuthSecret      string `koanf:"auth_secret"`
	AuthDisabled    bool   `koanf:"auth_disabled"`
	TokenTTLMinutes int    `koanf:"token_ttl_minutes"`
	Workers         int    `koanf:"workers"`
	CacheEntries    int    `koanf:"cache_entries"`
	CacheTTLSeconds int    `koanf:"cache_ttl_seconds"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Addr:            ":8080",
		DBPath:          "atelier.db",
		AuthSecret:      "atelier-dev-secret",
		TokenTTLMinutes: 60,
		Workers:         4,
		CacheEntries:    1024,
		CacheTTLSeconds: 3600,
	}
}

// Load builds a Config by layering defaults, an optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults
//  2. YAML file if ATELIER_CONFIG is set
//  3. env (prefix ATELIER_)
func Load() (Config, error) {
	cfg := Defaults()

	k := koanf.New(".")

	if path := os.Getenv("ATELIER_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return cfg, err
		}
	}

	// Environment variables: ATELIER_ADDR, ATELIER_DB_PATH, ...
	// Keys keep their underscores to match the koanf tags above.
	envProvider := env.Provider("ATELIER_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "atelier_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return cfg, err
	}

	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return cfg, err
	}

	if cfg.Addr == "" {
		return cfg, errors.New("addr must not be empty")
	}
	if cfg.Workers < 1 {
		return cfg, errors.New("workers must be at least 1")
	}
	return cfg, nil
}
