// Package config loads colindex settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite = "sqlite"
	DriverPebble = "pebble"
	DriverMemory = "memory"

	RemovalTombstone = "tombstone"
	RemovalFilter    = "filter"
)

type Config struct {
	Store StoreConfig `yaml:"store"`
	Index IndexConfig `yaml:"index"`
	Log   LogConfig   `yaml:"log"`
}

type StoreConfig struct {
	Driver             string `yaml:"driver"`               // sqlite | pebble | memory
	DSN                string `yaml:"dsn"`                  // SQLite DSN
	Path               string `yaml:"path"`                 // Pebble directory, empty for in-memory
	NamespaceCacheSize int    `yaml:"namespace_cache_size"` // catalog cache entries
}

type IndexConfig struct {
	DefaultLimit int    `yaml:"default_limit"`
	BatchSize    int    `yaml:"batch_size"`
	RangeRemoval string `yaml:"range_removal"` // tombstone | filter
	HealStale    *bool  `yaml:"heal_stale"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads configPath, or with an empty path the first of
// configs/colindex.yaml and colindex.yaml that exists. Missing search-path
// files fall back to defaults; a missing explicit path is an error.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}
	if configPath == "" {
		for _, p := range []string{"configs/colindex.yaml", "colindex.yaml"} {
			data, err := os.ReadFile(p)
			if err == nil {
				return parse(cfg, data, p)
			}
		}
		applyDefaults(cfg)
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		applyDefaults(cfg)
		return cfg, err
	}
	return parse(cfg, data, configPath)
}

func parse(cfg *Config, data []byte, path string) (*Config, error) {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		applyDefaults(cfg)
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = DriverSQLite
	}
	if cfg.Store.Driver == DriverSQLite && cfg.Store.DSN == "" {
		cfg.Store.DSN = ":memory:"
	}
	if cfg.Store.NamespaceCacheSize <= 0 {
		cfg.Store.NamespaceCacheSize = 1024
	}
	if cfg.Index.DefaultLimit <= 0 {
		cfg.Index.DefaultLimit = 100
	}
	if cfg.Index.BatchSize < 0 {
		cfg.Index.BatchSize = 0
	}
	if cfg.Index.RangeRemoval == "" {
		cfg.Index.RangeRemoval = RemovalTombstone
	}
	if cfg.Index.HealStale == nil {
		heal := true
		cfg.Index.HealStale = &heal
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// Validate rejects unknown enum values.
func (c *Config) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case DriverSQLite, DriverPebble, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("store.driver: unsupported %q", c.Store.Driver))
	}
	switch c.Index.RangeRemoval {
	case RemovalTombstone, RemovalFilter:
	default:
		errs = append(errs, fmt.Errorf("index.range_removal: unsupported %q", c.Index.RangeRemoval))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: unsupported %q", c.Log.Level))
	}
	return errors.Join(errs...)
}

// Heal reports the effective heal_stale setting.
func (i IndexConfig) Heal() bool {
	return i.HealStale == nil || *i.HealStale
}
