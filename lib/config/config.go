// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the variable Load reads the config path
// from.
const EnvironmentVariable = "LITEHOST_CONFIG"

// Strategy selects the connection pool strategy.
type Strategy string

const (
	// StrategyStrong keeps idle connections until reused or cleared.
	StrategyStrong Strategy = "strong"
	// StrategyWeak closes idle connections after pool.idle_timeout.
	StrategyWeak Strategy = "weak"
	// StrategyNone disables pooling.
	StrategyNone Strategy = "none"
	// StrategyCustom leaves the pool unset for the host to install.
	StrategyCustom Strategy = "custom"
)

// Config is the litehost configuration.
type Config struct {
	Database  DatabaseConfig  `yaml:"database" json:"database"`
	Pool      PoolConfig      `yaml:"pool" json:"pool"`
	Functions FunctionsConfig `yaml:"functions" json:"functions"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
}

// DatabaseConfig configures how database files are opened.
type DatabaseConfig struct {
	// Path is the default database file for commands that take one.
	Path string `yaml:"path" json:"path"`

	// Pragmas run on every new connection. Nil uses the engine
	// defaults; an empty list runs none.
	Pragmas []string `yaml:"pragmas" json:"pragmas"`
}

// PoolConfig configures connection pooling.
type PoolConfig struct {
	Strategy Strategy `yaml:"strategy" json:"strategy"`

	// MaxPoolSize bounds the idle connections kept per file.
	MaxPoolSize int `yaml:"max_pool_size" json:"max_pool_size"`

	// IdleTimeout and SweepInterval are Go durations ("5m", "30s")
	// used by the weak strategy.
	IdleTimeout   string `yaml:"idle_timeout" json:"idle_timeout"`
	SweepInterval string `yaml:"sweep_interval" json:"sweep_interval"`
}

// FunctionsConfig configures function binding.
type FunctionsConfig struct {
	// LogCallbackErrors logs errors and panics raised by function
	// implementations.
	LogCallbackErrors bool `yaml:"log_callback_errors" json:"log_callback_errors"`

	// UnbindOnClose removes bound functions before a connection is
	// returned to the pool.
	UnbindOnClose bool `yaml:"unbind_on_close" json:"unbind_on_close"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Default returns the configuration used for any value a file does
// not set.
func Default() *Config {
	return &Config{
		Pool: PoolConfig{
			Strategy:      StrategyStrong,
			MaxPoolSize:   100,
			IdleTimeout:   "5m",
			SweepInterval: "30s",
		},
		Functions: FunctionsConfig{
			LogCallbackErrors: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads the file named by LITEHOST_CONFIG.
func Load() (*Config, error) {
	path := os.Getenv(EnvironmentVariable)
	if path == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your litehost config file, or use --config", EnvironmentVariable)
	}
	return LoadFile(path)
}

// LoadFile loads path over the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}
	cfg.Database.Path = expandVars(cfg.Database.Path)
	return cfg, nil
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default}.
func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

// Validate checks the configuration and reports every problem.
func (c *Config) Validate() error {
	var errs []error

	strategies := []Strategy{StrategyStrong, StrategyWeak, StrategyNone, StrategyCustom}
	if !slices.Contains(strategies, c.Pool.Strategy) {
		errs = append(errs, fmt.Errorf("pool.strategy must be one of %v, got %q", strategies, c.Pool.Strategy))
	}
	if c.Pool.MaxPoolSize < 0 {
		errs = append(errs, fmt.Errorf("pool.max_pool_size must not be negative, got %d", c.Pool.MaxPoolSize))
	}
	if _, err := parseDuration("pool.idle_timeout", c.Pool.IdleTimeout); err != nil {
		errs = append(errs, err)
	}
	if interval, err := parseDuration("pool.sweep_interval", c.Pool.SweepInterval); err != nil {
		errs = append(errs, err)
	} else if c.Pool.Strategy == StrategyWeak && interval <= 0 {
		errs = append(errs, errors.New("pool.sweep_interval must be positive for the weak strategy"))
	}

	if _, err := c.Logging.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		errs = append(errs, fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}

func parseDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %s", field, value)
	}
	return d, nil
}

// IdleTimeoutDuration returns pool.idle_timeout. Call Validate first;
// an unparsable value yields zero, which disables reclamation.
func (p PoolConfig) IdleTimeoutDuration() time.Duration {
	d, _ := parseDuration("", p.IdleTimeout)
	return d
}

// SweepIntervalDuration returns pool.sweep_interval, or zero if it is
// unset or unparsable.
func (p PoolConfig) SweepIntervalDuration() time.Duration {
	d, _ := parseDuration("", p.SweepInterval)
	return d
}

// SlogLevel converts logging.level to a slog.Level.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("logging.level: %w", err)
	}
	return level, nil
}
