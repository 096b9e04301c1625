// Package config provides YAML configuration parsing for pricetail.
//
// This package enables running pricetail as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
// Every field is optional; an empty file yields the defaults.
//
// Example configuration:
//
//	source: ${PRICES_CSV:-prices.csv}
//	interval: 5s
//	http_port: 0
//	log_level: info
//	columns:
//	  timestamp: "timestamp (date/time)"
//	  btc: btc
//	  eth: eth
//	  sol: sol
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultSource is the CSV path used when none is configured.
	DefaultSource = "prices.csv"

	// DefaultInterval is the wait between cycles when none is configured.
	DefaultInterval = 5 * time.Second

	// minInterval keeps a misconfigured interval from spinning on the file.
	minInterval = 100 * time.Millisecond
	maxInterval = time.Hour
)

// Config is the root configuration structure for pricetail.
//
// Use [Load] or [Parse] to create a Config from YAML, or [Default] for the
// built-in settings.
type Config struct {
	// Source is the CSV file to read.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	Source string `yaml:"source"`

	// Interval is the wait between cycles. Defaults to 5s.
	Interval Duration `yaml:"interval"`

	// HTTPPort serves the latest reading over HTTP when non-zero.
	HTTPPort int `yaml:"http_port"`

	// LogLevel is one of debug, info, warn, error. Defaults to info.
	LogLevel string `yaml:"log_level"`

	// Columns maps each price field to its CSV header name.
	Columns ColumnsConfig `yaml:"columns"`
}

// ColumnsConfig names the CSV header for each price field.
// Unset fields keep their defaults.
type ColumnsConfig struct {
	Timestamp string `yaml:"timestamp"`
	BTC       string `yaml:"btc"`
	ETH       string `yaml:"eth"`
	SOL       string `yaml:"sol"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		varName := submatches[1]
		hasDefault := submatches[2] != ""
		defaultVal := submatches[3]

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads and parses a YAML configuration file.
//
// Returns an error if the file cannot be read, parsed or validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in Source. Defaults are applied for
// every unset field before validation.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Source != "" {
		expanded, err := expandEnvVars(cfg.Source)
		if err != nil {
			return nil, fmt.Errorf("source: %w", err)
		}
		cfg.Source = expanded
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Source == "" {
		c.Source = DefaultSource
	}
	if c.Interval == 0 {
		c.Interval = Duration(DefaultInterval)
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Columns.Timestamp == "" {
		c.Columns.Timestamp = "timestamp (date/time)"
	}
	if c.Columns.BTC == "" {
		c.Columns.BTC = "btc"
	}
	if c.Columns.ETH == "" {
		c.Columns.ETH = "eth"
	}
	if c.Columns.SOL == "" {
		c.Columns.SOL = "sol"
	}
}

// Validate checks every field. It is called by [Parse] and should be called
// again after command-line overrides are applied.
func (c *Config) Validate() error {
	if c.Source == "" {
		return errors.New("source is required")
	}

	interval := c.Interval.Duration()
	if interval < minInterval {
		return fmt.Errorf("interval must be at least %s, got %s", minInterval, interval)
	}
	if interval > maxInterval {
		return fmt.Errorf("interval must not exceed %s, got %s", maxInterval, interval)
	}

	if c.HTTPPort < 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("http_port must be between 0 and 65535, got %d", c.HTTPPort)
	}

	if _, err := c.SlogLevel(); err != nil {
		return err
	}

	seen := make(map[string]string, 4)
	for _, col := range []struct{ field, name string }{
		{"timestamp", c.Columns.Timestamp},
		{"btc", c.Columns.BTC},
		{"eth", c.Columns.ETH},
		{"sol", c.Columns.SOL},
	} {
		if other, dup := seen[col.name]; dup {
			return fmt.Errorf("columns: %q used for both %s and %s", col.name, other, col.field)
		}
		seen[col.name] = col.field
	}

	return nil
}

// SlogLevel converts LogLevel to a [slog.Level].
func (c *Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log_level must be debug, info, warn or error, got %q", c.LogLevel)
	}
}
