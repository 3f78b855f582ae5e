// Package config resolves runtime settings for harbor from defaults,
// .harbor.yaml, HARBOR_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/papapumpkin/harbor/internal/port"
)

// Config holds all runtime configuration for a harbor invocation.
type Config struct {
	Distance    string `mapstructure:"distance"`     // geodesic or planar
	EventsFile  string `mapstructure:"events_file"`  // JSONL telemetry output; empty disables
	DBPath      string `mapstructure:"db_path"`      // SQLite run store; empty disables
	MetricsFile string `mapstructure:"metrics_file"` // Prometheus textfile; empty disables
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
	Verbose     bool   `mapstructure:"verbose"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("distance", port.Geodesic.String())
	viper.SetDefault("events_file", "")
	viper.SetDefault("db_path", "")
	viper.SetDefault("metrics_file", "")
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("log_format", "text")
	viper.SetDefault("verbose", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if _, err := cfg.Metric(); err != nil {
		return Config{}, fmt.Errorf("config: distance: %w", err)
	}
	return cfg, nil
}

// Metric returns the configured distance metric.
func (c Config) Metric() (port.Metric, error) {
	return port.ParseMetric(c.Distance)
}

// EffectiveLogLevel returns debug when Verbose is set, the configured level
// otherwise.
func (c Config) EffectiveLogLevel() string {
	if c.Verbose {
		return "debug"
	}
	return c.LogLevel
}
