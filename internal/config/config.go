// Package config loads and validates pipeline configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	HTTP     HTTPConfig     `mapstructure:"http"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Output   OutputConfig   `mapstructure:"output"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// HTTPConfig configures probe and fetch request behavior.
type HTTPConfig struct {
	ProbeTimeoutSeconds int `mapstructure:"probe_timeout_seconds"`
	FetchTimeoutSeconds int `mapstructure:"fetch_timeout_seconds"`
	MaxAttempts         int `mapstructure:"max_attempts"`
	BackoffInitialMs    int `mapstructure:"backoff_initial_ms"`
	BackoffMaxMs        int `mapstructure:"backoff_max_ms"`
}

// PipelineConfig governs orchestrator behavior.
type PipelineConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// OutputConfig sets where the dataset is written.
type OutputConfig struct {
	Path string `mapstructure:"path"`
}

// MetricsConfig toggles the Prometheus scrape endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PAGESIFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.probe_timeout_seconds", 10)
	v.SetDefault("http.fetch_timeout_seconds", 15)
	v.SetDefault("http.max_attempts", 3)
	v.SetDefault("http.backoff_initial_ms", 250)
	v.SetDefault("http.backoff_max_ms", 5000)
	v.SetDefault("pipeline.concurrency", 8)
	v.SetDefault("output.path", "scraped_data.csv")
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.HTTP.ProbeTimeoutSeconds <= 0 {
		return fmt.Errorf("http.probe_timeout_seconds must be > 0")
	}
	if c.HTTP.FetchTimeoutSeconds <= 0 {
		return fmt.Errorf("http.fetch_timeout_seconds must be > 0")
	}
	if c.HTTP.MaxAttempts <= 0 {
		return fmt.Errorf("http.max_attempts must be > 0")
	}
	if c.Pipeline.Concurrency <= 0 {
		return fmt.Errorf("pipeline.concurrency must be > 0")
	}
	if c.Output.Path == "" {
		return fmt.Errorf("output.path must be set")
	}
	if c.Metrics.Enabled && c.Metrics.Port <= 0 {
		return fmt.Errorf("metrics.port must be > 0 when metrics are enabled")
	}
	return nil
}

// ProbeTimeout returns the liveness probe budget as a duration.
func (c Config) ProbeTimeout() time.Duration {
	return time.Duration(c.HTTP.ProbeTimeoutSeconds) * time.Second
}

// FetchTimeout returns the per-attempt fetch budget as a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.HTTP.FetchTimeoutSeconds) * time.Second
}

// BackoffInitial returns the first retry delay as a duration.
func (c Config) BackoffInitial() time.Duration {
	return time.Duration(c.HTTP.BackoffInitialMs) * time.Millisecond
}

// BackoffMax returns the retry delay ceiling as a duration.
func (c Config) BackoffMax() time.Duration {
	return time.Duration(c.HTTP.BackoffMaxMs) * time.Millisecond
}
