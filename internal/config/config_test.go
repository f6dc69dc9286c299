package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, 10, cfg.HTTP.ProbeTimeoutSeconds)
	require.Equal(t, 15, cfg.HTTP.FetchTimeoutSeconds)
	require.Equal(t, 3, cfg.HTTP.MaxAttempts)
	require.Equal(t, 250, cfg.HTTP.BackoffInitialMs)
	require.Equal(t, 5000, cfg.HTTP.BackoffMaxMs)
	require.Equal(t, 8, cfg.Pipeline.Concurrency)
	require.Equal(t, "scraped_data.csv", cfg.Output.Path)
	require.False(t, cfg.Metrics.Enabled)
	require.Equal(t, 9090, cfg.Metrics.Port)
	require.True(t, cfg.Logging.Development)
}

func TestLoad_FileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
http:
  probe_timeout_seconds: 4
  fetch_timeout_seconds: 7
  max_attempts: 5
pipeline:
  concurrency: 2
output:
  path: out/results.csv
metrics:
  enabled: true
  port: 9191
logging:
  development: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 4, cfg.HTTP.ProbeTimeoutSeconds)
	require.Equal(t, 7, cfg.HTTP.FetchTimeoutSeconds)
	require.Equal(t, 5, cfg.HTTP.MaxAttempts)
	require.Equal(t, 2, cfg.Pipeline.Concurrency)
	require.Equal(t, "out/results.csv", cfg.Output.Path)
	require.True(t, cfg.Metrics.Enabled)
	require.Equal(t, 9191, cfg.Metrics.Port)
	require.False(t, cfg.Logging.Development)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			HTTP: HTTPConfig{
				ProbeTimeoutSeconds: 10,
				FetchTimeoutSeconds: 15,
				MaxAttempts:         3,
				BackoffInitialMs:    250,
				BackoffMaxMs:        5000,
			},
			Pipeline: PipelineConfig{Concurrency: 8},
			Output:   OutputConfig{Path: "scraped_data.csv"},
			Metrics:  MetricsConfig{Enabled: false, Port: 9090},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "zero probe timeout",
			mutate:  func(c *Config) { c.HTTP.ProbeTimeoutSeconds = 0 },
			wantErr: "probe_timeout_seconds",
		},
		{
			name:    "zero fetch timeout",
			mutate:  func(c *Config) { c.HTTP.FetchTimeoutSeconds = 0 },
			wantErr: "fetch_timeout_seconds",
		},
		{
			name:    "zero attempts",
			mutate:  func(c *Config) { c.HTTP.MaxAttempts = 0 },
			wantErr: "max_attempts",
		},
		{
			name:    "zero concurrency",
			mutate:  func(c *Config) { c.Pipeline.Concurrency = 0 },
			wantErr: "concurrency",
		},
		{
			name:    "empty output path",
			mutate:  func(c *Config) { c.Output.Path = "" },
			wantErr: "output.path",
		},
		{
			name: "metrics enabled without port",
			mutate: func(c *Config) {
				c.Metrics.Enabled = true
				c.Metrics.Port = 0
			},
			wantErr: "metrics.port",
		},
		{
			name: "metrics disabled ignores port",
			mutate: func(c *Config) {
				c.Metrics.Enabled = false
				c.Metrics.Port = 0
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestConfig_DurationHelpers(t *testing.T) {
	cfg := Config{HTTP: HTTPConfig{
		ProbeTimeoutSeconds: 10,
		FetchTimeoutSeconds: 15,
		BackoffInitialMs:    250,
		BackoffMaxMs:        5000,
	}}

	require.Equal(t, 10*time.Second, cfg.ProbeTimeout())
	require.Equal(t, 15*time.Second, cfg.FetchTimeout())
	require.Equal(t, 250*time.Millisecond, cfg.BackoffInitial())
	require.Equal(t, 5*time.Second, cfg.BackoffMax())
}
