package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("JOBTRACKER_HOME", home)
	for _, key := range []string{
		"JOBTRACKER_CONFIG", "JOBTRACKER_API_URL", "JOBTRACKER_DATABASE_URL", "JOBTRACKER_LOG_LEVEL",
		"JOBTRACKER_CALLBACK_ADDR", "JOBTRACKER_BROWSER_BIN", "JOBTRACKER_POLL_SCHEDULE", "JOBTRACKER_REQUEST_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
	return home
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	home := isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, filepath.Join(home, "jobtracker.db"), cfg.DatabaseURL)
	assert.Equal(t, DefaultPopupInterval, cfg.PopupInterval)
	assert.Equal(t, DefaultPollSchedule, cfg.PollSchedule)
}

func TestLoad_FileThenEnv(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_url: https://api.example.com/v1
log_level: debug
popup_interval: 250ms
callback_addr: 127.0.0.1:9999
`), 0o600))
	t.Setenv("JOBTRACKER_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/v1", cfg.APIURL)
	assert.Equal(t, "warn", cfg.LogLevel, "environment overrides the file")
	assert.Equal(t, 250*time.Millisecond, cfg.PopupInterval)
	assert.Equal(t, "127.0.0.1:9999", cfg.CallbackAddr)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	home := isolate(t)

	_, err := Load(filepath.Join(home, "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing api url", func(c *Config) { c.APIURL = "" }, "'api_url' is required"},
		{"non http api url", func(c *Config) { c.APIURL = "ftp://x" }, "must be an http(s) URL"},
		{"public callback", func(c *Config) { c.CallbackAddr = "0.0.0.0:8765" }, "loopback"},
		{"localhost callback", func(c *Config) { c.CallbackAddr = "localhost:0" }, ""},
		{"bad callback", func(c *Config) { c.CallbackAddr = "nonsense" }, "invalid 'callback_addr'"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "unknown 'log_level'"},
		{"bad schedule", func(c *Config) { c.PollSchedule = "sometimes" }, "invalid 'poll_schedule'"},
		{"cron schedule", func(c *Config) { c.PollSchedule = "*/5 * * * *" }, ""},
		{"zero popup interval", func(c *Config) { c.PopupInterval = 0 }, "'popup_interval'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default(t.TempDir())
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
