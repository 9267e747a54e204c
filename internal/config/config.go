// Package config loads client settings from .env, an optional YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIURL         = "http://localhost:8080/api/v1"
	DefaultCallbackAddr   = "127.0.0.1:8765"
	DefaultPollSchedule   = "@every 1m"
	DefaultPopupInterval  = 500 * time.Millisecond
	DefaultRequestTimeout = 30 * time.Second
)

// Config holds everything the CLI needs to talk to the backend and keep local state.
type Config struct {
	APIURL         string        `yaml:"api_url"`
	DatabaseURL    string        `yaml:"database_url"`   // sqlite path or postgres:// URL
	LogLevel       string        `yaml:"log_level"`      // debug, info, warn, error
	CallbackAddr   string        `yaml:"callback_addr"`  // loopback address for the OAuth callback server
	BrowserBin     string        `yaml:"browser_bin"`    // optional Chrome/Chromium binary for the popup
	PollSchedule   string        `yaml:"poll_schedule"`  // cron spec for the notification watcher
	PopupInterval  time.Duration `yaml:"popup_interval"` // how often the popup is checked for closure
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// Default returns the built-in configuration rooted at dataDir.
func Default(dataDir string) *Config {
	return &Config{
		APIURL:         DefaultAPIURL,
		DatabaseURL:    filepath.Join(dataDir, "jobtracker.db"),
		LogLevel:       "info",
		CallbackAddr:   DefaultCallbackAddr,
		PollSchedule:   DefaultPollSchedule,
		PopupInterval:  DefaultPopupInterval,
		RequestTimeout: DefaultRequestTimeout,
	}
}

// Load builds the configuration. Precedence, lowest first: defaults, YAML file,
// environment (including values loaded from .env).
// An empty path falls back to $JOBTRACKER_CONFIG and then ~/.config/jobtracker/config.yaml;
// a missing default file is not an error, a missing explicit file is.
func Load(path string) (*Config, error) {
	// .env is optional, same as for the server
	_ = godotenv.Load()

	dataDir, err := DataDir()
	if err != nil {
		return nil, err
	}
	cfg := Default(dataDir)

	explicit := path != ""
	if !explicit {
		path = os.Getenv("JOBTRACKER_CONFIG")
		explicit = path != ""
	}
	if path == "" {
		path = filepath.Join(dataDir, "config.yaml")
	}

	if err := cfg.mergeFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	cfg.mergeEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DataDir is where the local store and the default config file live.
func DataDir() (string, error) {
	if dir := os.Getenv("JOBTRACKER_HOME"); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config directory: %w", err)
	}
	return filepath.Join(base, "jobtracker"), nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config YAML %s: %w", path, err)
	}
	return nil
}

func (c *Config) mergeEnv() {
	setString := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setString("JOBTRACKER_API_URL", &c.APIURL)
	setString("JOBTRACKER_DATABASE_URL", &c.DatabaseURL)
	setString("JOBTRACKER_LOG_LEVEL", &c.LogLevel)
	setString("JOBTRACKER_CALLBACK_ADDR", &c.CallbackAddr)
	setString("JOBTRACKER_BROWSER_BIN", &c.BrowserBin)
	setString("JOBTRACKER_POLL_SCHEDULE", &c.PollSchedule)

	if v := os.Getenv("JOBTRACKER_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.RequestTimeout = d
		}
	}
}

// Validate checks that the configuration has usable values.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("config error: 'api_url' is required")
	}
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return fmt.Errorf("config error: 'api_url' must be an http(s) URL, got %q", c.APIURL)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("config error: 'database_url' is required")
	}

	host, _, err := net.SplitHostPort(c.CallbackAddr)
	if err != nil {
		return fmt.Errorf("config error: invalid 'callback_addr' %q: %w", c.CallbackAddr, err)
	}
	if ip := net.ParseIP(host); host != "localhost" && (ip == nil || !ip.IsLoopback()) {
		return fmt.Errorf("config error: 'callback_addr' must be a loopback address, got %q", host)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config error: unknown 'log_level' %q", c.LogLevel)
	}

	if _, err := cron.ParseStandard(c.PollSchedule); err != nil {
		return fmt.Errorf("config error: invalid 'poll_schedule' %q: %w", c.PollSchedule, err)
	}

	if c.PopupInterval <= 0 {
		return fmt.Errorf("config error: 'popup_interval' must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("config error: 'request_timeout' must be positive")
	}
	return nil
}
