// ABOUTME: Configuration loader for the SchAIdule client
// ABOUTME: Layers defaults, config.yaml, .env and SCHAIDULE_* environment variables

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/schaidule/schaidule-cli/internal/storage"
)

// DefaultAPIURL is used when no flag, env var or config file sets the backend
const DefaultAPIURL = "http://localhost:5000"

// AppName names the XDG config directory
const AppName = "schaidule"

type Config struct {
	// Backend
	APIURL         string        `yaml:"api_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// Storage
	Storage string `yaml:"storage"` // file, sqlite, memory (default: file)
	Dir     string `yaml:"-"`       // config directory holding session and log files

	// Session
	RefreshOnStart bool `yaml:"refresh_on_start"`

	// Schedule generation
	ScheduleAttempts int           `yaml:"schedule_attempts"`
	ScheduleDelay    time.Duration `yaml:"schedule_delay"`

	// TUI
	SearchDebounce time.Duration `yaml:"search_debounce"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default returns the built-in settings
func Default() *Config {
	return &Config{
		APIURL:           DefaultAPIURL,
		RequestTimeout:   30 * time.Second,
		Storage:          storage.BackendFile,
		Dir:              DefaultDir(),
		RefreshOnStart:   true,
		ScheduleAttempts: 3,
		ScheduleDelay:    2 * time.Second,
		SearchDebounce:   400 * time.Millisecond,
		LogLevel:         "warn",
		LogFormat:        "text",
	}
}

// DefaultDir returns the config directory following XDG conventions
func DefaultDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", AppName)
}

// Load builds the configuration. path names a YAML file; when empty,
// <dir>/config.yaml is read if it exists. A .env file in the working
// directory is loaded without overriding variables already set.
func Load(path string) (*Config, error) {
	cfg := Default()
	if dir := os.Getenv("SCHAIDULE_CONFIG_DIR"); dir != "" {
		cfg.Dir = dir
	}

	explicit := path != ""
	if !explicit && cfg.Dir != "" {
		path = filepath.Join(cfg.Dir, "config.yaml")
	}
	if path != "" {
		if err := cfg.loadFile(path, explicit); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !required {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.APIURL = getEnv("SCHAIDULE_API_URL", c.APIURL)
	c.RequestTimeout = getEnvDuration("SCHAIDULE_REQUEST_TIMEOUT", c.RequestTimeout)
	c.Storage = getEnv("SCHAIDULE_STORAGE", c.Storage)
	c.RefreshOnStart = getEnvBool("SCHAIDULE_REFRESH_ON_START", c.RefreshOnStart)
	c.ScheduleAttempts = getEnvInt("SCHAIDULE_SCHEDULE_ATTEMPTS", c.ScheduleAttempts)
	c.ScheduleDelay = getEnvDuration("SCHAIDULE_SCHEDULE_DELAY", c.ScheduleDelay)
	c.SearchDebounce = getEnvDuration("SCHAIDULE_SEARCH_DEBOUNCE", c.SearchDebounce)
	c.LogLevel = getEnv("SCHAIDULE_LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("SCHAIDULE_LOG_FORMAT", c.LogFormat)
}

// Validate rejects settings the client cannot run with
func (c *Config) Validate() error {
	c.APIURL = strings.TrimRight(ensureScheme(c.APIURL), "/")
	if c.APIURL == "" {
		return fmt.Errorf("api_url must not be empty")
	}
	switch c.Storage {
	case storage.BackendFile, storage.BackendSQLite, storage.BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend %q (want file, sqlite or memory)", c.Storage)
	}
	if c.ScheduleAttempts < 1 {
		return fmt.Errorf("schedule_attempts must be at least 1, got %d", c.ScheduleAttempts)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// ensureScheme adds http:// when the URL has no scheme
func ensureScheme(url string) string {
	if url == "" {
		return url
	}
	if !strings.Contains(url, "://") {
		return "http://" + url
	}
	return url
}
