// Package config loads ttload settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/ukaji3/timetable-go/pkg/timetable/nlq"
	"github.com/ukaji3/timetable-go/pkg/timetable/store"
)

// DefaultEnvFile is read when no env file is given. It may be absent.
const DefaultEnvFile = ".env"

// Config represents the complete application configuration
type Config struct {
	Paths  PathConfig
	Store  StoreConfig
	Server ServerConfig
	Log    LogConfig
	NLQ    NLQConfig
}

// PathConfig holds manifest locations
type PathConfig struct {
	Branches string
	Rooms    string
}

// StoreConfig holds SQLite settings
type StoreConfig struct {
	Driver      string
	BusyTimeout time.Duration
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Listen string
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string
}

// NLQConfig holds question translator settings
type NLQConfig struct {
	APIKey        string
	BaseURL       string
	Model         string
	RatePerMinute int
	Timeout       time.Duration
}

// Enabled reports whether a translator can be built.
func (c NLQConfig) Enabled() bool {
	return c.APIKey != ""
}

// Client returns the translator client config.
func (c NLQConfig) Client() nlq.Config {
	return nlq.Config{
		APIKey:        c.APIKey,
		BaseURL:       c.BaseURL,
		Model:         c.Model,
		Timeout:       c.Timeout,
		RatePerMinute: c.RatePerMinute,
	}
}

// StoreOptions returns the store options for writable stores.
func (c *Config) StoreOptions() store.Options {
	return store.Options{Driver: c.Store.Driver, BusyTimeout: c.Store.BusyTimeout}
}

// Load reads envFile into the process environment (without overriding
// variables already set), then builds and validates the configuration.
// An empty envFile means DefaultEnvFile, which may be missing.
func Load(envFile string) (*Config, error) {
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}
	return FromEnv()
}

func loadEnvFile(path string) error {
	optional := path == ""
	if optional {
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// FromEnv builds the configuration from environment variables alone.
func FromEnv() (*Config, error) {
	config := &Config{
		Paths: PathConfig{
			Branches: getEnvOrDefault("TIMETABLE_BRANCHES", "branches.csv"),
			Rooms:    getEnvOrDefault("TIMETABLE_ROOMS", ""),
		},
		Store: StoreConfig{
			Driver:      getEnvOrDefault("TIMETABLE_SQLITE_DRIVER", store.DriverModernc),
			BusyTimeout: time.Duration(getEnvIntOrDefault("TIMETABLE_BUSY_TIMEOUT_MS", 5000)) * time.Millisecond,
		},
		Server: ServerConfig{
			Listen: getEnvOrDefault("TIMETABLE_LISTEN", ":8080"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnvOrDefault("TIMETABLE_LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnvOrDefault("TIMETABLE_LOG_FORMAT", "text")),
		},
		NLQ: NLQConfig{
			APIKey:        os.Getenv("NLQ_API_KEY"),
			BaseURL:       getEnvOrDefault("NLQ_BASE_URL", "https://api.openai.com/v1"),
			Model:         getEnvOrDefault("NLQ_MODEL", "gpt-4o-mini"),
			RatePerMinute: getEnvIntOrDefault("NLQ_RATE_PER_MIN", 10),
			Timeout:       getEnvDurationOrDefault("NLQ_TIMEOUT", 30*time.Second),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

// Validate checks enumerated and numeric settings.
func (c *Config) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case store.DriverModernc, store.DriverCgo:
	default:
		errs = append(errs, fmt.Errorf("sqlite driver %q must be %q or %q", c.Store.Driver, store.DriverModernc, store.DriverCgo))
	}
	if c.Store.BusyTimeout < 0 {
		errs = append(errs, errors.New("busy timeout must not be negative"))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log level %q must be debug, info, warn or error", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log format %q must be text or json", c.Log.Format))
	}
	if c.NLQ.RatePerMinute < 0 {
		errs = append(errs, errors.New("NLQ rate must not be negative"))
	}
	return errors.Join(errs...)
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return defaultValue
}
