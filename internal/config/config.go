// Package config provides configuration loading and validation for the
// aggregator.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Config holds everything the aggregator needs to run. Values come from the
// environment first; an optional JSON file supplies defaults for anything
// unset.
type Config struct {
	DatabaseURL string `json:"database_url,omitempty" validate:"required"`
	RedisURL    string `json:"redis_url,omitempty"`

	// WebhookSecret signs inbound scrape payloads (HMAC-SHA256). Empty
	// disables signature checks, which is only sane in development.
	WebhookSecret string `json:"webhook_secret,omitempty"`

	// JWTSecret gates the admin endpoints. Empty disables them entirely.
	JWTSecret          string `json:"jwt_secret,omitempty"`
	JWTExpirationHours int    `json:"jwt_expiration_hours,omitempty" validate:"gte=0"`

	Port          int  `json:"port,omitempty" validate:"gte=0,lte=65535"`
	ScrapeWorkers int  `json:"scrape_workers,omitempty" validate:"gte=0,lte=64"`
	UseBrowser    bool `json:"use_browser,omitempty"`
	Verbose       bool `json:"verbose,omitempty"`

	// Cron expressions for the periodic jobs.
	RecomputeSchedule string `json:"recompute_schedule,omitempty"`
	SweepSchedule     string `json:"sweep_schedule,omitempty"`
}

var validate = validator.New()

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Port:               8080,
		ScrapeWorkers:      4,
		JWTExpirationHours: 24,
		RecomputeSchedule:  "0 * * * *",
		SweepSchedule:      "30 3 * * *",
	}
}

// FromEnv builds a Config from environment variables, starting from the
// defaults. Call after godotenv has loaded any .env file.
func FromEnv() (*Config, error) {
	cfg := Defaults()

	cfg.DatabaseURL = envOr("DATABASE_URL", cfg.DatabaseURL)
	cfg.RedisURL = envOr("REDIS_URL", cfg.RedisURL)
	cfg.WebhookSecret = envOr("WEBHOOK_SECRET", cfg.WebhookSecret)
	cfg.JWTSecret = envOr("JWT_SECRET", cfg.JWTSecret)
	cfg.RecomputeSchedule = envOr("RECOMPUTE_SCHEDULE", cfg.RecomputeSchedule)
	cfg.SweepSchedule = envOr("SWEEP_SCHEDULE", cfg.SweepSchedule)

	var err error
	if cfg.Port, err = envInt("PORT", cfg.Port); err != nil {
		return nil, err
	}
	if cfg.ScrapeWorkers, err = envInt("SCRAPE_WORKERS", cfg.ScrapeWorkers); err != nil {
		return nil, err
	}
	if cfg.JWTExpirationHours, err = envInt("JWT_EXPIRATION_HOURS", cfg.JWTExpirationHours); err != nil {
		return nil, err
	}
	cfg.UseBrowser = os.Getenv("USE_BROWSER") == "true"
	cfg.Verbose = os.Getenv("VERBOSE") == "true"

	return &cfg, nil
}

// LoadFile reads a JSON config file and fills any field the environment left
// unset.
func (c *Config) LoadFile(path string) error {
	if path == "" {
		return fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fileCfg Config
	if err := json.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("failed to parse config JSON: %w", err)
	}

	c.mergeFrom(fileCfg)
	return nil
}

// Validate checks the configuration. Structural rules live in validator
// tags; cross-field rules follow.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) && len(invalid) > 0 {
			field := invalid[0]
			return fmt.Errorf("config error: field %s failed %q validation", field.Field(), field.Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}

	if c.JWTSecret != "" && c.JWTExpirationHours < 1 {
		return fmt.Errorf("config error: jwt_expiration_hours must be at least 1 when jwt_secret is set")
	}
	return nil
}

func (c *Config) mergeFrom(other Config) {
	if c.DatabaseURL == "" {
		c.DatabaseURL = other.DatabaseURL
	}
	if c.RedisURL == "" {
		c.RedisURL = other.RedisURL
	}
	if c.WebhookSecret == "" {
		c.WebhookSecret = other.WebhookSecret
	}
	if c.JWTSecret == "" {
		c.JWTSecret = other.JWTSecret
	}
	if other.JWTExpirationHours != 0 {
		c.JWTExpirationHours = other.JWTExpirationHours
	}
	if other.Port != 0 {
		c.Port = other.Port
	}
	if other.ScrapeWorkers != 0 {
		c.ScrapeWorkers = other.ScrapeWorkers
	}
	if other.RecomputeSchedule != "" {
		c.RecomputeSchedule = other.RecomputeSchedule
	}
	if other.SweepSchedule != "" {
		c.SweepSchedule = other.SweepSchedule
	}
	c.UseBrowser = c.UseBrowser || other.UseBrowser
	c.Verbose = c.Verbose || other.Verbose
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return n, nil
}
