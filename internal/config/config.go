// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Valkey (Redis-compatible cache + sessions)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// Bearer tokens for the dashboard API
	JWTSecret string
	TokenTTL  time.Duration

	// Seeded administrator (development / first boot)
	AdminEmail    string
	AdminPassword string

	// Headless CMS (optional section source)
	CMSProjectID  string
	CMSDataset    string
	CMSAPIVersion string
	CMSToken      string

	// Section source: "db" or "cms"
	SectionSource string

	// Slug availability check debounce
	SlugCheckDelay time.Duration

	// Public site origin used when declaring stale paths
	SiteURL string
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. A .env file in the working directory
// is loaded first if present; real environment variables take precedence.
// Returns an error if critical values are missing in production mode.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	tokenTTL, err := durationEnv("TOKEN_TTL", 12*time.Hour)
	if err != nil {
		return nil, err
	}
	slugDelay, err := durationEnv("SLUG_CHECK_DELAY", 400*time.Millisecond)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "pesantren"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "pesantren"),
		DBSSLMode:  envOrDefault("POSTGRES_SSLMODE", "disable"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		JWTSecret: envOrDefault("JWT_SECRET", "changeme"),
		TokenTTL:  tokenTTL,

		AdminEmail:    envOrDefault("ADMIN_EMAIL", "admin@pesantren.local"),
		AdminPassword: envOrDefault("ADMIN_PASSWORD", "admin"),

		CMSProjectID:  os.Getenv("CMS_PROJECT_ID"),
		CMSDataset:    envOrDefault("CMS_DATASET", "production"),
		CMSAPIVersion: envOrDefault("CMS_API_VERSION", "2024-01-01"),
		CMSToken:      os.Getenv("CMS_TOKEN"),

		SectionSource:  envOrDefault("SECTION_SOURCE", "db"),
		SlugCheckDelay: slugDelay,

		SiteURL: envOrDefault("SITE_URL", "http://localhost:3000"),
	}

	if cfg.SectionSource != "db" && cfg.SectionSource != "cms" {
		return nil, fmt.Errorf("SECTION_SOURCE must be \"db\" or \"cms\", got %q", cfg.SectionSource)
	}
	if cfg.SectionSource == "cms" && cfg.CMSProjectID == "" {
		return nil, fmt.Errorf("CMS_PROJECT_ID must be set when SECTION_SOURCE=cms")
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.JWTSecret == "changeme" {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// durationEnv parses a Go duration ("15m", "400ms") or a bare number of
// seconds from the environment.
func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d, nil
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return time.Duration(secs) * time.Second, nil
}
