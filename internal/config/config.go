// Package config contains everything related to configuration
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	APIURL      string
	APIToken    string
	GitHubToken string
	ListenAddr  string
	Timeout     time.Duration
	Concurrency int
}

// Default values
const (
	defaultAPIURL      = "http://localhost:5000/"
	defaultListenAddr  = ":8080"
	defaultTimeout     = 30 * time.Second
	defaultConcurrency = 0
)

// Load reads configuration from a .env file in the working directory, if
// present, and environment variables.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	cfg := &Config{
		APIURL:      NormalizeAPIURL(getEnvString("GHDATA_API_URL", defaultAPIURL)),
		APIToken:    getEnvString("GHDATA_API_TOKEN", ""),
		GitHubToken: getEnvString("GITHUB_TOKEN", ""),
		ListenAddr:  getEnvString("REPO_HEALTH_LISTEN", defaultListenAddr),
		Timeout:     getEnvDuration("REPO_HEALTH_TIMEOUT", defaultTimeout),
		Concurrency: getEnvInt("REPO_HEALTH_CONCURRENCY", defaultConcurrency),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values that can never work.
func (c *Config) Validate() error {
	if c.APIURL == "" || c.APIURL == "/" {
		return fmt.Errorf("GHDATA_API_URL must not be empty")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency)
	}
	return nil
}

// NormalizeAPIURL makes sure the API root ends with a slash.
func NormalizeAPIURL(u string) string {
	u = strings.TrimSpace(u)
	if !strings.HasSuffix(u, "/") {
		u += "/"
	}
	return u
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms", or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
