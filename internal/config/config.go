package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const DefaultMaxConcurrent = 5

// Config holds all toolkit configuration
type Config struct {
	Database DatabaseConfig
	Toolkit  ToolkitConfig
	Metrics  MetricsConfig
	Logging  LoggingConfig
}

// DatabaseConfig contains database configuration
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// ToolkitConfig contains command safety pipeline configuration
type ToolkitConfig struct {
	MaxConcurrent       int
	SafeHosts           []string
	DryRunDefault       bool
	RequireConfirmation bool
	ManifestDir         string
	ScenarioDir         string
	FixtureDir          string
}

// MetricsConfig contains metrics exposure configuration
type MetricsConfig struct {
	// Addr is where the serve command exposes /metrics
	Addr string
	// PushgatewayURL, when set, makes one-shot command runs push their
	// metrics at process end. Empty disables the push.
	PushgatewayURL string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json or console
}

// Load loads configuration from environment variables and validates it.
// Invalid values fail fast; the process must not start half-configured.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors as it's optional)
	_ = godotenv.Load()

	cfg := &Config{
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Toolkit: ToolkitConfig{
			MaxConcurrent:       concurrencyLimit(os.Getenv("TOOLKIT_MAX_CONCURRENT")),
			SafeHosts:           getEnvAsList("TOOLKIT_SAFE_HOSTS", []string{"localhost", "127.0.0.1"}),
			DryRunDefault:       getEnvAsBool("TOOLKIT_DRY_RUN_DEFAULT", false),
			RequireConfirmation: getEnvAsBool("TOOLKIT_REQUIRE_CONFIRMATION", true),
			ManifestDir:         getEnv("TOOLKIT_MANIFEST_DIR", "./manifests"),
			ScenarioDir:         getEnv("TOOLKIT_SCENARIO_DIR", "./scenarios"),
			FixtureDir:          getEnv("TOOLKIT_FIXTURE_DIR", "./fixtures"),
		},
		Metrics: MetricsConfig{
			Addr:           getEnv("TOOLKIT_METRICS_ADDR", ":9090"),
			PushgatewayURL: getEnv("TOOLKIT_PUSHGATEWAY_URL", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL must be set")
	}
	u, err := url.Parse(c.Database.URL)
	if err != nil {
		return fmt.Errorf("DATABASE_URL is not a valid URL: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return fmt.Errorf("DATABASE_URL must use the postgres:// scheme, got %q", u.Scheme)
	}
	if c.Toolkit.MaxConcurrent < 1 {
		return fmt.Errorf("toolkit concurrency limit must be positive, got %d", c.Toolkit.MaxConcurrent)
	}
	if len(c.Toolkit.SafeHosts) == 0 {
		return fmt.Errorf("TOOLKIT_SAFE_HOSTS must not be empty")
	}
	return nil
}

// HostAllowed reports whether the database host is on the safe-host
// allowlist for destructive operations
func (c *Config) HostAllowed() bool {
	u, err := url.Parse(c.Database.URL)
	if err != nil {
		return false
	}
	host := u.Hostname()
	for _, h := range c.Toolkit.SafeHosts {
		if strings.EqualFold(h, host) {
			return true
		}
	}
	return false
}

// concurrencyLimit parses the configured limit, falling back to the default
// on anything that is not a positive integer
func concurrencyLimit(raw string) int {
	if raw == "" {
		return DefaultMaxConcurrent
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return DefaultMaxConcurrent
	}
	return n
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
