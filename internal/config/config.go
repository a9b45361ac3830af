package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Providers ProviderConfig
	Scheduler SchedulerConfig
	Secrets   SecretsConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// ProviderConfig holds market-data provider configuration.
//
// Priority orders provider names from most to least trusted; the fusion
// engine seeds merged events from the highest-priority source that reported
// them. The ordering is configurable rather than hardcoded to one vendor.
type ProviderConfig struct {
	Priority      []string
	PolygonAPIKey string
	FetchTimeout  time.Duration // per-source fetch budget
	BatchTimeout  time.Duration // overall budget for batch price resolution
	RatePerSecond float64       // provider call rate limit (free-plan etiquette)
}

// SchedulerConfig holds background refresh configuration
type SchedulerConfig struct {
	Enabled bool
	// RefreshSpec is a cron expression (with seconds) for the nightly
	// dividend refresh.
	RefreshSpec string
}

// SecretsConfig holds encryption configuration for credentials at rest
type SecretsConfig struct {
	// FernetKey is a base64 fernet key used to encrypt provider API keys
	// stored in the system_setting table. Empty disables encrypted storage
	// and keys are read from the environment only.
	FernetKey string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/cashflow.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
		Providers: ProviderConfig{
			Priority:      splitEnv("PROVIDER_PRIORITY", "polygon,yahoo"),
			PolygonAPIKey: getEnv("POLYGON_API_KEY", ""),
			FetchTimeout:  getEnvDuration("PROVIDER_FETCH_TIMEOUT", 6*time.Second),
			BatchTimeout:  getEnvDuration("PROVIDER_BATCH_TIMEOUT", 20*time.Second),
			RatePerSecond: getEnvFloat("PROVIDER_RATE_PER_SECOND", 5),
		},
		Scheduler: SchedulerConfig{
			Enabled:     getEnvBool("SCHEDULER_ENABLED", true),
			RefreshSpec: getEnv("DIVIDEND_REFRESH_SPEC", "0 10 3 * * *"),
		},
		Secrets: SecretsConfig{
			FernetKey: getEnv("FERNET_KEY", ""),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// splitEnv reads a comma-separated environment variable into a slice,
// trimming whitespace around each element.
func splitEnv(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// getEnvBool parses a boolean environment variable, falling back on parse failure.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// getEnvFloat parses a float environment variable, falling back on parse failure.
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// getEnvDuration parses a duration environment variable, falling back on parse failure.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
