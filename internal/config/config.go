package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// Session
	SessionSecret string
	SessionTTL    time.Duration

	// Operator credential (single shared login)
	User     string
	Password string

	// Spreadsheet export
	ExportDir string
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8080"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/caja.db"),

		SessionSecret: getEnv("SESSION_SECRET", "caja_secret_key"),
		SessionTTL:    getEnvDuration("SESSION_TTL", 12*time.Hour),

		User:     getEnv("CAJA_USER", "admin"),
		Password: getEnv("CAJA_PASSWORD", "1234"),

		ExportDir: getEnv("EXPORT_DIR", "./data/exports"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	}

	if c.SessionSecret == "" {
		errors = append(errors, "session secret cannot be empty")
	}
	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	} else if c.SessionTTL > 7*24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at most 7 days", c.SessionTTL))
	}

	if c.User == "" {
		errors = append(errors, "operator user cannot be empty")
	}
	if c.Password == "" {
		errors = append(errors, "operator password cannot be empty")
	}

	if c.ExportDir == "" {
		errors = append(errors, "export directory cannot be empty")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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
