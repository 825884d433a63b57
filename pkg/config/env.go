// Package config provides typed environment variable getters for
// startup wiring. Unlike the fail-open loaders in internal/pkg/config,
// these helpers carry no metrics: a bad value logs a warning and the
// default wins.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// GetEnvString returns the environment variable value, or defaultValue
// when the variable is unset or empty.
//
// Example:
//
//	appURL := GetEnvString("APP_URL", "http://localhost:3000")
func GetEnvString(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvInt returns the environment variable parsed as an integer.
// Unset, empty or unparseable values yield defaultValue; parse failures
// log a warning.
//
// Example:
//
//	batch := GetEnvInt("DISPATCH_BATCH_SIZE", 10)
func GetEnvInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("invalid integer value for environment variable, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.Int("default", defaultValue))
		return defaultValue
	}

	return value
}

// GetEnvDuration returns the environment variable parsed with
// time.ParseDuration ("30s", "5m", "1h30m"). Unset, empty or
// unparseable values yield defaultValue; parse failures log a warning.
//
// Example:
//
//	timeout := GetEnvDuration("SHUTDOWN_TIMEOUT", 5*time.Second)
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("invalid duration value for environment variable, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.String("default", defaultValue.String()),
			slog.String("error", err.Error()))
		return defaultValue
	}

	return value
}
