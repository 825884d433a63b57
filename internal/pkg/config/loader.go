// Package config provides fail-open environment loading and validation
// helpers shared by the worker and API configuration layers.
//
// The loaders never return an error: a value that fails to parse or
// validate falls back to the supplied default and reports a warning, so
// a single mistyped environment variable cannot keep a component from
// starting. Callers surface the warnings through logs and the
// ConfigMetrics counters.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ConfigLoadResult carries the outcome of loading one configuration value.
// Value holds the effective value (the default when FallbackApplied is
// true), and Warnings holds one message per fallback taken.
type ConfigLoadResult struct {
	Value           interface{}
	Warnings        []string
	FallbackApplied bool
}

func okResult(value interface{}) ConfigLoadResult {
	return ConfigLoadResult{Value: value}
}

func fallbackResult(envKey, raw string, cause error, defaultValue interface{}) ConfigLoadResult {
	return ConfigLoadResult{
		Value:           defaultValue,
		Warnings:        []string{fmt.Sprintf("Invalid %s='%s': %v, falling back to default '%v'", envKey, raw, cause, defaultValue)},
		FallbackApplied: true,
	}
}

// LoadEnvWithFallback loads a string from envKey and validates it with
// validator (nil skips validation). An unset or empty variable yields the
// default without a warning; a value that fails validation yields the
// default with a warning.
//
// Example:
//
//	result := LoadEnvWithFallback("DISPATCH_SCHEDULE", "* * * * *", ValidateCronSchedule)
//	schedule := result.Value.(string)
func LoadEnvWithFallback(envKey, defaultValue string, validator func(string) error) ConfigLoadResult {
	value := os.Getenv(envKey)
	if value == "" {
		return okResult(defaultValue)
	}

	if validator != nil {
		if err := validator(value); err != nil {
			return fallbackResult(envKey, value, err, defaultValue)
		}
	}

	return okResult(value)
}

// LoadEnvDuration loads a Go duration string ("30s", "5m", "1h") from
// envKey, parses it and validates the parsed value with validator (nil
// skips validation). Parse and validation failures both fall back to the
// default with a warning.
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) ConfigLoadResult {
	raw := os.Getenv(envKey)
	if raw == "" {
		return okResult(defaultValue)
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fallbackResult(envKey, raw, err, defaultValue)
	}

	if validator != nil {
		if err := validator(parsed); err != nil {
			return fallbackResult(envKey, raw, err, defaultValue)
		}
	}

	return okResult(parsed)
}

// LoadEnvInt loads an integer from envKey and validates the parsed value
// with validator (nil skips validation). Parse and validation failures
// both fall back to the default with a warning.
func LoadEnvInt(envKey string, defaultValue int, validator func(int) error) ConfigLoadResult {
	raw := os.Getenv(envKey)
	if raw == "" {
		return okResult(defaultValue)
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallbackResult(envKey, raw, fmt.Errorf("invalid integer format"), defaultValue)
	}

	if validator != nil {
		if err := validator(parsed); err != nil {
			return fallbackResult(envKey, raw, err, defaultValue)
		}
	}

	return okResult(parsed)
}
