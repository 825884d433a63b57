package worker

import (
	"fmt"
	"log/slog"
	"time"

	"kudos-dispatch/internal/pkg/config"
)

// WorkerConfig holds the configuration for the worker component.
// It controls the dispatch polling schedule, the weekly reminder schedule,
// batch sizing and the health check server.
//
// Configuration sources:
//   - Environment variables (loaded via LoadConfigFromEnv)
//   - Default values (provided by DefaultConfig)
//
// All fields have defaults and validation rules so the worker can operate
// safely even with invalid or missing configuration.
type WorkerConfig struct {
	// DispatchSchedule is the cron expression that drives queue draining.
	// Format: "minute hour day month weekday"
	// Default: "* * * * *" (every minute)
	DispatchSchedule string

	// ReminderSchedule is the cron expression that triggers the weekly
	// reminder fan-out.
	// Default: "0 9 * * 1" (Mondays at 09:00)
	ReminderSchedule string

	// Timezone is the IANA timezone name for cron scheduling.
	// Example: "UTC", "Asia/Tokyo", "America/New_York"
	// Default: "UTC"
	Timezone string

	// BatchSize is the maximum number of notifications claimed per tick.
	// Range: 1-100
	// Default: 10
	BatchSize int

	// DispatchTimeout is the maximum duration for one dispatch tick.
	// After this timeout the tick's context is cancelled.
	// Default: 5 minutes
	DispatchTimeout time.Duration

	// HealthPort is the port number for the health check HTTP server.
	// Range: 1024-65535 (avoid privileged ports)
	// Default: 9091
	HealthPort int
}

// DefaultConfig returns a WorkerConfig with production-ready defaults:
// queue draining every minute, reminders Monday morning UTC, a batch of 10
// and a 5-minute tick timeout.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		DispatchSchedule: "* * * * *",
		ReminderSchedule: "0 9 * * 1",
		Timezone:         "UTC",
		BatchSize:        10,
		DispatchTimeout:  5 * time.Minute,
		HealthPort:       9091,
	}
}

// Validate checks the configuration using the reusable validators from
// internal/pkg/config. If multiple fields are invalid, all errors are
// collected and returned together.
func (c *WorkerConfig) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.DispatchSchedule); err != nil {
		errs = append(errs, fmt.Errorf("dispatch schedule: %w", err))
	}

	if err := config.ValidateCronSchedule(c.ReminderSchedule); err != nil {
		errs = append(errs, fmt.Errorf("reminder schedule: %w", err))
	}

	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}

	if err := config.ValidateIntRange(c.BatchSize, 1, 100); err != nil {
		errs = append(errs, fmt.Errorf("batch size: %w", err))
	}

	if err := config.ValidatePositiveDuration(c.DispatchTimeout); err != nil {
		errs = append(errs, fmt.Errorf("dispatch timeout: %w", err))
	}

	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}

	return nil
}

// LoadConfigFromEnv loads worker configuration from environment variables
// with validation and automatic fallback to default values on failure.
//
// The loading is fail-open: an invalid value falls back to the default,
// logs a warning and increments the fallback metrics, so a typo in one
// variable never keeps the worker from starting.
//
// Environment variables:
//   - DISPATCH_SCHEDULE: Cron expression (default: "* * * * *")
//   - REMINDER_SCHEDULE: Cron expression (default: "0 9 * * 1")
//   - WORKER_TIMEZONE: IANA timezone name (default: "UTC")
//   - DISPATCH_BATCH_SIZE: Integer 1-100 (default: 10)
//   - DISPATCH_TIMEOUT: Duration string, e.g. "5m" (default: 5 minutes)
//   - WORKER_HEALTH_PORT: Integer 1024-65535 (default: 9091)
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	loadString := func(envKey, field string, dst *string, validate func(string) error) {
		result := config.LoadEnvWithFallback(envKey, *dst, validate)
		*dst = result.Value.(string)
		if result.FallbackApplied {
			fallbackApplied = true
			metrics.RecordValidationError(field)
			metrics.RecordFallback(field, "default")
			for _, warning := range result.Warnings {
				logger.Warn("Configuration fallback applied",
					slog.String("field", field),
					slog.String("warning", warning))
			}
		}
	}

	loadString("DISPATCH_SCHEDULE", "dispatch_schedule", &cfg.DispatchSchedule, config.ValidateCronSchedule)
	loadString("REMINDER_SCHEDULE", "reminder_schedule", &cfg.ReminderSchedule, config.ValidateCronSchedule)
	loadString("WORKER_TIMEZONE", "timezone", &cfg.Timezone, config.ValidateTimezone)

	result := config.LoadEnvInt("DISPATCH_BATCH_SIZE", cfg.BatchSize, func(v int) error {
		return config.ValidateIntRange(v, 1, 100)
	})
	cfg.BatchSize = result.Value.(int)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("batch_size")
		metrics.RecordFallback("batch_size", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "batch_size"),
				slog.String("warning", warning))
		}
	}

	result = config.LoadEnvDuration("DISPATCH_TIMEOUT", cfg.DispatchTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, 10*time.Second, 1*time.Hour)
	})
	cfg.DispatchTimeout = result.Value.(time.Duration)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("dispatch_timeout")
		metrics.RecordFallback("dispatch_timeout", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "dispatch_timeout"),
				slog.String("warning", warning))
		}
	}

	result = config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = result.Value.(int)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("health_port")
		metrics.RecordFallback("health_port", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "health_port"),
				slog.String("warning", warning))
		}
	}

	metrics.SetFallbackActive("", fallbackApplied)
	metrics.RecordLoadTimestamp()

	return &cfg, nil
}
