package worker

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/catchup-feed/sitecrawler/internal/pkg/config"
)

// ProcessConfig holds the operational tunables shared by cmd/worker and
// cmd/api that live outside the site-configuration file: the health
// server's bind port and the grace period given to running crawl jobs
// during shutdown.
type ProcessConfig struct {
	// HealthPort is the port the liveness/readiness server listens on.
	// Default: 9091
	HealthPort int

	// ShutdownTimeout bounds how long graceful shutdown waits for the
	// scheduler to drain running jobs before forcing exit.
	// Default: 30s
	ShutdownTimeout time.Duration
}

// DefaultProcessConfig returns production defaults: health checks on 9091,
// a 30s shutdown grace period.
func DefaultProcessConfig() ProcessConfig {
	return ProcessConfig{
		HealthPort:      9091,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Validate checks the configuration values are usable.
func (c *ProcessConfig) Validate() error {
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		return fmt.Errorf("health port: %w", err)
	}
	if err := config.ValidatePositiveDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("shutdown timeout: %w", err)
	}
	return nil
}

// LoadConfigFromEnv loads ProcessConfig from environment variables, falling
// back to DefaultProcessConfig for anything unset or invalid (fail-open:
// a misconfigured operational knob never blocks process startup).
//
// Environment variables:
//   - WORKER_HEALTH_PORT: integer 1024-65535 (default 9091)
//   - WORKER_SHUTDOWN_TIMEOUT: duration string, e.g. "30s" (default 30s)
func LoadConfigFromEnv(logger *slog.Logger) ProcessConfig {
	cfg := DefaultProcessConfig()

	portResult := config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = portResult.Value.(int)
	for _, warning := range portResult.Warnings {
		logger.Warn("configuration fallback applied", slog.String("field", "HealthPort"), slog.String("warning", warning))
	}

	timeoutResult := config.LoadEnvDuration("WORKER_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout, func(d time.Duration) error {
		return config.ValidatePositiveDuration(d)
	})
	cfg.ShutdownTimeout = timeoutResult.Value.(time.Duration)
	for _, warning := range timeoutResult.Warnings {
		logger.Warn("configuration fallback applied", slog.String("field", "ShutdownTimeout"), slog.String("warning", warning))
	}

	return cfg
}
