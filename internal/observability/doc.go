// Package observability provides structured logging and Prometheus metrics
// for the crawl scheduler, engine, and HTTP API.
//
// This package centralizes observability concerns to enable:
//   - Structured logging with request-ID propagation
//   - Prometheus metrics for monitoring crawl and HTTP traffic
//
// Subpackages:
//   - logging: Structured logging utilities with slog
//   - metrics: Prometheus metrics registry and recorders
//
// Example usage:
//
//	import (
//	    "github.com/catchup-feed/sitecrawler/internal/observability/logging"
//	    "github.com/catchup-feed/sitecrawler/internal/observability/metrics"
//	)
//
//	func main() {
//	    logger := logging.NewLogger()
//	    logger.Info("application started")
//
//	    metrics.UpdateSitesConfigured(3)
//	}
package observability
