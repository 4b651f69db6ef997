// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - HTTP request metrics (duration, count, size)
//   - Business metrics (fetches, pipeline writes, scheduler runs)
//   - Database query metrics
//   - Application performance metrics
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "github.com/catchup-feed/sitecrawler/internal/observability/metrics"
//
//	func crawlSite(site string) {
//	    start := time.Now()
//	    // ... fetch and parse ...
//
//	    metrics.RecordSchedulerJobRun(site, "cron", "success", time.Since(start))
//	    metrics.RecordOperationDuration("crawl_site", time.Since(start))
//	}
package metrics
