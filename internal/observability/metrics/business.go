package metrics

import "time"

// RecordFetch records the duration of a single fetch (HTTP or headless render) for a site.
func RecordFetch(site, method string, duration time.Duration) {
	FetchDuration.WithLabelValues(site, method).Observe(duration.Seconds())
}

// RecordFetchRetry records one retry attempt made by the fetcher's backoff policy.
func RecordFetchRetry(site string) {
	FetchRetriesTotal.WithLabelValues(site).Inc()
}

// RecordFetchError records a fetch or parse failure for a site, classified by errType
// (e.g. "timeout", "http_status", "parse", "robots_disallowed").
func RecordFetchError(site, errType string) {
	FetchErrorsTotal.WithLabelValues(site, errType).Inc()
}

// RecordRateLimiterWait records how long a request waited on the anti-bot token
// bucket before being dispatched.
func RecordRateLimiterWait(site string, wait time.Duration) {
	RateLimiterWaitDuration.WithLabelValues(site).Observe(wait.Seconds())
}

// RecordPipelineStored records one item the storage pipeline persisted as new content.
func RecordPipelineStored() {
	PipelineItemsTotal.WithLabelValues("stored").Inc()
}

// RecordPipelineDuplicate records one item the storage pipeline skipped as a duplicate.
func RecordPipelineDuplicate() {
	PipelineItemsTotal.WithLabelValues("duplicate").Inc()
}

// RecordPipelineFailed records one item the storage pipeline failed to persist.
func RecordPipelineFailed() {
	PipelineItemsTotal.WithLabelValues("failed").Inc()
}

// RecordSchedulerJobRun records the outcome of one scheduler job run, labeled by
// trigger kind ("cron" or "manual") and status ("success", "failure", "partial").
func RecordSchedulerJobRun(site, trigger, status string, duration time.Duration) {
	SchedulerJobRunsTotal.WithLabelValues(trigger, status).Inc()
	SchedulerJobDuration.WithLabelValues(site).Observe(duration.Seconds())
}

// UpdateSitesConfigured sets the current count of loaded site configurations.
func UpdateSitesConfigured(count int) {
	SitesConfigured.Set(float64(count))
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query type (e.g., "select_content", "insert_content").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
