package entity

import "time"

// RunStatus is a job run's terminal or in-flight state.
type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// JobRun is one observed execution of a scheduled or manually triggered job.
type JobRun struct {
	StartTime time.Time
	EndTime   time.Time
	Status    RunStatus
	Stored    int
	Err       string
}

// TriggerKind names the scheduling strategy used to fire a job.
type TriggerKind string

const (
	TriggerCron     TriggerKind = "cron"
	TriggerInterval TriggerKind = "interval"
	TriggerDate     TriggerKind = "date"
)

// JobRecord describes one registered job: a scheduled per-site crawl
// (id "crawl_<site>") or a one-shot manual crawl
// (id "manual_crawl_<site>_<timestamp>").
type JobRecord struct {
	ID       string
	Site     string
	Trigger  TriggerKind
	Spec     string // cron expression, interval duration string, or RFC3339 date
	NextRun  time.Time
	Running  bool
}
