// Package sites implements the crawler site-management endpoints:
// listing configured sites, inspecting one site's config/status, and
// triggering crawls (single or batch).
package sites

import (
	"github.com/catchup-feed/sitecrawler/internal/domain/entity"
)

// Scheduler is the subset of *scheduler.Scheduler these handlers depend
// on, declared at the consumer so tests can supply a fake controller.
type Scheduler interface {
	GetJob(id string) (entity.JobRecord, bool)
	GetJobs() []entity.JobRecord
	RecentRuns(id string) []entity.JobRun
	TriggerManualCrawl(site string) (string, error)
}

// ConfigDTO mirrors the fields of entity.SiteConfig a client needs to see;
// it omits nothing sensitive since site config carries no credentials.
type ConfigDTO struct {
	Name             string            `json:"name"`
	Spider           string            `json:"spider"`
	SourceName       string            `json:"source_name"`
	FeedURL          string            `json:"feed_url"`
	Cron             string            `json:"cron"`
	QPS              float64           `json:"qps"`
	Concurrency      int               `json:"concurrency"`
	MaxItems         int               `json:"max_items"`
	FetchFullContent bool              `json:"fetch_full_content"`
	UseRender        bool              `json:"use_render"`
	Headers          map[string]string `json:"headers,omitempty"`
}

func toConfigDTO(cfg entity.SiteConfig) ConfigDTO {
	return ConfigDTO{
		Name: cfg.Name, Spider: cfg.Spider, SourceName: cfg.EffectiveSourceName(),
		FeedURL: cfg.FeedURL, Cron: cfg.Cron, QPS: cfg.QPS, Concurrency: cfg.Concurrency,
		MaxItems: cfg.MaxItems, FetchFullContent: cfg.FetchFullContent, UseRender: cfg.UseRender,
		Headers: cfg.Headers,
	}
}

// RunDTO mirrors entity.JobRun for JSON responses.
type RunDTO struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Status    string `json:"status"`
	Stored    int    `json:"stored"`
	Err       string `json:"error,omitempty"`
}

func toRunDTO(r entity.JobRun) RunDTO {
	return RunDTO{
		StartTime: r.StartTime.Format(rfc3339Milli),
		EndTime:   r.EndTime.Format(rfc3339Milli),
		Status:    string(r.Status),
		Stored:    r.Stored,
		Err:       r.Err,
	}
}

const rfc3339Milli = "2006-01-02T15:04:05.000Z07:00"

// scheduledJobID returns the job id the scheduler registers a site's
// recurring crawl under.
func scheduledJobID(site string) string { return "crawl_" + site }

func latestRun(runs []entity.JobRun) *RunDTO {
	if len(runs) == 0 {
		return nil
	}
	dto := toRunDTO(runs[len(runs)-1])
	return &dto
}
