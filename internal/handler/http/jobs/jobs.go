// Package jobs implements the job-inspection endpoints: listing every
// registered crawl job (scheduled or manual) and looking up one job's
// descriptor plus recent run history.
package jobs

import (
	"github.com/catchup-feed/sitecrawler/internal/domain/entity"
)

// Scheduler is the subset of *scheduler.Scheduler these handlers depend on.
type Scheduler interface {
	GetJob(id string) (entity.JobRecord, bool)
	GetJobs() []entity.JobRecord
	RecentRuns(id string) []entity.JobRun
}

const rfc3339Milli = "2006-01-02T15:04:05.000Z07:00"

// DTO is one job descriptor in an API response.
type DTO struct {
	ID      string `json:"id"`
	Site    string `json:"site"`
	Trigger string `json:"trigger"`
	Spec    string `json:"schedule"`
	NextRun string `json:"next_run,omitempty"`
	Running bool   `json:"running"`
}

func toDTO(rec entity.JobRecord) DTO {
	dto := DTO{
		ID:      rec.ID,
		Site:    rec.Site,
		Trigger: string(rec.Trigger),
		Spec:    rec.Spec,
		Running: rec.Running,
	}
	if !rec.NextRun.IsZero() {
		dto.NextRun = rec.NextRun.Format(rfc3339Milli)
	}
	return dto
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
