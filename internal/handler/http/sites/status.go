package sites

import (
	"net/http"

	"github.com/catchup-feed/sitecrawler/internal/domain/entity"
	"github.com/catchup-feed/sitecrawler/internal/handler/http/respond"
)

// StatusResponse is the GET /crawlers/sites/{name}/status response body.
type StatusResponse struct {
	Site      string  `json:"site"`
	IsRunning bool    `json:"is_running"`
	LatestRun *RunDTO `json:"latest_run"`
}

// StatusHandler serves GET /crawlers/sites/{name}/status.
type StatusHandler struct {
	Sites     map[string]entity.SiteConfig
	Scheduler Scheduler
}

func (h StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if _, ok := h.Sites[name]; !ok {
		respond.Error(w, http.StatusNotFound, entity.ErrSiteNotFound)
		return
	}

	jobID := scheduledJobID(name)
	job, _ := h.Scheduler.GetJob(jobID)
	respond.JSON(w, http.StatusOK, StatusResponse{
		Site:      name,
		IsRunning: job.Running,
		LatestRun: latestRun(h.Scheduler.RecentRuns(jobID)),
	})
}
