package sites

import (
	"net/http"

	"github.com/catchup-feed/sitecrawler/internal/domain/entity"
	"github.com/catchup-feed/sitecrawler/internal/handler/http/respond"
)

// SiteInfoDTO is one entry of the sites_info map: a site's config plus its
// current run state, surfaced from the job controller rather than the DB.
type SiteInfoDTO struct {
	Config    ConfigDTO `json:"config"`
	IsRunning bool      `json:"is_running"`
	LatestRun *RunDTO   `json:"latest_run"`
}

// ListResponse is the GET /crawlers/sites response body.
type ListResponse struct {
	Sites     []string               `json:"sites"`
	SitesInfo map[string]SiteInfoDTO `json:"sites_info"`
}

// ListHandler serves GET /crawlers/sites.
type ListHandler struct {
	Sites     map[string]entity.SiteConfig
	Scheduler Scheduler
}

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(h.Sites))
	info := make(map[string]SiteInfoDTO, len(h.Sites))
	for name, cfg := range h.Sites {
		names = append(names, name)
		jobID := scheduledJobID(name)
		job, _ := h.Scheduler.GetJob(jobID)
		info[name] = SiteInfoDTO{
			Config:    toConfigDTO(cfg),
			IsRunning: job.Running,
			LatestRun: latestRun(h.Scheduler.RecentRuns(jobID)),
		}
	}
	respond.JSON(w, http.StatusOK, ListResponse{Sites: names, SitesInfo: info})
}
