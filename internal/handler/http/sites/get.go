package sites

import (
	"net/http"

	"github.com/catchup-feed/sitecrawler/internal/domain/entity"
	"github.com/catchup-feed/sitecrawler/internal/handler/http/respond"
)

// GetResponse is the GET /crawlers/sites/{name} response body.
type GetResponse struct {
	Site       string    `json:"site"`
	Config     ConfigDTO `json:"config"`
	IsRunning  bool      `json:"is_running"`
	RecentRuns []RunDTO  `json:"recent_runs"`
}

// GetHandler serves GET /crawlers/sites/{name}.
type GetHandler struct {
	Sites     map[string]entity.SiteConfig
	Scheduler Scheduler
}

func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	cfg, ok := h.Sites[name]
	if !ok {
		respond.Error(w, http.StatusNotFound, entity.ErrSiteNotFound)
		return
	}

	jobID := scheduledJobID(name)
	job, _ := h.Scheduler.GetJob(jobID)
	runs := h.Scheduler.RecentRuns(jobID)
	dtos := make([]RunDTO, 0, len(runs))
	for _, run := range runs {
		dtos = append(dtos, toRunDTO(run))
	}

	respond.JSON(w, http.StatusOK, GetResponse{
		Site:       name,
		Config:     toConfigDTO(cfg),
		IsRunning:  job.Running,
		RecentRuns: dtos,
	})
}
