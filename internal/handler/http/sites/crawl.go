package sites

import (
	"errors"
	"net/http"

	"github.com/catchup-feed/sitecrawler/internal/domain/entity"
	"github.com/catchup-feed/sitecrawler/internal/handler/http/respond"
)

// CrawlResponse is the POST /crawlers/sites/{name}/crawl response body.
type CrawlResponse struct {
	Message   string `json:"message"`
	Site      string `json:"site"`
	FlowRunID string `json:"flow_run_id"`
}

// CrawlHandler serves POST /crawlers/sites/{name}/crawl.
type CrawlHandler struct {
	Scheduler Scheduler
}

func (h CrawlHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	jobID, err := h.Scheduler.TriggerManualCrawl(name)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrSiteNotFound):
			respond.Error(w, http.StatusNotFound, err)
		case errors.Is(err, entity.ErrJobAlreadyRunning):
			respond.Error(w, http.StatusConflict, err)
		case errors.Is(err, entity.ErrSchedulerUnavailable):
			respond.Error(w, http.StatusServiceUnavailable, err)
		default:
			respond.SafeError(w, http.StatusInternalServerError, err)
		}
		return
	}

	respond.JSON(w, http.StatusOK, CrawlResponse{
		Message:   "Crawl task started for " + name,
		Site:      name,
		FlowRunID: jobID,
	})
}
