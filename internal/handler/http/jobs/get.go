package jobs

import (
	"net/http"

	"github.com/catchup-feed/sitecrawler/internal/domain/entity"
	"github.com/catchup-feed/sitecrawler/internal/handler/http/respond"
)

// GetResponse is the GET /jobs/{id} response body: the job descriptor
// plus its recent run history.
type GetResponse struct {
	DTO
	RecentRuns []RunDTO `json:"recent_runs"`
}

// GetHandler serves GET /jobs/{id}.
type GetHandler struct {
	Scheduler Scheduler
}

func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rec, ok := h.Scheduler.GetJob(id)
	if !ok {
		respond.Error(w, http.StatusNotFound, entity.ErrNotFound)
		return
	}

	runs := h.Scheduler.RecentRuns(id)
	dtos := make([]RunDTO, 0, len(runs))
	for _, run := range runs {
		dtos = append(dtos, toRunDTO(run))
	}

	respond.JSON(w, http.StatusOK, GetResponse{DTO: toDTO(rec), RecentRuns: dtos})
}
