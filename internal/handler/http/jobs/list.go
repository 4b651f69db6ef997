package jobs

import (
	"net/http"

	"github.com/catchup-feed/sitecrawler/internal/handler/http/respond"
)

// ListResponse is the GET /jobs/ response body.
type ListResponse struct {
	Jobs []DTO `json:"jobs"`
}

// ListHandler serves GET /jobs/.
type ListHandler struct {
	Scheduler Scheduler
}

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	records := h.Scheduler.GetJobs()
	dtos := make([]DTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, toDTO(rec))
	}
	respond.JSON(w, http.StatusOK, ListResponse{Jobs: dtos})
}
