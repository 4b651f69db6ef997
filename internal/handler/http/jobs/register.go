package jobs

import "net/http"

// Register wires the job-inspection routes onto mux.
func Register(mux *http.ServeMux, scheduler Scheduler) {
	mux.Handle("GET /jobs/", ListHandler{Scheduler: scheduler})
	mux.Handle("GET /jobs/{id}", GetHandler{Scheduler: scheduler})
}
