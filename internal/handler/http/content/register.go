package content

import (
	"log/slog"
	"net/http"
)

// Register wires the content-inspection routes onto mux. logger may be nil,
// in which case the handlers emit no request-scoped logging.
func Register(mux *http.ServeMux, repo Repository, logger *slog.Logger) {
	mux.Handle("GET /contents/", ListHandler{Repository: repo, Logger: logger})
	mux.Handle("GET /contents/{id}", GetHandler{Repository: repo, Logger: logger})
	mux.Handle("POST /contents/", CreateHandler{Repository: repo, Logger: logger})
}
