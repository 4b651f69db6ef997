package content

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/catchup-feed/sitecrawler/internal/handler/http/requestid"
	"github.com/catchup-feed/sitecrawler/internal/handler/http/respond"
	"github.com/catchup-feed/sitecrawler/internal/observability/logging"
)

// ListResponse is the GET /contents/ response body.
type ListResponse struct {
	Items []DTO `json:"items"`
	Total int64 `json:"total"`
	Skip  int   `json:"skip"`
	Limit int   `json:"limit"`
}

// ListHandler serves GET /contents/?skip=&limit=&source=. Logger is
// optional; when nil no request-scoped logging is emitted.
type ListHandler struct {
	Repository Repository
	Logger     *slog.Logger
}

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	source := q.Get("source")

	skipRaw, skipOK := parseIntParam(q.Get("skip"))
	limitRaw, limitOK := parseIntParam(q.Get("limit"))
	skip := clampSkip(skipRaw, skipOK)
	limit := clampLimit(limitRaw, limitOK)

	records, err := h.Repository.List(r.Context(), source, skip, limit)
	if err != nil {
		h.logError(r, "failed to list content", err, "source", source, "skip", skip, "limit", limit)
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	total, err := h.Repository.Count(r.Context(), source)
	if err != nil {
		h.logError(r, "failed to count content", err, "source", source)
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	dtos := make([]DTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, toDTO(rec))
	}

	respond.JSON(w, http.StatusOK, ListResponse{Items: dtos, Total: total, Skip: skip, Limit: limit})
}

// logError emits a request-scoped error log when a logger is configured.
func (h ListHandler) logError(r *http.Request, msg string, err error, args ...any) {
	if h.Logger == nil {
		return
	}
	logger := logging.WithRequestID(r.Context(), h.Logger)
	args = append(args, "error", err.Error(), "request_id", requestid.FromContext(r.Context()))
	logger.Error(msg, args...)
}

func parseIntParam(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
