package content

import (
	"log/slog"
	"net/http"

	"github.com/catchup-feed/sitecrawler/internal/domain/entity"
	"github.com/catchup-feed/sitecrawler/internal/handler/http/pathutil"
	"github.com/catchup-feed/sitecrawler/internal/handler/http/requestid"
	"github.com/catchup-feed/sitecrawler/internal/handler/http/respond"
	"github.com/catchup-feed/sitecrawler/internal/observability/logging"
)

// GetHandler serves GET /contents/{id}. Logger is optional; when nil no
// request-scoped logging is emitted.
type GetHandler struct {
	Repository Repository
	Logger     *slog.Logger
}

func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.PathValue("id"), "")
	if err != nil {
		respond.Error(w, http.StatusBadRequest, pathutil.ErrInvalidID)
		return
	}

	record, err := h.Repository.Get(r.Context(), id)
	if err != nil {
		if h.Logger != nil {
			logger := logging.WithRequestID(r.Context(), h.Logger)
			logger.Error("failed to get content", "id", id, "error", err.Error(), "request_id", requestid.FromContext(r.Context()))
		}
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	if record == nil {
		respond.Error(w, http.StatusNotFound, entity.ErrNotFound)
		return
	}

	respond.JSON(w, http.StatusOK, toDTO(record))
}
