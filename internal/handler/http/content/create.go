package content

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/catchup-feed/sitecrawler/internal/domain/entity"
	"github.com/catchup-feed/sitecrawler/internal/handler/http/requestid"
	"github.com/catchup-feed/sitecrawler/internal/handler/http/respond"
	"github.com/catchup-feed/sitecrawler/internal/observability/logging"
)

// CreateRequest is the POST /contents/ request body: a direct content
// ingestion outside the crawl pipeline, bypassing spider parsing.
type CreateRequest struct {
	ContentUUID string     `json:"content_uuid"`
	Source      string     `json:"source"`
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	PublishedAt *time.Time `json:"published_at"`
	BodyRef     string     `json:"body_ref"`
}

// CreateHandler serves POST /contents/. Logger is optional; when nil no
// request-scoped logging is emitted.
type CreateHandler struct {
	Repository Repository
	Logger     *slog.Logger
}

func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	record := &entity.ContentRecord{
		ContentUUID: req.ContentUUID,
		Source:      req.Source,
		URL:         req.URL,
		Title:       req.Title,
		Author:      req.Author,
		PublishedAt: req.PublishedAt,
		BodyRef:     req.BodyRef,
	}
	if err := record.Validate(); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.Repository.Create(r.Context(), record); err != nil {
		if errors.Is(err, entity.ErrDuplicateURL) {
			respond.Error(w, http.StatusConflict, err)
			return
		}
		if h.Logger != nil {
			logger := logging.WithRequestID(r.Context(), h.Logger)
			logger.Error("failed to create content", "source", req.Source, "url", req.URL, "error", err.Error(), "request_id", requestid.FromContext(r.Context()))
		}
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toDTO(record))
}
