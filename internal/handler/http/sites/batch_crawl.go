package sites

import (
	"encoding/json"
	"net/http"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/catchup-feed/sitecrawler/internal/domain/entity"
	"github.com/catchup-feed/sitecrawler/internal/handler/http/respond"
)

// BatchCrawlRequest is the POST /crawlers/sites/batch-crawl request body.
// An empty/omitted Sites list targets every configured site.
type BatchCrawlRequest struct {
	Sites    []string `json:"sites,omitempty"`
	Parallel bool     `json:"parallel"`
}

// BatchResult is one site's outcome in a batch-crawl response: either
// FlowRunID or Error is set, never both.
type BatchResult struct {
	FlowRunID string `json:"flow_run_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// BatchCrawlHandler serves POST /crawlers/sites/batch-crawl. A single
// unknown site name produces a per-site error entry rather than failing
// the whole request -- only the single-site crawl endpoint 404s.
type BatchCrawlHandler struct {
	Sites     map[string]entity.SiteConfig
	Scheduler Scheduler
}

func (h BatchCrawlHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req BatchCrawlRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err.Error() != "EOF" {
			respond.SafeError(w, http.StatusBadRequest, err)
			return
		}
	}

	targets := req.Sites
	if len(targets) == 0 {
		for name := range h.Sites {
			targets = append(targets, name)
		}
	}

	var (
		mu      sync.Mutex
		results = make(map[string]BatchResult, len(targets))
	)
	record := func(site string, jobID string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			results[site] = BatchResult{Error: err.Error()}
			return
		}
		results[site] = BatchResult{FlowRunID: jobID}
	}

	if req.Parallel {
		var eg errgroup.Group
		for _, site := range targets {
			site := site
			eg.Go(func() error {
				jobID, err := h.Scheduler.TriggerManualCrawl(site)
				record(site, jobID, err)
				return nil
			})
		}
		_ = eg.Wait()
	} else {
		for _, site := range targets {
			jobID, err := h.Scheduler.TriggerManualCrawl(site)
			record(site, jobID, err)
		}
	}

	respond.JSON(w, http.StatusOK, results)
}
