package sites

import (
	"net/http"

	"github.com/catchup-feed/sitecrawler/internal/domain/entity"
)

// Register wires the site-management routes onto mux.
func Register(mux *http.ServeMux, siteConfigs map[string]entity.SiteConfig, scheduler Scheduler) {
	mux.Handle("GET /crawlers/sites", ListHandler{Sites: siteConfigs, Scheduler: scheduler})
	mux.Handle("GET /crawlers/sites/{name}", GetHandler{Sites: siteConfigs, Scheduler: scheduler})
	mux.Handle("GET /crawlers/sites/{name}/status", StatusHandler{Sites: siteConfigs, Scheduler: scheduler})
	mux.Handle("POST /crawlers/sites/{name}/crawl", CrawlHandler{Scheduler: scheduler})
	mux.Handle("POST /crawlers/sites/batch-crawl", BatchCrawlHandler{Sites: siteConfigs, Scheduler: scheduler})
}
