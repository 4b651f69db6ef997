package sites

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catchup-feed/sitecrawler/internal/domain/entity"
)

type fakeScheduler struct {
	jobs       map[string]entity.JobRecord
	recent     map[string][]entity.JobRun
	triggerErr map[string]error
	triggered  []string
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{
		jobs:       make(map[string]entity.JobRecord),
		recent:     make(map[string][]entity.JobRun),
		triggerErr: make(map[string]error),
	}
}

func (f *fakeScheduler) GetJob(id string) (entity.JobRecord, bool) {
	j, ok := f.jobs[id]
	return j, ok
}
func (f *fakeScheduler) GetJobs() []entity.JobRecord {
	out := make([]entity.JobRecord, 0, len(f.jobs))
	for _, j := range f.jobs {
		out = append(out, j)
	}
	return out
}
func (f *fakeScheduler) RecentRuns(id string) []entity.JobRun { return f.recent[id] }
func (f *fakeScheduler) TriggerManualCrawl(site string) (string, error) {
	f.triggered = append(f.triggered, site)
	if err, ok := f.triggerErr[site]; ok {
		return "", err
	}
	return "manual_crawl_" + site + "_1", nil
}

func sitesMap() map[string]entity.SiteConfig {
	return map[string]entity.SiteConfig{
		"bbc": {Name: "bbc", Spider: "rss", FeedURL: "https://bbc.example/rss", Cron: "0 * * * *", Concurrency: 2},
	}
}

func TestListHandler(t *testing.T) {
	sched := newFakeScheduler()
	sched.jobs["crawl_bbc"] = entity.JobRecord{ID: "crawl_bbc", Running: true}
	sched.recent["crawl_bbc"] = []entity.JobRun{{Status: entity.RunSucceeded, Stored: 4}}

	h := ListHandler{Sites: sitesMap(), Scheduler: sched}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/crawlers/sites", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp ListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, []string{"bbc"}, resp.Sites)
	assert.True(t, resp.SitesInfo["bbc"].IsRunning)
	require.NotNil(t, resp.SitesInfo["bbc"].LatestRun)
	assert.Equal(t, 4, resp.SitesInfo["bbc"].LatestRun.Stored)
}

func TestGetHandler_NotFound(t *testing.T) {
	h := GetHandler{Sites: sitesMap(), Scheduler: newFakeScheduler()}
	req := httptest.NewRequest(http.MethodGet, "/crawlers/sites/unknown", nil)
	req.SetPathValue("name", "unknown")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetHandler_Found(t *testing.T) {
	sched := newFakeScheduler()
	h := GetHandler{Sites: sitesMap(), Scheduler: sched}
	req := httptest.NewRequest(http.MethodGet, "/crawlers/sites/bbc", nil)
	req.SetPathValue("name", "bbc")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	var resp GetResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "bbc", resp.Site)
	assert.Equal(t, "https://bbc.example/rss", resp.Config.FeedURL)
}

func TestStatusHandler(t *testing.T) {
	h := StatusHandler{Sites: sitesMap(), Scheduler: newFakeScheduler()}
	req := httptest.NewRequest(http.MethodGet, "/crawlers/sites/bbc/status", nil)
	req.SetPathValue("name", "bbc")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCrawlHandler_Success(t *testing.T) {
	sched := newFakeScheduler()
	h := CrawlHandler{Scheduler: sched}
	req := httptest.NewRequest(http.MethodPost, "/crawlers/sites/bbc/crawl", nil)
	req.SetPathValue("name", "bbc")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	var resp CrawlResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "bbc", resp.Site)
	assert.NotEmpty(t, resp.FlowRunID)
}

func TestCrawlHandler_SiteNotFound(t *testing.T) {
	sched := newFakeScheduler()
	sched.triggerErr["unknown"] = entity.ErrSiteNotFound
	h := CrawlHandler{Scheduler: sched}
	req := httptest.NewRequest(http.MethodPost, "/crawlers/sites/unknown/crawl", nil)
	req.SetPathValue("name", "unknown")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCrawlHandler_AlreadyRunning(t *testing.T) {
	sched := newFakeScheduler()
	sched.triggerErr["bbc"] = entity.ErrJobAlreadyRunning
	h := CrawlHandler{Scheduler: sched}
	req := httptest.NewRequest(http.MethodPost, "/crawlers/sites/bbc/crawl", nil)
	req.SetPathValue("name", "bbc")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestCrawlHandler_SchedulerUnavailable(t *testing.T) {
	sched := newFakeScheduler()
	sched.triggerErr["bbc"] = entity.ErrSchedulerUnavailable
	h := CrawlHandler{Scheduler: sched}
	req := httptest.NewRequest(http.MethodPost, "/crawlers/sites/bbc/crawl", nil)
	req.SetPathValue("name", "bbc")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestBatchCrawlHandler_SequentialAllSites(t *testing.T) {
	sched := newFakeScheduler()
	h := BatchCrawlHandler{Sites: sitesMap(), Scheduler: sched}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/crawlers/sites/batch-crawl", bytes.NewBufferString(`{}`)))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]BatchResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Contains(t, resp, "bbc")
	assert.NotEmpty(t, resp["bbc"].FlowRunID)
}

func TestBatchCrawlHandler_ParallelWithUnknownSite(t *testing.T) {
	sched := newFakeScheduler()
	sched.triggerErr["ghost"] = entity.ErrSiteNotFound
	h := BatchCrawlHandler{Sites: sitesMap(), Scheduler: sched}
	body := `{"sites": ["bbc", "ghost"], "parallel": true}`
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/crawlers/sites/batch-crawl", bytes.NewBufferString(body)))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]BatchResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["bbc"].FlowRunID)
	assert.Equal(t, entity.ErrSiteNotFound.Error(), resp["ghost"].Error)
}

func TestLatestRun_EmptyReturnsNil(t *testing.T) {
	assert.Nil(t, latestRun(nil))
}

func TestToRunDTO_FormatsTimestamps(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	dto := toRunDTO(entity.JobRun{StartTime: now, EndTime: now, Status: entity.RunSucceeded, Stored: 1})
	assert.Contains(t, dto.StartTime, "2026-01-02T03:04:05")
}
