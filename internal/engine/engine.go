// Package engine runs a single spider to completion: fetch/render each
// queued request, parse it into items and follow-up requests, and hand the
// accumulated batch to the storage pipeline once the queue drains.
package engine

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/catchup-feed/sitecrawler/internal/antibot"
	"github.com/catchup-feed/sitecrawler/internal/domain/entity"
	"github.com/catchup-feed/sitecrawler/internal/domain/model"
	"github.com/catchup-feed/sitecrawler/internal/infra/fetcher"
	"github.com/catchup-feed/sitecrawler/internal/infra/renderer"
	"github.com/catchup-feed/sitecrawler/internal/pipeline"
	"github.com/catchup-feed/sitecrawler/internal/spider"
)

// Fetcher is the subset of *fetcher.Fetcher the engine depends on.
type Fetcher interface {
	Fetch(ctx context.Context, req model.Request) (*model.Response, error)
}

// Pipeline is the subset of *pipeline.Pipeline the engine depends on.
type Pipeline interface {
	ProcessItems(ctx context.Context, items []model.Item) (int, error)
}

// Engine wires a fetcher, an optional renderer, and a storage pipeline into
// one spider run. One Engine is reused across runs of different spiders;
// Close releases the renderer's browser resources when the run is done.
type Engine struct {
	fetcher  Fetcher
	renderer renderer.Renderer
	pipeline Pipeline
}

// New builds an Engine. A nil renderer defaults to renderer.Noop{}, so a
// site with no render requests never pays for a browser allocator.
func New(f Fetcher, r renderer.Renderer, p Pipeline) *Engine {
	if r == nil {
		r = renderer.Noop{}
	}
	return &Engine{fetcher: f, renderer: r, pipeline: p}
}

// Close releases the renderer's resources. Safe to call even if the
// renderer was never used.
func (e *Engine) Close() error {
	return e.renderer.Close()
}

// CrawlSpider runs sp to completion against cfg's pacing and concurrency
// settings, returning the count of items newly stored by the pipeline.
// Per-request fetch/parse failures are logged and skipped; they never
// abort the run. The queue is FIFO and grows as parsing discovers
// follow-up requests, so concurrency is bounded by a semaphore rather than
// a fixed-size work slice.
func (e *Engine) CrawlSpider(ctx context.Context, sp spider.Spider, cfg entity.SiteConfig) (int, error) {
	mw := antibot.New(cfg.QPS, cfg.Delay, cfg.Jitter)

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 2
	}

	queue := make(chan model.Request, 64)
	sem := make(chan struct{}, concurrency)

	var (
		mu      sync.Mutex
		batch   []model.Item
		pending int // requests enqueued but not yet drained
		wg      sync.WaitGroup
		failed  int
	)

	enqueue := func(reqs []model.Request) {
		mu.Lock()
		pending += len(reqs)
		mu.Unlock()
		for _, r := range reqs {
			wg.Add(1)
			queue <- r
		}
	}

	seeds := sp.Seeds()
	if len(seeds) == 0 {
		return 0, nil
	}
	enqueue(seeds)

	go func() {
		wg.Wait()
		close(queue)
	}()

	eg, egCtx := errgroup.WithContext(ctx)

	for req := range queue {
		req := req
		sem <- struct{}{}
		eg.Go(func() error {
			defer func() { <-sem; wg.Done() }()
			if err := mw.BeforeRequest(egCtx); err != nil {
				return err
			}
			items, followups, err := e.process(egCtx, sp, req)
			if err != nil {
				slog.Error("engine: processing request failed",
					slog.String("url", req.URL()), slog.Any("error", err))
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			mu.Lock()
			batch = append(batch, items...)
			mu.Unlock()
			if len(followups) > 0 {
				enqueue(followups)
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return 0, err
	}

	if failed > 0 {
		slog.Warn("engine: run completed with failed requests",
			slog.String("site", cfg.Name), slog.Int("failed", failed))
	}

	return e.pipeline.ProcessItems(ctx, batch)
}

// process applies anti-bot pacing, dispatches to the renderer or fetcher,
// and runs the appropriate parse function for one request.
func (e *Engine) process(ctx context.Context, sp spider.Spider, req model.Request) ([]model.Item, []model.Request, error) {
	resp, err := e.fetch(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	if resp == nil {
		return nil, nil, nil
	}

	if req.MetaBool(spider.MetaFetchFull) {
		if fc, ok := sp.(spider.FullContentParser); ok {
			return fc.ParseFullContent(ctx, *resp)
		}
	}
	return sp.Parse(ctx, *resp)
}

func (e *Engine) fetch(ctx context.Context, req model.Request) (*model.Response, error) {
	if req.UseRender() {
		if _, ok := e.renderer.(renderer.Noop); !ok {
			return e.renderer.Render(ctx, req)
		}
	}
	return e.fetcher.Fetch(ctx, req)
}

var _ Fetcher = (*fetcher.Fetcher)(nil)
var _ Pipeline = (*pipeline.Pipeline)(nil)
