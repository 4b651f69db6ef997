// Package renderer provides a headless-browser fallback for pages that
// require JavaScript execution before their content is present in the DOM.
package renderer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/catchup-feed/sitecrawler/internal/domain/model"
	"github.com/catchup-feed/sitecrawler/internal/resilience/circuitbreaker"
)

// networkIdleQuiescence is how long the network must be silent before a
// page is considered idle under WaitNetworkIdle.
const networkIdleQuiescence = 500 * time.Millisecond

// Renderer is implemented by both the chromedp-backed renderer and the
// no-op default. Dispatch chooses one based on config.Renderer.Render
// returns (nil, nil) when rendering isn't possible or didn't produce a
// usable page, mirroring the fetcher's "no error, no result" convention.
type Renderer interface {
	Render(ctx context.Context, req model.Request) (*model.Response, error)
	Close() error
}

// Noop is the default Renderer: it never launches a browser and always
// reports no result. Engines that have no browser configured use this so
// use_render requests fail closed instead of panicking on a nil renderer.
type Noop struct{}

func (Noop) Render(context.Context, model.Request) (*model.Response, error) { return nil, nil }
func (Noop) Close() error                                                  { return nil }

// Config controls the chromedp-backed renderer.
type Config struct {
	NavigationTimeout time.Duration
	PoolSize          int
	ChromiumPath      string
	UserAgent         string
}

// DefaultConfig returns the renderer defaults named by the crawl contract:
// a 30s navigation timeout and a single pooled browser context.
func DefaultConfig() Config {
	return Config{
		NavigationTimeout: 30 * time.Second,
		PoolSize:          1,
		UserAgent:         "sitecrawler/1.0",
	}
}

// Browser renders pages in a headless Chromium instance. The browser
// process and its context pool are started lazily on the first Render
// call and must be released with Close at engine shutdown.
type Browser struct {
	cfg     Config
	breaker *circuitbreaker.CircuitBreaker

	mu        sync.Mutex
	allocator context.Context
	cancel    context.CancelFunc
	pool      chan context.Context
}

// New builds a Browser renderer. The underlying Chromium process is not
// started until the first Render call. Navigations run behind a circuit
// breaker tuned for JS-rendered pages, which fail slower and noisier than
// a plain HTTP fetch.
func New(cfg Config) *Browser {
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 30 * time.Second
	}
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = 1
	}
	return &Browser{cfg: cfg, breaker: circuitbreaker.New(circuitbreaker.WebScraperConfig())}
}

func (b *Browser) start() {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("window-size", "1920,1080"),
		chromedp.UserAgent(b.cfg.UserAgent),
	)
	if b.cfg.ChromiumPath != "" {
		opts = append(opts, chromedp.ExecPath(b.cfg.ChromiumPath))
	}

	b.allocator, b.cancel = chromedp.NewExecAllocator(context.Background(), opts...)

	b.pool = make(chan context.Context, b.cfg.PoolSize)
	for i := 0; i < b.cfg.PoolSize; i++ {
		ctx, _ := chromedp.NewContext(b.allocator)
		b.pool <- ctx
	}
}

// Render navigates to req.URL in a pooled browser context, waits for the
// network to go idle, and returns the rendered DOM serialized as HTML
// wrapped in a synthetic 200 response. It returns (nil, nil) if navigation
// fails, so callers can fall back the same way a failed fetch is handled.
func (b *Browser) Render(ctx context.Context, req model.Request) (*model.Response, error) {
	b.mu.Lock()
	if b.pool == nil {
		b.start()
	}
	b.mu.Unlock()

	start := time.Now()

	browserCtx := <-b.pool
	defer func() { b.pool <- browserCtx }()

	timeoutCtx, cancel := context.WithTimeout(browserCtx, b.cfg.NavigationTimeout)
	defer cancel()

	var lastActivity time.Time
	var activityMu sync.Mutex
	chromedp.ListenTarget(timeoutCtx, func(ev interface{}) {
		switch ev.(type) {
		case *network.EventRequestWillBeSent, *network.EventResponseReceived, *network.EventLoadingFinished:
			activityMu.Lock()
			lastActivity = time.Now()
			activityMu.Unlock()
		}
	})

	var html, finalURL string
	_, err := b.breaker.Execute(func() (interface{}, error) {
		return nil, chromedp.Run(timeoutCtx,
			network.Enable(),
			chromedp.ActionFunc(func(ctx context.Context) error {
				activityMu.Lock()
				lastActivity = time.Now()
				activityMu.Unlock()
				return nil
			}),
			chromedp.Navigate(req.URL()),
			chromedp.WaitReady("body", chromedp.ByQuery),
			chromedp.ActionFunc(func(ctx context.Context) error {
				for {
					activityMu.Lock()
					quiet := time.Since(lastActivity)
					activityMu.Unlock()
					if quiet >= networkIdleQuiescence {
						return nil
					}
					select {
					case <-ctx.Done():
						return ctx.Err()
					case <-time.After(networkIdleQuiescence - quiet):
					}
				}
			}),
			chromedp.Location(&finalURL),
			chromedp.ActionFunc(func(ctx context.Context) error {
				node, err := dom.GetDocument().Do(ctx)
				if err != nil {
					return err
				}
				html, err = dom.GetOuterHTML().WithNodeID(node.NodeID).Do(ctx)
				return err
			}),
		)
	})
	if err != nil {
		slog.Warn("render: navigation failed", slog.String("url", req.URL()), slog.Any("error", err))
		return nil, nil
	}

	if finalURL == "" {
		finalURL = req.URL()
	}

	return &model.Response{
		Request:    req,
		FinalURL:   finalURL,
		StatusCode: 200,
		Body:       []byte(html),
		Headers:    map[string]string{"Content-Type": "text/html; charset=utf-8"},
		Elapsed:    time.Since(start),
	}, nil
}

// Close releases the browser process and all pooled contexts. Safe to
// call even if the browser was never started.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancel == nil {
		return nil
	}
	b.cancel()
	return nil
}
