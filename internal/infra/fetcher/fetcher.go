package fetcher

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/catchup-feed/sitecrawler/internal/domain/model"
	"github.com/catchup-feed/sitecrawler/internal/resilience/circuitbreaker"
)

// retryBaseDelay and retryMaxDelay implement the fetch retry schedule:
// exponential backoff starting at 1s, doubling per attempt, capped at 60s,
// unless a Retry-After header on 429/503 overrides the computed delay.
const (
	retryBaseDelay = time.Second
	retryMaxDelay  = 60 * time.Second
)

// Fetcher executes HTTP GETs with retry/backoff, optional robots.txt
// enforcement, and SSRF-safe redirect validation. One Fetcher is shared
// across all requests of an engine run so the HTTP client's connection
// pool and the robots cache are reused.
type Fetcher struct {
	client  *http.Client
	robots  *robotsCache
	breaker *circuitbreaker.CircuitBreaker
	cfg     Config
}

// New builds a Fetcher from cfg. Redirect targets are validated the same
// way the initial URL is (SSRF prevention carries through redirects).
func New(cfg Config) *Fetcher {
	f := &Fetcher{cfg: cfg}

	client := &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= cfg.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", ErrTooManyRedirects, len(via))
			}
			return validateURL(req.URL.String(), cfg.DenyPrivateIPs)
		},
	}
	f.client = client

	if cfg.RespectRobots {
		f.robots = newRobotsCache(client, cfg.UserAgent, cfg.RobotsCacheTTL)
	}

	f.breaker = circuitbreaker.New(circuitbreaker.FeedFetchConfig())

	return f
}

// Fetch executes req, retrying transient failures per the backoff
// schedule. It returns (nil, nil) on permanent failure: a disallowed
// scheme/private-IP URL, a robots.txt disallow, a non-retryable 4xx
// response, or retry exhaustion -- these are not errors the caller needs
// to branch on, matching the engine's "dequeue, fetch, continue on null"
// loop. The only non-nil errors returned are context cancellation/timeout
// from the caller's own ctx.
func (f *Fetcher) Fetch(ctx context.Context, req model.Request) (*model.Response, error) {
	if err := validateURL(req.URL(), f.cfg.DenyPrivateIPs); err != nil {
		slog.Warn("fetch: rejecting url", slog.String("url", req.URL()), slog.Any("error", err))
		return nil, nil
	}

	if f.robots != nil && !f.robots.Allowed(ctx, req.URL()) {
		slog.Info("fetch: robots.txt disallows url", slog.String("url", req.URL()))
		return nil, nil
	}

	delay := retryBaseDelay

	for attempt := 0; attempt <= f.cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		resp, retryAfter, retryable, err := f.attempt(ctx, req)
		if err == nil && resp != nil && resp.OK() {
			return resp, nil
		}

		if !retryable {
			return nil, nil
		}
		if attempt == f.cfg.MaxRetries {
			break
		}

		wait := delay
		if retryAfter > 0 {
			wait = retryAfter
		}
		slog.Warn("fetch: retrying",
			slog.String("url", req.URL()),
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", wait),
			slog.Any("error", err))

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}

		delay = time.Duration(math.Min(float64(delay*2), float64(retryMaxDelay)))
	}

	return nil, nil
}

// attempt performs one HTTP round trip through the circuit breaker. It
// reports the response (if any), a Retry-After override (if present on a
// 429/503), and whether the overall outcome is worth retrying.
func (f *Fetcher) attempt(ctx context.Context, req model.Request) (resp *model.Response, retryAfter time.Duration, retryable bool, err error) {
	result, cbErr := f.breaker.Execute(func() (interface{}, error) {
		return f.doRequest(ctx, req)
	})
	if cbErr != nil {
		if errors.Is(cbErr, gobreaker.ErrOpenState) || errors.Is(cbErr, gobreaker.ErrTooManyRequests) {
			return nil, 0, false, cbErr
		}
		return nil, 0, true, cbErr
	}
	resp = result.(*model.Response)

	if resp.OK() {
		return resp, 0, false, nil
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return resp, parseRetryAfter(resp.Headers["Retry-After"]), true, fmt.Errorf("status %d", resp.StatusCode)
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusGatewayTimeout:
		return resp, 0, true, fmt.Errorf("status %d", resp.StatusCode)
	default:
		return resp, 0, false, fmt.Errorf("status %d", resp.StatusCode)
	}
}

func (f *Fetcher) doRequest(ctx context.Context, req model.Request) (*model.Response, error) {
	method := req.Method()
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Body() != nil {
		body = bytes.NewReader(req.Body())
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL(), body)
	if err != nil {
		return nil, fmt.Errorf("fetcher: build request: %w", err)
	}
	httpReq.Header.Set("User-Agent", f.cfg.UserAgent)
	for k, v := range req.Headers() {
		httpReq.Header.Set(k, v)
	}

	start := time.Now()
	httpResp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetcher: request failed: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	limited := io.LimitReader(httpResp.Body, f.cfg.MaxBodySize+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("fetcher: read body: %w", err)
	}
	if int64(len(data)) > f.cfg.MaxBodySize {
		return nil, fmt.Errorf("%w: %d bytes", ErrBodyTooLarge, len(data))
	}

	headers := make(map[string]string, len(httpResp.Header))
	for k := range httpResp.Header {
		headers[k] = httpResp.Header.Get(k)
	}

	finalURL := req.URL()
	if httpResp.Request != nil && httpResp.Request.URL != nil {
		finalURL = httpResp.Request.URL.String()
	}

	return &model.Response{
		Request:    req,
		FinalURL:   finalURL,
		StatusCode: httpResp.StatusCode,
		Body:       data,
		Headers:    headers,
		Elapsed:    time.Since(start),
	}, nil
}

func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(value); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
