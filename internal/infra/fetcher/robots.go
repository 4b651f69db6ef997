package fetcher

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

const robotsTxtPath = "/robots.txt"

// robotsCache fetches and caches one robots.txt group per host, refetching
// after ttl elapses. A missing or unparsable robots.txt is treated as
// "allow everything", matching the common crawler convention that absence
// of a policy means full access.
type robotsCache struct {
	client    *http.Client
	userAgent string
	ttl       time.Duration

	mu      sync.Mutex
	entries map[string]*robotsEntry
}

type robotsEntry struct {
	group     *robotstxt.Group
	fetchedAt time.Time
}

func newRobotsCache(client *http.Client, userAgent string, ttl time.Duration) *robotsCache {
	return &robotsCache{
		client:    client,
		userAgent: userAgent,
		ttl:       ttl,
		entries:   make(map[string]*robotsEntry),
	}
}

// Allowed reports whether rawURL may be fetched under the host's cached
// robots.txt group. Fetch/parse failures default to allowed.
func (c *robotsCache) Allowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}

	group := c.group(ctx, u)
	if group == nil {
		return true
	}
	return group.Test(u.Path)
}

func (c *robotsCache) group(ctx context.Context, target *url.URL) *robotstxt.Group {
	host := target.Scheme + "://" + target.Host

	c.mu.Lock()
	entry, ok := c.entries[host]
	c.mu.Unlock()
	if ok && time.Since(entry.fetchedAt) < c.ttl {
		return entry.group
	}

	group := c.fetch(ctx, host)
	c.mu.Lock()
	c.entries[host] = &robotsEntry{group: group, fetchedAt: time.Now()}
	c.mu.Unlock()
	return group
}

func (c *robotsCache) fetch(ctx context.Context, host string) *robotstxt.Group {
	robotsURL := host + robotsTxtPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil
	}
	return data.FindGroup(c.userAgent)
}
