package spider

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/catchup-feed/sitecrawler/internal/domain/model"
	"github.com/catchup-feed/sitecrawler/internal/pkg/parse"
	"github.com/catchup-feed/sitecrawler/internal/utils/text"
)

// fullContentBodyThreshold is the body length, in runes, below which, when
// fetch_full_content is enabled, a follow-up request to the entry's own
// page is emitted. Counted in runes rather than bytes so multi-byte feeds
// (Japanese, Chinese, emoji) aren't flagged as short just for being non-ASCII.
const fullContentBodyThreshold = 500

// RSS is the "rss" spider kind: a single feed URL seed, one Item per feed
// entry, with an optional follow-up fetch for entries whose feed-supplied
// body is too short to be useful.
type RSS struct {
	SourceName       string
	FeedURL          string
	MaxItems         int
	FetchFullContent bool

	parser *gofeed.Parser
}

// NewRSS builds an RSS spider. maxItems <= 0 means no cap.
func NewRSS(sourceName, feedURL string, maxItems int, fetchFullContent bool) *RSS {
	return &RSS{
		SourceName:       sourceName,
		FeedURL:          feedURL,
		MaxItems:         maxItems,
		FetchFullContent: fetchFullContent,
		parser:           gofeed.NewParser(),
	}
}

func (r *RSS) Name() string { return "rss" }

// Seeds returns the single feed-URL request, tagged so the engine and this
// spider's own Parse method can recognize a feed response versus a
// follow-up article page.
func (r *RSS) Seeds() []model.Request {
	req, err := model.NewRequest(r.FeedURL)
	if err != nil {
		slog.Error("rss spider: invalid feed url", slog.String("feed_url", r.FeedURL), slog.Any("error", err))
		return nil
	}
	req = req.WithMetadata(map[string]any{
		MetaIsFeed: true,
		MetaSource: r.SourceName,
	})
	return []model.Request{req}
}

// Parse turns a feed response into one Item per entry. A malformed entry
// is logged and skipped; a malformed feed body yields zero items and a
// logged error, never a fatal error that would abort the engine run.
func (r *RSS) Parse(ctx context.Context, resp model.Response) ([]model.Item, []model.Request, error) {
	feed, err := r.parser.ParseString(resp.Text())
	if err != nil {
		slog.Error("rss spider: feed parse failed", slog.String("source", r.SourceName), slog.Any("error", err))
		return nil, nil, nil
	}

	entries := feed.Items
	if r.MaxItems > 0 && len(entries) > r.MaxItems {
		entries = entries[:r.MaxItems]
	}

	items := make([]model.Item, 0, len(entries))
	var followUps []model.Request

	for _, entry := range entries {
		item, err := r.parseEntry(entry)
		if err != nil {
			slog.Warn("rss spider: skipping entry", slog.String("source", r.SourceName), slog.Any("error", err))
			continue
		}
		items = append(items, item)

		if r.FetchFullContent && item.URL != "" && text.CountRunes(item.Body) < fullContentBodyThreshold {
			req, err := model.NewRequest(item.URL)
			if err != nil {
				continue
			}
			req = req.WithMetadata(map[string]any{
				MetaSource:    r.SourceName,
				MetaFetchFull: true,
			})
			followUps = append(followUps, req)
		}
	}

	return items, followUps, nil
}

func (r *RSS) parseEntry(entry *gofeed.Item) (model.Item, error) {
	if entry.Link == "" {
		return model.Item{}, fmt.Errorf("rss spider: entry missing link")
	}

	body := entryContent(entry)
	if body != "" {
		body = parse.CleanText(body)
	}

	var publishedAt *time.Time
	switch {
	case entry.PublishedParsed != nil:
		publishedAt = entry.PublishedParsed
	case entry.UpdatedParsed != nil:
		publishedAt = entry.UpdatedParsed
	case entry.Published != "":
		publishedAt = parse.Date(entry.Published)
	case entry.Updated != "":
		publishedAt = parse.Date(entry.Updated)
	}

	return model.Item{
		URL:         entry.Link,
		Title:       entry.Title,
		Body:        body,
		Source:      r.SourceName,
		Author:      entryAuthor(entry),
		PublishedAt: publishedAt,
	}, nil
}

// entryContent prefers the full content field, then summary/description.
func entryContent(entry *gofeed.Item) string {
	if entry.Content != "" {
		return entry.Content
	}
	return entry.Description
}

func entryAuthor(entry *gofeed.Item) string {
	if len(entry.Authors) > 0 && entry.Authors[0].Name != "" {
		return entry.Authors[0].Name
	}
	if entry.Author != nil {
		return entry.Author.Name
	}
	return ""
}

// ParseFullContent turns a follow-up article-page response into a
// replacement Item carrying the full page body in place of the short
// feed-supplied summary.
func (r *RSS) ParseFullContent(ctx context.Context, resp model.Response) ([]model.Item, []model.Request, error) {
	body := parse.CleanText(resp.Text())
	title := parse.ExtractFirst(resp.Text(), "h1")

	return []model.Item{{
		URL:    resp.FinalURL,
		Title:  title,
		Body:   body,
		Source: r.SourceName,
	}}, nil, nil
}

var _ FullContentParser = (*RSS)(nil)
