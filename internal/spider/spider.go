// Package spider defines the pluggable per-site crawl contract and its
// "rss" implementation.
package spider

import (
	"context"

	"github.com/catchup-feed/sitecrawler/internal/domain/model"
)

// Spider translates a site's feed/page structure into requests and items.
// Seeds must be deterministic and finite; Parse must never abort on a
// single malformed entry, logging and skipping it instead.
type Spider interface {
	Name() string
	Seeds() []model.Request
	Parse(ctx context.Context, resp model.Response) ([]model.Item, []model.Request, error)
}

// FullContentParser is implemented by spiders that know how to turn a
// follow-up "fetch_full" response into a replacement item. The engine
// type-asserts for this interface rather than requiring every Spider to
// implement it, since most spiders have no follow-up stage.
type FullContentParser interface {
	ParseFullContent(ctx context.Context, resp model.Response) ([]model.Item, []model.Request, error)
}

// metadata keys shared between spiders and the engine's dispatch logic.
const (
	MetaIsFeed    = "is_feed"
	MetaSource    = "source"
	MetaFetchFull = "fetch_full"
)
