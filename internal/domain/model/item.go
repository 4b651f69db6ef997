package model

import "time"

// Item is a normalized, storage-ready record emitted by a spider. The URL
// is the dedup key used by the storage pipeline.
type Item struct {
	URL         string
	Title       string
	Body        string
	Source      string
	Author      string
	PublishedAt *time.Time
	Language    string
	Metadata    map[string]any
}

// HasPublishedAt reports whether a published timestamp was set.
func (i Item) HasPublishedAt() bool {
	return i.PublishedAt != nil
}
