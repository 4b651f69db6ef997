// Package entity defines the persisted and configured domain entities for
// the crawler: ContentRecord (a stored item), SiteConfig (a crawl target),
// and JobRecord (a scheduler-managed run descriptor).
package entity

import "time"

// ContentRecord is the relational-store row for one ingested item. URL is
// unique across the table and is the dedup primary signal; ContentUUID
// names the object-store blob referenced by BodyRef.
type ContentRecord struct {
	ID          int64
	ContentUUID string
	Source      string
	URL         string
	Title       string
	Author      string
	PublishedAt *time.Time
	CreatedAt   time.Time
	BodyRef     string
}

// Validate checks the fields that must be set before a ContentRecord is
// written to the relational store.
func (c *ContentRecord) Validate() error {
	if c.ContentUUID == "" {
		return &ValidationError{Field: "content_uuid", Message: "content_uuid is required"}
	}
	if c.Source == "" {
		return &ValidationError{Field: "source", Message: "source is required"}
	}
	if err := ValidateURL(c.URL); err != nil {
		return err
	}
	if c.BodyRef == "" {
		return &ValidationError{Field: "body_ref", Message: "body_ref is required"}
	}
	return nil
}
