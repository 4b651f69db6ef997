// Package content implements the ingested-content inspection and direct
// ingestion endpoints: listing stored items with pagination/source
// filtering, fetching one item, and creating an item outside the crawl
// pipeline.
package content

import (
	"context"
	"time"

	"github.com/catchup-feed/sitecrawler/internal/domain/entity"
)

const (
	defaultSkip  = 0
	defaultLimit = 50
	minLimit     = 1
	maxLimit     = 1000
)

// Repository is the subset of repository.ContentRepository these handlers
// depend on, declared at the consumer so tests can supply a fake store.
type Repository interface {
	ExistsByURL(ctx context.Context, url string) (bool, error)
	Create(ctx context.Context, record *entity.ContentRecord) error
	Get(ctx context.Context, id int64) (*entity.ContentRecord, error)
	List(ctx context.Context, source string, offset, limit int) ([]*entity.ContentRecord, error)
	Count(ctx context.Context, source string) (int64, error)
}

// DTO mirrors entity.ContentRecord for JSON responses.
type DTO struct {
	ID          int64  `json:"id"`
	ContentUUID string `json:"content_uuid"`
	Source      string `json:"source"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Author      string `json:"author,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`
	CreatedAt   string `json:"created_at"`
	BodyRef     string `json:"body_ref"`
}

func toDTO(r *entity.ContentRecord) DTO {
	dto := DTO{
		ID:          r.ID,
		ContentUUID: r.ContentUUID,
		Source:      r.Source,
		URL:         r.URL,
		Title:       r.Title,
		Author:      r.Author,
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
		BodyRef:     r.BodyRef,
	}
	if r.PublishedAt != nil {
		dto.PublishedAt = r.PublishedAt.Format(time.RFC3339)
	}
	return dto
}

// clampLimit applies the route's default/bounds to a raw query value.
func clampLimit(raw int, rawProvided bool) int {
	if !rawProvided {
		return defaultLimit
	}
	if raw < minLimit {
		return minLimit
	}
	if raw > maxLimit {
		return maxLimit
	}
	return raw
}

func clampSkip(raw int, rawProvided bool) int {
	if !rawProvided || raw < 0 {
		return defaultSkip
	}
	return raw
}
