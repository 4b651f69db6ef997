package repository

import (
	"context"

	"github.com/catchup-feed/sitecrawler/internal/domain/entity"
)

// ContentRepository persists ContentRecord rows and backs the storage
// pipeline's URL-uniqueness invariant.
type ContentRepository interface {
	// ExistsByURL reports whether a row with this URL is already stored;
	// the pipeline's dedup check before any write.
	ExistsByURL(ctx context.Context, url string) (bool, error)
	// Create inserts a new ContentRecord. ErrDuplicateURL is returned if a
	// concurrent writer raced this one to the same URL.
	Create(ctx context.Context, record *entity.ContentRecord) error
	Get(ctx context.Context, id int64) (*entity.ContentRecord, error)
	// List returns records ordered newest-first, optionally filtered by
	// source, for the management API's pagination contract.
	List(ctx context.Context, source string, offset, limit int) ([]*entity.ContentRecord, error)
	Count(ctx context.Context, source string) (int64, error)
}
