// Package pipeline implements the storage pipeline: URL-dedup, object-store
// body upload, and relational metadata insert, in the write order that
// guarantees every relational row references an existing object.
package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/catchup-feed/sitecrawler/internal/domain/entity"
	"github.com/catchup-feed/sitecrawler/internal/domain/model"
	"github.com/catchup-feed/sitecrawler/internal/infra/objectstore"
	"github.com/catchup-feed/sitecrawler/internal/repository"
)

// ObjectStore is the subset of objectstore.Store the pipeline depends on.
// Declared here, at the consumer, so tests can supply a fake without a
// live MinIO endpoint.
type ObjectStore interface {
	Put(ctx context.Context, objectName string, body []byte) error
	Delete(ctx context.Context, objectName string) error
}

// Pipeline turns spider-emitted items into stored content. One Pipeline is
// shared across an engine run.
type Pipeline struct {
	objects ObjectStore
	content repository.ContentRepository
}

func New(objects ObjectStore, content repository.ContentRepository) *Pipeline {
	return &Pipeline{objects: objects, content: content}
}

// ProcessItem stores one item, returning true only if it was newly stored.
// A duplicate URL, an object-store failure, or a relational-insert failure
// all return (false, nil): none of these abort a batch, matching the
// contract that a single item's failure never fails the whole run.
func (p *Pipeline) ProcessItem(ctx context.Context, item model.Item) (bool, error) {
	exists, err := p.content.ExistsByURL(ctx, item.URL)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	contentUUID := uuid.NewString()
	bodyRef := objectstore.ObjectName(item.Source, contentUUID)

	if err := p.objects.Put(ctx, bodyRef, []byte(item.Body)); err != nil {
		slog.Error("pipeline: object store put failed", slog.String("url", item.URL), slog.Any("error", err))
		return false, nil
	}

	record := &entity.ContentRecord{
		ContentUUID: contentUUID,
		Source:      item.Source,
		URL:         item.URL,
		Title:       item.Title,
		Author:      item.Author,
		PublishedAt: item.PublishedAt,
		BodyRef:     bodyRef,
	}

	if err := p.content.Create(ctx, record); err != nil {
		if !errors.Is(err, entity.ErrDuplicateURL) {
			slog.Error("pipeline: content insert failed", slog.String("url", item.URL), slog.Any("error", err))
		}
		if delErr := p.objects.Delete(ctx, bodyRef); delErr != nil {
			slog.Warn("pipeline: rollback object delete failed",
				slog.String("body_ref", bodyRef), slog.Any("error", delErr))
		}
		return false, nil
	}

	return true, nil
}

// ProcessItems stores each item in turn and returns the count newly
// stored. A single item's failure is logged by ProcessItem and does not
// stop the batch.
func (p *Pipeline) ProcessItems(ctx context.Context, items []model.Item) (int, error) {
	stored := 0
	for _, item := range items {
		ok, err := p.ProcessItem(ctx, item)
		if err != nil {
			return stored, err
		}
		if ok {
			stored++
		}
	}
	return stored, nil
}
