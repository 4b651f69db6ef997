package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/catchup-feed/sitecrawler/internal/domain/entity"
	"github.com/catchup-feed/sitecrawler/internal/repository"
	"github.com/catchup-feed/sitecrawler/internal/resilience/circuitbreaker"
)

// postgresUniqueViolation is the SQLSTATE code the pgx driver reports for a
// unique constraint violation; the race path of the storage pipeline's dedup
// protocol hits this on the contents.url unique index.
const postgresUniqueViolation = "23505"

type ContentRepo struct{ db *circuitbreaker.DBCircuitBreaker }

// NewContentRepo wraps db with a circuit breaker so a struggling postgres
// instance fails fast instead of piling up blocked crawl/API goroutines.
func NewContentRepo(db *sql.DB) repository.ContentRepository {
	return &ContentRepo{db: circuitbreaker.NewDBCircuitBreaker(db)}
}

func (repo *ContentRepo) ExistsByURL(ctx context.Context, url string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM contents WHERE url = $1)`
	var exists bool
	if err := repo.db.QueryRowContext(ctx, query, url).Scan(&exists); err != nil {
		return false, fmt.Errorf("ExistsByURL: %w", err)
	}
	return exists, nil
}

func (repo *ContentRepo) Create(ctx context.Context, record *entity.ContentRecord) error {
	const query = `
INSERT INTO contents
       (content_uuid, source, url, title, author, published_at, created_at, body_ref)
VALUES ($1, $2, $3, $4, $5, $6, now(), $7)
RETURNING id, created_at`
	err := repo.db.QueryRowContext(ctx, query,
		record.ContentUUID, record.Source, record.URL, record.Title,
		record.Author, record.PublishedAt, record.BodyRef,
	).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == postgresUniqueViolation {
			return entity.ErrDuplicateURL
		}
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *ContentRepo) Get(ctx context.Context, id int64) (*entity.ContentRecord, error) {
	const query = `
SELECT id, content_uuid, source, url, title, author, published_at, created_at, body_ref
FROM contents
WHERE id = $1`
	var record entity.ContentRecord
	err := repo.db.QueryRowContext(ctx, query, id).Scan(
		&record.ID, &record.ContentUUID, &record.Source, &record.URL, &record.Title,
		&record.Author, &record.PublishedAt, &record.CreatedAt, &record.BodyRef,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &record, nil
}

func (repo *ContentRepo) List(ctx context.Context, source string, offset, limit int) ([]*entity.ContentRecord, error) {
	var rows *sql.Rows
	var err error
	if source == "" {
		const query = `
SELECT id, content_uuid, source, url, title, author, published_at, created_at, body_ref
FROM contents
ORDER BY created_at DESC
LIMIT $1 OFFSET $2`
		rows, err = repo.db.QueryContext(ctx, query, limit, offset)
	} else {
		const query = `
SELECT id, content_uuid, source, url, title, author, published_at, created_at, body_ref
FROM contents
WHERE source = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
		rows, err = repo.db.QueryContext(ctx, query, source, limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]*entity.ContentRecord, 0, limit)
	for rows.Next() {
		var record entity.ContentRecord
		if err := rows.Scan(&record.ID, &record.ContentUUID, &record.Source, &record.URL,
			&record.Title, &record.Author, &record.PublishedAt, &record.CreatedAt, &record.BodyRef); err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		records = append(records, &record)
	}
	return records, rows.Err()
}

func (repo *ContentRepo) Count(ctx context.Context, source string) (int64, error) {
	var count int64
	var err error
	if source == "" {
		err = repo.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contents`).Scan(&count)
	} else {
		err = repo.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contents WHERE source = $1`, source).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return count, nil
}
