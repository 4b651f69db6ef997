package postgres_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catchup-feed/sitecrawler/internal/domain/entity"
	pg "github.com/catchup-feed/sitecrawler/internal/infra/adapter/persistence/postgres"
)

func contentRow(c *entity.ContentRecord) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "content_uuid", "source", "url", "title", "author", "published_at", "created_at", "body_ref",
	}).AddRow(
		c.ID, c.ContentUUID, c.Source, c.URL, c.Title, c.Author, c.PublishedAt, c.CreatedAt, c.BodyRef,
	)
}

func TestContentRepo_ExistsByURL(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("https://example.com/a").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	repo := pg.NewContentRepo(db)
	exists, err := repo.ExistsByURL(context.Background(), "https://example.com/a")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentRepo_Create_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO contents")).
		WithArgs("uuid-1", "example", "https://example.com/a", "Title", "Author", sqlmock.AnyArg(), "example/uuid-1.txt").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), now))

	repo := pg.NewContentRepo(db)
	record := &entity.ContentRecord{
		ContentUUID: "uuid-1",
		Source:      "example",
		URL:         "https://example.com/a",
		Title:       "Title",
		Author:      "Author",
		BodyRef:     "example/uuid-1.txt",
	}
	err = repo.Create(context.Background(), record)
	require.NoError(t, err)
	assert.Equal(t, int64(1), record.ID)
	assert.Equal(t, now, record.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentRepo_Create_DuplicateURL(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO contents")).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	repo := pg.NewContentRepo(db)
	record := &entity.ContentRecord{
		ContentUUID: "uuid-1",
		Source:      "example",
		URL:         "https://example.com/a",
		Title:       "Title",
		BodyRef:     "example/uuid-1.txt",
	}
	err = repo.Create(context.Background(), record)
	assert.ErrorIs(t, err, entity.ErrDuplicateURL)
}

func TestContentRepo_Get_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("FROM contents")).
		WithArgs(int64(42)).
		WillReturnError(sql.ErrNoRows)

	repo := pg.NewContentRepo(db)
	got, err := repo.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestContentRepo_List_FilteredBySource(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE source = $1")).
		WithArgs("example", 10, 0).
		WillReturnRows(contentRow(&entity.ContentRecord{
			ID: 1, ContentUUID: "u", Source: "example", URL: "https://x", Title: "t",
			CreatedAt: now, BodyRef: "example/u.txt",
		}))

	repo := pg.NewContentRepo(db)
	got, err := repo.List(context.Background(), "example", 0, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "example", got[0].Source)
}

func TestContentRepo_Count(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM contents")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))

	repo := pg.NewContentRepo(db)
	count, err := repo.Count(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
