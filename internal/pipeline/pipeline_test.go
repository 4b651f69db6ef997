package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catchup-feed/sitecrawler/internal/domain/entity"
	"github.com/catchup-feed/sitecrawler/internal/domain/model"
)

type fakeObjectStore struct {
	putErr    error
	deleteErr error
	puts      []string
	deletes   []string
}

func (f *fakeObjectStore) Put(_ context.Context, objectName string, _ []byte) error {
	f.puts = append(f.puts, objectName)
	return f.putErr
}

func (f *fakeObjectStore) Delete(_ context.Context, objectName string) error {
	f.deletes = append(f.deletes, objectName)
	return f.deleteErr
}

type fakeContentRepo struct {
	existing  map[string]bool
	createErr error
	created   []*entity.ContentRecord
}

func newFakeContentRepo() *fakeContentRepo {
	return &fakeContentRepo{existing: make(map[string]bool)}
}

func (f *fakeContentRepo) ExistsByURL(_ context.Context, url string) (bool, error) {
	return f.existing[url], nil
}

func (f *fakeContentRepo) Create(_ context.Context, record *entity.ContentRecord) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, record)
	f.existing[record.URL] = true
	return nil
}

func (f *fakeContentRepo) Get(context.Context, int64) (*entity.ContentRecord, error) { return nil, nil }
func (f *fakeContentRepo) List(context.Context, string, int, int) ([]*entity.ContentRecord, error) {
	return nil, nil
}
func (f *fakeContentRepo) Count(context.Context, string) (int64, error) { return 0, nil }

func TestPipeline_ProcessItem_NewlyStored(t *testing.T) {
	objects := &fakeObjectStore{}
	content := newFakeContentRepo()
	p := New(objects, content)

	item := model.Item{URL: "https://example.com/a", Title: "A", Body: "body", Source: "example"}
	stored, err := p.ProcessItem(context.Background(), item)
	require.NoError(t, err)
	assert.True(t, stored)
	require.Len(t, content.created, 1)
	assert.Equal(t, "example/"+content.created[0].ContentUUID+".txt", content.created[0].BodyRef)
	assert.Equal(t, []string{content.created[0].BodyRef}, objects.puts)
}

func TestPipeline_ProcessItem_DuplicateURLSkipped(t *testing.T) {
	objects := &fakeObjectStore{}
	content := newFakeContentRepo()
	content.existing["https://example.com/a"] = true
	p := New(objects, content)

	stored, err := p.ProcessItem(context.Background(), model.Item{URL: "https://example.com/a", Source: "example"})
	require.NoError(t, err)
	assert.False(t, stored)
	assert.Empty(t, objects.puts)
}

func TestPipeline_ProcessItem_ObjectPutFailsNoDBRow(t *testing.T) {
	objects := &fakeObjectStore{putErr: errors.New("storage error")}
	content := newFakeContentRepo()
	p := New(objects, content)

	stored, err := p.ProcessItem(context.Background(), model.Item{URL: "https://example.com/a", Source: "example"})
	require.NoError(t, err)
	assert.False(t, stored)
	assert.Empty(t, content.created)
}

func TestPipeline_ProcessItem_DBInsertFailsRollsBackObject(t *testing.T) {
	objects := &fakeObjectStore{}
	content := newFakeContentRepo()
	content.createErr = errors.New("db error")
	p := New(objects, content)

	stored, err := p.ProcessItem(context.Background(), model.Item{URL: "https://example.com/a", Source: "example"})
	require.NoError(t, err)
	assert.False(t, stored)
	require.Len(t, objects.puts, 1)
	assert.Equal(t, objects.puts, objects.deletes)
}

func TestPipeline_ProcessItem_DuplicateRaceRollsBackObject(t *testing.T) {
	objects := &fakeObjectStore{}
	content := newFakeContentRepo()
	content.createErr = entity.ErrDuplicateURL
	p := New(objects, content)

	stored, err := p.ProcessItem(context.Background(), model.Item{URL: "https://example.com/a", Source: "example"})
	require.NoError(t, err)
	assert.False(t, stored)
	assert.Len(t, objects.deletes, 1)
}

func TestPipeline_ProcessItems_CountsOnlyNewlyStored(t *testing.T) {
	objects := &fakeObjectStore{}
	content := newFakeContentRepo()
	p := New(objects, content)

	items := []model.Item{
		{URL: "https://example.com/a", Source: "example"},
		{URL: "https://example.com/b", Source: "example"},
		{URL: "https://example.com/a", Source: "example"}, // duplicate of first
	}
	count, err := p.ProcessItems(context.Background(), items)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
