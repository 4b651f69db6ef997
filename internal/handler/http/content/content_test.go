package content

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catchup-feed/sitecrawler/internal/domain/entity"
)

type fakeRepo struct {
	records map[int64]*entity.ContentRecord
	nextID  int64
	createErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: make(map[int64]*entity.ContentRecord)}
}

func (f *fakeRepo) ExistsByURL(ctx context.Context, url string) (bool, error) {
	for _, r := range f.records {
		if r.URL == url {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) Create(ctx context.Context, record *entity.ContentRecord) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	record.ID = f.nextID
	record.CreatedAt = time.Now()
	f.records[record.ID] = record
	return nil
}

func (f *fakeRepo) Get(ctx context.Context, id int64) (*entity.ContentRecord, error) {
	r, ok := f.records[id]
	if !ok {
		return nil, nil
	}
	return r, nil
}

func (f *fakeRepo) List(ctx context.Context, source string, offset, limit int) ([]*entity.ContentRecord, error) {
	var out []*entity.ContentRecord
	for _, r := range f.records {
		if source == "" || r.Source == source {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset >= len(out) {
		return []*entity.ContentRecord{}, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (f *fakeRepo) Count(ctx context.Context, source string) (int64, error) {
	var n int64
	for _, r := range f.records {
		if source == "" || r.Source == source {
			n++
		}
	}
	return n, nil
}

func seedRecord(repo *fakeRepo, source, url string) *entity.ContentRecord {
	rec := &entity.ContentRecord{ContentUUID: "u-" + url, Source: source, URL: url, Title: "t", BodyRef: "b"}
	_ = repo.Create(context.Background(), rec)
	return rec
}

func TestListHandler_DefaultsAndSourceFilter(t *testing.T) {
	repo := newFakeRepo()
	seedRecord(repo, "bbc", "https://bbc.example/1")
	seedRecord(repo, "cnn", "https://cnn.example/1")

	h := ListHandler{Repository: repo}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/contents/?source=bbc", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp ListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Skip)
	assert.Equal(t, defaultLimit, resp.Limit)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "bbc", resp.Items[0].Source)
	assert.EqualValues(t, 1, resp.Total)
}

func TestListHandler_LimitClampedToBounds(t *testing.T) {
	repo := newFakeRepo()
	h := ListHandler{Repository: repo}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/contents/?limit=5000", nil))

	var resp ListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, maxLimit, resp.Limit)
}

func TestGetHandler_NotFound(t *testing.T) {
	repo := newFakeRepo()
	h := GetHandler{Repository: repo}
	req := httptest.NewRequest(http.MethodGet, "/contents/99", nil)
	req.SetPathValue("id", "99")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetHandler_Found(t *testing.T) {
	repo := newFakeRepo()
	rec := seedRecord(repo, "bbc", "https://bbc.example/1")
	h := GetHandler{Repository: repo}
	req := httptest.NewRequest(http.MethodGet, "/contents/1", nil)
	req.SetPathValue("id", "1")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	var dto DTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &dto))
	assert.Equal(t, rec.URL, dto.URL)
}

func TestGetHandler_InvalidID(t *testing.T) {
	h := GetHandler{Repository: newFakeRepo()}
	req := httptest.NewRequest(http.MethodGet, "/contents/abc", nil)
	req.SetPathValue("id", "abc")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateHandler_Success(t *testing.T) {
	repo := newFakeRepo()
	h := CreateHandler{Repository: repo}
	body := `{"content_uuid":"u1","source":"bbc","url":"https://bbc.example/1","title":"t","body_ref":"ref"}`
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/contents/", bytes.NewBufferString(body)))
	require.Equal(t, http.StatusCreated, rr.Code)
}

func TestCreateHandler_InvalidInput(t *testing.T) {
	h := CreateHandler{Repository: newFakeRepo()}
	body := `{"source":"bbc"}`
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/contents/", bytes.NewBufferString(body)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateHandler_DuplicateURLConflict(t *testing.T) {
	repo := newFakeRepo()
	repo.createErr = entity.ErrDuplicateURL
	h := CreateHandler{Repository: repo}
	body := `{"content_uuid":"u1","source":"bbc","url":"https://bbc.example/1","title":"t","body_ref":"ref"}`
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/contents/", bytes.NewBufferString(body)))
	assert.Equal(t, http.StatusConflict, rr.Code)
}
