package renderer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catchup-feed/sitecrawler/internal/domain/model"
)

func TestNoop_RenderReturnsNilNil(t *testing.T) {
	var r Noop
	req, err := model.NewRequest("https://example.com")
	require.NoError(t, err)

	resp, err := r.Render(context.Background(), req)
	assert.NoError(t, err)
	assert.Nil(t, resp)
}

func TestNoop_CloseIsNoop(t *testing.T) {
	var r Noop
	assert.NoError(t, r.Close())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 30*time.Second, cfg.NavigationTimeout)
	assert.Equal(t, 1, cfg.PoolSize)
	assert.NotEmpty(t, cfg.UserAgent)
}

func TestNew_AppliesDefaultsForZeroValues(t *testing.T) {
	b := New(Config{})
	assert.Equal(t, 30*time.Second, b.cfg.NavigationTimeout)
	assert.Equal(t, 1, b.cfg.PoolSize)
}

func TestBrowser_CloseBeforeStartIsSafe(t *testing.T) {
	b := New(DefaultConfig())
	assert.NoError(t, b.Close())
}
