// internal/search/adapter_test.go
package search

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"costli-agents/internal/common/config"
	"costli-agents/internal/common/database"
	"costli-agents/internal/common/logger"
	"costli-agents/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapter_ShapesResults(t *testing.T) {
	engine := &stubEngine{name: "stub", results: []models.SearchResult{
		{Title: "no url"},
		{Title: "a", URL: "https://a", Snippet: strings.Repeat("é", 20)},
		{Title: "b", URL: "https://b"},
		{Title: "c", URL: "https://c"},
	}}
	a := NewAdapter(engine, AdapterOptions{SnippetChars: 10}, logger.NewTestLogger(t))

	got := a.Search(context.Background(), "q", 2)
	require.Len(t, got, 2)
	assert.Equal(t, "https://a", got[0].URL)
	assert.Equal(t, strings.Repeat("é", 10), got[0].Snippet)
	assert.Equal(t, "https://b", got[1].URL)
}

func TestAdapter_DefaultMax(t *testing.T) {
	var results []models.SearchResult
	for i := 0; i < 8; i++ {
		results = append(results, models.SearchResult{URL: "https://x/" + string(rune('a'+i))})
	}
	a := NewAdapter(&stubEngine{name: "stub", results: results}, AdapterOptions{}, logger.NewNoOpLogger())
	assert.Len(t, a.Search(context.Background(), "q", 0), 5)
}

func TestAdapter_AbsorbsFailures(t *testing.T) {
	a := NewAdapter(&stubEngine{name: "stub", err: errors.New("tavily http 500")}, AdapterOptions{}, logger.NewTestLogger(t))
	got := a.Search(context.Background(), "q", 5)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

type slowEngine struct{}

func (slowEngine) Name() string { return "slow" }

func (slowEngine) Search(ctx context.Context, _ string, _ int) ([]models.SearchResult, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestAdapter_Timeout(t *testing.T) {
	a := NewAdapter(slowEngine{}, AdapterOptions{Timeout: 20 * time.Millisecond}, logger.NewNoOpLogger())
	start := time.Now()
	assert.Empty(t, a.Search(context.Background(), "q", 5))
	assert.Less(t, time.Since(start), time.Second)
}

func TestAdapter_Disabled(t *testing.T) {
	a := NewAdapter(nil, AdapterOptions{}, logger.NewNoOpLogger())
	assert.False(t, a.Enabled())
	assert.Empty(t, a.Search(context.Background(), "q", 5))

	built := Build(config.SearchConfig{Provider: "tavily"}, Deps{}, logger.NewNoOpLogger())
	assert.False(t, built.Enabled())
}

func TestBuild_WithFallbackAndCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := database.NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)

	cfg := config.SearchConfig{Provider: "tavily", Fallback: "elasticsearch", CacheTTL: 60000}
	cfg.Tavily.APIKey = "k"
	a := Build(cfg, Deps{Elasticsearch: &fakeHits{}, Redis: rdb}, logger.NewNoOpLogger())

	require.True(t, a.Enabled())
	assert.Equal(t, "tavily+elasticsearch", a.engine.Name())
}

func TestCache_ServesRepeatFromRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := database.NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)

	engine := &stubEngine{name: "stub", results: []models.SearchResult{{Title: "a", URL: "https://a"}}}
	c := Cache(engine, rdb, time.Minute, logger.NewTestLogger(t))

	first, err := c.Search(context.Background(), "aws nat gateway cost", 5)
	require.NoError(t, err)
	second, err := c.Search(context.Background(), "aws nat gateway cost", 5)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&engine.calls))
	assert.True(t, mr.Exists(CacheKey("aws nat gateway cost", 5)))

	_, err = c.Search(context.Background(), "aws nat gateway cost", 3)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&engine.calls))
}

func TestCache_ErrorFallsThrough(t *testing.T) {
	db, mock := redismock.NewClientMock()
	rdb := database.NewRedisFromClient(db)

	key := CacheKey("q", 5)
	mock.ExpectGet(key).SetErr(errors.New("connection refused"))

	engine := &stubEngine{name: "stub", results: []models.SearchResult{{Title: "a", URL: "https://a"}}}
	c := Cache(engine, rdb, time.Minute, logger.NewTestLogger(t))

	got, err := c.Search(context.Background(), "q", 5)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, int32(1), atomic.LoadInt32(&engine.calls))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheKey(t *testing.T) {
	k := CacheKey("q", 5)
	assert.True(t, strings.HasPrefix(k, "search:"))
	assert.Len(t, k, len("search:")+64)
	assert.NotEqual(t, k, CacheKey("q", 4))
}
