// internal/common/database/database_test.go
package database

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"costli-agents/internal/common/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *RedisClient) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedis_JSONRoundTripAndTTL(t *testing.T) {
	mr, client := newMiniRedis(t)
	ctx := context.Background()

	require.NoError(t, client.Ping(ctx))

	type entry struct {
		Title string `json:"title"`
	}
	require.NoError(t, client.SetJSON(ctx, "search:abc", []entry{{Title: "EC2 pricing"}}, time.Minute))

	var got []entry
	require.NoError(t, client.GetJSON(ctx, "search:abc", &got))
	assert.Equal(t, "EC2 pricing", got[0].Title)

	mr.FastForward(2 * time.Minute)
	assert.ErrorIs(t, client.GetJSON(ctx, "search:abc", &got), ErrCacheMiss)
}

func TestRedis_Publish(t *testing.T) {
	_, client := newMiniRedis(t)
	n, err := client.Publish(context.Background(), "costli:progress:req-1", "Synthesizing recommendations...")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestRedis_ErrorsSurface(t *testing.T) {
	db, mock := redismock.NewClientMock()
	client := NewRedisFromClient(db)
	ctx := context.Background()

	mock.ExpectGet("search:bad").SetErr(errors.New("connection refused"))
	var dst map[string]string
	err := client.GetJSON(ctx, "search:bad", &dst)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)

	mock.ExpectPublish("chan", "msg").SetErr(errors.New("readonly"))
	_, err = client.Publish(ctx, "chan", "msg")
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewRedis_RequiresAddress(t *testing.T) {
	_, err := NewRedis(config.RedisConfig{})
	assert.Error(t, err)
}

func newFakeElastic(t *testing.T, handler http.HandlerFunc) *ElasticsearchClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := NewElasticsearch(config.ElasticsearchConfig{URL: srv.URL})
	require.NoError(t, err)
	return client
}

func TestElasticsearch_Search(t *testing.T) {
	client := newFakeElastic(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cost-knowledge/_search", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body, "query")

		_, _ = w.Write([]byte(`{"hits":{"hits":[{"_id":"1","_score":2.5,"_source":{"title":"S3 tiers","url":"https://kb/s3"}}]}}`))
	})

	hits, err := client.Search(context.Background(), "cost-knowledge", map[string]interface{}{
		"query": map[string]interface{}{"match_all": map[string]interface{}{}},
	}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "1", hits[0].ID)
	assert.JSONEq(t, `{"title":"S3 tiers","url":"https://kb/s3"}`, string(hits[0].Source))
}

func TestElasticsearch_SearchError(t *testing.T) {
	client := newFakeElastic(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"index_not_found_exception"}`))
	})

	_, err := client.Search(context.Background(), "missing", map[string]interface{}{}, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
