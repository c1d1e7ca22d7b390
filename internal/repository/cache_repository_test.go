package repository

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/sonarsarthak/EDUManager/pkg/errors"
)

type cachedRun struct {
	RunID    string `json:"run_id"`
	Sessions int    `json:"sessions"`
}

func newCacheRepo(t *testing.T) (*CacheRepository, *miniredis.Miniredis) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	repo := NewCacheRepository(client, "edumanager", zap.NewNop())
	t.Cleanup(func() { _ = repo.Close() })
	return repo, srv
}

func TestCacheRepositorySetGet(t *testing.T) {
	repo, srv := newCacheRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "run:1", cachedRun{RunID: "1", Sessions: 30}, time.Minute))
	assert.True(t, srv.Exists("edumanager:run:1"))

	var got cachedRun
	require.NoError(t, repo.Get(ctx, "run:1", &got))
	assert.Equal(t, cachedRun{RunID: "1", Sessions: 30}, got)

	srv.FastForward(2 * time.Minute)
	require.ErrorIs(t, repo.Get(ctx, "run:1", &got), appErrors.ErrCacheMiss)
}

func TestCacheRepositoryGetRejectsCorruptPayload(t *testing.T) {
	repo, srv := newCacheRepo(t)
	require.NoError(t, srv.Set("edumanager:run:9", "{not json"))

	var got cachedRun
	err := repo.Get(context.Background(), "run:9", &got)
	require.Error(t, err)
	assert.NotErrorIs(t, err, appErrors.ErrCacheMiss)
}

func TestCacheRepositoryDeleteByPatternStaysInNamespace(t *testing.T) {
	repo, srv := newCacheRepo(t)
	ctx := context.Background()

	for i := 0; i < scanBatch+5; i++ {
		require.NoError(t, srv.Set("edumanager:run:"+strconv.Itoa(i), "{}"))
	}
	require.NoError(t, srv.Set("other:run:1", "{}"))
	require.NoError(t, repo.Set(ctx, "grid", cachedRun{RunID: "g"}, time.Minute))

	require.NoError(t, repo.DeleteByPattern(ctx, "run:*"))
	assert.Len(t, srv.Keys(), 2)
	assert.True(t, srv.Exists("other:run:1"))
	assert.True(t, srv.Exists("edumanager:grid"))
}

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, "", nil)
	var got cachedRun
	require.ErrorIs(t, repo.Get(context.Background(), "k", &got), appErrors.ErrCacheMiss)
	require.NoError(t, repo.Set(context.Background(), "k", got, time.Minute))
	require.NoError(t, repo.DeleteByPattern(context.Background(), "*"))
	require.NoError(t, repo.Close())
}
