package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newTestManager(t *testing.T) (*CacheManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheManager(client, time.Minute), mr
}

func TestCacheOrExecute_FetchesOnceThenHits(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	calls := 0
	fetch := func() ([]cachedItem, error) {
		calls++
		return []cachedItem{{ID: "1", Name: "Algebra"}}, nil
	}

	first, err := CacheOrExecute(ctx, cm.Test, "list:a", fetch)
	require.NoError(t, err)
	second, err := CacheOrExecute(ctx, cm.Test, "list:a", fetch)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
	assert.True(t, mr.Exists("tests:list:a"))
}

func TestCacheOrExecute_FetchErrorIsNotCached(t *testing.T) {
	cm, mr := newTestManager(t)
	boom := errors.New("boom")

	_, err := CacheOrExecute(context.Background(), cm.Test, "id:x", func() (*cachedItem, error) {
		return nil, boom
	})

	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("tests:id:x"))
}

func TestCacheOrExecute_WithoutRedis(t *testing.T) {
	cm := NewCacheManager(nil, time.Minute)

	calls := 0
	for i := 0; i < 2; i++ {
		v, err := CacheOrExecute(context.Background(), cm.Test, "k", func() (int, error) {
			calls++
			return 42, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	}
	assert.Equal(t, 2, calls)
	assert.ErrorIs(t, cm.HealthCheck(context.Background()), ErrCacheNotAvailable)
}

func TestInvalidateTestCache(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, cm.Test.Set(ctx, "id:1", cachedItem{ID: "1"}, 0))
	require.NoError(t, cm.Test.Set(ctx, "list:p0", []cachedItem{{ID: "1"}}, 0))
	require.NoError(t, cm.Test.Set(ctx, "list:p1", []cachedItem{}, 0))
	require.NoError(t, cm.Catalog.Set(ctx, "subjects:list:p0", []cachedItem{}, 0))

	InvalidateTestCache(ctx, cm, "1")

	assert.False(t, mr.Exists("tests:id:1"))
	assert.False(t, mr.Exists("tests:list:p0"))
	assert.False(t, mr.Exists("tests:list:p1"))
	assert.True(t, mr.Exists("catalog:subjects:list:p0"))

	InvalidateCatalogCache(ctx, cm, "subjects")
	assert.False(t, mr.Exists("catalog:subjects:list:p0"))
}

func TestCacheHelper_TTL(t *testing.T) {
	cm, mr := newTestManager(t)

	require.NoError(t, cm.Test.Set(context.Background(), "id:ttl", cachedItem{ID: "ttl"}, 0))
	assert.Equal(t, time.Minute, mr.TTL("tests:id:ttl"))

	mr.FastForward(2 * time.Minute)

	var out cachedItem
	assert.ErrorIs(t, cm.Test.Get(context.Background(), "id:ttl", &out), ErrCacheNotFound)
}

func TestInvalidateAllTests(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, cm.Test.Set(ctx, "id:1", cachedItem{ID: "1"}, 0))
	require.NoError(t, cm.Test.Set(ctx, "id:2", cachedItem{ID: "2"}, 0))
	require.NoError(t, cm.Test.Set(ctx, "list:p0", []cachedItem{{ID: "1"}, {ID: "2"}}, 0))
	require.NoError(t, cm.Catalog.Set(ctx, "classes:id:c1", cachedItem{ID: "c1"}, 0))

	InvalidateAllTests(ctx, cm)

	assert.False(t, mr.Exists("tests:id:1"))
	assert.False(t, mr.Exists("tests:id:2"))
	assert.False(t, mr.Exists("tests:list:p0"))
	assert.True(t, mr.Exists("catalog:classes:id:c1"))
}
