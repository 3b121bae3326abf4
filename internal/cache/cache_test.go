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

type category struct {
	Key   string `json:"key"`
	Title string `json:"title"`
}

func setupRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client), mr
}

func stores(t *testing.T) map[string]Store {
	redisStore, _ := setupRedisStore(t)
	return map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  redisStore,
	}
}

func TestStore_GetSetDelete(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			var miss category
			assert.ErrorIs(t, store.Get(ctx, "catalog:category:nfl", &miss), ErrCacheMiss)

			require.NoError(t, store.Set(ctx, "catalog:category:nfl", category{Key: "nfl", Title: "NFL"}, time.Minute))

			var got category
			require.NoError(t, store.Get(ctx, "catalog:category:nfl", &got))
			assert.Equal(t, "NFL", got.Title)

			require.NoError(t, store.Delete(ctx, "catalog:category:nfl"))
			assert.ErrorIs(t, store.Get(ctx, "catalog:category:nfl", &got), ErrCacheMiss)
		})
	}
}

func TestStore_InvalidatePrefix(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.Set(ctx, "catalog:categories", []category{{Key: "nfl"}}, time.Minute))
			require.NoError(t, store.Set(ctx, "catalog:product:1", category{Key: "p"}, time.Minute))
			require.NoError(t, store.Set(ctx, "other:key", category{Key: "x"}, time.Minute))

			require.NoError(t, store.InvalidatePrefix(ctx, "catalog:"))

			var dest category
			var list []category
			assert.ErrorIs(t, store.Get(ctx, "catalog:categories", &list), ErrCacheMiss)
			assert.ErrorIs(t, store.Get(ctx, "catalog:product:1", &dest), ErrCacheMiss)
			assert.NoError(t, store.Get(ctx, "other:key", &dest))
		})
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", category{Key: "nfl"}, time.Minute))

	require.NoError(t, store.Set(ctx, "long", category{Key: "nba"}, time.Hour))

	now = now.Add(2 * time.Minute)
	var dest category
	assert.ErrorIs(t, store.Get(ctx, "k", &dest), ErrCacheMiss)

	// the expired entry is evicted on read; live entries stay
	assert.NotContains(t, store.items, "k")
	assert.Contains(t, store.items, "long")
	require.NoError(t, store.Get(ctx, "long", &dest))
	assert.Equal(t, "nba", dest.Key)
}

func TestRedisStore_SetAppliesTTL(t *testing.T) {
	store, mr := setupRedisStore(t)

	require.NoError(t, store.Set(context.Background(), "catalog:categories", []category{}, 5*time.Minute))
	assert.Equal(t, 5*time.Minute, mr.TTL("catalog:categories"))
}

func TestGetOrLoad_PopulatesThenHits(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	calls := 0
	load := func() ([]category, error) {
		calls++
		return []category{{Key: "nfl", Title: "NFL"}}, nil
	}

	first, err := GetOrLoad(ctx, store, "catalog:categories", time.Minute, load)
	require.NoError(t, err)
	second, err := GetOrLoad(ctx, store, "catalog:categories", time.Minute, load)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
}

func TestGetOrLoad_LoaderErrorNotCached(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	boom := errors.New("db down")

	_, err := GetOrLoad(ctx, store, "catalog:categories", time.Minute, func() ([]category, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	var dest []category
	assert.ErrorIs(t, store.Get(ctx, "catalog:categories", &dest), ErrCacheMiss)
}

func TestGetOrLoad_CacheFaultFallsBackToLoader(t *testing.T) {
	store, mr := setupRedisStore(t)
	mr.Close()

	got, err := GetOrLoad(context.Background(), store, "catalog:categories", time.Minute, func() ([]category, error) {
		return []category{{Key: "nba"}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "nba", got[0].Key)
}
