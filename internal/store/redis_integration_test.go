//go:build integration

package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortlink/internal/shortlink"
	"github.com/serroba/shortlink/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRedisAddr() string {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}
	return "localhost:6379"
}

func TestRedisCacheRepositoryIntegration(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr: getRedisAddr(),
	})
	defer client.Close()

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	cleanup := func(code shortlink.Code) {
		client.Del(ctx, "link:"+string(code))
	}

	t.Run("insert warms the cache", func(t *testing.T) {
		cached := store.NewRedisCacheRepository(store.NewMemoryStore(), client, time.Minute)

		link := newLink("rdins01", "rd-tok-1")
		defer cleanup(link.Code)

		require.NoError(t, cached.Insert(ctx, link))

		exists, err := client.Exists(ctx, "link:rdins01").Result()
		require.NoError(t, err)
		assert.Equal(t, int64(1), exists)
	})

	t.Run("get by code is served from cache after the first read", func(t *testing.T) {
		mem := store.NewMemoryStore()
		cached := store.NewRedisCacheRepository(mem, client, time.Minute)

		link := newLink("rdget01", "rd-tok-2")
		defer cleanup(link.Code)

		require.NoError(t, mem.Insert(ctx, link))

		got, err := cached.GetByCode(ctx, link.Code)
		require.NoError(t, err)
		assert.Equal(t, link.TargetURL, got.TargetURL)
		assert.Equal(t, link.Status, got.Status)

		exists, err := client.Exists(ctx, "link:rdget01").Result()
		require.NoError(t, err)
		assert.Equal(t, int64(1), exists)

		// Stale cache is served until invalidated.
		require.NoError(t, mem.UpdateTarget(ctx, link.Code, link.OwnerToken, "https://direct.example.com", time.Now().UTC()))

		got, err = cached.GetByCode(ctx, link.Code)
		require.NoError(t, err)
		assert.Equal(t, link.TargetURL, got.TargetURL)
	})

	t.Run("update invalidates the cached entry", func(t *testing.T) {
		cached := store.NewRedisCacheRepository(store.NewMemoryStore(), client, time.Minute)

		link := newLink("rdupd01", "rd-tok-3")
		defer cleanup(link.Code)

		require.NoError(t, cached.Insert(ctx, link))
		require.NoError(t, cached.UpdateTarget(ctx, link.Code, link.OwnerToken, "https://new.example.com", time.Now().UTC()))

		exists, err := client.Exists(ctx, "link:rdupd01").Result()
		require.NoError(t, err)
		assert.Equal(t, int64(0), exists)

		got, err := cached.GetByCode(ctx, link.Code)
		require.NoError(t, err)
		assert.Equal(t, "https://new.example.com", got.TargetURL)
	})

	t.Run("delete invalidates the cached entry", func(t *testing.T) {
		cached := store.NewRedisCacheRepository(store.NewMemoryStore(), client, time.Minute)

		link := newLink("rddel01", "rd-tok-4")
		defer cleanup(link.Code)

		require.NoError(t, cached.Insert(ctx, link))
		require.NoError(t, cached.MarkDeleted(ctx, link.Code, link.OwnerToken, time.Now().UTC()))

		exists, err := client.Exists(ctx, "link:rddel01").Result()
		require.NoError(t, err)
		assert.Equal(t, int64(0), exists)

		got, err := cached.GetByCode(ctx, link.Code)
		require.NoError(t, err)
		assert.Equal(t, shortlink.StatusDeleted, got.Status)
	})

	t.Run("failed mutation leaves the cache untouched", func(t *testing.T) {
		cached := store.NewRedisCacheRepository(store.NewMemoryStore(), client, time.Minute)

		link := newLink("rdfrb01", "rd-tok-5")
		defer cleanup(link.Code)

		require.NoError(t, cached.Insert(ctx, link))

		err := cached.UpdateTarget(ctx, link.Code, "wrong", "https://new.example.com", time.Now().UTC())
		assert.ErrorIs(t, err, shortlink.ErrForbidden)

		exists, err := client.Exists(ctx, "link:rdfrb01").Result()
		require.NoError(t, err)
		assert.Equal(t, int64(1), exists)
	})

	t.Run("owner token reads bypass the cache", func(t *testing.T) {
		mem := store.NewMemoryStore()
		cached := store.NewRedisCacheRepository(mem, client, time.Minute)

		link := newLink("rdtok01", "rd-tok-6")
		defer cleanup(link.Code)

		require.NoError(t, cached.Insert(ctx, link))

		got, err := cached.GetByOwnerToken(ctx, link.OwnerToken)
		require.NoError(t, err)
		assert.Equal(t, link.Code, got.Code)
	})
}
