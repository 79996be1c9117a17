package data

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestCacheRepo connects to a local Redis instance, skipping when none is
// reachable. Set BLACKBOX_TEST_REDIS_URI to point at a non-default instance.
func newTestCacheRepo(t *testing.T) *LookupCacheRepo {
	t.Helper()

	uri := os.Getenv("BLACKBOX_TEST_REDIS_URI")
	if uri == "" {
		uri = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: uri})
	t.Cleanup(func() { _ = client.Close() })

	repo := NewLookupCacheRepo(client)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := repo.Health(ctx); err != nil {
		t.Skip("Test redis not available:", err)
	}
	return repo
}

func TestLookupCacheRepo_SetGet(t *testing.T) {
	repo := newTestCacheRepo(t)
	ctx := context.Background()

	key := "lookup:test:" + t.Name()
	require.NoError(t, repo.Set(ctx, key, []byte(`{"found":1}`), time.Minute))

	got, err := repo.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"found":1}`), got)
}

func TestLookupCacheRepo_GetMiss(t *testing.T) {
	repo := newTestCacheRepo(t)

	got, err := repo.Get(context.Background(), "lookup:test:never-written")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLookupCacheRepo_EmptyKey(t *testing.T) {
	repo := newTestCacheRepo(t)
	ctx := context.Background()

	_, err := repo.Get(ctx, "")
	require.Error(t, err)
	require.Error(t, repo.Set(ctx, "", []byte("x"), time.Minute))
}
