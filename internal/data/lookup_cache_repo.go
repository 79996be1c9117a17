package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LookupCacheRepo implements the CacheRepository interface using Redis. It
// caches responses from external hash-intelligence services so repeated
// lookups for the same hash do not hit the provider again within the TTL.
type LookupCacheRepo struct {
	client redis.UniversalClient
}

// NewLookupCacheRepo creates a new LookupCacheRepo with the given Redis client.
func NewLookupCacheRepo(client redis.UniversalClient) *LookupCacheRepo {
	return &LookupCacheRepo{client: client}
}

// Set stores a value in Redis with the given key and TTL.
func (r *LookupCacheRepo) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}

	return r.client.Set(ctx, key, value, ttl).Err()
}

// Get retrieves a value from Redis by key. A missing key is not an error.
func (r *LookupCacheRepo) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errors.New("key cannot be empty")
	}

	result, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	return []byte(result), nil
}

// Health checks the health of the Redis connection.
func (r *LookupCacheRepo) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
