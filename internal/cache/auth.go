package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gltch/gltch-cloud/internal/model"
)

const (
	// authCachePrefix is the Redis key prefix for verified-token cache entries.
	authCachePrefix = "auth:token:"
	// authCacheTTL is the time-to-live for cached identities. Kept short so
	// revoked tokens age out quickly.
	authCacheTTL = 5 * time.Minute
)

// GetAuthContext retrieves a cached identity by token hash.
// Returns nil on a cache miss; misses are not errors.
func (c *Cache) GetAuthContext(ctx context.Context, tokenHash string) (*model.AuthContext, error) {
	key := authCachePrefix + tokenHash

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// Cache miss is not an error
		return nil, nil //nolint:nilerr
	}

	var cached model.AuthContext
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &cached, nil
}

// SetAuthContext caches a verified identity under the token hash.
func (c *Cache) SetAuthContext(ctx context.Context, tokenHash string, auth *model.AuthContext) error {
	data, err := json.Marshal(auth)
	if err != nil {
		return fmt.Errorf("marshal auth context: %w", err)
	}

	return c.client.Set(ctx, authCachePrefix+tokenHash, data, authCacheTTL).Err()
}

// DeleteAuthContext removes a cached identity.
func (c *Cache) DeleteAuthContext(ctx context.Context, tokenHash string) error {
	return c.client.Del(ctx, authCachePrefix+tokenHash).Err()
}
