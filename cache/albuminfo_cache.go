package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// albumInfoTTL bounds staleness of third-party metadata.
const albumInfoTTL = 24 * time.Hour

// AlbumInfoCache stores third-party album metadata lookups keyed by
// artist and title. All operations degrade to cache misses when Redis
// is unavailable.
type AlbumInfoCache struct{}

// NewAlbumInfoCache creates an album info cache backed by the shared
// Redis client.
func NewAlbumInfoCache() *AlbumInfoCache {
	return &AlbumInfoCache{}
}

// Key builds the Redis key for an artist/title pair. Matching is
// case-insensitive, mirroring the upstream search behavior.
func (c *AlbumInfoCache) Key(artist, title string) string {
	return fmt.Sprintf("albuminfo:%s|%s",
		strings.ToLower(strings.TrimSpace(artist)),
		strings.ToLower(strings.TrimSpace(title)))
}

// Get unmarshals a cached lookup into dest. The bool reports whether a
// cached entry existed.
func (c *AlbumInfoCache) Get(ctx context.Context, artist, title string, dest interface{}) (bool, error) {
	if RedisClient == nil {
		return false, nil
	}

	data, err := RedisClient.Get(ctx, c.Key(artist, title)).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to read album info cache: %w", err)
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached album info: %w", err)
	}
	return true, nil
}

// Set stores a lookup result with the standard TTL.
func (c *AlbumInfoCache) Set(ctx context.Context, artist, title string, value interface{}) error {
	if RedisClient == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal album info: %w", err)
	}

	if err := RedisClient.Set(ctx, c.Key(artist, title), data, albumInfoTTL).Err(); err != nil {
		return fmt.Errorf("failed to write album info cache: %w", err)
	}
	return nil
}
