package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	KeyAllCampaigns       = "cache:campaigns:all"
	keyPrefixTopCampaigns = "cache:campaigns:top:"
	patternTopCampaigns   = keyPrefixTopCampaigns + "*"
)

// TopCampaignsKey is the cache key of the leaderboard page of the given size.
func TopCampaignsKey(limit int) string {
	return fmt.Sprintf("%s%d", keyPrefixTopCampaigns, limit)
}

type CacheService struct {
	client redis.UniversalClient
}

func NewCacheService(client redis.UniversalClient) *CacheService {
	return &CacheService{client: client}
}

// Get decodes the cached value into dest. A miss returns redis.Nil.
func (c *CacheService) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (c *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *CacheService) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// DeletePattern removes every key matching pattern. It walks the keyspace
// with SCAN rather than KEYS.
func (c *CacheService) DeletePattern(ctx context.Context, pattern string) error {
	var keys []string
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	return c.Delete(ctx, keys...)
}

// GetOrSet returns the cached value for key, or calls load, caches its
// result for ttl and decodes it into dest. A failed cache write does not fail
// the call.
func (c *CacheService) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, load func() (interface{}, error)) error {
	if err := c.Get(ctx, key, dest); err == nil {
		return nil
	}

	value, err := load()
	if err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	_ = c.client.Set(ctx, key, data, ttl).Err()

	return json.Unmarshal(data, dest)
}

// InvalidateCampaignLists drops every cached campaign list.
func (c *CacheService) InvalidateCampaignLists(ctx context.Context) error {
	if err := c.Delete(ctx, KeyAllCampaigns); err != nil {
		return fmt.Errorf("failed to delete %s: %w", KeyAllCampaigns, err)
	}
	if err := c.DeletePattern(ctx, patternTopCampaigns); err != nil {
		return fmt.Errorf("failed to delete pattern %s: %w", patternTopCampaigns, err)
	}
	return nil
}
