package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "geocode:"

// redisCache is a hot cache tier. Entries expire after ttl; zero means never.
type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a cache tier stored in redis.
func NewRedisCache(client *redis.Client, ttl time.Duration) Cache {
	return &redisCache{client: client, ttl: ttl}
}

func (c *redisCache) Get(ctx context.Context, address string) (*Entry, error) {
	raw, err := c.client.Get(ctx, redisKeyPrefix+address).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read geocode entry from redis: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("failed to decode geocode entry: %w", err)
	}

	return &entry, nil
}

func (c *redisCache) Put(ctx context.Context, entry Entry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode geocode entry: %w", err)
	}

	if err := c.client.Set(ctx, redisKeyPrefix+entry.Address, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write geocode entry to redis: %w", err)
	}

	return nil
}
