package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient is a Redis-backed cache client
type RedisClient struct {
	client *redis.Client
}

// NewRedis creates a cache client over an existing Redis connection
func NewRedis(client *redis.Client) *RedisClient {
	return &RedisClient{client: client}
}

var _ Client = (*RedisClient)(nil)

func (c *RedisClient) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		// Treat undecodable entries as a miss; they will be rewritten
		return false, nil
	}
	return true, nil
}

func (c *RedisClient) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}
