package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Client is a key-value cache over JSON-serialized values.
// It is strictly an accelerator: callers must treat every miss or
// failure as "go to the source of truth".
type Client interface {
	// Get unmarshals the cached value for key into dest.
	// Returns false when the key is absent or expired.
	Get(ctx context.Context, key string, dest any) (bool, error)
	// Set stores a value under key with the given TTL
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// GetOrInitialize implements the read-aside pattern: return the cached
// value for key if present, otherwise run producer, cache its result
// with the ttl, and return it. A failed cache write does not fail the
// read; the producer's result is returned regardless.
func GetOrInitialize[T any](
	ctx context.Context,
	c Client,
	key string,
	ttl time.Duration,
	producer func(ctx context.Context) (T, error),
) (T, bool, error) {
	var cached T
	hit, err := c.Get(ctx, key, &cached)
	if err == nil && hit {
		return cached, true, nil
	}

	value, err := producer(ctx)
	if err != nil {
		var zero T
		return zero, false, err
	}

	// Best-effort repopulation; the caller already has the value
	_ = c.Set(ctx, key, value, ttl)
	return value, false, nil
}

// marshal is shared by implementations so cached representations match
func marshal(value any) ([]byte, error) {
	return json.Marshal(value)
}
