package cache

import (
	"context"
	"encoding/json"
	"time"
)

// GetJSON reads key from c and unmarshals it into v.
// It returns ErrCacheMiss when the key is absent. An entry that no longer
// unmarshals is deleted and reported as a miss.
func GetJSON(ctx context.Context, c Cache, key string, v any) error {
	data, ok, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCacheMiss
	}
	if err := json.Unmarshal(data, v); err != nil {
		_ = c.Delete(ctx, key)
		return ErrCacheMiss
	}
	return nil
}

// SetJSON marshals v and stores it under key with the given ttl.
// It returns the number of bytes stored.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) (int, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}
	return len(data), c.Set(ctx, key, data, ttl)
}
