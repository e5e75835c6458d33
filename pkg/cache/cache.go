package cache

import (
	"context"
	"errors"
	"time"
)

var ErrCacheMiss = errors.New("cache: key not found")

// Service defines cache operations interface.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (interface{}, error)
	Delete(ctx context.Context, keys ...string) error
	Flush(ctx context.Context) error
}

// GetTyped retrieves a key and asserts it to T. A miss or a type
// mismatch both report false.
func GetTyped[T any](ctx context.Context, c Service, key string) (T, bool) {
	var zero T
	v, err := c.Get(ctx, key)
	if err != nil {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
