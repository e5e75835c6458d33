package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisSecretStore implements CredentialStore on Redis. Secrets are plain
// string keys under a namespace prefix and never expire.
type RedisSecretStore struct {
	client *redis.Client
	prefix string
}

// NewRedisSecretStore creates a Redis-backed credential store.
func NewRedisSecretStore(client *redis.Client, prefix string) *RedisSecretStore {
	return &RedisSecretStore{client: client, prefix: prefix}
}

func (s *RedisSecretStore) key(name string) string {
	return s.prefix + ":secrets:" + name
}

// GetSecret fetches one secret.
func (s *RedisSecretStore) GetSecret(ctx context.Context, name string) (string, error) {
	v, err := s.client.Get(ctx, s.key(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("secret %s not found", name)
		}
		return "", fmt.Errorf("get secret %s: %w", name, err)
	}
	return v, nil
}

// PutSecret stores one secret, overwriting any previous value.
func (s *RedisSecretStore) PutSecret(ctx context.Context, name, value string) error {
	if err := s.client.Set(ctx, s.key(name), value, 0).Err(); err != nil {
		return fmt.Errorf("put secret %s: %w", name, err)
	}
	return nil
}

// Ping verifies connectivity.
func (s *RedisSecretStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
