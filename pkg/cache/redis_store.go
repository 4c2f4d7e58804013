package cache

import (
	"context"
	"errors"
	"time"

	redisclient "github.com/angelmondragon/storefront/pkg/redis"
)

type redisBackend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	DelPrefix(ctx context.Context, prefix string) error
	CacheKey(resource string) string
	CachePrefix() string
}

// RedisStore shares cached resources through Redis.
type RedisStore struct {
	client redisBackend
}

func NewRedisStore(client *redisclient.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	value, err := r.client.Get(ctx, r.client.CacheKey(string(key)))
	if err != nil {
		if errors.Is(err, redisclient.ErrNil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return value, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key Key, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, r.client.CacheKey(string(key)), value, ttl)
}

func (r *RedisStore) Delete(ctx context.Context, keys ...Key) error {
	names := make([]string, 0, len(keys))
	for _, key := range keys {
		names = append(names, r.client.CacheKey(string(key)))
	}
	return r.client.Del(ctx, names...)
}

func (r *RedisStore) DeletePrefix(ctx context.Context, prefix Key) error {
	full := r.client.CacheKey(string(prefix))
	if err := r.client.Del(ctx, full); err != nil {
		return err
	}
	return r.client.DelPrefix(ctx, full+separator)
}

func (r *RedisStore) Clear(ctx context.Context) error {
	return r.client.DelPrefix(ctx, r.client.CachePrefix())
}
