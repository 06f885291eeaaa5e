package staging

import (
	"context"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"

	apperrors "github.com/devlog/devlog-server/internal/errors"
)

// Config holds the connection settings for the Redis-backed store.
type Config struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

func (c Config) Options() *redis.Options {
	return &redis.Options{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
		PoolSize: c.PoolSize,
	}
}

// RedisStore implements Store on top of a go-redis client.
type RedisStore struct {
	client *redis.Client
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(cfg Config) *RedisStore {
	return &RedisStore{client: redis.NewClient(cfg.Options())}
}

// NewRedisStoreFromClient wraps an existing client (used by tests to
// point the store at a miniredis instance).
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return storeErr(err, "Set")
	}
	return nil
}

func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, storeErr(err, "Exists")
	}
	return n > 0, nil
}

func (s *RedisStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return storeErr(err, "Del")
	}
	return nil
}

func (s *RedisStore) SAddExpire(ctx context.Context, key string, ttl time.Duration, members ...string) (int64, error) {
	if len(members) == 0 {
		return 0, nil
	}
	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}

	pipe := s.client.TxPipeline()
	added := pipe.SAdd(ctx, key, args...)
	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, storeErr(err, "SAddExpire")
	}
	return added.Val(), nil
}

func (s *RedisStore) SRem(ctx context.Context, key string, members ...string) (int64, error) {
	if len(members) == 0 {
		return 0, nil
	}
	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}
	removed, err := s.client.SRem(ctx, key, args...).Result()
	if err != nil {
		return 0, storeErr(err, "SRem")
	}
	return removed, nil
}

func (s *RedisStore) SIsMember(ctx context.Context, key, member string) (bool, error) {
	ok, err := s.client.SIsMember(ctx, key, member).Result()
	if err != nil {
		return false, storeErr(err, "SIsMember")
	}
	return ok, nil
}

func (s *RedisStore) SMembers(ctx context.Context, key string) ([]string, error) {
	members, err := s.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, storeErr(err, "SMembers")
	}
	return members, nil
}

func (s *RedisStore) Rename(ctx context.Context, src, dst string) error {
	err := s.client.Rename(ctx, src, dst).Err()
	if err == nil {
		return nil
	}
	// RENAME on a key that was never created (nothing was staged) is
	// not a failure.
	if strings.Contains(err.Error(), "no such key") {
		return nil
	}
	return storeErr(err, "Rename")
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return storeErr(err, "Ping")
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func storeErr(err error, op string) error {
	return apperrors.Wrapf(apperrors.ErrStoreUnavailable, "staging.%s: %v", op, err)
}
