package redisstore

import (
	"context"
	"errors"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"

	"github.com/riskibarqy/tactical-intel/internal/platform/kv"
)

var _ kv.Store = (*Store)(nil)

var rolloverScript = redis.NewScript(`
local stored = redis.call('GET', KEYS[1])
if stored == ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[1])
redis.call('SET', KEYS[2], '0')
return 1
`)

var compareAndSwapScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if current == false then
	current = ''
end
if current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2])
return 1
`)

// Store keeps counters, flags and cache entries in Redis so every process
// behind the same instance shares them.
type Store struct {
	client *redis.Client
	prefix string
}

// Open parses redisURL, connects and pings within timeout.
func Open(ctx context.Context, redisURL, prefix string, timeout time.Duration) (*Store, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, crerr.Wrap(err, "parse redis url")
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, crerr.Wrap(err, "ping redis")
	}

	return New(client, prefix), nil
}

func New(client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, crerr.Wrapf(err, "redis get %s", key)
	}
	return value, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return crerr.Wrapf(err, "redis set %s", key)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return crerr.Wrapf(err, "redis del %s", key)
	}
	return nil
}

func (s *Store) Incr(ctx context.Context, key string) (int64, error) {
	value, err := s.client.Incr(ctx, s.key(key)).Result()
	if err != nil {
		return 0, crerr.Wrapf(err, "redis incr %s", key)
	}
	return value, nil
}

func (s *Store) Rollover(ctx context.Context, dateKey, today, counterKey string) (bool, error) {
	reset, err := rolloverScript.Run(ctx, s.client, []string{s.key(dateKey), s.key(counterKey)}, today).Int()
	if err != nil {
		return false, crerr.Wrapf(err, "redis rollover %s", dateKey)
	}
	return reset == 1, nil
}

func (s *Store) CompareAndSwap(ctx context.Context, key, prev, next string) (bool, error) {
	swapped, err := compareAndSwapScript.Run(ctx, s.client, []string{s.key(key)}, prev, next).Int()
	if err != nil {
		return false, crerr.Wrapf(err, "redis compare-and-swap %s", key)
	}
	return swapped == 1, nil
}

func (s *Store) key(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + key
}
