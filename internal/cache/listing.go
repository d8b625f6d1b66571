package cache

import (
	"context"
	"crypto/sha1"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"eventadmin/internal/metrics"
)

// Listing keeps the serialized event listing between writes. The event store
// calls InvalidateListing after every successful mutation, which advances the
// generation. Entries are stored per generation, so a payload read from the
// store before an invalidation is never served after it.
type Listing interface {
	Generation(ctx context.Context) (int64, error)
	Get(ctx context.Context, variant string, gen int64) ([]byte, bool, error)
	Set(ctx context.Context, variant string, gen int64, payload []byte) error
	InvalidateListing(ctx context.Context) error
}

type RedisListing struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisListing(client *redis.Client, prefix string, ttl time.Duration) *RedisListing {
	if prefix == "" {
		prefix = "eventadmin:events"
	}
	return &RedisListing{client: client, prefix: prefix, ttl: ttl}
}

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
}

// Generation returns the current listing generation. A missing counter is
// generation zero.
func (c *RedisListing) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, c.genKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("listing cache generation: %w", err)
	}
	return gen, nil
}

func (c *RedisListing) Get(ctx context.Context, variant string, gen int64) ([]byte, bool, error) {
	payload, err := c.client.Get(ctx, c.key(variant, gen)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.RecordCacheLookup(false)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("listing cache get: %w", err)
	}
	metrics.RecordCacheLookup(true)
	return payload, true, nil
}

// Set stores payload under generation gen. A payload for a generation that
// has since been invalidated is unreachable and expires with the TTL.
func (c *RedisListing) Set(ctx context.Context, variant string, gen int64, payload []byte) error {
	key := c.key(variant, gen)
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, key, payload, c.ttl)
	pipe.SAdd(ctx, c.indexKey(), key)
	pipe.Expire(ctx, c.indexKey(), c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("listing cache set: %w", err)
	}
	return nil
}

// InvalidateListing advances the generation and removes every cached variant.
func (c *RedisListing) InvalidateListing(ctx context.Context) error {
	if err := c.client.Incr(ctx, c.genKey()).Err(); err != nil {
		return fmt.Errorf("listing cache generation: %w", err)
	}
	keys, err := c.client.SMembers(ctx, c.indexKey()).Result()
	if err != nil {
		return fmt.Errorf("listing cache index: %w", err)
	}
	keys = append(keys, c.indexKey())
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("listing cache invalidate: %w", err)
	}
	return nil
}

func (c *RedisListing) key(variant string, gen int64) string {
	sum := sha1.Sum([]byte("list:" + variant))
	return fmt.Sprintf("%s:%x:%d", c.prefix, sum[:], gen)
}

func (c *RedisListing) indexKey() string {
	return c.prefix + ":keys"
}

func (c *RedisListing) genKey() string {
	return c.prefix + ":gen"
}

// Nop is used when no Redis address is configured.
type Nop struct{}

func (Nop) Generation(context.Context) (int64, error) { return 0, nil }

func (Nop) Get(context.Context, string, int64) ([]byte, bool, error) { return nil, false, nil }

func (Nop) Set(context.Context, string, int64, []byte) error { return nil }

func (Nop) InvalidateListing(context.Context) error { return nil }
