// Package cache keeps read-through copies of product documents.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/giftchoice/storefront/internal/domain"
)

// ProductCache caches single products by id. A miss is (nil, nil).
type ProductCache interface {
	Get(ctx context.Context, id string) (*domain.Product, error)
	Set(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, ids ...string) error
	Flush(ctx context.Context) error
	Close() error
}

const keyPrefix = "product:"

func productKey(id string) string {
	return fmt.Sprintf("%s%s", keyPrefix, id)
}

// RedisProductCache stores products as JSON under product:{id}.
type RedisProductCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient builds a client for the given address.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		Protocol: 2,
	})
}

// NewRedisProductCache wraps client. A non-positive ttl means 24h.
func NewRedisProductCache(client *redis.Client, ttl time.Duration) *RedisProductCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisProductCache{client: client, ttl: ttl}
}

// Ping checks the connection.
func (c *RedisProductCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisProductCache) Get(ctx context.Context, id string) (*domain.Product, error) {
	raw, err := c.client.Get(ctx, productKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read cached product %s", id)
	}

	var product domain.Product
	if err := json.Unmarshal(raw, &product); err != nil {
		// A corrupt entry is dropped and treated as a miss.
		_ = c.client.Del(ctx, productKey(id)).Err()
		return nil, nil
	}
	return &product, nil
}

func (c *RedisProductCache) Set(ctx context.Context, product *domain.Product) error {
	raw, err := json.Marshal(product)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal product %s", product.ID)
	}
	return errors.Wrapf(c.client.Set(ctx, productKey(product.ID), raw, c.ttl).Err(),
		"failed to cache product %s", product.ID)
}

func (c *RedisProductCache) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	pipe := c.client.TxPipeline()
	for _, id := range ids {
		pipe.Del(ctx, productKey(id))
	}
	_, err := pipe.Exec(ctx)
	return errors.Wrap(err, "failed to evict products")
}

// Flush removes every product entry. Used when a change (a category rename,
// a category delete) touches many products at once.
func (c *RedisProductCache) Flush(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return errors.Wrap(err, "failed to scan product keys")
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return errors.Wrap(err, "failed to flush product keys")
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func (c *RedisProductCache) Close() error {
	return c.client.Close()
}

// NopCache never stores anything. It is used when REDIS_ADDR is empty.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (*domain.Product, error) { return nil, nil }
func (NopCache) Set(context.Context, *domain.Product) error           { return nil }
func (NopCache) Delete(context.Context, ...string) error              { return nil }
func (NopCache) Flush(context.Context) error                          { return nil }
func (NopCache) Close() error                                         { return nil }
