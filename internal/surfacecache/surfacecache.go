// Package surfacecache caches implied-volatility root-find results so that
// repeated REST lookups for an identical (forward, strike, maturity,
// call/put, price) tuple skip the Householder iteration entirely.
package surfacecache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/optionkit/impliedvol/internal/logger"
)

// Key identifies a single implied-volatility request. redisKey formats
// Forward and Strike to 6 decimal places, T to 8 and Price to 10, so values
// that agree to that many places share a cache entry despite
// floating-point jitter.
type Key struct {
	Underlying string
	Forward    float64
	Strike     float64
	T          float64
	IsCall     bool
	Price      float64
}

func (k Key) redisKey() string {
	return fmt.Sprintf("iv:%s:%.6f:%.6f:%.8f:%t:%.10f",
		k.Underlying, k.Forward, k.Strike, k.T, k.IsCall, k.Price)
}

// Cache is a Redis-backed (F,K,T,call/put,price) -> sigma cache with a TTL.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New constructs a Cache against the given Redis address (host:port).
func New(addr string, ttl time.Duration) *Cache {
	return &Cache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

// Get returns the cached implied volatility for key, if present.
func (c *Cache) Get(ctx context.Context, key Key) (float64, bool) {
	val, err := c.client.Get(ctx, key.redisKey()).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Debugf("surfacecache: get error: %v", err)
		}
		return 0, false
	}
	var sigma float64
	if err := json.Unmarshal([]byte(val), &sigma); err != nil {
		logger.Debugf("surfacecache: decode error: %v", err)
		return 0, false
	}
	return sigma, true
}

// Set stores sigma for key, overwriting any previous TTL.
func (c *Cache) Set(ctx context.Context, key Key, sigma float64) {
	b, err := json.Marshal(sigma)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key.redisKey(), b, c.ttl).Err(); err != nil {
		logger.Debugf("surfacecache: set error: %v", err)
	}
}

// Close releases the underlying Redis connection pool.
func (c *Cache) Close() error {
	return c.client.Close()
}
