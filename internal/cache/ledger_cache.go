package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyNumbers = "ledger:numbers:"

// LedgerCache caches the per-user numbers map in Redis.
type LedgerCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewLedgerCache returns a new LedgerCache.
func NewLedgerCache(rdb *redis.Client, ttl time.Duration) *LedgerCache {
	return &LedgerCache{rdb: rdb, ttl: ttl}
}

// GetNumbers returns the cached map for userID, or nil on miss.
func (c *LedgerCache) GetNumbers(ctx context.Context, userID string) (map[string]float64, error) {
	b, err := c.rdb.Get(ctx, keyNumbers+userID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var numbers map[string]float64
	if err := json.Unmarshal(b, &numbers); err != nil {
		return nil, err
	}
	return numbers, nil
}

// SetNumbers stores the map for userID.
func (c *LedgerCache) SetNumbers(ctx context.Context, userID string, numbers map[string]float64) error {
	b, err := json.Marshal(numbers)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, keyNumbers+userID, b, c.ttl).Err()
}

// Invalidate drops the cached map for userID (cache invalidation on write).
func (c *LedgerCache) Invalidate(ctx context.Context, userID string) error {
	return c.rdb.Del(ctx, keyNumbers+userID).Err()
}
