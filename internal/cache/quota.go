package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// quotaPrefix is the Redis key prefix for free-usage counters.
const quotaPrefix = "quota:usage:"

// incrementIfBelowScript atomically increments a usage counter only when it
// is still below the limit. A missing key counts as 0. Returns {1, count}
// when the increment happened, {0, count} when the limit was already reached.
// Running check and increment in one script closes the window where two
// concurrent requests could both pass a read-then-write check.
var incrementIfBelowScript = redis.NewScript(`
	local key = KEYS[1]
	local limit = tonumber(ARGV[1])

	local current = tonumber(redis.call('GET', key) or '0')
	if current >= limit then
		return {0, current}
	end

	current = redis.call('INCR', key)
	return {1, current}
`)

// Usage returns the current free-usage count for a user.
// A missing counter reads as 0.
func (c *Cache) Usage(ctx context.Context, userID string) (int64, error) {
	count, err := c.client.Get(ctx, quotaPrefix+userID).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read usage counter: %w", err)
	}
	return count, nil
}

// InitUsage writes a zero counter for a user if none exists.
// SETNX makes the initialization idempotent.
func (c *Cache) InitUsage(ctx context.Context, userID string) error {
	if err := c.client.SetNX(ctx, quotaPrefix+userID, 0, 0).Err(); err != nil {
		return fmt.Errorf("failed to initialize usage counter: %w", err)
	}
	return nil
}

// IncrementIfBelow reserves one unit of free usage for a user.
// Returns false when the counter has already reached the limit; in that case
// the counter is left unchanged.
func (c *Cache) IncrementIfBelow(ctx context.Context, userID string, limit int64) (bool, error) {
	result, err := incrementIfBelowScript.Run(ctx, c.client,
		[]string{quotaPrefix + userID},
		limit,
	).Int64Slice()
	if err != nil {
		return false, fmt.Errorf("failed to reserve usage: %w", err)
	}

	return result[0] == 1, nil
}

// DecrementUsage refunds one previously reserved unit of free usage.
// Used when the content producer fails after a reservation, so failed
// requests never consume quota. The counter never goes below zero.
func (c *Cache) DecrementUsage(ctx context.Context, userID string) error {
	key := quotaPrefix + userID
	count, err := c.client.Decr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to refund usage: %w", err)
	}
	if count < 0 {
		// Refund raced with a missing key. Clamp rather than leave a
		// negative counter behind.
		if err := c.client.Set(ctx, key, 0, 0).Err(); err != nil {
			return fmt.Errorf("failed to clamp usage counter: %w", err)
		}
	}
	return nil
}
