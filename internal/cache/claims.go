package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/quickai/quickai/internal/model"
)

const (
	// claimsCachePrefix is the Redis key prefix for resolved claims.
	claimsCachePrefix = "claims:"
	// claimsCacheTTL bounds how stale a cached plan can be. An upgrade to
	// premium is picked up within this window at worst.
	claimsCacheTTL = 5 * time.Minute
)

// cachedClaims is the claims representation stored in Redis.
type cachedClaims struct {
	UserID string `json:"user_id"`
	Plan   string `json:"plan"`
}

// GetClaims retrieves cached claims for a user.
// Returns nil on a cache miss.
func (c *Cache) GetClaims(ctx context.Context, userID string) (*model.Claims, error) {
	data, err := c.client.Get(ctx, claimsCachePrefix+userID).Bytes()
	if err != nil {
		// Cache miss is not an error
		return nil, nil //nolint:nilerr
	}

	var cached cachedClaims
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	plan := model.PlanFree
	if cached.Plan == string(model.PlanPremium) {
		plan = model.PlanPremium
	}

	return &model.Claims{UserID: cached.UserID, Plan: plan}, nil
}

// SetClaims caches resolved claims for a user.
func (c *Cache) SetClaims(ctx context.Context, claims *model.Claims) error {
	cached := cachedClaims{
		UserID: claims.UserID,
		Plan:   string(claims.Plan),
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("marshal claims: %w", err)
	}

	return c.client.Set(ctx, claimsCachePrefix+claims.UserID, data, claimsCacheTTL).Err()
}
