package persistence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/spec-kit/triage-service/internal/domain"
)

// RecommendationCache write-through caches the latest recommendation per
// ticket in Redis for cheap read-side lookups.
type RecommendationCache struct {
	redis *Redis
	ttl   time.Duration
}

// NewRecommendationCache builds the cache over an established Redis client.
func NewRecommendationCache(redis *Redis, ttl time.Duration) *RecommendationCache {
	return &RecommendationCache{redis: redis, ttl: ttl}
}

// Put stores the recommendation keyed by ticket id.
func (c *RecommendationCache) Put(ctx context.Context, rec *domain.RoutingRecommendation) error {
	if c == nil || c.redis == nil || c.redis.Client == nil {
		return nil
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return c.redis.Client.Set(ctx, cacheKey(rec.TicketID), data, c.ttl).Err()
}

// Get returns the cached recommendation, or nil on a miss.
func (c *RecommendationCache) Get(ctx context.Context, ticketID string) (*domain.RoutingRecommendation, error) {
	if c == nil || c.redis == nil || c.redis.Client == nil {
		return nil, nil
	}
	data, err := c.redis.Client.Get(ctx, cacheKey(ticketID)).Bytes()
	if err != nil {
		return nil, nil
	}
	var rec domain.RoutingRecommendation
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func cacheKey(ticketID string) string {
	return "recommendation:" + ticketID
}
