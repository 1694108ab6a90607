// Package cache provides a Redis-backed cache for recommendation
// responses. The pipeline is a pure function of (profile, catalog, topK),
// so identical intake submissions can safely reuse a cached result until
// the TTL expires or the catalog is reloaded.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"scheme-recommendation-engine/internal/config"
	"scheme-recommendation-engine/internal/models"
	"scheme-recommendation-engine/internal/utils"
)

// RecommendationCache caches full recommendation results keyed by a hash
// of the profile and the requested top-K.
type RecommendationCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a cache from application config.
func New(cfg *config.Config) *RecommendationCache {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	return NewWithClient(client, time.Duration(cfg.CacheTTLSeconds)*time.Second)
}

// NewWithClient creates a cache around an existing Redis client.
func NewWithClient(client *redis.Client, ttl time.Duration) *RecommendationCache {
	return &RecommendationCache{client: client, ttl: ttl}
}

// Ping tests the Redis connection.
func (c *RecommendationCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *RecommendationCache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Key derives the deterministic cache key for a profile and top-K. The
// profile serializes canonically (fixed field order), so identical
// submissions always hash to the same key.
func (c *RecommendationCache) Key(profile *models.Profile, topK int) (string, error) {
	payload, err := json.Marshal(profile)
	if err != nil {
		return "", fmt.Errorf("failed to marshal profile for cache key: %w", err)
	}

	sum := sha256.Sum256(payload)
	return fmt.Sprintf("recommend:%s:%d", hex.EncodeToString(sum[:]), topK), nil
}

// Get returns the cached result for a profile, or nil on a miss. Cache
// errors degrade to a miss so Redis outages never block recommendations.
func (c *RecommendationCache) Get(ctx context.Context, profile *models.Profile, topK int) *models.RecommendationResult {
	key, err := c.Key(profile, topK)
	if err != nil {
		return nil
	}

	raw, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			utils.Logger.Warn("recommendation cache read failed", zap.Error(err))
		}
		return nil
	}

	var result models.RecommendationResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		utils.Logger.Warn("recommendation cache entry corrupt, dropping",
			zap.String("key", key),
			zap.Error(err),
		)
		_ = c.client.Del(ctx, key).Err()
		return nil
	}

	return &result
}

// Set stores a recommendation result under the profile's key.
func (c *RecommendationCache) Set(ctx context.Context, profile *models.Profile, topK int, result *models.RecommendationResult) {
	key, err := c.Key(profile, topK)
	if err != nil {
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		utils.Logger.Warn("failed to marshal recommendation result for cache", zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		utils.Logger.Warn("recommendation cache write failed", zap.Error(err))
	}
}

// Flush drops every cached recommendation, used after a catalog reload.
func (c *RecommendationCache) Flush(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, "recommend:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to flush cache key %s: %w", iter.Val(), err)
		}
	}
	return iter.Err()
}
