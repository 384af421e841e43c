package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"agromonitor/internal/models"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RuleSource is the underlying rule lookup the cache fronts.
type RuleSource interface {
	GetActiveRulesForPlot(ctx context.Context, plotID uuid.UUID) ([]models.Rule, error)
}

// CachedRuleStore fronts the rule repository with a per-plot Redis cache.
// Producer-wide rule changes are picked up when the TTL lapses; plot-scoped
// mutations should call Invalidate.
type CachedRuleStore struct {
	source      RuleSource
	redisClient *redis.Client
	ttl         time.Duration
	logger      *zap.Logger
}

// NewCachedRuleStore creates the cache wrapper.
func NewCachedRuleStore(source RuleSource, redisClient *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedRuleStore {
	return &CachedRuleStore{
		source:      source,
		redisClient: redisClient,
		ttl:         ttl,
		logger:      logger,
	}
}

func ruleCacheKey(plotID uuid.UUID) string {
	return "agro:rules:plot:" + plotID.String()
}

// GetActiveRulesForPlot returns cached rules when fresh, otherwise loads
// from the source and repopulates the cache. Cache failures degrade to a
// direct source read.
func (c *CachedRuleStore) GetActiveRulesForPlot(ctx context.Context, plotID uuid.UUID) ([]models.Rule, error) {
	key := ruleCacheKey(plotID)

	val, err := c.redisClient.Get(ctx, key).Result()
	if err == nil {
		var rules []models.Rule
		if err := json.Unmarshal([]byte(val), &rules); err == nil {
			return rules, nil
		}
		// Corrupt entry; fall through to reload.
		c.logger.Warn("Failed to unmarshal cached rules",
			zap.String("key", key),
		)
	} else if err != redis.Nil {
		c.logger.Warn("Rule cache read failed",
			zap.String("key", key),
			zap.Error(err),
		)
	}

	rules, err := c.source.GetActiveRulesForPlot(ctx, plotID)
	if err != nil {
		return nil, err
	}

	jsonData, err := json.Marshal(rules)
	if err != nil {
		c.logger.Warn("Failed to marshal rules for cache",
			zap.Error(err),
		)
		return rules, nil
	}
	if err := c.redisClient.Set(ctx, key, jsonData, c.ttl).Err(); err != nil {
		c.logger.Warn("Rule cache write failed",
			zap.String("key", key),
			zap.Error(err),
		)
	}

	return rules, nil
}

// Invalidate drops the cached rules for a plot.
func (c *CachedRuleStore) Invalidate(ctx context.Context, plotID uuid.UUID) error {
	if err := c.redisClient.Del(ctx, ruleCacheKey(plotID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate rule cache: %w", err)
	}
	return nil
}
