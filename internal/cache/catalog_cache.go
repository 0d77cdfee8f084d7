package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Cheertaboi/restaurant-promo-engine/internal/models"
)

type PromotionSource interface {
	ListPromotions(ctx context.Context, tenantID int64) ([]models.Promotion, error)
	PromotionExists(ctx context.Context, tenantID, promotionID int64) (bool, error)
}

// CatalogCache keeps each tenant's promotion catalog in Redis for a short
// TTL. It only fronts display reads; checkout goes to the source directly.
// Redis errors degrade to a source read.
type CatalogCache struct {
	client *redis.Client
	source PromotionSource
	ttl    time.Duration
	logger *slog.Logger
}

func NewCatalogCache(client *redis.Client, source PromotionSource, ttl time.Duration, logger *slog.Logger) *CatalogCache {
	return &CatalogCache{client: client, source: source, ttl: ttl, logger: logger}
}

func catalogKey(tenantID int64) string {
	return fmt.Sprintf("promo_catalog:%d", tenantID)
}

func (c *CatalogCache) ListPromotions(ctx context.Context, tenantID int64) ([]models.Promotion, error) {
	key := catalogKey(tenantID)

	val, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var promos []models.Promotion
		if err := json.Unmarshal(val, &promos); err == nil {
			return promos, nil
		}
		c.logger.WarnContext(ctx, "discarding unreadable cached catalog", "tenant_id", tenantID, "error", err)
	case !errors.Is(err, redis.Nil):
		c.logger.WarnContext(ctx, "catalog cache read failed", "tenant_id", tenantID, "error", err)
	}

	promos, err := c.source.ListPromotions(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(promos)
	if err != nil {
		return nil, fmt.Errorf("marshal catalog: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "catalog cache write failed", "tenant_id", tenantID, "error", err)
	}
	return promos, nil
}

func (c *CatalogCache) PromotionExists(ctx context.Context, tenantID, promotionID int64) (bool, error) {
	return c.source.PromotionExists(ctx, tenantID, promotionID)
}
