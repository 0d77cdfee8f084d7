package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cheertaboi/restaurant-promo-engine/internal/models"
)

type fakeSource struct {
	promos []models.Promotion
	err    error
	calls  int
}

func (f *fakeSource) ListPromotions(context.Context, int64) ([]models.Promotion, error) {
	f.calls++
	return f.promos, f.err
}

func (f *fakeSource) PromotionExists(context.Context, int64, int64) (bool, error) {
	return len(f.promos) > 0, f.err
}

func newCache(t *testing.T, src PromotionSource) (*CatalogCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewCatalogCache(client, src, 30*time.Second, logger), mr
}

func samplePromotions() []models.Promotion {
	start := models.TimeOfDay(22 * 3600)
	end := models.TimeOfDay(2 * 3600)
	return []models.Promotion{{
		ID:               1,
		TenantID:         1,
		Name:             "Late night",
		IsActive:         true,
		ActiveHoursStart: &start,
		ActiveHoursEnd:   &end,
		ActiveDays:       []int{5, 6},
		Priority:         3,
		Rules:            []models.PromotionRule{{ID: 1, PromotionID: 1, RequiredCategoryID: 20, MinQuantity: 2}},
		Rewards: []models.PromotionReward{
			{ID: 1, PromotionID: 1, Reward: models.FreeItemReward{MenuItemID: 5, ItemName: "Cola"}},
			{ID: 2, PromotionID: 1, Reward: models.PercentDiscountReward{Percent: decimal.NewFromInt(10)}},
		},
	}}
}

func TestCatalogCacheServesFromRedis(t *testing.T) {
	src := &fakeSource{promos: samplePromotions()}
	c, mr := newCache(t, src)
	ctx := context.Background()

	first, err := c.ListPromotions(ctx, 1)
	require.NoError(t, err)
	assert.True(t, mr.Exists("promo_catalog:1"))
	assert.Equal(t, 30*time.Second, mr.TTL("promo_catalog:1"))

	second, err := c.ListPromotions(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls, "second read is a cache hit")

	require.Len(t, second, 1)
	assert.Equal(t, first[0].Name, second[0].Name)
	assert.Equal(t, *first[0].ActiveHoursStart, *second[0].ActiveHoursStart)
	assert.Equal(t, first[0].ActiveDays, second[0].ActiveDays)
	assert.Equal(t, first[0].Rules, second[0].Rules)
	assert.Equal(t, first[0].Rewards[0], second[0].Rewards[0])
	pct, ok := second[0].Rewards[1].Reward.(models.PercentDiscountReward)
	require.True(t, ok)
	assert.True(t, pct.Percent.Equal(decimal.NewFromInt(10)))
}

func TestCatalogCacheExpires(t *testing.T) {
	src := &fakeSource{promos: samplePromotions()}
	c, mr := newCache(t, src)
	ctx := context.Background()

	_, err := c.ListPromotions(ctx, 1)
	require.NoError(t, err)
	mr.FastForward(31 * time.Second)

	_, err = c.ListPromotions(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestCatalogCacheCorruptEntryReloads(t *testing.T) {
	src := &fakeSource{promos: samplePromotions()}
	c, mr := newCache(t, src)
	require.NoError(t, mr.Set("promo_catalog:1", "not json"))

	promos, err := c.ListPromotions(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, promos, 1)
	assert.Equal(t, 1, src.calls)
}

func TestCatalogCacheRedisDownFallsBack(t *testing.T) {
	src := &fakeSource{promos: samplePromotions()}
	c, mr := newCache(t, src)
	mr.Close()

	promos, err := c.ListPromotions(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, promos, 1)
}

func TestCatalogCacheSourceError(t *testing.T) {
	boom := errors.New("db down")
	c, mr := newCache(t, &fakeSource{err: boom})

	_, err := c.ListPromotions(context.Background(), 1)
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("promo_catalog:1"))
}

func TestCatalogCacheExistsPassesThrough(t *testing.T) {
	src := &fakeSource{promos: samplePromotions()}
	c, _ := newCache(t, src)

	ok, err := c.PromotionExists(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.True(t, ok)
}
