package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cheertaboi/restaurant-promo-engine/internal/service"
)

func TestRecordUsage(t *testing.T) {
	svc, catalog := newPromotionService(t)

	rec, err := svc.RecordUsage(context.Background(), tenantID, 1, 500, ptr("  +15550100  "))
	require.NoError(t, err)

	assert.Equal(t, int64(1), rec.PromotionID)
	assert.Equal(t, int64(500), rec.OrderID)
	assert.Equal(t, tenantID, rec.TenantID)
	require.NotNil(t, rec.CustomerPhone)
	assert.Equal(t, "+15550100", *rec.CustomerPhone)
	assert.True(t, rec.UsedAt.Equal(noon))
	assert.Len(t, catalog.Usages(tenantID), 1)
}

func TestRecordUsageIsIdempotentPerOrder(t *testing.T) {
	svc, catalog := newPromotionService(t)

	first, err := svc.RecordUsage(context.Background(), tenantID, 3, 77, nil)
	require.NoError(t, err)
	second, err := svc.RecordUsage(context.Background(), tenantID, 3, 77, ptr("555"))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Nil(t, second.CustomerPhone)
	assert.Len(t, catalog.Usages(tenantID), 1)

	_, err = svc.RecordUsage(context.Background(), tenantID, 3, 78, nil)
	require.NoError(t, err)
	assert.Len(t, catalog.Usages(tenantID), 2)
}

func TestRecordUsageBlankPhone(t *testing.T) {
	svc, _ := newPromotionService(t)

	rec, err := svc.RecordUsage(context.Background(), tenantID, 1, 1, ptr("   "))
	require.NoError(t, err)
	assert.Nil(t, rec.CustomerPhone)
}

func TestRecordUsageUnknownPromotion(t *testing.T) {
	svc, catalog := newPromotionService(t)

	_, err := svc.RecordUsage(context.Background(), tenantID, 404, 1, nil)
	assert.ErrorIs(t, err, service.ErrPromotionNotFound)

	_, err = svc.RecordUsage(context.Background(), 2, 1, 1, nil)
	assert.ErrorIs(t, err, service.ErrPromotionNotFound, "promotion belongs to another tenant")
	assert.Empty(t, catalog.Usages(tenantID))
}
