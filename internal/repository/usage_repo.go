package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Cheertaboi/restaurant-promo-engine/internal/models"
)

type UsageRepo struct {
	db *sql.DB
}

func NewUsageRepo(db *sql.DB) *UsageRepo {
	return &UsageRepo{db: db}
}

// InsertUsage stores rec unless (promotion_id, order_id) is already recorded,
// in which case the existing row is returned.
func (r *UsageRepo) InsertUsage(ctx context.Context, rec models.RedemptionRecord) (models.RedemptionRecord, error) {
	insert := `
		INSERT INTO promotion_usages (id, tenant_id, promotion_id, order_id, customer_phone, used_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (promotion_id, order_id) DO NOTHING
		RETURNING id, tenant_id, promotion_id, order_id, customer_phone, used_at
	`
	var phone sql.NullString
	if rec.CustomerPhone != nil {
		phone = sql.NullString{String: *rec.CustomerPhone, Valid: true}
	}

	stored, err := scanUsage(r.db.QueryRowContext(ctx, insert,
		rec.ID, rec.TenantID, rec.PromotionID, rec.OrderID, phone, rec.UsedAt))
	if err == nil {
		return stored, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.RedemptionRecord{}, fmt.Errorf("insert usage: %w", err)
	}

	// Conflict: someone already recorded this order.
	existing := `
		SELECT id, tenant_id, promotion_id, order_id, customer_phone, used_at
		FROM promotion_usages
		WHERE promotion_id = $1 AND order_id = $2
	`
	stored, err = scanUsage(r.db.QueryRowContext(ctx, existing, rec.PromotionID, rec.OrderID))
	if err != nil {
		return models.RedemptionRecord{}, fmt.Errorf("read existing usage: %w", err)
	}
	return stored, nil
}

func scanUsage(row *sql.Row) (models.RedemptionRecord, error) {
	var (
		rec   models.RedemptionRecord
		phone sql.NullString
	)
	if err := row.Scan(&rec.ID, &rec.TenantID, &rec.PromotionID, &rec.OrderID, &phone, &rec.UsedAt); err != nil {
		return models.RedemptionRecord{}, err
	}
	if phone.Valid {
		p := phone.String
		rec.CustomerPhone = &p
	}
	return rec, nil
}
