package models

import (
	"time"

	"github.com/google/uuid"
)

// RedemptionRecord is an append-only log entry of a promotion used on an order.
type RedemptionRecord struct {
	ID            uuid.UUID `json:"id"`
	TenantID      int64     `json:"tenant_id"`
	PromotionID   int64     `json:"promotion_id"`
	OrderID       int64     `json:"order_id"`
	CustomerPhone *string   `json:"customer_phone,omitempty"`
	UsedAt        time.Time `json:"used_at"`
}
