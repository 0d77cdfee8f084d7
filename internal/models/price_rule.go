package models

import "github.com/shopspring/decimal"

type TargetType string

const TargetBase TargetType = "base"

type ScopeType string

const (
	ScopeCategory ScopeType = "category"
	ScopeItem     ScopeType = "item"
)

type PriceRule struct {
	ID         int64           `json:"id"`
	TenantID   int64           `json:"tenant_id"`
	TargetType TargetType      `json:"target_type"`
	TargetID   int64           `json:"target_id"`
	ScopeType  ScopeType       `json:"scope_type"`
	ScopeID    int64           `json:"scope_id"`
	PriceDelta decimal.Decimal `json:"price_delta"`
}
