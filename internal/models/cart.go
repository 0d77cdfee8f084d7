package models

import "github.com/shopspring/decimal"

// CartLine is a pre-checkout cart entry. CategoryID may be unset and is
// then resolved from the menu.
type CartLine struct {
	MenuItemID int64  `json:"menu_item_id"`
	CategoryID *int64 `json:"category_id,omitempty"`
	Quantity   int    `json:"quantity"`
}

// LineItem is an authoritative, price-bearing checkout line.
type LineItem struct {
	MenuItemID   int64           `json:"menu_item_id"`
	CategoryID   *int64          `json:"category_id,omitempty"`
	Quantity     int             `json:"quantity"`
	PriceAtOrder decimal.Decimal `json:"price_at_order"`
}

type MenuItem struct {
	ID          int64           `json:"id"`
	TenantID    int64           `json:"tenant_id"`
	CategoryID  int64           `json:"category_id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	IsAvailable bool            `json:"is_available"`
}

// CategoryQuantities maps category id to the summed cart quantity.
type CategoryQuantities map[int64]int
