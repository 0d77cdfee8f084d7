package service_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Cheertaboi/restaurant-promo-engine/internal/repository"
	"github.com/Cheertaboi/restaurant-promo-engine/internal/service"
)

const tenantID = int64(1)

const (
	catPizzas   = int64(10)
	catDrinks   = int64(20)
	catDesserts = int64(30)
)

// Wednesday noon.
var noon = time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)

const catalogYAML = `
tenants:
  - id: 1
    categories:
      - {id: 10, name: Pizzas}
      - {id: 20, name: Drinks}
      - {id: 30, name: Desserts}
    menu_items:
      - {id: 101, category_id: 10, name: Margherita, price: "10.00"}
      - {id: 102, category_id: 10, name: Pepperoni, price: "12.00"}
      - {id: 201, category_id: 20, name: Cola, price: "2.00"}
      - {id: 202, category_id: 20, name: Lemonade, price: "2.50", available: false}
      - {id: 301, category_id: 30, name: Tiramisu, price: "5.00"}
      - {id: 302, category_id: 30, name: Brownie, price: "4.00"}
      - {id: 303, category_id: 30, name: Cheesecake, price: "6.00", available: false}
    promotions:
      - id: 1
        name: Two pizzas, free cola
        priority: 10
        rules:
          - {id: 1, category_id: 10, min_quantity: 2}
        rewards:
          - {id: 1, type: free_item, menu_item_id: 201, max_selectable: 1}
      - id: 2
        name: Dessert on us
        priority: 5
        stackable: true
        gift_required: true
        rules:
          - {id: 2, category_id: 10, min_quantity: 1}
        rewards:
          - {id: 2, type: free_item, category_id: 30}
      - id: 3
        name: Ten percent off
        priority: 1
        stackable: true
        rules:
          - {id: 3, category_id: 10, min_quantity: 1}
        rewards:
          - {id: 3, type: discount_percent, value: "10"}
      - id: 4
        name: Late night
        stackable: true
        active_hours_start: "22:00"
        active_hours_end: "02:00"
        rewards:
          - {id: 4, type: discount_fixed, value: "3.00"}
      - id: 5
        name: Retired
        active: false
        stackable: true
        rewards:
          - {id: 5, type: discount_fixed, value: "1.00"}
      - id: 6
        name: Weekday lunch
        stackable: true
        active_days: [1, 2, 3, 4, 5]
        active_hours_start: "11:00"
        active_hours_end: "15:00"
        rewards:
          - {id: 6, type: discount_fixed, value: "1.50"}
      - id: 7
        name: Meal deal
        stackable: true
        rewards:
          - {id: 7, type: fixed_price, value: "9.99"}
      - id: 8
        name: Drink exclusive
        priority: 8
        rules:
          - {id: 8, category_id: 20, min_quantity: 1}
        rewards:
          - {id: 8, type: discount_fixed, value: "1.00"}
      - id: 9
        name: Dessert and lemonade
        stackable: true
        rules:
          - {id: 9, category_id: 30, min_quantity: 1}
        rewards:
          - {id: 9, type: free_item, menu_item_id: 202}
    price_rules:
      - {id: 1, base_id: 1, scope: category, scope_id: 10, delta: "2.00"}
      - {id: 2, base_id: 1, scope: item, scope_id: 101, delta: "0.50"}
      - {id: 3, base_id: 2, scope: item, scope_id: 101, delta: "1.00"}
      - {id: 4, base_id: 3, scope: category, scope_id: 10, delta: "0.333"}
      - {id: 5, base_id: 3, scope: item, scope_id: 101, delta: "0.333"}
`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newCatalog(t *testing.T) *repository.FileCatalog {
	t.Helper()
	c, err := repository.ParseFileCatalog([]byte(catalogYAML))
	require.NoError(t, err)
	return c
}

func newPromotionService(t *testing.T, opts ...service.Option) (*service.PromotionService, *repository.FileCatalog) {
	t.Helper()
	c := newCatalog(t)
	opts = append([]service.Option{service.WithClock(func() time.Time { return noon })}, opts...)
	svc := service.NewPromotionService(discardLogger(), service.DefaultConfig(), c, c, c, opts...)
	return svc, c
}

func ptr[T any](v T) *T { return &v }
