package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cheertaboi/restaurant-promo-engine/internal/models"
	"github.com/Cheertaboi/restaurant-promo-engine/internal/repository"
	"github.com/Cheertaboi/restaurant-promo-engine/internal/service"
)

const routerCatalog = `
tenants:
  - id: 1
    categories:
      - {id: 10, name: Pizzas}
      - {id: 20, name: Drinks}
    menu_items:
      - {id: 101, category_id: 10, name: Margherita, price: "10.00"}
      - {id: 201, category_id: 20, name: Cola, price: "2.00"}
    promotions:
      - id: 1
        name: Two pizzas, free cola
        priority: 2
        rules:
          - {id: 1, category_id: 10, min_quantity: 2}
        rewards:
          - {id: 1, type: free_item, menu_item_id: 201}
      - id: 2
        name: Ten percent
        stackable: true
        rewards:
          - {id: 2, type: discount_percent, value: "10"}
      - id: 3
        name: Late night
        stackable: true
        active_hours_start: "22:00"
        active_hours_end: "02:00"
        rewards:
          - {id: 3, type: discount_fixed, value: "1.00"}
    price_rules:
      - {id: 1, base_id: 1, scope: category, scope_id: 10, delta: "2.00"}
      - {id: 2, base_id: 1, scope: item, scope_id: 101, delta: "0.50"}
`

var wednesdayNoon = time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*httptest.Server, *repository.FileCatalog) {
	t.Helper()
	return newTestServerAt(t, wednesdayNoon)
}

func newTestServerAt(t *testing.T, now time.Time) (*httptest.Server, *repository.FileCatalog) {
	t.Helper()
	catalog, err := repository.ParseFileCatalog([]byte(routerCatalog))
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	promotions := service.NewPromotionService(logger, service.DefaultConfig(), catalog, catalog, catalog,
		service.WithClock(func() time.Time { return now }))
	pricing := service.NewPricingService(catalog)

	srv := httptest.NewServer(NewRouter(logger, promotions, pricing))
	t.Cleanup(srv.Close)
	return srv, catalog
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestActivePromotionsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/tenants/1/promotions/active?at=2026-03-04T12:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Promotions []models.Promotion `json:"promotions"`
	}
	decode(t, resp, &body)
	require.Len(t, body.Promotions, 2)
	assert.Equal(t, int64(1), body.Promotions[0].ID)
	_, ok := body.Promotions[1].Rewards[0].Reward.(models.PercentDiscountReward)
	assert.True(t, ok)
}

func TestActivePromotionsEndpointUsesServiceClock(t *testing.T) {
	srv, _ := newTestServerAt(t, time.Date(2026, 3, 4, 23, 30, 0, 0, time.UTC))

	resp, err := http.Get(srv.URL + "/tenants/1/promotions/active")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var active struct {
		Promotions []models.Promotion `json:"promotions"`
	}
	decode(t, resp, &active)

	resp, err = http.Post(srv.URL+"/tenants/1/promotions/eligibility", "application/json",
		strings.NewReader(`{"lines":[{"menu_item_id":101,"quantity":1}]}`))
	require.NoError(t, err)
	var eligible struct {
		Promotions []models.EligibilityResult `json:"promotions"`
	}
	decode(t, resp, &eligible)

	var activeIDs, eligibleIDs []int64
	for _, p := range active.Promotions {
		activeIDs = append(activeIDs, p.ID)
	}
	for _, e := range eligible.Promotions {
		eligibleIDs = append(eligibleIDs, e.PromotionID)
	}
	assert.ElementsMatch(t, []int64{1, 2, 3}, activeIDs)
	assert.Equal(t, activeIDs, eligibleIDs)
}

func TestActivePromotionsBadInput(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/tenants/abc/promotions/active", "/tenants/1/promotions/active?at=yesterday"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
	}
}

func TestEligibilityEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	body := `{"lines":[{"menu_item_id":101,"quantity":2}]}`
	resp, err := http.Post(srv.URL+"/tenants/1/promotions/eligibility", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Promotions []models.EligibilityResult `json:"promotions"`
	}
	decode(t, resp, &out)
	require.Len(t, out.Promotions, 2)
	assert.True(t, out.Promotions[0].Met)
	assert.Equal(t, 1, out.Promotions[0].TimesQualified)
}

func TestApplyEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	body := `{
		"lines": [{"menu_item_id":101,"category_id":10,"quantity":2,"price_at_order":"10.00"}],
		"selections": [{"promotion_id":1},{"promotion_id":2}]
	}`
	resp, err := http.Post(srv.URL+"/tenants/1/promotions/apply", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out models.ApplyResult
	decode(t, resp, &out)
	require.Len(t, out.GiftItems, 1)
	assert.Equal(t, "Cola", out.GiftItems[0].Name)
	// cola 2.00 + 10% of 20.00
	assert.Equal(t, "4", out.DiscountTotal.String())
}

func TestApplyEndpointInvalidBody(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/tenants/1/promotions/apply", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	var out map[string]string
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	decode(t, resp, &out)
	assert.Equal(t, "invalid_body", out["error"])
}

func TestRecordUsageEndpoint(t *testing.T) {
	srv, catalog := newTestServer(t)

	resp, err := http.Post(srv.URL+"/tenants/1/promotions/2/usages", "application/json",
		strings.NewReader(`{"order_id":900,"customer_phone":"555-0100"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var rec models.RedemptionRecord
	decode(t, resp, &rec)
	assert.Equal(t, int64(900), rec.OrderID)
	require.NotNil(t, rec.CustomerPhone)
	assert.Equal(t, "555-0100", *rec.CustomerPhone)
	assert.Len(t, catalog.Usages(1), 1)
}

func TestRecordUsageEndpointErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/tenants/1/promotions/99/usages", "application/json", strings.NewReader(`{"order_id":1}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/tenants/1/promotions/2/usages", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBasePriceEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/tenants/1/items/101/bases/1/price?category_id=10")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var one struct {
		BaseID int64  `json:"base_id"`
		Price  string `json:"price"`
	}
	decode(t, resp, &one)
	assert.Equal(t, int64(1), one.BaseID)
	assert.Equal(t, "2.5", one.Price)

	resp, err = http.Get(srv.URL + "/tenants/1/items/101/base-prices?category_id=10&base_id=1&base_id=2")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var many struct {
		Prices map[string]string `json:"prices"`
	}
	decode(t, resp, &many)
	assert.Equal(t, map[string]string{"1": "2.5", "2": "0"}, many.Prices)

	resp, err = http.Get(srv.URL + "/tenants/1/items/101/base-prices?base_id=1")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
