package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Cheertaboi/restaurant-promo-engine/internal/service"
)

type BasePriceResponse struct {
	BaseID int64           `json:"base_id"`
	Price  decimal.Decimal `json:"price"`
}

type BasePricesResponse struct {
	ItemID int64                     `json:"item_id"`
	Prices map[int64]decimal.Decimal `json:"prices"`
}

type PricingHandler struct {
	logger  *slog.Logger
	service *service.PricingService
}

func NewPricingHandler(logger *slog.Logger, svc *service.PricingService) *PricingHandler {
	return &PricingHandler{logger: logger, service: svc}
}

// GetBasePrice handles GET /tenants/{tenantID}/items/{itemID}/bases/{baseID}/price?category_id=
func (h *PricingHandler) GetBasePrice(w http.ResponseWriter, r *http.Request) {
	tenantID, itemID, categoryID, ok := h.itemScope(w, r)
	if !ok {
		return
	}
	baseID, ok := idParam(r, "baseID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid base id")
		return
	}

	price, err := h.service.CalculateBasePrice(r.Context(), tenantID, itemID, categoryID, baseID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "base price failed", "item_id", itemID, "base_id", baseID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, BasePriceResponse{BaseID: baseID, Price: price})
}

// GetBasePrices handles GET /tenants/{tenantID}/items/{itemID}/base-prices?category_id=&base_id=1&base_id=2
func (h *PricingHandler) GetBasePrices(w http.ResponseWriter, r *http.Request) {
	tenantID, itemID, categoryID, ok := h.itemScope(w, r)
	if !ok {
		return
	}

	var baseIDs []int64
	for _, raw := range r.URL.Query()["base_id"] {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid base_id")
			return
		}
		baseIDs = append(baseIDs, id)
	}

	prices, err := h.service.CalculateBasePricesForItem(r.Context(), tenantID, itemID, categoryID, baseIDs)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "base prices failed", "item_id", itemID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, BasePricesResponse{ItemID: itemID, Prices: prices})
}

func (h *PricingHandler) itemScope(w http.ResponseWriter, r *http.Request) (tenantID, itemID, categoryID int64, ok bool) {
	if tenantID, ok = idParam(r, "tenantID"); !ok {
		writeError(w, http.StatusBadRequest, "invalid tenant id")
		return
	}
	if itemID, ok = idParam(r, "itemID"); !ok {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	categoryID, err := strconv.ParseInt(r.URL.Query().Get("category_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "category_id required")
		return 0, 0, 0, false
	}
	return tenantID, itemID, categoryID, true
}
