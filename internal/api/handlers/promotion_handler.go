package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Cheertaboi/restaurant-promo-engine/internal/models"
	"github.com/Cheertaboi/restaurant-promo-engine/internal/service"
)

// --- Request / Response DTOs ---

type EligibilityRequest struct {
	Lines []models.CartLine `json:"lines"`
}

type EligibilityResponse struct {
	Promotions []models.EligibilityResult `json:"promotions"`
}

type ApplyRequest struct {
	Lines      []models.LineItem  `json:"lines"`
	Selections []models.Selection `json:"selections"`
}

type RecordUsageRequest struct {
	OrderID       int64   `json:"order_id"`
	CustomerPhone *string `json:"customer_phone,omitempty"`
}

type ActiveResponse struct {
	Promotions []models.Promotion `json:"promotions"`
}

type PromotionHandler struct {
	logger  *slog.Logger
	service *service.PromotionService
}

func NewPromotionHandler(logger *slog.Logger, svc *service.PromotionService) *PromotionHandler {
	return &PromotionHandler{logger: logger, service: svc}
}

// GetActive handles GET /tenants/{tenantID}/promotions/active
// Optional ?at=RFC3339 evaluates another instant.
func (h *PromotionHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := idParam(r, "tenantID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid tenant id")
		return
	}

	now := h.service.Now()
	if at := strings.TrimSpace(r.URL.Query().Get("at")); at != "" {
		t, err := time.Parse(time.RFC3339, at)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid at; use RFC3339")
			return
		}
		now = t
	}

	promos, err := h.service.ActivePromotions(r.Context(), tenantID, now)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ActiveResponse{Promotions: promos})
}

// CheckEligibility handles POST /tenants/{tenantID}/promotions/eligibility
func (h *PromotionHandler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := idParam(r, "tenantID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid tenant id")
		return
	}
	var req EligibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	results, err := h.service.CheckEligibility(r.Context(), tenantID, req.Lines)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, EligibilityResponse{Promotions: results})
}

// Apply handles POST /tenants/{tenantID}/promotions/apply
// The result is advisory; nothing is persisted.
func (h *PromotionHandler) Apply(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := idParam(r, "tenantID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid tenant id")
		return
	}
	var req ApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	res, err := h.service.ValidateAndApply(r.Context(), tenantID, req.Lines, req.Selections)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// RecordUsage handles POST /tenants/{tenantID}/promotions/{promotionID}/usages
func (h *PromotionHandler) RecordUsage(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := idParam(r, "tenantID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid tenant id")
		return
	}
	promotionID, ok := idParam(r, "promotionID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid promotion id")
		return
	}
	var req RecordUsageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if req.OrderID <= 0 {
		writeError(w, http.StatusBadRequest, "order_id required")
		return
	}

	rec, err := h.service.RecordUsage(r.Context(), tenantID, promotionID, req.OrderID, req.CustomerPhone)
	if err != nil {
		if errors.Is(err, service.ErrPromotionNotFound) {
			writeError(w, http.StatusNotFound, "promotion_not_found")
			return
		}
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *PromotionHandler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "internal_error")
}
