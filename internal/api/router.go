package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Cheertaboi/restaurant-promo-engine/internal/api/handlers"
	"github.com/Cheertaboi/restaurant-promo-engine/internal/service"
)

// NewRouter builds the HTTP router for the promo-service
func NewRouter(logger *slog.Logger, promotions *service.PromotionService, pricing *service.PricingService) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	promoHandler := handlers.NewPromotionHandler(logger, promotions)
	pricingHandler := handlers.NewPricingHandler(logger, pricing)

	r.Route("/tenants/{tenantID}", func(r chi.Router) {
		r.Route("/promotions", func(r chi.Router) {
			r.Get("/active", promoHandler.GetActive)
			r.Post("/eligibility", promoHandler.CheckEligibility)
			r.Post("/apply", promoHandler.Apply)
			r.Post("/{promotionID}/usages", promoHandler.RecordUsage)
		})
		r.Route("/items/{itemID}", func(r chi.Router) {
			r.Get("/base-prices", pricingHandler.GetBasePrices)
			r.Get("/bases/{baseID}/price", pricingHandler.GetBasePrice)
		})
	})

	// health
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}
