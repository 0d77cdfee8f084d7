package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Cheertaboi/restaurant-promo-engine/internal/models"
)

// PriceRuleRepo reads base price overrides. Both methods return rules ordered
// by ascending id so duplicates resolve to the oldest row.
type PriceRuleRepo interface {
	FindBaseRule(ctx context.Context, tenantID, baseID int64, scope models.ScopeType, scopeID int64) (*models.PriceRule, error)
	FindBaseRules(ctx context.Context, tenantID int64, baseIDs []int64, scope models.ScopeType, scopeID int64) ([]models.PriceRule, error)
}

// PricingService layers category and item overrides into add-on prices.
type PricingService struct {
	rules PriceRuleRepo
}

func NewPricingService(rules PriceRuleRepo) *PricingService {
	return &PricingService{rules: rules}
}

// CalculateBasePrice returns category delta + item delta for baseID, rounded
// to cents. A missing rule contributes zero.
func (s *PricingService) CalculateBasePrice(ctx context.Context, tenantID, itemID, categoryID, baseID int64) (decimal.Decimal, error) {
	price := decimal.Zero

	catRule, err := s.rules.FindBaseRule(ctx, tenantID, baseID, models.ScopeCategory, categoryID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("category price rule: %w", err)
	}
	if catRule != nil {
		price = price.Add(catRule.PriceDelta)
	}

	itemRule, err := s.rules.FindBaseRule(ctx, tenantID, baseID, models.ScopeItem, itemID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("item price rule: %w", err)
	}
	if itemRule != nil {
		price = price.Add(itemRule.PriceDelta)
	}

	return price.Round(2), nil
}

// CalculateBasePricesForItem prices many bases with one query per scope.
// Every requested base id gets an entry.
func (s *PricingService) CalculateBasePricesForItem(ctx context.Context, tenantID, itemID, categoryID int64, baseIDs []int64) (map[int64]decimal.Decimal, error) {
	prices := make(map[int64]decimal.Decimal, len(baseIDs))
	if len(baseIDs) == 0 {
		return prices, nil
	}

	unique := make([]int64, 0, len(baseIDs))
	for _, id := range baseIDs {
		if _, ok := prices[id]; !ok {
			prices[id] = decimal.Zero
			unique = append(unique, id)
		}
	}

	catRules, err := s.rules.FindBaseRules(ctx, tenantID, unique, models.ScopeCategory, categoryID)
	if err != nil {
		return nil, fmt.Errorf("category price rules: %w", err)
	}
	itemRules, err := s.rules.FindBaseRules(ctx, tenantID, unique, models.ScopeItem, itemID)
	if err != nil {
		return nil, fmt.Errorf("item price rules: %w", err)
	}

	for _, layer := range [][]models.PriceRule{catRules, itemRules} {
		for id, delta := range firstPerTarget(layer) {
			if _, ok := prices[id]; ok {
				prices[id] = prices[id].Add(delta)
			}
		}
	}
	for id, p := range prices {
		prices[id] = p.Round(2)
	}
	return prices, nil
}

func firstPerTarget(rules []models.PriceRule) map[int64]decimal.Decimal {
	out := make(map[int64]decimal.Decimal, len(rules))
	for _, r := range rules {
		if _, ok := out[r.TargetID]; !ok {
			out[r.TargetID] = r.PriceDelta
		}
	}
	return out
}
