package service

import (
	"math"

	"github.com/Cheertaboi/restaurant-promo-engine/internal/models"
)

// BuildCategoryQuantities sums cart quantities per category. Lines without a
// category fall back to resolved[menuItemID]; lines still unresolved, and
// non-positive quantities, contribute nothing. Totals saturate at math.MaxInt.
func BuildCategoryQuantities(lines []models.CartLine, resolved map[int64]int64) models.CategoryQuantities {
	qty := make(models.CategoryQuantities)
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		var categoryID int64
		switch {
		case l.CategoryID != nil:
			categoryID = *l.CategoryID
		default:
			id, ok := resolved[l.MenuItemID]
			if !ok {
				continue
			}
			categoryID = id
		}
		qty[categoryID] = addQuantity(qty[categoryID], l.Quantity)
	}
	return qty
}

func addQuantity(total, n int) int {
	if total > math.MaxInt-n {
		return math.MaxInt
	}
	return total + n
}

// Evaluate checks every rule of p against qty. TimesQualified is the minimum
// of floor(current/required) over all rules, 0 when any rule is unmet and 1
// for a promotion without rules.
func Evaluate(p models.Promotion, qty models.CategoryQuantities) models.EligibilityResult {
	res := models.EligibilityResult{
		PromotionID:  p.ID,
		Name:         p.Name,
		Priority:     p.Priority,
		Stackable:    p.Stackable,
		GiftRequired: p.GiftRequired,
		Rules:        make([]models.RuleProgress, 0, len(p.Rules)),
	}

	if len(p.Rules) == 0 {
		res.Met = true
		res.TimesQualified = 1
		return res
	}

	met := true
	times := -1
	for _, r := range p.Rules {
		current := qty[r.RequiredCategoryID]
		required := r.MinQuantity
		if required < 1 {
			required = 1
		}
		ok := current >= required
		res.Rules = append(res.Rules, models.RuleProgress{
			CategoryID:   r.RequiredCategoryID,
			CategoryName: r.RequiredCategoryName,
			Required:     required,
			Current:      current,
			Met:          ok,
		})
		if !ok {
			met = false
			continue
		}
		if n := current / required; times < 0 || n < times {
			times = n
		}
	}

	res.Met = met
	if met {
		res.TimesQualified = times
	}
	return res
}

func lineItemsAsCart(items []models.LineItem) []models.CartLine {
	lines := make([]models.CartLine, len(items))
	for i, it := range items {
		lines[i] = models.CartLine{
			MenuItemID: it.MenuItemID,
			CategoryID: it.CategoryID,
			Quantity:   it.Quantity,
		}
	}
	return lines
}
