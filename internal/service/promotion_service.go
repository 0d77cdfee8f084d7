package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Cheertaboi/restaurant-promo-engine/internal/models"
)

// Repos required by service (use interfaces to allow mocking)
type PromotionRepo interface {
	ListPromotions(ctx context.Context, tenantID int64) ([]models.Promotion, error)
	PromotionExists(ctx context.Context, tenantID, promotionID int64) (bool, error)
}

type MenuItemRepo interface {
	GetMenuItems(ctx context.Context, tenantID int64, ids []int64) (map[int64]models.MenuItem, error)
}

// UsageRepo stores redemptions. InsertUsage returns the stored record, which
// is the earlier one when the (promotion, order) pair was already recorded.
type UsageRepo interface {
	InsertUsage(ctx context.Context, rec models.RedemptionRecord) (models.RedemptionRecord, error)
}

var ErrPromotionNotFound = errors.New("promotion not found")

// checkoutTimeout bounds the store reads of one ValidateAndApply call.
const checkoutTimeout = 8 * time.Second

type PromotionService struct {
	logger     *slog.Logger
	cfg        Config
	promotions PromotionRepo
	display    PromotionRepo
	items      MenuItemRepo
	usages     UsageRepo
	now        func() time.Time
}

type Option func(*PromotionService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *PromotionService) { s.now = now }
}

// WithDisplayCatalog sets the catalog read by ActivePromotions and
// CheckEligibility, typically a cache in front of the store. Checkout always
// reads the store.
func WithDisplayCatalog(repo PromotionRepo) Option {
	return func(s *PromotionService) { s.display = repo }
}

func NewPromotionService(logger *slog.Logger, cfg Config, promotions PromotionRepo, items MenuItemRepo, usages UsageRepo, opts ...Option) *PromotionService {
	s := &PromotionService{
		logger:     logger,
		cfg:        cfg,
		promotions: promotions,
		display:    promotions,
		items:      items,
		usages:     usages,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now is the service clock. Handlers use it so every endpoint agrees on the
// current instant.
func (s *PromotionService) Now() time.Time {
	return s.now()
}

// ActivePromotions returns the promotions of tenantID that may fire at now,
// highest priority first.
func (s *PromotionService) ActivePromotions(ctx context.Context, tenantID int64, now time.Time) ([]models.Promotion, error) {
	return s.activeFrom(ctx, s.display, tenantID, now)
}

func (s *PromotionService) activeFrom(ctx context.Context, repo PromotionRepo, tenantID int64, now time.Time) ([]models.Promotion, error) {
	catalog, err := repo.ListPromotions(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list promotions: %w", err)
	}
	return SelectActive(catalog, now, s.cfg.location()), nil
}

// CheckEligibility reports, for every active promotion, how far the cart is
// from qualifying and how many times it qualifies. It has no side effects.
func (s *PromotionService) CheckEligibility(ctx context.Context, tenantID int64, lines []models.CartLine) ([]models.EligibilityResult, error) {
	results := []models.EligibilityResult{}
	if len(lines) == 0 {
		return results, nil
	}

	active, err := s.ActivePromotions(ctx, tenantID, s.now())
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return results, nil
	}

	menu, err := s.lookupItems(ctx, tenantID, missingCategoryItems(lines))
	if err != nil {
		return nil, err
	}
	qty := BuildCategoryQuantities(lines, categoriesOf(menu))

	for _, p := range active {
		res := Evaluate(p, qty)
		res.Rewards = make([]models.RewardInfo, 0, len(p.Rewards))
		for _, pr := range p.Rewards {
			info := models.DescribeReward(pr)
			if info.Type == models.RewardFreeItem {
				info.MaxSelectable = s.cfg.maxSelectable(info.MaxSelectable)
			}
			res.Rewards = append(res.Rewards, info)
		}
		results = append(results, res)
	}
	return results, nil
}

// ValidateAndApply re-validates the customer's claimed promotions against the
// checkout lines and resolves their rewards. Selections that no longer hold
// are skipped and logged; only store failures return an error.
func (s *PromotionService) ValidateAndApply(ctx context.Context, tenantID int64, lines []models.LineItem, selections []models.Selection) (models.ApplyResult, error) {
	result := models.ApplyResult{
		DiscountTotal: decimal.Zero,
		GiftItems:     []models.GiftItem{},
		Outcomes:      []models.SelectionOutcome{},
	}
	if len(selections) == 0 {
		return result, nil
	}

	// short request-scoped deadline to avoid long-running ops
	ctx, cancel := context.WithTimeout(ctx, checkoutTimeout)
	defer cancel()

	active, err := s.activeFrom(ctx, s.promotions, tenantID, s.now())
	if err != nil {
		return result, err
	}
	byID := make(map[int64]models.Promotion, len(active))
	for _, p := range active {
		byID[p.ID] = p
	}

	cart := lineItemsAsCart(lines)
	menu, err := s.lookupItems(ctx, tenantID, checkoutLookupIDs(cart, selections, byID))
	if err != nil {
		return result, err
	}
	qty := BuildCategoryQuantities(cart, categoriesOf(menu))
	subtotal := subtotalOf(lines)

	total := decimal.Zero
	seen := make(map[int64]bool, len(selections))
	nonStackableApplied := false

	for _, sel := range selections {
		outcome := models.SelectionOutcome{PromotionID: sel.PromotionID, Discount: decimal.Zero}

		p, ok := byID[sel.PromotionID]
		switch {
		case !ok:
			outcome.Skip = models.SkipPromotionInactive
		case seen[p.ID]:
			outcome.Skip = models.SkipDuplicateSelection
		case !p.Stackable && nonStackableApplied:
			outcome.Skip = models.SkipNonStackableConflict
		}
		if outcome.Skip != "" {
			s.logSkip(ctx, tenantID, sel.PromotionID, 0, outcome.Skip)
			result.Outcomes = append(result.Outcomes, outcome)
			continue
		}
		seen[p.ID] = true

		ev := Evaluate(p, qty)
		if !ev.Met {
			outcome.Skip = models.SkipConditionsNotMet
			s.logSkip(ctx, tenantID, p.ID, 0, outcome.Skip)
			result.Outcomes = append(result.Outcomes, outcome)
			continue
		}

		outcome.Applied = true
		outcome.TimesQualified = ev.TimesQualified
		consumed := make(map[int]bool, len(sel.GiftItems))
		outcome.GiftSkips = s.screenChoices(ctx, tenantID, p, sel.GiftItems, menu, consumed)
		for _, pr := range p.Rewards {
			ro, gifts := s.applyReward(ctx, tenantID, p.ID, pr, ev.TimesQualified, sel.GiftItems, consumed, menu, subtotal)
			outcome.Rewards = append(outcome.Rewards, ro)
			outcome.Discount = outcome.Discount.Add(ro.Discount)
			result.GiftItems = append(result.GiftItems, gifts...)
		}
		total = total.Add(outcome.Discount)
		result.Outcomes = append(result.Outcomes, outcome)

		if !p.Stackable {
			nonStackableApplied = true
		}
	}

	result.DiscountTotal = total.Round(2)
	return result, nil
}

func (s *PromotionService) applyReward(
	ctx context.Context,
	tenantID, promotionID int64,
	pr models.PromotionReward,
	times int,
	choices []models.GiftChoice,
	consumed map[int]bool,
	menu map[int64]models.MenuItem,
	subtotal decimal.Decimal,
) (models.RewardOutcome, []models.GiftItem) {
	out := models.RewardOutcome{RewardID: pr.ID, Discount: decimal.Zero}
	if pr.Reward == nil {
		out.Skips = append(out.Skips, models.SkipUnsupportedReward)
		s.logSkip(ctx, tenantID, promotionID, pr.ID, models.SkipUnsupportedReward)
		return out, nil
	}
	out.Type = pr.Reward.Type()

	grant := func(item models.MenuItem, units int) []models.GiftItem {
		var gifts []models.GiftItem
		for i := 0; i < units; i++ {
			gifts = append(gifts, models.GiftItem{
				PromotionID: promotionID,
				RewardID:    pr.ID,
				MenuItemID:  item.ID,
				Name:        item.Name,
				Price:       item.Price,
			})
			out.Discount = out.Discount.Add(item.Price)
		}
		out.Granted += units
		return gifts
	}

	limitHit := func(limit int) {
		out.Skips = append(out.Skips, models.SkipGiftLimitExceeded)
		s.logSkip(ctx, tenantID, promotionID, pr.ID, models.SkipGiftLimitExceeded, "max_gift_units", limit)
	}

	switch r := pr.Reward.(type) {
	case models.FreeItemReward:
		units, capped := s.cfg.giftUnits(s.cfg.maxSelectable(r.MaxSelectable), times)
		item, ok := menu[r.MenuItemID]
		if !ok {
			out.Skips = append(out.Skips, models.SkipItemNotFound)
			s.logSkip(ctx, tenantID, promotionID, pr.ID, models.SkipItemNotFound)
			return out, nil
		}
		if !item.IsAvailable {
			out.Skips = append(out.Skips, models.SkipItemUnavailable)
			s.logSkip(ctx, tenantID, promotionID, pr.ID, models.SkipItemUnavailable)
			return out, nil
		}
		if capped {
			limitHit(units)
		}
		gifts := grant(item, units)
		return out, gifts

	case models.CategoryChoiceReward:
		// Picks rejected by screenChoices are already consumed.
		limit, capped := s.cfg.giftUnits(s.cfg.maxSelectable(r.MaxSelectable), times)
		var gifts []models.GiftItem
		for i, c := range choices {
			if consumed[i] {
				continue
			}
			item := menu[c.MenuItemID]
			if item.CategoryID != r.CategoryID {
				continue
			}
			if out.Granted >= limit {
				if capped {
					limitHit(limit)
				}
				break
			}
			consumed[i] = true
			gifts = append(gifts, grant(item, 1)...)
		}
		if out.Granted == 0 {
			out.Skips = append(out.Skips, models.SkipNoGiftSelected)
			s.logSkip(ctx, tenantID, promotionID, pr.ID, models.SkipNoGiftSelected)
		}
		return out, gifts

	case models.PercentDiscountReward:
		per := subtotal.Mul(r.Percent).Div(decimal.NewFromInt(100)).Round(2)
		out.Discount = per.Mul(decimal.NewFromInt(int64(times)))
		return out, nil

	case models.FixedDiscountReward:
		out.Discount = r.Amount.Mul(decimal.NewFromInt(int64(times)))
		return out, nil

	default:
		out.Skips = append(out.Skips, models.SkipUnsupportedReward)
		s.logSkip(ctx, tenantID, promotionID, pr.ID, models.SkipUnsupportedReward)
		return out, nil
	}
}

// screenChoices rejects the gift picks that no category-choice reward of p
// can accept, marking them consumed. Each rejected pick is logged once.
func (s *PromotionService) screenChoices(
	ctx context.Context,
	tenantID int64,
	p models.Promotion,
	choices []models.GiftChoice,
	menu map[int64]models.MenuItem,
	consumed map[int]bool,
) []models.GiftSkip {
	categories := map[int64]bool{}
	for _, pr := range p.Rewards {
		if r, ok := pr.Reward.(models.CategoryChoiceReward); ok {
			categories[r.CategoryID] = true
		}
	}
	if len(categories) == 0 {
		return nil
	}

	var skips []models.GiftSkip
	for i, c := range choices {
		item, ok := menu[c.MenuItemID]
		var reason models.SkipReason
		switch {
		case !ok:
			reason = models.SkipItemNotFound
		case !categories[item.CategoryID]:
			reason = models.SkipWrongCategory
		case !item.IsAvailable:
			reason = models.SkipItemUnavailable
		default:
			continue
		}
		consumed[i] = true
		skips = append(skips, models.GiftSkip{MenuItemID: c.MenuItemID, Reason: reason})
		s.logSkip(ctx, tenantID, p.ID, 0, reason, "menu_item_id", c.MenuItemID)
	}
	return skips
}

// RecordUsage appends a redemption of promotionID on orderID. Call it after
// the order is persisted. Recording the same pair twice returns the first
// record.
func (s *PromotionService) RecordUsage(ctx context.Context, tenantID, promotionID, orderID int64, phone *string) (models.RedemptionRecord, error) {
	ok, err := s.promotions.PromotionExists(ctx, tenantID, promotionID)
	if err != nil {
		return models.RedemptionRecord{}, fmt.Errorf("check promotion: %w", err)
	}
	if !ok {
		return models.RedemptionRecord{}, ErrPromotionNotFound
	}

	rec := models.RedemptionRecord{
		ID:            uuid.New(),
		TenantID:      tenantID,
		PromotionID:   promotionID,
		OrderID:       orderID,
		CustomerPhone: normalizePhone(phone),
		UsedAt:        s.now().UTC(),
	}
	stored, err := s.usages.InsertUsage(ctx, rec)
	if err != nil {
		return models.RedemptionRecord{}, fmt.Errorf("record usage: %w", err)
	}
	return stored, nil
}

func (s *PromotionService) lookupItems(ctx context.Context, tenantID int64, ids []int64) (map[int64]models.MenuItem, error) {
	if len(ids) == 0 {
		return map[int64]models.MenuItem{}, nil
	}
	items, err := s.items.GetMenuItems(ctx, tenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("lookup menu items: %w", err)
	}
	return items, nil
}

func (s *PromotionService) logSkip(ctx context.Context, tenantID, promotionID, rewardID int64, reason models.SkipReason, extra ...any) {
	attrs := []any{"tenant_id", tenantID, "promotion_id", promotionID, "reason", string(reason)}
	if rewardID != 0 {
		attrs = append(attrs, "reward_id", rewardID)
	}
	s.logger.WarnContext(ctx, "promotion skipped", append(attrs, extra...)...)
}

func missingCategoryItems(lines []models.CartLine) []int64 {
	var ids []int64
	seen := map[int64]bool{}
	for _, l := range lines {
		if l.CategoryID == nil && !seen[l.MenuItemID] {
			seen[l.MenuItemID] = true
			ids = append(ids, l.MenuItemID)
		}
	}
	return ids
}

// checkoutLookupIDs collects every menu item the applier may need in one
// batch: unresolved cart lines, fixed gift items and declared gift choices.
func checkoutLookupIDs(cart []models.CartLine, selections []models.Selection, active map[int64]models.Promotion) []int64 {
	ids := missingCategoryItems(cart)
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		seen[id] = true
	}
	add := func(id int64) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, sel := range selections {
		p, ok := active[sel.PromotionID]
		if !ok {
			continue
		}
		for _, pr := range p.Rewards {
			if r, ok := pr.Reward.(models.FreeItemReward); ok {
				add(r.MenuItemID)
			}
		}
		for _, c := range sel.GiftItems {
			add(c.MenuItemID)
		}
	}
	return ids
}

func categoriesOf(menu map[int64]models.MenuItem) map[int64]int64 {
	out := make(map[int64]int64, len(menu))
	for id, item := range menu {
		out[id] = item.CategoryID
	}
	return out
}

func subtotalOf(lines []models.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		sum = sum.Add(l.PriceAtOrder.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}

func normalizePhone(phone *string) *string {
	if phone == nil {
		return nil
	}
	p := strings.TrimSpace(*phone)
	if p == "" {
		return nil
	}
	return &p
}
