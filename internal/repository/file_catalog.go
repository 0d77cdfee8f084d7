package repository

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/Cheertaboi/restaurant-promo-engine/internal/models"
)

type catalogFile struct {
	Tenants []tenantFile `yaml:"tenants"`
}

type tenantFile struct {
	ID         int64           `yaml:"id"`
	Categories []categoryFile  `yaml:"categories"`
	MenuItems  []menuItemFile  `yaml:"menu_items"`
	Promotions []promotionFile `yaml:"promotions"`
	PriceRules []priceRuleFile `yaml:"price_rules"`
}

type categoryFile struct {
	ID   int64  `yaml:"id"`
	Name string `yaml:"name"`
}

type menuItemFile struct {
	ID         int64  `yaml:"id"`
	CategoryID int64  `yaml:"category_id"`
	Name       string `yaml:"name"`
	Price      string `yaml:"price"`
	Available  *bool  `yaml:"available"`
}

type promotionFile struct {
	ID           int64        `yaml:"id"`
	Name         string       `yaml:"name"`
	Description  string       `yaml:"description"`
	Active       *bool        `yaml:"active"`
	StartAt      *time.Time   `yaml:"start_at"`
	EndAt        *time.Time   `yaml:"end_at"`
	HoursStart   string       `yaml:"active_hours_start"`
	HoursEnd     string       `yaml:"active_hours_end"`
	Days         []int        `yaml:"active_days"`
	Priority     int          `yaml:"priority"`
	Stackable    bool         `yaml:"stackable"`
	GiftRequired bool         `yaml:"gift_required"`
	Rules        []ruleFile   `yaml:"rules"`
	Rewards      []rewardFile `yaml:"rewards"`
}

type ruleFile struct {
	ID          int64 `yaml:"id"`
	CategoryID  int64 `yaml:"category_id"`
	MinQuantity int   `yaml:"min_quantity"`
}

type rewardFile struct {
	ID            int64  `yaml:"id"`
	Type          string `yaml:"type"`
	MenuItemID    *int64 `yaml:"menu_item_id"`
	CategoryID    *int64 `yaml:"category_id"`
	Value         string `yaml:"value"`
	MaxSelectable *int   `yaml:"max_selectable"`
}

type priceRuleFile struct {
	ID      int64  `yaml:"id"`
	BaseID  int64  `yaml:"base_id"`
	Scope   string `yaml:"scope"`
	ScopeID int64  `yaml:"scope_id"`
	Delta   string `yaml:"delta"`
}

type tenantCatalog struct {
	promotions []models.Promotion
	items      map[int64]models.MenuItem
	rules      []models.PriceRule
}

// FileCatalog serves a read-only catalog loaded from YAML and keeps usages in
// memory. It satisfies every store the services need, for local runs and
// tests.
type FileCatalog struct {
	tenants map[int64]*tenantCatalog

	mu     sync.Mutex
	usages map[[2]int64]models.RedemptionRecord
}

func LoadFileCatalog(path string) (*FileCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseFileCatalog(data)
}

// ParseFileCatalog builds a catalog from YAML. Unlike the database store it
// rejects malformed rewards outright.
func ParseFileCatalog(data []byte) (*FileCatalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &FileCatalog{
		tenants: make(map[int64]*tenantCatalog, len(f.Tenants)),
		usages:  make(map[[2]int64]models.RedemptionRecord),
	}
	for _, t := range f.Tenants {
		tc, err := buildTenant(t)
		if err != nil {
			return nil, fmt.Errorf("tenant %d: %w", t.ID, err)
		}
		c.tenants[t.ID] = tc
	}
	return c, nil
}

func buildTenant(t tenantFile) (*tenantCatalog, error) {
	categories := make(map[int64]string, len(t.Categories))
	for _, cat := range t.Categories {
		categories[cat.ID] = cat.Name
	}

	tc := &tenantCatalog{items: make(map[int64]models.MenuItem, len(t.MenuItems))}
	for _, it := range t.MenuItems {
		price, err := parseMoney(it.Price)
		if err != nil {
			return nil, fmt.Errorf("menu item %d: %w", it.ID, err)
		}
		tc.items[it.ID] = models.MenuItem{
			ID:          it.ID,
			TenantID:    t.ID,
			CategoryID:  it.CategoryID,
			Name:        it.Name,
			Price:       price,
			IsAvailable: it.Available == nil || *it.Available,
		}
	}

	for _, pf := range t.Promotions {
		p, err := buildPromotion(t.ID, pf, categories, tc.items)
		if err != nil {
			return nil, fmt.Errorf("promotion %d: %w", pf.ID, err)
		}
		tc.promotions = append(tc.promotions, p)
	}
	sort.Slice(tc.promotions, func(i, j int) bool { return tc.promotions[i].ID < tc.promotions[j].ID })

	for _, rf := range t.PriceRules {
		delta, err := parseMoney(rf.Delta)
		if err != nil {
			return nil, fmt.Errorf("price rule %d: %w", rf.ID, err)
		}
		scope := models.ScopeType(rf.Scope)
		if scope != models.ScopeCategory && scope != models.ScopeItem {
			return nil, fmt.Errorf("price rule %d: unknown scope %q", rf.ID, rf.Scope)
		}
		tc.rules = append(tc.rules, models.PriceRule{
			ID:         rf.ID,
			TenantID:   t.ID,
			TargetType: models.TargetBase,
			TargetID:   rf.BaseID,
			ScopeType:  scope,
			ScopeID:    rf.ScopeID,
			PriceDelta: delta,
		})
	}
	sort.Slice(tc.rules, func(i, j int) bool { return tc.rules[i].ID < tc.rules[j].ID })
	return tc, nil
}

func buildPromotion(tenantID int64, pf promotionFile, categories map[int64]string, items map[int64]models.MenuItem) (models.Promotion, error) {
	p := models.Promotion{
		ID:           pf.ID,
		TenantID:     tenantID,
		Name:         pf.Name,
		Description:  pf.Description,
		IsActive:     pf.Active == nil || *pf.Active,
		StartAt:      pf.StartAt,
		EndAt:        pf.EndAt,
		ActiveDays:   pf.Days,
		Priority:     pf.Priority,
		Stackable:    pf.Stackable,
		GiftRequired: pf.GiftRequired,
		Rules:        []models.PromotionRule{},
		Rewards:      []models.PromotionReward{},
	}
	if pf.HoursStart != "" && pf.HoursEnd != "" {
		start, err := models.ParseTimeOfDay(pf.HoursStart)
		if err != nil {
			return p, err
		}
		end, err := models.ParseTimeOfDay(pf.HoursEnd)
		if err != nil {
			return p, err
		}
		p.ActiveHoursStart, p.ActiveHoursEnd = &start, &end
	}

	for _, rf := range pf.Rules {
		p.Rules = append(p.Rules, models.PromotionRule{
			ID:                   rf.ID,
			PromotionID:          pf.ID,
			RequiredCategoryID:   rf.CategoryID,
			RequiredCategoryName: categories[rf.CategoryID],
			MinQuantity:          rf.MinQuantity,
		})
	}

	for _, rw := range pf.Rewards {
		value, err := parseMoney(rw.Value)
		if err != nil {
			return p, fmt.Errorf("reward %d: %w", rw.ID, err)
		}
		spec := models.RewardSpec{
			Type:             models.RewardType(rw.Type),
			RewardMenuItemID: rw.MenuItemID,
			RewardCategoryID: rw.CategoryID,
			Value:            value,
			MaxSelectable:    rw.MaxSelectable,
		}
		if rw.MenuItemID != nil {
			spec.RewardItemName = items[*rw.MenuItemID].Name
		}
		if rw.CategoryID != nil {
			spec.RewardCategoryName = categories[*rw.CategoryID]
		}
		reward, err := models.NewReward(spec)
		if err != nil {
			return p, fmt.Errorf("reward %d: %w", rw.ID, err)
		}
		p.Rewards = append(p.Rewards, models.PromotionReward{ID: rw.ID, PromotionID: pf.ID, Reward: reward})
	}
	return p, nil
}

func parseMoney(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func (c *FileCatalog) ListPromotions(_ context.Context, tenantID int64) ([]models.Promotion, error) {
	t, ok := c.tenants[tenantID]
	if !ok {
		return []models.Promotion{}, nil
	}
	return slices.Clone(t.promotions), nil
}

func (c *FileCatalog) PromotionExists(_ context.Context, tenantID, promotionID int64) (bool, error) {
	t, ok := c.tenants[tenantID]
	if !ok {
		return false, nil
	}
	return slices.ContainsFunc(t.promotions, func(p models.Promotion) bool { return p.ID == promotionID }), nil
}

func (c *FileCatalog) GetMenuItems(_ context.Context, tenantID int64, ids []int64) (map[int64]models.MenuItem, error) {
	out := make(map[int64]models.MenuItem, len(ids))
	t, ok := c.tenants[tenantID]
	if !ok {
		return out, nil
	}
	for _, id := range ids {
		if it, ok := t.items[id]; ok {
			out[id] = it
		}
	}
	return out, nil
}

func (c *FileCatalog) FindBaseRule(ctx context.Context, tenantID, baseID int64, scope models.ScopeType, scopeID int64) (*models.PriceRule, error) {
	rules, err := c.FindBaseRules(ctx, tenantID, []int64{baseID}, scope, scopeID)
	if err != nil || len(rules) == 0 {
		return nil, err
	}
	return &rules[0], nil
}

func (c *FileCatalog) FindBaseRules(_ context.Context, tenantID int64, baseIDs []int64, scope models.ScopeType, scopeID int64) ([]models.PriceRule, error) {
	out := []models.PriceRule{}
	t, ok := c.tenants[tenantID]
	if !ok {
		return out, nil
	}
	for _, r := range t.rules {
		if r.ScopeType == scope && r.ScopeID == scopeID && slices.Contains(baseIDs, r.TargetID) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (c *FileCatalog) InsertUsage(_ context.Context, rec models.RedemptionRecord) (models.RedemptionRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := [2]int64{rec.PromotionID, rec.OrderID}
	if existing, ok := c.usages[key]; ok {
		return existing, nil
	}
	c.usages[key] = rec
	return rec, nil
}

// Usages returns the recorded redemptions of a tenant, oldest first.
func (c *FileCatalog) Usages(tenantID int64) []models.RedemptionRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []models.RedemptionRecord
	for _, rec := range c.usages {
		if rec.TenantID == tenantID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UsedAt.Equal(out[j].UsedAt) {
			return out[i].UsedAt.Before(out[j].UsedAt)
		}
		return out[i].OrderID < out[j].OrderID
	})
	return out
}
