package models

import "github.com/shopspring/decimal"

type EligibilityResult struct {
	PromotionID    int64          `json:"promotion_id"`
	Name           string         `json:"name"`
	Priority       int            `json:"priority"`
	Stackable      bool           `json:"stackable"`
	GiftRequired   bool           `json:"gift_required"`
	Met            bool           `json:"met"`
	TimesQualified int            `json:"times_qualified"`
	Rules          []RuleProgress `json:"rules"`
	Rewards        []RewardInfo   `json:"rewards"`
}

type RuleProgress struct {
	CategoryID   int64  `json:"category_id"`
	CategoryName string `json:"category_name,omitempty"`
	Required     int    `json:"required"`
	Current      int    `json:"current"`
	Met          bool   `json:"met"`
}

// RewardInfo is display metadata; nothing is applied from it.
type RewardInfo struct {
	RewardID      int64            `json:"reward_id"`
	Type          RewardType       `json:"type"`
	MenuItemID    *int64           `json:"menu_item_id,omitempty"`
	ItemName      string           `json:"item_name,omitempty"`
	CategoryID    *int64           `json:"category_id,omitempty"`
	CategoryName  string           `json:"category_name,omitempty"`
	MaxSelectable int              `json:"max_selectable,omitempty"`
	Value         *decimal.Decimal `json:"value,omitempty"`
}

// DescribeReward flattens a reward variant for display.
func DescribeReward(pr PromotionReward) RewardInfo {
	info := RewardInfo{RewardID: pr.ID}
	if pr.Reward == nil {
		return info
	}
	info.Type = pr.Reward.Type()
	switch r := pr.Reward.(type) {
	case FreeItemReward:
		id := r.MenuItemID
		info.MenuItemID = &id
		info.ItemName = r.ItemName
		info.MaxSelectable = r.MaxSelectable
	case CategoryChoiceReward:
		id := r.CategoryID
		info.CategoryID = &id
		info.CategoryName = r.CategoryName
		info.MaxSelectable = r.MaxSelectable
	case PercentDiscountReward:
		v := r.Percent
		info.Value = &v
	case FixedDiscountReward:
		v := r.Amount
		info.Value = &v
	case FixedPriceReward:
		v := r.Price
		info.Value = &v
	}
	return info
}
