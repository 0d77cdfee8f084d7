package models

import "github.com/shopspring/decimal"

// Selection is a promotion the customer claimed in the UI, with the gift
// items they picked for category-choice rewards.
type Selection struct {
	PromotionID int64        `json:"promotion_id"`
	GiftItems   []GiftChoice `json:"gift_items,omitempty"`
}

type GiftChoice struct {
	MenuItemID int64 `json:"menu_item_id"`
}

// GiftItem is one granted unit of a free menu item.
type GiftItem struct {
	PromotionID int64           `json:"promotion_id"`
	RewardID    int64           `json:"reward_id"`
	MenuItemID  int64           `json:"menu_item_id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
}

type SkipReason string

const (
	SkipPromotionInactive    SkipReason = "promotion_inactive"
	SkipDuplicateSelection   SkipReason = "duplicate_selection"
	SkipNonStackableConflict SkipReason = "non_stackable_conflict"
	SkipConditionsNotMet     SkipReason = "conditions_not_met"
	SkipItemNotFound         SkipReason = "item_not_found"
	SkipItemUnavailable      SkipReason = "item_unavailable"
	SkipWrongCategory        SkipReason = "wrong_category"
	SkipNoGiftSelected       SkipReason = "no_gift_selected"
	SkipUnsupportedReward    SkipReason = "unsupported_reward"
	SkipGiftLimitExceeded    SkipReason = "gift_limit_exceeded"
)

// RewardOutcome records what one reward contributed, or why it did not.
type RewardOutcome struct {
	RewardID int64           `json:"reward_id"`
	Type     RewardType      `json:"type"`
	Discount decimal.Decimal `json:"discount"`
	Granted  int             `json:"granted"`
	Skips    []SkipReason    `json:"skips,omitempty"`
}

// GiftSkip is a declared gift pick that no category-choice reward of the
// promotion accepted.
type GiftSkip struct {
	MenuItemID int64      `json:"menu_item_id"`
	Reason     SkipReason `json:"reason"`
}

// SelectionOutcome is either applied, or skipped with a reason.
type SelectionOutcome struct {
	PromotionID    int64           `json:"promotion_id"`
	Applied        bool            `json:"applied"`
	Skip           SkipReason      `json:"skip,omitempty"`
	TimesQualified int             `json:"times_qualified"`
	Discount       decimal.Decimal `json:"discount"`
	Rewards        []RewardOutcome `json:"rewards,omitempty"`
	GiftSkips      []GiftSkip      `json:"gift_skips,omitempty"`
}

// ApplyResult is advisory: the caller applies the discount to the order and
// persists gift lines, then records usage.
type ApplyResult struct {
	DiscountTotal decimal.Decimal    `json:"discount_total"`
	GiftItems     []GiftItem         `json:"gift_items"`
	Outcomes      []SelectionOutcome `json:"outcomes"`
}
