package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

type RewardType string

const (
	RewardFreeItem        RewardType = "free_item"
	RewardDiscountPercent RewardType = "discount_percent"
	RewardDiscountFixed   RewardType = "discount_fixed"
	RewardFixedPrice      RewardType = "fixed_price"
)

var (
	ErrInvalidReward         = errors.New("invalid promotion reward")
	ErrUnknownRewardType     = errors.New("unknown reward type")
	ErrAmbiguousFreeItem     = errors.New("free item reward has both an item and a category target")
	ErrMissingFreeItemTarget = errors.New("free item reward has neither an item nor a category target")
)

// Reward is one of FreeItemReward, CategoryChoiceReward, PercentDiscountReward,
// FixedDiscountReward or FixedPriceReward.
type Reward interface {
	Type() RewardType
	isReward()
}

// FreeItemReward grants a specific menu item. MaxSelectable is per
// qualification; 0 means the configured default.
type FreeItemReward struct {
	MenuItemID    int64
	ItemName      string
	MaxSelectable int
}

// CategoryChoiceReward lets the customer pick gifts inside a category.
type CategoryChoiceReward struct {
	CategoryID    int64
	CategoryName  string
	MaxSelectable int
}

type PercentDiscountReward struct {
	Percent decimal.Decimal
}

type FixedDiscountReward struct {
	Amount decimal.Decimal
}

// FixedPriceReward is reserved; the applier does not grant it yet.
type FixedPriceReward struct {
	Price decimal.Decimal
}

func (FreeItemReward) Type() RewardType        { return RewardFreeItem }
func (CategoryChoiceReward) Type() RewardType  { return RewardFreeItem }
func (PercentDiscountReward) Type() RewardType { return RewardDiscountPercent }
func (FixedDiscountReward) Type() RewardType   { return RewardDiscountFixed }
func (FixedPriceReward) Type() RewardType      { return RewardFixedPrice }

func (FreeItemReward) isReward()        {}
func (CategoryChoiceReward) isReward()  {}
func (PercentDiscountReward) isReward() {}
func (FixedDiscountReward) isReward()   {}
func (FixedPriceReward) isReward()      {}

// RewardSpec is the loosely typed shape a reward is stored in.
type RewardSpec struct {
	Type               RewardType      `json:"type"`
	RewardMenuItemID   *int64          `json:"reward_menu_item_id,omitempty"`
	RewardItemName     string          `json:"reward_item_name,omitempty"`
	RewardCategoryID   *int64          `json:"reward_category_id,omitempty"`
	RewardCategoryName string          `json:"reward_category_name,omitempty"`
	Value              decimal.Decimal `json:"value"`
	MaxSelectable      *int            `json:"max_selectable,omitempty"`
}

// NewReward validates a stored reward and returns its typed variant.
// MaxSelectable is left at 0 when unset so the engine can apply its default.
func NewReward(spec RewardSpec) (Reward, error) {
	maxSelectable := 0
	if spec.MaxSelectable != nil && *spec.MaxSelectable > 0 {
		maxSelectable = *spec.MaxSelectable
	}

	switch spec.Type {
	case RewardFreeItem:
		switch {
		case spec.RewardMenuItemID != nil && spec.RewardCategoryID != nil:
			return nil, ErrAmbiguousFreeItem
		case spec.RewardMenuItemID != nil:
			return FreeItemReward{
				MenuItemID:    *spec.RewardMenuItemID,
				ItemName:      spec.RewardItemName,
				MaxSelectable: maxSelectable,
			}, nil
		case spec.RewardCategoryID != nil:
			return CategoryChoiceReward{
				CategoryID:    *spec.RewardCategoryID,
				CategoryName:  spec.RewardCategoryName,
				MaxSelectable: maxSelectable,
			}, nil
		default:
			return nil, ErrMissingFreeItemTarget
		}
	case RewardDiscountPercent:
		if !spec.Value.IsPositive() || spec.Value.GreaterThan(decimal.NewFromInt(100)) {
			return nil, fmt.Errorf("%w: percent %s out of range", ErrInvalidReward, spec.Value)
		}
		return PercentDiscountReward{Percent: spec.Value}, nil
	case RewardDiscountFixed:
		if !spec.Value.IsPositive() {
			return nil, fmt.Errorf("%w: fixed discount %s must be positive", ErrInvalidReward, spec.Value)
		}
		return FixedDiscountReward{Amount: spec.Value}, nil
	case RewardFixedPrice:
		if spec.Value.IsNegative() {
			return nil, fmt.Errorf("%w: fixed price %s is negative", ErrInvalidReward, spec.Value)
		}
		return FixedPriceReward{Price: spec.Value}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRewardType, spec.Type)
	}
}

// SpecOf is the inverse of NewReward.
func SpecOf(r Reward) RewardSpec {
	spec := RewardSpec{Value: decimal.Zero}
	if r == nil {
		return spec
	}
	spec.Type = r.Type()
	capOf := func(n int) *int {
		if n <= 0 {
			return nil
		}
		return &n
	}
	switch v := r.(type) {
	case FreeItemReward:
		id := v.MenuItemID
		spec.RewardMenuItemID = &id
		spec.RewardItemName = v.ItemName
		spec.MaxSelectable = capOf(v.MaxSelectable)
	case CategoryChoiceReward:
		id := v.CategoryID
		spec.RewardCategoryID = &id
		spec.RewardCategoryName = v.CategoryName
		spec.MaxSelectable = capOf(v.MaxSelectable)
	case PercentDiscountReward:
		spec.Value = v.Percent
	case FixedDiscountReward:
		spec.Value = v.Amount
	case FixedPriceReward:
		spec.Value = v.Price
	}
	return spec
}
