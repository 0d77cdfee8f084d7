package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Promotion struct {
	ID               int64      `json:"id"`
	TenantID         int64      `json:"tenant_id"`
	Name             string     `json:"name"`
	Description      string     `json:"description,omitempty"`
	IsActive         bool       `json:"is_active"`
	StartAt          *time.Time `json:"start_at,omitempty"`
	EndAt            *time.Time `json:"end_at,omitempty"`
	ActiveHoursStart *TimeOfDay `json:"active_hours_start,omitempty"`
	ActiveHoursEnd   *TimeOfDay `json:"active_hours_end,omitempty"`
	// 0=Sunday..6=Saturday; empty means every day
	ActiveDays   []int             `json:"active_days,omitempty"`
	Priority     int               `json:"priority"`
	Stackable    bool              `json:"stackable"`
	GiftRequired bool              `json:"gift_required"`
	Rules        []PromotionRule   `json:"rules"`
	Rewards      []PromotionReward `json:"rewards"`
}

type PromotionRule struct {
	ID                   int64  `json:"id"`
	PromotionID          int64  `json:"promotion_id"`
	RequiredCategoryID   int64  `json:"required_category_id"`
	RequiredCategoryName string `json:"required_category_name,omitempty"`
	MinQuantity          int    `json:"min_quantity"`
}

// PromotionReward pairs a stored reward row id with its validated variant.
type PromotionReward struct {
	ID          int64
	PromotionID int64
	Reward      Reward
}

type promotionRewardJSON struct {
	ID          int64 `json:"id"`
	PromotionID int64 `json:"promotion_id"`
	RewardSpec
}

// MarshalJSON writes the reward in its stored shape so it can be read back
// through NewReward.
func (pr PromotionReward) MarshalJSON() ([]byte, error) {
	return json.Marshal(promotionRewardJSON{
		ID:          pr.ID,
		PromotionID: pr.PromotionID,
		RewardSpec:  SpecOf(pr.Reward),
	})
}

func (pr *PromotionReward) UnmarshalJSON(data []byte) error {
	var raw promotionRewardJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	reward, err := NewReward(raw.RewardSpec)
	if err != nil {
		return fmt.Errorf("reward %d: %w", raw.ID, err)
	}
	*pr = PromotionReward{ID: raw.ID, PromotionID: raw.PromotionID, Reward: reward}
	return nil
}

// TimeOfDay is a wall-clock time expressed as seconds since midnight.
type TimeOfDay int

const secondsPerDay = 24 * 60 * 60

// ParseTimeOfDay accepts HH:MM or HH:MM:SS.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	limits := []int{23, 59, 59}
	total := 0
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 || v > limits[i] {
			return 0, fmt.Errorf("invalid time of day %q", s)
		}
		switch i {
		case 0:
			total += v * 3600
		case 1:
			total += v * 60
		default:
			total += v
		}
	}
	return TimeOfDay(total), nil
}

// TimeOfDayOf returns the wall-clock time of t in its own location.
func TimeOfDayOf(t time.Time) TimeOfDay {
	h, m, s := t.Clock()
	return TimeOfDay(h*3600 + m*60 + s)
}

func (t TimeOfDay) String() string {
	v := int(t) % secondsPerDay
	return fmt.Sprintf("%02d:%02d:%02d", v/3600, (v%3600)/60, v%60)
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(text []byte) error {
	v, err := ParseTimeOfDay(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
