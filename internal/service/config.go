package service

import "time"

const defaultMaxGiftUnits = 100

// Config carries engine defaults. It is passed in explicitly so the engine
// needs no ambient framework state.
type Config struct {
	// DefaultMaxSelectable applies to free-item rewards stored without a cap.
	DefaultMaxSelectable int
	// MaxGiftUnits caps the gift units one reward grants in a single checkout.
	MaxGiftUnits int
	// Location is the tenant's wall clock for hour and weekday windows.
	Location *time.Location
}

func DefaultConfig() Config {
	return Config{DefaultMaxSelectable: 1, MaxGiftUnits: defaultMaxGiftUnits, Location: time.UTC}
}

func (c Config) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

func (c Config) maxSelectable(n int) int {
	if n > 0 {
		return n
	}
	if c.DefaultMaxSelectable > 0 {
		return c.DefaultMaxSelectable
	}
	return 1
}

// giftUnits returns per*times bounded by MaxGiftUnits and reports whether the
// bound was hit. The product is not formed when it would exceed the bound.
func (c Config) giftUnits(per, times int) (int, bool) {
	limit := c.MaxGiftUnits
	if limit <= 0 {
		limit = defaultMaxGiftUnits
	}
	if per <= 0 || times <= 0 {
		return 0, false
	}
	if times > limit/per {
		return limit, true
	}
	return per * times, false
}
