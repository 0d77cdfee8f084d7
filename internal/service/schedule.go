package service

import (
	"slices"
	"sort"
	"time"

	"github.com/Cheertaboi/restaurant-promo-engine/internal/models"
)

// IsActiveAt reports whether p may fire at now. Hour and weekday windows are
// read on the wall clock of loc.
func IsActiveAt(p models.Promotion, now time.Time, loc *time.Location) bool {
	if !p.IsActive {
		return false
	}
	if p.StartAt != nil && now.Before(*p.StartAt) {
		return false
	}
	if p.EndAt != nil && now.After(*p.EndAt) {
		return false
	}

	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)

	if p.ActiveHoursStart != nil && p.ActiveHoursEnd != nil {
		if !withinHours(models.TimeOfDayOf(local), *p.ActiveHoursStart, *p.ActiveHoursEnd) {
			return false
		}
	}

	if len(p.ActiveDays) > 0 && !slices.Contains(p.ActiveDays, int(local.Weekday())) {
		return false
	}
	return true
}

// withinHours treats start > end as a window that crosses midnight.
func withinHours(t, start, end models.TimeOfDay) bool {
	if start <= end {
		return t >= start && t <= end
	}
	return t >= start || t <= end
}

// SelectActive filters catalog to the promotions active at now, highest
// priority first, ties by ascending id.
func SelectActive(catalog []models.Promotion, now time.Time, loc *time.Location) []models.Promotion {
	active := make([]models.Promotion, 0, len(catalog))
	for _, p := range catalog {
		if IsActiveAt(p, now, loc) {
			active = append(active, p)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		if active[i].Priority != active[j].Priority {
			return active[i].Priority > active[j].Priority
		}
		return active[i].ID < active[j].ID
	})
	return active
}
