package domain

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// CAPACITY FORECAST - Per-resource, per-week utilization/availability grid
// =============================================================================

// WeekCell is one resource-week in the forecast grid.
type WeekCell struct {
	WeekStart         Date
	Utilization       int
	AvailabilityHours decimal.Decimal // raw; may be negative
	DisplayHours      decimal.Decimal // clamped at zero
}

// ResourceForecast is a resource's row in the grid.
type ResourceForecast struct {
	ResourceID    ResourceID
	Name          string
	CapacityHours decimal.Decimal
	Weeks         []WeekCell
}

// CapacityForecast builds the per-resource, per-week grid starting from the
// Monday of the week containing start. Resources without a configured weekly
// capacity use defaultCapacityHours. weeks <= 0 yields an empty grid.
func CapacityForecast(resources []Resource, start Date, weeks int, defaultCapacityHours decimal.Decimal) []ResourceForecast {
	if weeks <= 0 {
		return []ResourceForecast{}
	}

	first := start.WeekStart()
	out := make([]ResourceForecast, 0, len(resources))
	for _, r := range resources {
		capacity := r.WeeklyCapacityHours
		if capacity.IsZero() {
			capacity = defaultCapacityHours
		}

		row := ResourceForecast{
			ResourceID:    r.ID,
			Name:          r.Name,
			CapacityHours: capacity,
			Weeks:         make([]WeekCell, 0, weeks),
		}
		for i := 0; i < weeks; i++ {
			week := first.AddWeeks(i)
			avail := Availability(r, week, capacity)
			row.Weeks = append(row.Weeks, WeekCell{
				WeekStart:         week,
				Utilization:       TotalUtilizationAt(r, week),
				AvailabilityHours: avail,
				DisplayHours:      ClampAvailability(avail),
			})
		}
		out = append(out, row)
	}
	return out
}
