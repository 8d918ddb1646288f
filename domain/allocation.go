/*
allocation.go - Allocation aggregation

PURPOSE:
  Computes a resource's true aggregate commitment from its raw, possibly
  overlapping allocation records.

AGGREGATION RULES:
  - With no date, utilization sums over ALL allocations on the resource.
    This is deliberate: it answers "how allocated is this person overall",
    not just today. Date-scoped sums are available via TotalUtilizationAt.
  - Overlapping allocations to the SAME project are summed, not
    de-duplicated; each record is a distinct commitment.
  - Records sharing an allocation id are counted once (legacy single-slot
    reconciliation can surface the same record twice).
  - A resource with no allocations aggregates to zero. Never an error.
*/
package domain

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// NormalizeAllocations reconciles the legacy single-slot allocation field
// with the allocation list into one logical set. The list wins when both are
// present; the single slot resolves to "first element". Entries with no id
// and nil slots are dropped defensively, and duplicate ids keep the first
// occurrence.
func NormalizeAllocations(r Resource) []Allocation {
	capHint := len(r.Allocations) + 1
	out := make([]Allocation, 0, capHint)
	seen := make(map[AllocationID]bool, capHint)

	appendOne := func(a Allocation) {
		if a.ID == "" || seen[a.ID] {
			return
		}
		seen[a.ID] = true
		out = append(out, a)
	}

	for _, a := range r.Allocations {
		appendOne(a)
	}
	if r.Allocation != nil {
		appendOne(*r.Allocation)
	}
	return out
}

// TotalUtilization sums utilization over all allocations on the resource,
// regardless of their time ranges.
func TotalUtilization(r Resource) int {
	total := 0
	for _, a := range NormalizeAllocations(r) {
		total += a.Utilization
	}
	return total
}

// TotalUtilizationAt sums utilization over allocations whose inclusive
// [start,end] contains date.
func TotalUtilizationAt(r Resource, date Date) int {
	total := 0
	for _, a := range NormalizeAllocations(r) {
		if a.ActiveOn(date) {
			total += a.Utilization
		}
	}
	return total
}

// IsOverAllocated reports whether the resource's lifetime utilization sum
// exceeds the threshold. Threshold comes from SystemConfig and may exceed
// 100 to explicitly permit overbooking.
func IsOverAllocated(r Resource, threshold int) bool {
	return TotalUtilization(r) > threshold
}

// Availability returns the resource's free hours for the week starting at
// weekStart: capacity * (1 - utilization/100), with utilization taken as of
// that day. The raw value may be negative; negative availability is
// meaningful for conflict detection and must not be floored here. Clamping
// is display-only (ClampAvailability).
func Availability(r Resource, weekStart Date, capacityHoursPerWeek decimal.Decimal) decimal.Decimal {
	util := decimal.NewFromInt(int64(TotalUtilizationAt(r, weekStart)))
	free := decimal.NewFromInt(1).Sub(util.Div(hundred))
	return capacityHoursPerWeek.Mul(free)
}

// ClampAvailability floors negative availability at zero for display.
func ClampAvailability(hours decimal.Decimal) decimal.Decimal {
	if hours.IsNegative() {
		return decimal.Zero
	}
	return hours
}

// ResourceUtilization is the per-resource summary exposed to callers.
type ResourceUtilization struct {
	ResourceID    ResourceID
	Total         int
	OverAllocated bool
}

// UtilizationSummary computes the utilization figures for a resource against
// the configured threshold. When asOf is non-nil the Total restricts to
// allocations active on that date; the over-allocation check always uses the
// lifetime sum, matching the system's default behavior.
func UtilizationSummary(r Resource, cfg SystemConfig, asOf *Date) ResourceUtilization {
	total := TotalUtilization(r)
	summary := ResourceUtilization{
		ResourceID:    r.ID,
		Total:         total,
		OverAllocated: total > cfg.OverallocationThreshold(),
	}
	if asOf != nil {
		summary.Total = TotalUtilizationAt(r, *asOf)
	}
	return summary
}
