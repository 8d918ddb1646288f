package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/freeup86/resource-pulse-sub002/domain"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func alloc(id, project string, util int, start, end domain.Date) domain.Allocation {
	return domain.Allocation{
		ID:          domain.AllocationID(id),
		ResourceID:  "res-1",
		ProjectID:   domain.ProjectID(project),
		StartDate:   start,
		EndDate:     end,
		Utilization: util,
	}
}

func q1() (domain.Date, domain.Date) {
	return domain.NewDate(2026, time.January, 1), domain.NewDate(2026, time.March, 31)
}

func q2() (domain.Date, domain.Date) {
	return domain.NewDate(2026, time.April, 1), domain.NewDate(2026, time.June, 30)
}

// =============================================================================
// AGGREGATION TESTS
// =============================================================================

func TestTotalUtilization_EmptySet_Zero(t *testing.T) {
	// GIVEN: A resource with no allocations at all
	// THEN: Aggregation yields zero, never an error
	r := domain.Resource{ID: "res-1", Name: "Empty"}

	assert.Equal(t, 0, domain.TotalUtilization(r))
	assert.False(t, domain.IsOverAllocated(r, 100))

	summary := domain.UtilizationSummary(r, domain.DefaultSystemConfig(), nil)
	assert.Equal(t, 0, summary.Total)
	assert.False(t, summary.OverAllocated)
}

func TestTotalUtilization_SumsAcrossProjects(t *testing.T) {
	s, e := q1()
	r := domain.Resource{
		ID: "res-1",
		Allocations: []domain.Allocation{
			alloc("a1", "proj-a", 50, s, e),
			alloc("a2", "proj-b", 30, s, e),
		},
	}
	assert.Equal(t, 80, domain.TotalUtilization(r))
}

func TestTotalUtilization_SameProjectOverlap_Summed(t *testing.T) {
	// Two overlapping records on the same project are distinct
	// commitments, both count.
	s, e := q1()
	r := domain.Resource{
		ID: "res-1",
		Allocations: []domain.Allocation{
			alloc("a1", "proj-a", 40, s, e),
			alloc("a2", "proj-a", 40, s, e),
		},
	}
	assert.Equal(t, 80, domain.TotalUtilization(r))
}

func TestTotalUtilization_DuplicateID_CountedOnce(t *testing.T) {
	// GIVEN: The same allocation record surfaces twice (legacy single-slot
	//        field reconciled alongside the list)
	// THEN: It contributes once
	s, e := q1()
	a := alloc("a1", "proj-a", 60, s, e)
	r := domain.Resource{
		ID:          "res-1",
		Allocation:  &a,
		Allocations: []domain.Allocation{a},
	}
	assert.Equal(t, 60, domain.TotalUtilization(r))
}

func TestNormalizeAllocations_ListWinsOverSingleSlot(t *testing.T) {
	s, e := q1()
	single := alloc("a-single", "proj-a", 20, s, e)
	r := domain.Resource{
		ID:         "res-1",
		Allocation: &single,
		Allocations: []domain.Allocation{
			alloc("a1", "proj-b", 50, s, e),
		},
	}

	out := domain.NormalizeAllocations(r)
	assert.Len(t, out, 2)
	assert.Equal(t, domain.AllocationID("a1"), out[0].ID, "list entries come first")
	assert.Equal(t, domain.AllocationID("a-single"), out[1].ID)
}

func TestNormalizeAllocations_DropsEmptyIDs(t *testing.T) {
	s, e := q1()
	r := domain.Resource{
		ID: "res-1",
		Allocations: []domain.Allocation{
			alloc("", "proj-a", 50, s, e),
			alloc("a1", "proj-b", 30, s, e),
		},
	}
	assert.Len(t, domain.NormalizeAllocations(r), 1)
}

func TestTotalUtilizationAt_DateScoped(t *testing.T) {
	// GIVEN: One Q1 allocation and one Q2 allocation
	// WHEN: Summing as of a Q1 date
	// THEN: Only the active allocation counts
	s1, e1 := q1()
	s2, e2 := q2()
	r := domain.Resource{
		ID: "res-1",
		Allocations: []domain.Allocation{
			alloc("a1", "proj-a", 70, s1, e1),
			alloc("a2", "proj-b", 50, s2, e2),
		},
	}

	feb := domain.NewDate(2026, time.February, 15)
	assert.Equal(t, 70, domain.TotalUtilizationAt(r, feb))
	assert.Equal(t, 120, domain.TotalUtilization(r), "lifetime sum includes both")

	// Boundary days are inclusive on both ends.
	assert.Equal(t, 70, domain.TotalUtilizationAt(r, s1))
	assert.Equal(t, 70, domain.TotalUtilizationAt(r, e1))
}

func TestUtilizationSummary_OverAllocationUsesLifetimeSum(t *testing.T) {
	// The over-allocation flag deliberately uses the lifetime sum even when
	// the total is date-scoped via asOf.
	s1, e1 := q1()
	s2, e2 := q2()
	r := domain.Resource{
		ID: "res-1",
		Allocations: []domain.Allocation{
			alloc("a1", "proj-a", 70, s1, e1),
			alloc("a2", "proj-b", 50, s2, e2),
		},
	}

	feb := domain.NewDate(2026, time.February, 15)
	summary := domain.UtilizationSummary(r, domain.DefaultSystemConfig(), &feb)
	assert.Equal(t, 70, summary.Total, "total is date-scoped")
	assert.True(t, summary.OverAllocated, "flag still reflects the 120% lifetime sum")
}

func TestIsOverAllocated_ThresholdBoundary(t *testing.T) {
	s, e := q1()
	r := domain.Resource{
		ID:          "res-1",
		Allocations: []domain.Allocation{alloc("a1", "proj-a", 100, s, e)},
	}

	assert.False(t, domain.IsOverAllocated(r, 100), "exactly at threshold is not over")

	r.Allocations = append(r.Allocations, alloc("a2", "proj-b", 1, s, e))
	assert.True(t, domain.IsOverAllocated(r, 100))
}

func TestOverallocationThreshold_ConfigVariants(t *testing.T) {
	tests := []struct {
		name string
		cfg  domain.SystemConfig
		want int
	}{
		{"default", domain.DefaultSystemConfig(), 100},
		{"overbooking permitted", domain.SystemConfig{AllowOverallocation: true, MaxUtilizationPercentage: 120}, 120},
		{"overbooking off ignores max", domain.SystemConfig{AllowOverallocation: false, MaxUtilizationPercentage: 120}, 100},
		{"zero max falls back", domain.SystemConfig{AllowOverallocation: true}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.OverallocationThreshold())
		})
	}
}

// =============================================================================
// AVAILABILITY TESTS
// =============================================================================

func TestAvailability_NegativeNotFloored(t *testing.T) {
	// GIVEN: 120% utilization on a 40h week
	// THEN: Availability is -8h raw; clamping is display-only
	s, e := q1()
	r := domain.Resource{
		ID: "res-1",
		Allocations: []domain.Allocation{
			alloc("a1", "proj-a", 70, s, e),
			alloc("a2", "proj-b", 50, s, e),
		},
	}

	week := domain.NewDate(2026, time.February, 2)
	avail := domain.Availability(r, week, decimal.NewFromInt(40))
	assert.True(t, avail.Equal(decimal.NewFromInt(-8)), "got %s", avail)
	assert.True(t, domain.ClampAvailability(avail).IsZero())
}

func TestAvailability_FreeCapacity(t *testing.T) {
	s, e := q1()
	r := domain.Resource{
		ID:          "res-1",
		Allocations: []domain.Allocation{alloc("a1", "proj-a", 50, s, e)},
	}

	week := domain.NewDate(2026, time.February, 2)
	avail := domain.Availability(r, week, decimal.NewFromInt(40))
	assert.True(t, avail.Equal(decimal.NewFromInt(20)), "got %s", avail)
}
