package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freeup86/resource-pulse-sub002/domain"
)

func TestCapacityForecast_GridShape(t *testing.T) {
	resources := []domain.Resource{
		{ID: "res-1", Name: "Ana", WeeklyCapacityHours: decimal.NewFromInt(40)},
		{ID: "res-2", Name: "Ben", WeeklyCapacityHours: decimal.NewFromInt(32)},
	}

	start := domain.NewDate(2026, time.March, 11) // Wednesday
	grid := domain.CapacityForecast(resources, start, 4, decimal.NewFromInt(40))

	require.Len(t, grid, 2)
	for _, row := range grid {
		require.Len(t, row.Weeks, 4)
		assert.Equal(t, "2026-03-09", row.Weeks[0].WeekStart.String(), "grid starts on the Monday of the start week")
		assert.Equal(t, "2026-03-30", row.Weeks[3].WeekStart.String())
	}
	assert.True(t, grid[1].CapacityHours.Equal(decimal.NewFromInt(32)))
}

func TestCapacityForecast_DefaultCapacityFallback(t *testing.T) {
	// A resource with no configured weekly capacity uses the default.
	resources := []domain.Resource{{ID: "res-1", Name: "Ana"}}

	grid := domain.CapacityForecast(resources, domain.NewDate(2026, time.March, 9), 1, decimal.NewFromInt(40))
	require.Len(t, grid, 1)
	assert.True(t, grid[0].CapacityHours.Equal(decimal.NewFromInt(40)))
	assert.True(t, grid[0].Weeks[0].AvailabilityHours.Equal(decimal.NewFromInt(40)))
}

func TestCapacityForecast_UtilizationPerWeek(t *testing.T) {
	// GIVEN: An allocation covering only the first two weeks of the window
	// THEN: Weeks outside the allocation show full availability
	resources := []domain.Resource{{
		ID:                  "res-1",
		Name:                "Ana",
		WeeklyCapacityHours: decimal.NewFromInt(40),
		Allocations: []domain.Allocation{
			alloc("a1", "proj-a", 50,
				domain.NewDate(2026, time.March, 9),
				domain.NewDate(2026, time.March, 22)),
		},
	}}

	grid := domain.CapacityForecast(resources, domain.NewDate(2026, time.March, 9), 3, decimal.NewFromInt(40))
	require.Len(t, grid, 1)
	weeks := grid[0].Weeks

	assert.Equal(t, 50, weeks[0].Utilization)
	assert.True(t, weeks[0].AvailabilityHours.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, 50, weeks[1].Utilization)
	assert.Equal(t, 0, weeks[2].Utilization)
	assert.True(t, weeks[2].AvailabilityHours.Equal(decimal.NewFromInt(40)))
}

func TestCapacityForecast_OverAllocatedWeek_ClampedDisplay(t *testing.T) {
	resources := []domain.Resource{{
		ID:                  "res-1",
		Name:                "Ben",
		WeeklyCapacityHours: decimal.NewFromInt(40),
		Allocations: []domain.Allocation{
			alloc("a1", "proj-a", 70,
				domain.NewDate(2026, time.March, 2),
				domain.NewDate(2026, time.March, 29)),
			alloc("a2", "proj-b", 50,
				domain.NewDate(2026, time.March, 2),
				domain.NewDate(2026, time.March, 29)),
		},
	}}

	grid := domain.CapacityForecast(resources, domain.NewDate(2026, time.March, 2), 1, decimal.NewFromInt(40))
	cell := grid[0].Weeks[0]

	assert.Equal(t, 120, cell.Utilization)
	assert.True(t, cell.AvailabilityHours.IsNegative(), "raw availability stays negative")
	assert.True(t, cell.DisplayHours.IsZero(), "display hours clamp at zero")
}

func TestCapacityForecast_ZeroWeeks_Empty(t *testing.T) {
	grid := domain.CapacityForecast(nil, domain.Today(), 0, decimal.NewFromInt(40))
	assert.Empty(t, grid)
}
