package scenario_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freeup86/resource-pulse-sub002/domain"
	"github.com/freeup86/resource-pulse-sub002/scenario"
)

func metricsFixture() *scenario.EffectiveDataset {
	hours := decimal.NewFromInt(100)
	a1 := liveAlloc("a1", "res-1", "proj-a", 60)
	a1.TotalHours = &hours
	a2 := liveAlloc("a2", "res-1", "proj-b", 50)
	a3 := liveAlloc("a3", "res-2", "proj-a", 40)

	return &scenario.EffectiveDataset{
		Resources: []domain.Resource{
			{
				ID:           "res-1",
				Name:         "Ana",
				Role:         "Frontend Developer",
				Skills:       []domain.Skill{{Name: "React", Proficiency: domain.ProficiencyAdvanced}},
				HourlyRate:   decimal.NewFromInt(70),
				BillableRate: decimal.NewFromInt(120),
				Currency:     "USD",
				Allocations:  []domain.Allocation{a1, a2},
			},
			{
				ID:          "res-2",
				Name:        "Ben",
				Role:        "Backend Developer",
				Currency:    "USD",
				Allocations: []domain.Allocation{a3},
			},
		},
		Projects: []domain.Project{
			{
				ID:        "proj-a",
				Name:      "Portal",
				StartDate: domain.NewDate(2026, time.January, 5),
				EndDate:   domain.NewDate(2026, time.June, 30),
				RequiredSkills: []domain.RequiredSkill{
					{Name: "React"},
					{Name: "Kafka"},
				},
				Currency: "USD",
			},
			{
				ID:        "proj-b",
				Name:      "Billing",
				StartDate: domain.NewDate(2026, time.March, 2),
				EndDate:   domain.NewDate(2026, time.September, 30),
				Currency:  "USD",
			},
		},
		Allocations: []domain.Allocation{a1, a2, a3},
	}
}

func TestComputeMetrics_Utilization(t *testing.T) {
	snap := scenario.ComputeMetrics(metricsFixture(), domain.DefaultSystemConfig())

	require.Len(t, snap.Utilization.ByResource, 2)

	ana := snap.Utilization.ByResource["res-1"]
	assert.Equal(t, 110, ana.Total, "60 + 50 across projects")
	assert.True(t, ana.OverAllocated)

	ben := snap.Utilization.ByResource["res-2"]
	assert.Equal(t, 40, ben.Total)
	assert.False(t, ben.OverAllocated)

	assert.InDelta(t, 75.0, snap.Utilization.Overall, 0.001, "mean of 110 and 40")
}

func TestComputeMetrics_RespectsConfiguredThreshold(t *testing.T) {
	cfg := domain.SystemConfig{MaxUtilizationPercentage: 120, AllowOverallocation: true}

	snap := scenario.ComputeMetrics(metricsFixture(), cfg)

	assert.False(t, snap.Utilization.ByResource["res-1"].OverAllocated,
		"110 is within an explicit 120 cap")
}

func TestComputeMetrics_Costs(t *testing.T) {
	snap := scenario.ComputeMetrics(metricsFixture(), domain.DefaultSystemConfig())

	// Only a1 carries an hour estimate: 100h at 70/120.
	assert.True(t, snap.Costs.TotalCost.Amount.Equal(decimal.NewFromInt(7000)),
		"got %s", snap.Costs.TotalCost.Amount)
	assert.True(t, snap.Costs.TotalBillable.Amount.Equal(decimal.NewFromInt(12000)))
	assert.True(t, snap.Costs.Profit.Amount.Equal(decimal.NewFromInt(5000)))

	margin, _ := snap.Costs.MarginPct.Float64()
	assert.InDelta(t, 41.667, margin, 0.001)

	require.Contains(t, snap.Costs.ByProject, domain.ProjectID("proj-a"))
	projA := snap.Costs.ByProject["proj-a"]
	assert.True(t, projA.ActualCost.Amount.Equal(decimal.NewFromInt(7000)),
		"a1 is the only billed allocation on proj-a")
}

func TestComputeMetrics_SkillsCoverage(t *testing.T) {
	snap := scenario.ComputeMetrics(metricsFixture(), domain.DefaultSystemConfig())

	// proj-a requires React (covered by Ana) and Kafka (nobody); proj-b
	// requires nothing and contributes no counts.
	assert.Equal(t, []string{"React"}, snap.Skills.Covered)
	assert.Equal(t, []string{"Kafka"}, snap.Skills.Missing)
	assert.InDelta(t, 50.0, snap.Skills.CoveragePercentage, 0.001)

	require.Contains(t, snap.Skills.ByProject, domain.ProjectID("proj-b"))
	assert.InDelta(t, 100.0, snap.Skills.ByProject["proj-b"].CoveragePercentage, 0.001)
}

func TestComputeMetrics_EmptyDataset(t *testing.T) {
	snap := scenario.ComputeMetrics(&scenario.EffectiveDataset{}, domain.DefaultSystemConfig())

	assert.Zero(t, snap.Utilization.Overall)
	assert.Empty(t, snap.Utilization.ByResource)
	assert.True(t, snap.Costs.TotalCost.IsZero())
	assert.True(t, snap.Costs.MarginPct.IsZero())
	assert.InDelta(t, 100.0, snap.Skills.CoveragePercentage, 0.001,
		"nothing required means fully covered")
}
