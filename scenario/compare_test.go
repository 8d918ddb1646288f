package scenario_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freeup86/resource-pulse-sub002/domain"
	"github.com/freeup86/resource-pulse-sub002/scenario"
)

func createPair(t *testing.T, svc *scenario.Service) (a, b *scenario.Scenario) {
	t.Helper()
	ctx := context.Background()

	a, err := svc.Create(ctx, scenario.CreateParams{Name: "keep team"})
	require.NoError(t, err)

	b, err = svc.Create(ctx, scenario.CreateParams{Name: "ramp up"})
	require.NoError(t, err)
	require.NoError(t, svc.UpsertResourceChange(ctx, b.ID, scenario.ResourceChange{
		ResourceID: "res-1",
		Allocation: liveAlloc("a1", "res-1", "proj-a", 100),
	}))
	return a, b
}

func TestCompare_RequiresAtLeastTwoScenarios(t *testing.T) {
	svc, _ := newTestService(t)
	a, _ := createPair(t, svc)

	_, err := svc.Compare(context.Background(), []domain.ScenarioID{a.ID}, nil)
	require.Error(t, err)
	assert.True(t, domain.IsInput(err))
}

func TestCompare_AlignsScenariosColumnwise(t *testing.T) {
	svc, _ := newTestService(t)
	a, b := createPair(t, svc)

	cmp, err := svc.Compare(context.Background(), []domain.ScenarioID{a.ID, b.ID}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"utilization", "costs", "skills"}, cmp.Metrics,
		"empty filter selects every group")
	require.Len(t, cmp.Scenarios, 2)

	// Columns follow request order, and each carries its own numbers.
	assert.Equal(t, a.ID, cmp.Scenarios[0].ScenarioID)
	assert.Equal(t, "keep team", cmp.Scenarios[0].ScenarioName)
	assert.Equal(t, b.ID, cmp.Scenarios[1].ScenarioID)

	require.NotNil(t, cmp.Scenarios[0].Utilization)
	require.NotNil(t, cmp.Scenarios[1].Utilization)
	assert.Equal(t, 50, cmp.Scenarios[0].Utilization.ByResource["res-1"].Total, "live value")
	assert.Equal(t, 100, cmp.Scenarios[1].Utilization.ByResource["res-1"].Total, "overlaid value")
}

func TestCompare_MetricGroupFilter(t *testing.T) {
	svc, _ := newTestService(t)
	a, b := createPair(t, svc)

	cmp, err := svc.Compare(context.Background(), []domain.ScenarioID{a.ID, b.ID},
		[]string{"costs"})
	require.NoError(t, err)

	assert.Equal(t, []string{"costs"}, cmp.Metrics)
	for _, col := range cmp.Scenarios {
		assert.Nil(t, col.Utilization)
		assert.NotNil(t, col.Costs)
		assert.Nil(t, col.Skills)
	}
}

func TestCompare_UnknownMetricNamesIgnored(t *testing.T) {
	svc, _ := newTestService(t)
	a, b := createPair(t, svc)

	cmp, err := svc.Compare(context.Background(), []domain.ScenarioID{a.ID, b.ID},
		[]string{"velocity", "morale"})
	require.NoError(t, err)
	assert.Equal(t, []string{"utilization", "costs", "skills"}, cmp.Metrics,
		"a filter with no known names falls back to all groups")
}

func TestCompare_UnknownScenarioFails(t *testing.T) {
	svc, _ := newTestService(t)
	a, _ := createPair(t, svc)

	_, err := svc.Compare(context.Background(), []domain.ScenarioID{a.ID, "ghost"}, nil)
	assert.ErrorIs(t, err, domain.ErrScenarioNotFound)
}

func TestCompare_MarksStaleColumns(t *testing.T) {
	svc, _ := newTestService(t)
	a, b := createPair(t, svc)
	ctx := context.Background()

	// Compute b's snapshot, then edit b so the cached snapshot goes stale.
	_, err := svc.CalculateMetrics(ctx, b.ID)
	require.NoError(t, err)
	require.NoError(t, svc.UpsertResourceChange(ctx, b.ID, scenario.ResourceChange{
		ResourceID: "res-2",
		Allocation: liveAlloc("a2", "res-2", "proj-a", 90),
	}))

	cmp, err := svc.Compare(ctx, []domain.ScenarioID{a.ID, b.ID}, nil)
	require.NoError(t, err)
	assert.False(t, cmp.Scenarios[0].Stale)
	assert.True(t, cmp.Scenarios[1].Stale, "b's cached snapshot predates its last edit")
}
