package scenario_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freeup86/resource-pulse-sub002/domain"
	"github.com/freeup86/resource-pulse-sub002/domain/store"
	"github.com/freeup86/resource-pulse-sub002/scenario"
)

// newTestService seeds a memory store with the shared baseline fixture and
// returns a service over it.
func newTestService(t *testing.T) (*scenario.Service, *store.Memory) {
	t.Helper()
	m := store.NewMemory()
	ctx := context.Background()

	b := baselineFixture()
	for _, r := range b.Resources {
		require.NoError(t, m.SaveResource(ctx, r))
	}
	for _, p := range b.Projects {
		require.NoError(t, m.SaveProject(ctx, p))
	}
	for _, a := range b.Allocations {
		require.NoError(t, m.UpsertAllocation(ctx, a))
	}

	return scenario.NewService(m, domain.DefaultSystemConfig(), nil), m
}

// =============================================================================
// LIFECYCLE
// =============================================================================

func TestService_Create(t *testing.T) {
	svc, _ := newTestService(t)

	s, err := svc.Create(context.Background(), scenario.CreateParams{
		Name:        "Q3 ramp-down",
		Description: "What if the portal team shrinks",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, scenario.StatusDraft, s.Status)
	assert.Empty(t, s.ResourceChanges)

	got, err := svc.Get(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Q3 ramp-down", got.Name)
}

func TestService_Create_RequiresName(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), scenario.CreateParams{})
	require.Error(t, err)
	assert.True(t, domain.IsInput(err))
}

func TestService_Create_CloneCopiesChangeLists(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	base, err := svc.Create(ctx, scenario.CreateParams{Name: "base"})
	require.NoError(t, err)
	require.NoError(t, svc.UpsertResourceChange(ctx, base.ID, scenario.ResourceChange{
		ResourceID: "res-1",
		Allocation: liveAlloc("a1", "res-1", "proj-a", 90),
	}))

	clone, err := svc.Create(ctx, scenario.CreateParams{Name: "clone", CloneFromBaseID: base.ID})
	require.NoError(t, err)
	assert.Equal(t, base.ID, clone.BaseID)
	require.Len(t, clone.ResourceChanges, 1)

	// Until the clone diverges, both overlays resolve to the same world.
	baseAtClone, err := svc.Get(ctx, base.ID)
	require.NoError(t, err)
	b := baselineFixture()
	assert.Equal(t, scenario.Resolve(b, baseAtClone), scenario.Resolve(b, clone))

	// The clone's changes are a copy: editing the clone leaves the base alone.
	require.NoError(t, svc.UpsertResourceChange(ctx, clone.ID, scenario.ResourceChange{
		ResourceID: "res-2",
		Allocation: liveAlloc("a2", "res-2", "proj-a", 20),
	}))

	baseAfter, err := svc.Get(ctx, base.ID)
	require.NoError(t, err)
	assert.Len(t, baseAfter.ResourceChanges, 1)
}

func TestService_Create_CloneFromUnknownBase(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), scenario.CreateParams{
		Name:            "orphan",
		CloneFromBaseID: "ghost",
	})
	assert.ErrorIs(t, err, domain.ErrScenarioNotFound)
}

// =============================================================================
// CHANGE-LIST EDITS
// =============================================================================

func TestService_UpsertResourceChange_ReplacesByAllocationID(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	s, err := svc.Create(ctx, scenario.CreateParams{Name: "s"})
	require.NoError(t, err)

	require.NoError(t, svc.UpsertResourceChange(ctx, s.ID, scenario.ResourceChange{
		ResourceID: "res-1",
		Allocation: liveAlloc("a1", "res-1", "proj-a", 70),
	}))
	require.NoError(t, svc.UpsertResourceChange(ctx, s.ID, scenario.ResourceChange{
		ResourceID: "res-1",
		Allocation: liveAlloc("a1", "res-1", "proj-a", 95),
	}))

	got, err := svc.Get(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, got.ResourceChanges, 1, "same allocation id replaces in place")
	assert.Equal(t, 95, got.ResourceChanges[0].Allocation.Utilization)
}

func TestService_UpsertResourceChange_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	s, err := svc.Create(ctx, scenario.CreateParams{Name: "s"})
	require.NoError(t, err)

	t.Run("missing allocation id", func(t *testing.T) {
		err := svc.UpsertResourceChange(ctx, s.ID, scenario.ResourceChange{ResourceID: "res-1"})
		assert.True(t, domain.IsInput(err))
	})

	t.Run("inverted dates", func(t *testing.T) {
		a := liveAlloc("bad", "res-1", "proj-a", 50)
		a.StartDate = domain.NewDate(2026, time.June, 30)
		a.EndDate = domain.NewDate(2026, time.January, 1)
		err := svc.UpsertResourceChange(ctx, s.ID, scenario.ResourceChange{ResourceID: "res-1", Allocation: a})
		assert.ErrorIs(t, err, domain.ErrInvalidRange)
	})

	t.Run("utilization out of range", func(t *testing.T) {
		err := svc.UpsertResourceChange(ctx, s.ID, scenario.ResourceChange{
			ResourceID: "res-1",
			Allocation: liveAlloc("bad", "res-1", "proj-a", 150),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidUtilization)
	})

	t.Run("removal marker skips payload checks", func(t *testing.T) {
		err := svc.UpsertResourceChange(ctx, s.ID, scenario.ResourceChange{
			ResourceID: "res-1",
			Allocation: domain.Allocation{ID: "a1"},
			Remove:     true,
		})
		assert.NoError(t, err)
	})
}

func TestService_UpsertTimelineChange_CapturesOriginalDates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	s, err := svc.Create(ctx, scenario.CreateParams{Name: "s"})
	require.NoError(t, err)

	require.NoError(t, svc.UpsertTimelineChange(ctx, s.ID, scenario.ProjectTimelineChange{
		ProjectID: "proj-a",
		NewStart:  domain.NewDate(2026, time.February, 2),
		NewEnd:    domain.NewDate(2026, time.August, 31),
	}))

	got, err := svc.Get(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, got.TimelineChanges, 1)
	assert.Equal(t, "2026-01-05", got.TimelineChanges[0].OriginalStart.String(),
		"live dates captured when the caller omits originals")
	assert.Equal(t, "2026-06-30", got.TimelineChanges[0].OriginalEnd.String())
}

func TestService_UpsertTimelineChange_UnknownProject(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	s, err := svc.Create(ctx, scenario.CreateParams{Name: "s"})
	require.NoError(t, err)

	err = svc.UpsertTimelineChange(ctx, s.ID, scenario.ProjectTimelineChange{
		ProjectID: "ghost",
		NewStart:  domain.NewDate(2026, time.February, 2),
		NewEnd:    domain.NewDate(2026, time.August, 31),
	})
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
}

// =============================================================================
// METRICS - Snapshot cache and staleness
// =============================================================================

func TestService_CalculateMetrics_TagsSnapshotVersion(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	s, err := svc.Create(ctx, scenario.CreateParams{Name: "s"})
	require.NoError(t, err)
	require.NoError(t, svc.UpsertResourceChange(ctx, s.ID, scenario.ResourceChange{
		ResourceID: "res-1",
		Allocation: liveAlloc("a1", "res-1", "proj-a", 90),
	}))

	result, err := svc.CalculateMetrics(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, result.Stale)
	require.NotNil(t, result.Snapshot)
	assert.Equal(t, 90, result.Snapshot.Utilization.ByResource["res-1"].Total)

	got, err := svc.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, got.SnapshotStale())
}

func TestService_Metrics_ComputesOnlyWhenAbsent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	s, err := svc.Create(ctx, scenario.CreateParams{Name: "s"})
	require.NoError(t, err)

	// First read computes a snapshot.
	first, err := svc.Metrics(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, first.Stale)

	// Second read serves the cached snapshot, same pointer.
	second, err := svc.Metrics(ctx, s.ID)
	require.NoError(t, err)
	assert.Same(t, first.Snapshot, second.Snapshot)
}

func TestService_Metrics_StaleAfterChangeListEdit(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	s, err := svc.Create(ctx, scenario.CreateParams{Name: "s"})
	require.NoError(t, err)

	stale, err := svc.Metrics(ctx, s.ID)
	require.NoError(t, err)
	require.False(t, stale.Stale)

	require.NoError(t, svc.UpsertResourceChange(ctx, s.ID, scenario.ResourceChange{
		ResourceID: "res-1",
		Allocation: liveAlloc("a1", "res-1", "proj-a", 90),
	}))

	// The edit flags the cached snapshot stale; it is NOT recomputed behind
	// the caller's back.
	after, err := svc.Metrics(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, after.Stale)
	assert.Same(t, stale.Snapshot, after.Snapshot, "stale snapshot is served as-is")

	// An explicit recalculation clears the flag.
	fresh, err := svc.CalculateMetrics(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, fresh.Stale)
	assert.Equal(t, 90, fresh.Snapshot.Utilization.ByResource["res-1"].Total)
}

func TestService_Metrics_InPlaceEditStillInvalidates(t *testing.T) {
	// Replacing an existing change keeps the list length; the revision
	// counter has to catch it.
	svc, _ := newTestService(t)
	ctx := context.Background()

	s, err := svc.Create(ctx, scenario.CreateParams{Name: "s"})
	require.NoError(t, err)
	require.NoError(t, svc.UpsertResourceChange(ctx, s.ID, scenario.ResourceChange{
		ResourceID: "res-1",
		Allocation: liveAlloc("a1", "res-1", "proj-a", 70),
	}))

	_, err = svc.CalculateMetrics(ctx, s.ID)
	require.NoError(t, err)

	require.NoError(t, svc.UpsertResourceChange(ctx, s.ID, scenario.ResourceChange{
		ResourceID: "res-1",
		Allocation: liveAlloc("a1", "res-1", "proj-a", 95),
	}))

	result, err := svc.Metrics(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, result.Stale)
}

func TestService_Metrics_UnknownScenario(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Metrics(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrScenarioNotFound)
}
