/*
Package scenario implements the what-if simulation engine.

PURPOSE:
  A scenario is a named, non-destructive overlay of hypothetical allocation
  and project-timeline changes on top of live data. This package resolves
  overlays into effective datasets, computes metrics over them with the
  same calculators that run over live data, compares scenarios side by
  side, and promotes an approved scenario into live data after
  re-validation.

KEY INVARIANT:
  A scenario stores only deltas, never a merged copy of live data. Its
  effective state is always resolve(liveSnapshotAtRead, changes), so it
  reflects change-list edits automatically but goes stale against
  concurrent live edits. Promotion re-validates against the CURRENT live
  dataset for exactly that reason.

SEE ALSO:
  - overlay.go: Copy-on-write resolution
  - metrics.go: Snapshot computation and staleness
  - compare.go: Multi-scenario alignment
  - promote.go: Two-phase validate/commit
*/
package scenario

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/freeup86/resource-pulse-sub002/domain"
)

// =============================================================================
// SCENARIO STATE
// =============================================================================

type Status string

const (
	StatusDraft    Status = "draft"
	StatusPromoted Status = "promoted"
)

// ChangeVersion identifies a point in a scenario's change-list history.
// It advances on every change-list edit; a snapshot computed at an older
// version is stale.
type ChangeVersion struct {
	ResourceChanges int
	TimelineChanges int
	Revision        int
}

func (v ChangeVersion) String() string {
	return fmt.Sprintf("r%d:c%d/t%d", v.Revision, v.ResourceChanges, v.TimelineChanges)
}

// Scenario is a named overlay of hypothetical changes. It never stores a
// full copy of live data, only the delta lists.
type Scenario struct {
	ID          domain.ScenarioID
	Name        string
	Description string
	BaseID      domain.ScenarioID // optional clone source
	Window      domain.DateRange  // time window of interest, informational
	Status      Status

	ResourceChanges []ResourceChange
	TimelineChanges []ProjectTimelineChange

	// Cached metrics and the change-set version they were computed from.
	// Superseded, never mutated, on recompute.
	Snapshot        *MetricsSnapshot
	SnapshotVersion ChangeVersion

	version ChangeVersion
}

// Version returns the scenario's current change-list version.
func (s *Scenario) Version() ChangeVersion {
	v := s.version
	v.ResourceChanges = len(s.ResourceChanges)
	v.TimelineChanges = len(s.TimelineChanges)
	return v
}

// touch advances the revision counter. Called on every change-list edit so
// in-place updates (same list length) still invalidate snapshots.
func (s *Scenario) touch() {
	s.version.Revision++
}

// SnapshotStale reports whether the cached snapshot no longer matches the
// current change list. A nil snapshot is not "stale", it is absent.
func (s *Scenario) SnapshotStale() bool {
	return s.Snapshot != nil && s.SnapshotVersion != s.Version()
}

// =============================================================================
// CHANGES
// =============================================================================

// ResourceChange proposes what one allocation would look like in this
// scenario. It fully replaces any live allocation with the same id for
// metrics purposes. A removal marker (Remove=true) drops the live
// allocation instead.
type ResourceChange struct {
	ResourceID domain.ResourceID
	Allocation domain.Allocation
	Remove     bool
}

// ProjectTimelineChange proposes new start/end dates for a project. The
// original dates are captured at creation time for diffing and display.
type ProjectTimelineChange struct {
	ProjectID     domain.ProjectID
	OriginalStart domain.Date
	OriginalEnd   domain.Date
	NewStart      domain.Date
	NewEnd        domain.Date
	Notes         string
}

// =============================================================================
// METRICS SNAPSHOT
// =============================================================================

// ResourceUtilizationMetric is one resource's row in a snapshot.
type ResourceUtilizationMetric struct {
	ResourceID    domain.ResourceID
	Name          string
	Total         int
	OverAllocated bool
}

// UtilizationMetrics summarizes utilization across the effective dataset.
type UtilizationMetrics struct {
	Overall    float64 // average total utilization across resources
	ByResource map[domain.ResourceID]ResourceUtilizationMetric
}

// CostMetrics summarizes the financial rollup of the effective dataset.
type CostMetrics struct {
	TotalCost     domain.Money
	TotalBillable domain.Money
	Profit        domain.Money
	MarginPct     decimal.Decimal
	ByProject     map[domain.ProjectID]domain.ProjectFinancials
}

// CoverageMetrics aggregates skills coverage across all projects in the
// effective dataset.
type CoverageMetrics struct {
	CoveragePercentage float64
	Covered            []string
	Missing            []string
	ByProject          map[domain.ProjectID]domain.SkillsCoverage
}

// MetricsSnapshot is the cached result of running the live calculators over
// a scenario's effective dataset. Immutable once computed.
type MetricsSnapshot struct {
	Utilization UtilizationMetrics
	Costs       CostMetrics
	Skills      CoverageMetrics
}

// =============================================================================
// EFFECTIVE DATASET
// =============================================================================

// EffectiveDataset is the result of merging a baseline with a scenario's
// changes. It is derived on demand and never persisted.
type EffectiveDataset struct {
	Resources   []domain.Resource
	Projects    []domain.Project
	Allocations []domain.Allocation
}
