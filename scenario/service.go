/*
service.go - Scenario lifecycle and snapshot cache

PURPOSE:
  Owns the scenario collection: create (with optional clone-from-base),
  change-list edits, metrics computation and caching. All change-list
  access goes through the service mutex, so metrics computation always
  operates on a single consistent read of a scenario's changes
  (snapshot-read semantics), never a half-written list.
*/
package scenario

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/freeup86/resource-pulse-sub002/domain"
)

// Service owns the scenario collection and runs the metrics engine over it.
type Service struct {
	store domain.TxStore
	cfg   domain.SystemConfig
	log   *zap.Logger

	mu        sync.RWMutex
	scenarios map[domain.ScenarioID]*Scenario

	// promoteMu serializes the whole validate-then-apply sequence. A coarse
	// lock: promotion is rare and the batch is small.
	promoteMu sync.Mutex
}

func NewService(store domain.TxStore, cfg domain.SystemConfig, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:     store,
		cfg:       cfg,
		log:       log,
		scenarios: make(map[domain.ScenarioID]*Scenario),
	}
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// CreateParams describes a new scenario.
type CreateParams struct {
	Name        string
	Description string
	Window      domain.DateRange

	// CloneFromBaseID copies the base scenario's change lists into the new
	// scenario at creation time, so the clone's effective dataset equals
	// the base's until the clone records its own changes.
	CloneFromBaseID domain.ScenarioID
}

func (svc *Service) Create(_ context.Context, params CreateParams) (*Scenario, error) {
	if params.Name == "" {
		return nil, &domain.InputError{Field: "name", Reason: "required"}
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	s := &Scenario{
		ID:          domain.ScenarioID(uuid.NewString()),
		Name:        params.Name,
		Description: params.Description,
		Window:      params.Window,
		Status:      StatusDraft,
	}

	if params.CloneFromBaseID != "" {
		base, ok := svc.scenarios[params.CloneFromBaseID]
		if !ok {
			return nil, fmt.Errorf("base scenario %s: %w", params.CloneFromBaseID, domain.ErrScenarioNotFound)
		}
		s.BaseID = base.ID
		s.ResourceChanges = append([]ResourceChange(nil), base.ResourceChanges...)
		s.TimelineChanges = append([]ProjectTimelineChange(nil), base.TimelineChanges...)
	}

	svc.scenarios[s.ID] = s
	svc.log.Info("scenario created",
		zap.String("scenario_id", string(s.ID)),
		zap.String("base_id", string(s.BaseID)))
	return s.copy(), nil
}

// Get returns a consistent copy of a scenario.
func (svc *Service) Get(_ context.Context, id domain.ScenarioID) (*Scenario, error) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()

	s, ok := svc.scenarios[id]
	if !ok {
		return nil, domain.ErrScenarioNotFound
	}
	return s.copy(), nil
}

// List returns copies of all scenarios.
func (svc *Service) List(_ context.Context) []*Scenario {
	svc.mu.RLock()
	defer svc.mu.RUnlock()

	out := make([]*Scenario, 0, len(svc.scenarios))
	for _, s := range svc.scenarios {
		out = append(out, s.copy())
	}
	return out
}

// =============================================================================
// CHANGE-LIST EDITS
// =============================================================================

// UpsertResourceChange adds or replaces a resource change. Changes are keyed
// by allocation id: a later change to the same id replaces the earlier one.
func (svc *Service) UpsertResourceChange(_ context.Context, id domain.ScenarioID, ch ResourceChange) error {
	if err := validateResourceChange(ch, svc.cfg); err != nil {
		return err
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	s, ok := svc.scenarios[id]
	if !ok {
		return domain.ErrScenarioNotFound
	}
	if s.Status == StatusPromoted {
		return &domain.InputError{Field: "scenario", Reason: "already promoted; promoted scenarios are read-only"}
	}

	replaced := false
	for i, existing := range s.ResourceChanges {
		if existing.Allocation.ID == ch.Allocation.ID {
			s.ResourceChanges[i] = ch
			replaced = true
			break
		}
	}
	if !replaced {
		s.ResourceChanges = append(s.ResourceChanges, ch)
	}
	s.touch()
	return nil
}

// UpsertTimelineChange adds or replaces a project timeline change, keyed by
// project id.
func (svc *Service) UpsertTimelineChange(ctx context.Context, id domain.ScenarioID, ch ProjectTimelineChange) error {
	if ch.NewEnd.Before(ch.NewStart) {
		return &domain.InputError{
			Field:  "new_end",
			Reason: fmt.Sprintf("end %s before start %s", ch.NewEnd, ch.NewStart),
			Err:    domain.ErrInvalidRange,
		}
	}

	// Capture the live dates for diffing when the caller did not supply
	// originals. Unknown project is an input error.
	if ch.OriginalStart.IsZero() || ch.OriginalEnd.IsZero() {
		p, err := svc.store.GetProject(ctx, ch.ProjectID)
		if err != nil {
			return err
		}
		ch.OriginalStart = p.StartDate
		ch.OriginalEnd = p.EndDate
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	s, ok := svc.scenarios[id]
	if !ok {
		return domain.ErrScenarioNotFound
	}
	if s.Status == StatusPromoted {
		return &domain.InputError{Field: "scenario", Reason: "already promoted; promoted scenarios are read-only"}
	}

	replaced := false
	for i, existing := range s.TimelineChanges {
		if existing.ProjectID == ch.ProjectID {
			s.TimelineChanges[i] = ch
			replaced = true
			break
		}
	}
	if !replaced {
		s.TimelineChanges = append(s.TimelineChanges, ch)
	}
	s.touch()
	return nil
}

func validateResourceChange(ch ResourceChange, cfg domain.SystemConfig) error {
	if ch.Allocation.ID == "" {
		return &domain.InputError{Field: "allocation.id", Reason: "required"}
	}
	if ch.Remove {
		return nil
	}
	if ch.Allocation.EndDate.Before(ch.Allocation.StartDate) {
		return &domain.InputError{
			Field:  "allocation.end_date",
			Reason: fmt.Sprintf("end %s before start %s", ch.Allocation.EndDate, ch.Allocation.StartDate),
			Err:    domain.ErrInvalidRange,
		}
	}
	maxUtil := cfg.MaxUtilizationPercentage
	if maxUtil <= 0 {
		maxUtil = 100
	}
	if ch.Allocation.Utilization < 1 || ch.Allocation.Utilization > maxUtil {
		return &domain.InputError{
			Field:  "allocation.utilization",
			Reason: fmt.Sprintf("%d outside 1..%d", ch.Allocation.Utilization, maxUtil),
			Err:    domain.ErrInvalidUtilization,
		}
	}
	return nil
}

// =============================================================================
// METRICS
// =============================================================================

// MetricsResult pairs a snapshot with its staleness marker.
type MetricsResult struct {
	Snapshot *MetricsSnapshot
	Version  ChangeVersion
	Stale    bool
}

// CalculateMetrics resolves the scenario against a fresh live baseline,
// runs the calculators, and caches the snapshot tagged with the change-set
// version it was computed from.
func (svc *Service) CalculateMetrics(ctx context.Context, id domain.ScenarioID) (*MetricsResult, error) {
	// Snapshot-read of the change list; the baseline read and the compute
	// run outside the lock.
	svc.mu.RLock()
	s, ok := svc.scenarios[id]
	if !ok {
		svc.mu.RUnlock()
		return nil, domain.ErrScenarioNotFound
	}
	working := s.copy()
	version := working.Version()
	svc.mu.RUnlock()

	baseline, err := domain.ReadBaseline(ctx, svc.store)
	if err != nil {
		return nil, err
	}

	snap := ComputeMetrics(Resolve(baseline, working), svc.cfg)

	svc.mu.Lock()
	if live, ok := svc.scenarios[id]; ok {
		live.Snapshot = snap
		live.SnapshotVersion = version
	}
	svc.mu.Unlock()

	return &MetricsResult{Snapshot: snap, Version: version, Stale: false}, nil
}

// Metrics returns the cached snapshot with its staleness flag, computing
// one only when none exists yet. A stale snapshot is returned flagged, not
// silently recomputed; recomputation is an explicit CalculateMetrics call.
func (svc *Service) Metrics(ctx context.Context, id domain.ScenarioID) (*MetricsResult, error) {
	svc.mu.RLock()
	s, ok := svc.scenarios[id]
	if !ok {
		svc.mu.RUnlock()
		return nil, domain.ErrScenarioNotFound
	}
	snap := s.Snapshot
	version := s.SnapshotVersion
	stale := s.SnapshotStale()
	svc.mu.RUnlock()

	if snap == nil {
		return svc.CalculateMetrics(ctx, id)
	}
	return &MetricsResult{Snapshot: snap, Version: version, Stale: stale}, nil
}

// copy returns a deep-enough copy for safe use outside the service lock:
// fresh change-list slices, shared immutable snapshot.
func (s *Scenario) copy() *Scenario {
	dup := *s
	dup.ResourceChanges = append([]ResourceChange(nil), s.ResourceChanges...)
	dup.TimelineChanges = append([]ProjectTimelineChange(nil), s.TimelineChanges...)
	return &dup
}
