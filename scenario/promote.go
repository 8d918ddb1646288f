/*
promote.go - Two-phase scenario promotion

PURPOSE:
  Commits a scenario's changes into live data after re-validation.

  Draft -> (validate) -> {Promoted | Rejected(conflicts)}

  Scenario changes are authored against a potentially stale read of live
  data, so promotion never trusts the cached snapshot: it re-reads the
  CURRENT live dataset, re-resolves the overlay against it, and re-checks
  every touched resource against the configured overallocation threshold.
  Conflicts are collected in full (no first-conflict abort) and reported,
  not thrown. Only a clean validation proceeds to the atomic apply.

ATOMICITY:
  The apply runs inside the store's WithTx: either the whole batch of
  upserts, deletes, and timeline overwrites commits, or none of it does.
  The coordinator mutex covers the whole validate-then-apply sequence so a
  second writer cannot invalidate the just-validated state before the
  commit lands.
*/
package scenario

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/freeup86/resource-pulse-sub002/domain"
)

// Conflict names one resource that would exceed the threshold if the
// scenario were promoted.
type Conflict struct {
	ResourceID  domain.ResourceID
	Name        string
	Utilization int
	Threshold   int
}

func (c Conflict) String() string {
	return fmt.Sprintf("resource %s at %d%% exceeds %d%%", c.ResourceID, c.Utilization, c.Threshold)
}

// PromotionResult is the outcome of a promotion request.
type PromotionResult struct {
	ScenarioID domain.ScenarioID
	Promoted   bool
	Conflicts  []Conflict
}

// Promote re-validates the scenario against the current live dataset and,
// if clean, applies its changes as one atomic batch. Validation conflicts
// yield a rejected result, not an error; storage failures are fatal and
// roll back fully.
func (svc *Service) Promote(ctx context.Context, id domain.ScenarioID) (*PromotionResult, error) {
	svc.promoteMu.Lock()
	defer svc.promoteMu.Unlock()

	svc.mu.RLock()
	live, ok := svc.scenarios[id]
	if !ok {
		svc.mu.RUnlock()
		return nil, domain.ErrScenarioNotFound
	}
	if live.Status == StatusPromoted {
		svc.mu.RUnlock()
		return nil, &domain.InputError{Field: "scenario", Reason: "already promoted"}
	}
	working := live.copy()
	svc.mu.RUnlock()

	// Phase 1: validate against a fresh read of live data.
	baseline, err := domain.ReadBaseline(ctx, svc.store)
	if err != nil {
		return nil, err
	}
	effective := Resolve(baseline, working)

	conflicts := svc.findConflicts(working, effective)
	if len(conflicts) > 0 {
		svc.log.Info("promotion rejected",
			zap.String("scenario_id", string(id)),
			zap.Int("conflicts", len(conflicts)))
		return &PromotionResult{ScenarioID: id, Promoted: false, Conflicts: conflicts}, nil
	}

	// Phase 2: apply everything in one transaction.
	err = svc.store.WithTx(ctx, func(m domain.Mutator) error {
		for _, ch := range working.ResourceChanges {
			if ch.Remove {
				if err := m.DeleteAllocation(ctx, ch.Allocation.ID); err != nil {
					return err
				}
				continue
			}
			alloc := ch.Allocation
			if alloc.ResourceID == "" {
				alloc.ResourceID = ch.ResourceID
			}
			if err := m.UpsertAllocation(ctx, alloc); err != nil {
				return err
			}
		}
		for _, ch := range working.TimelineChanges {
			if err := m.UpdateProjectDates(ctx, ch.ProjectID, ch.NewStart, ch.NewEnd); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("promotion batch for scenario %s: %w", id, err)
	}

	// Terminal state. The change lists stay for display, but the scenario
	// can never be promoted again.
	svc.mu.Lock()
	if s, ok := svc.scenarios[id]; ok {
		s.Status = StatusPromoted
	}
	svc.mu.Unlock()

	svc.log.Info("scenario promoted",
		zap.String("scenario_id", string(id)),
		zap.Int("resource_changes", len(working.ResourceChanges)),
		zap.Int("timeline_changes", len(working.TimelineChanges)))
	return &PromotionResult{ScenarioID: id, Promoted: true}, nil
}

// findConflicts checks every resource the scenario touches against the
// overallocation threshold on the effective dataset. The full set is
// collected; validation never aborts at the first conflict.
func (svc *Service) findConflicts(s *Scenario, effective *EffectiveDataset) []Conflict {
	threshold := svc.cfg.OverallocationThreshold()

	touched := make(map[domain.ResourceID]bool, len(s.ResourceChanges))
	for _, ch := range s.ResourceChanges {
		if ch.ResourceID != "" {
			touched[ch.ResourceID] = true
		}
		if ch.Allocation.ResourceID != "" {
			touched[ch.Allocation.ResourceID] = true
		}
	}

	var conflicts []Conflict
	for _, r := range effective.Resources {
		if !touched[r.ID] {
			continue
		}
		total := domain.TotalUtilization(r)
		if total > threshold {
			conflicts = append(conflicts, Conflict{
				ResourceID:  r.ID,
				Name:        r.Name,
				Utilization: total,
				Threshold:   threshold,
			})
		}
	}
	return conflicts
}
