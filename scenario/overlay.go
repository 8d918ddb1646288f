/*
overlay.go - Copy-on-write scenario resolution

PURPOSE:
  Composes a baseline dataset with a scenario's recorded changes into an
  effective dataset, without mutating the baseline.

ALGORITHM:
  1. Shallow-copy the live allocations.
  2. Apply each ResourceChange in order: removal markers drop the matching
     live allocation; payloads upsert by allocation id (replace, or append
     when the id is new). Later changes to the same id win.
  3. Apply each ProjectTimelineChange: the effective project is the live
     one with its dates swapped for the proposed ones.
  4. Re-attach the effective allocation set to the effective resources so
     aggregation sees the changed commitments.

  Pure and idempotent: resolving twice with the same inputs yields the same
  output, and the live dataset is never written.
*/
package scenario

import (
	"github.com/freeup86/resource-pulse-sub002/domain"
)

// Resolve merges the baseline with the scenario's changes. Scenarios cloned
// from a base carry a copy of the base's change lists from creation time, so
// no extra layering happens here.
func Resolve(baseline *domain.Baseline, s *Scenario) *EffectiveDataset {
	effective := &EffectiveDataset{
		Allocations: applyResourceChanges(baseline.Allocations, s.ResourceChanges),
		Projects:    applyTimelineChanges(baseline.Projects, s.TimelineChanges),
	}
	effective.Resources = reattach(baseline.Resources, effective.Allocations)
	return effective
}

func applyResourceChanges(live []domain.Allocation, changes []ResourceChange) []domain.Allocation {
	out := make([]domain.Allocation, len(live))
	copy(out, live)

	for _, ch := range changes {
		if ch.Remove {
			out = removeByID(out, ch.Allocation.ID)
			continue
		}
		alloc := ch.Allocation
		if alloc.ResourceID == "" {
			alloc.ResourceID = ch.ResourceID
		}
		out = upsertByID(out, alloc)
	}
	return out
}

func removeByID(list []domain.Allocation, id domain.AllocationID) []domain.Allocation {
	for i, a := range list {
		if a.ID == id {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}

func upsertByID(list []domain.Allocation, alloc domain.Allocation) []domain.Allocation {
	for i, a := range list {
		if a.ID == alloc.ID {
			list[i] = alloc
			return list
		}
	}
	return append(list, alloc)
}

func applyTimelineChanges(live []domain.Project, changes []ProjectTimelineChange) []domain.Project {
	out := make([]domain.Project, len(live))
	copy(out, live)

	for _, ch := range changes {
		for i, p := range out {
			if p.ID == ch.ProjectID {
				p.StartDate = ch.NewStart
				p.EndDate = ch.NewEnd
				out[i] = p
				break
			}
		}
	}
	return out
}

// reattach rebuilds each resource's allocation list from the effective
// allocation set. Resources are unchanged structurally; their utilization
// differs once re-aggregated because their allocation set changed.
func reattach(resources []domain.Resource, allocations []domain.Allocation) []domain.Resource {
	byResource := make(map[domain.ResourceID][]domain.Allocation, len(resources))
	for _, a := range allocations {
		byResource[a.ResourceID] = append(byResource[a.ResourceID], a)
	}

	out := make([]domain.Resource, len(resources))
	for i, r := range resources {
		r.Allocations = byResource[r.ID]
		r.Allocation = nil
		out[i] = r
	}
	return out
}
