/*
metrics.go - Scenario metrics engine

PURPOSE:
  Runs the allocation aggregator, financial rollup, and skills coverage
  analyzer over a scenario's effective dataset, exactly as they run over
  live data, and caches the result as a snapshot tagged with the change-set
  version it was computed from.

STALENESS:
  A snapshot whose version no longer matches the change list is flagged
  stale, never served implicitly as fresh and never auto-recomputed on
  background writes. Callers needing freshness trigger recalculation
  explicitly ("Recalculate" affordance).
*/
package scenario

import (
	"github.com/shopspring/decimal"

	"github.com/freeup86/resource-pulse-sub002/domain"
)

var decimalHundred = decimal.NewFromInt(100)

// ComputeMetrics runs the three calculators over an effective dataset.
// It is pure; caching and versioning happen in the service.
func ComputeMetrics(effective *EffectiveDataset, cfg domain.SystemConfig) *MetricsSnapshot {
	snap := &MetricsSnapshot{
		Utilization: UtilizationMetrics{
			ByResource: make(map[domain.ResourceID]ResourceUtilizationMetric, len(effective.Resources)),
		},
		Costs: CostMetrics{
			TotalCost:     domain.Money{},
			TotalBillable: domain.Money{},
			Profit:        domain.Money{},
			ByProject:     make(map[domain.ProjectID]domain.ProjectFinancials, len(effective.Projects)),
		},
		Skills: CoverageMetrics{
			Covered:   []string{},
			Missing:   []string{},
			ByProject: make(map[domain.ProjectID]domain.SkillsCoverage, len(effective.Projects)),
		},
	}

	threshold := cfg.OverallocationThreshold()
	utilSum := 0
	for _, r := range effective.Resources {
		total := domain.TotalUtilization(r)
		utilSum += total
		snap.Utilization.ByResource[r.ID] = ResourceUtilizationMetric{
			ResourceID:    r.ID,
			Name:          r.Name,
			Total:         total,
			OverAllocated: total > threshold,
		}

		rollup := domain.ResourceRollup(r)
		snap.Costs.TotalCost = snap.Costs.TotalCost.Add(rollup.Cost)
		snap.Costs.TotalBillable = snap.Costs.TotalBillable.Add(rollup.Billable)
		snap.Costs.Profit = snap.Costs.Profit.Add(rollup.Profit)
	}
	if n := len(effective.Resources); n > 0 {
		snap.Utilization.Overall = float64(utilSum) / float64(n)
	}
	if !snap.Costs.TotalBillable.IsZero() {
		snap.Costs.MarginPct = snap.Costs.Profit.Amount.
			Div(snap.Costs.TotalBillable.Amount).
			Mul(decimalHundred)
	}

	coveredTotal, requiredTotal := 0, 0
	for _, p := range effective.Projects {
		snap.Costs.ByProject[p.ID] = domain.ProjectRollup(p, effective.Resources)

		coverage := domain.AnalyzeSkillsCoverage(p, domain.AssignedResources(p, effective.Resources))
		snap.Skills.ByProject[p.ID] = coverage
		snap.Skills.Covered = append(snap.Skills.Covered, coverage.Covered...)
		snap.Skills.Missing = append(snap.Skills.Missing, coverage.Missing...)
		coveredTotal += len(coverage.Covered)
		requiredTotal += len(coverage.Covered) + len(coverage.Missing)
	}
	if requiredTotal > 0 {
		snap.Skills.CoveragePercentage = float64(coveredTotal) / float64(requiredTotal) * 100
	} else {
		snap.Skills.CoveragePercentage = 100
	}

	return snap
}
