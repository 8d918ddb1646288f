/*
finance.go - Financial rollup calculator

PURPOSE:
  Turns allocations with rates and hour estimates into cost, billable,
  profit, and margin figures at allocation, resource, and project
  granularity.

RULES:
  - Per allocation: cost = hourlyRate * totalHours, billable =
    billableRate * totalHours, profit = billable - cost,
    margin% = profit / billable * 100 (zero when billable is zero).
  - Rate overrides on the allocation fall back to the resource's rates.
  - Allocations with no hour estimate contribute zero.
  - Currency codes are carried, never converted. Mixed-currency sums are
    numeric; consistent currency within a rollup scope is the caller's
    responsibility.
*/
package domain

import (
	"github.com/shopspring/decimal"
)

// AllocationFinancials is the financial contribution of one allocation.
type AllocationFinancials struct {
	AllocationID AllocationID
	ProjectID    ProjectID
	ResourceID   ResourceID
	Cost         Money
	Billable     Money
	Profit       Money
	MarginPct    decimal.Decimal
}

// ResourceFinancials sums a resource's allocations.
type ResourceFinancials struct {
	ResourceID ResourceID
	Cost       Money
	Billable   Money
	Profit     Money
	MarginPct  decimal.Decimal
	MarkupPct  decimal.Decimal
}

// ProjectFinancials sums all allocations referencing a project and compares
// against its declared budget.
type ProjectFinancials struct {
	ProjectID            ProjectID
	Budget               Money
	ActualCost           Money
	Billable             Money
	Profit               Money
	MarginPct            decimal.Decimal
	Variance             Money
	BudgetUtilizationPct decimal.Decimal
}

// AllocationCost computes the financial contribution of a single allocation,
// falling back to the resource's rates where the allocation does not
// override them. A nil hour estimate contributes zero.
func AllocationCost(a Allocation, r Resource) AllocationFinancials {
	fin := AllocationFinancials{
		AllocationID: a.ID,
		ProjectID:    a.ProjectID,
		ResourceID:   r.ID,
		Cost:         ZeroMoney(r.Currency),
		Billable:     ZeroMoney(r.Currency),
		Profit:       ZeroMoney(r.Currency),
	}
	if a.TotalHours == nil {
		return fin
	}

	hourly := r.HourlyRate
	if a.HourlyRate != nil {
		hourly = *a.HourlyRate
	}
	billableRate := r.BillableRate
	if a.BillableRate != nil {
		billableRate = *a.BillableRate
	}

	hours := *a.TotalHours
	fin.Cost = Money{Amount: hourly.Mul(hours), Currency: r.Currency}
	fin.Billable = Money{Amount: billableRate.Mul(hours), Currency: r.Currency}
	fin.Profit = fin.Billable.Sub(fin.Cost)
	fin.MarginPct = marginPct(fin.Profit.Amount, fin.Billable.Amount)
	return fin
}

// ResourceRollup sums cost/billable/profit across a resource's allocations.
func ResourceRollup(r Resource) ResourceFinancials {
	out := ResourceFinancials{
		ResourceID: r.ID,
		Cost:       ZeroMoney(r.Currency),
		Billable:   ZeroMoney(r.Currency),
		Profit:     ZeroMoney(r.Currency),
	}
	for _, a := range NormalizeAllocations(r) {
		fin := AllocationCost(a, r)
		out.Cost = out.Cost.Add(fin.Cost)
		out.Billable = out.Billable.Add(fin.Billable)
		out.Profit = out.Profit.Add(fin.Profit)
	}
	out.MarginPct = marginPct(out.Profit.Amount, out.Billable.Amount)
	out.MarkupPct = markupPct(r.HourlyRate, r.BillableRate)
	return out
}

// ProjectRollup sums every allocation referencing the project across the
// given resources, then compares against the project's declared budget.
func ProjectRollup(p Project, resources []Resource) ProjectFinancials {
	out := ProjectFinancials{
		ProjectID:  p.ID,
		Budget:     Money{Amount: p.Budget, Currency: p.Currency},
		ActualCost: ZeroMoney(p.Currency),
		Billable:   ZeroMoney(p.Currency),
		Profit:     ZeroMoney(p.Currency),
	}
	for _, r := range resources {
		for _, a := range NormalizeAllocations(r) {
			if a.ProjectID != p.ID {
				continue
			}
			fin := AllocationCost(a, r)
			out.ActualCost = out.ActualCost.Add(fin.Cost)
			out.Billable = out.Billable.Add(fin.Billable)
			out.Profit = out.Profit.Add(fin.Profit)
		}
	}
	out.MarginPct = marginPct(out.Profit.Amount, out.Billable.Amount)
	out.Variance = out.Budget.Sub(out.ActualCost)
	if !p.Budget.IsZero() {
		out.BudgetUtilizationPct = out.ActualCost.Amount.Div(p.Budget).Mul(hundred)
	}
	return out
}

// marginPct is profit/billable*100, zero when billable is zero.
func marginPct(profit, billable decimal.Decimal) decimal.Decimal {
	if billable.IsZero() {
		return decimal.Zero
	}
	return profit.Div(billable).Mul(hundred)
}

// markupPct is (billableRate/hourlyRate - 1) * 100, zero when the hourly
// rate is zero.
func markupPct(hourly, billable decimal.Decimal) decimal.Decimal {
	if hourly.IsZero() {
		return decimal.Zero
	}
	return billable.Div(hourly).Sub(decimal.NewFromInt(1)).Mul(hundred)
}
