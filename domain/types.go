/*
Package domain provides the core allocation aggregation engine.

PURPOSE:
  This package contains the types and arithmetic for turning a set of raw,
  possibly-overlapping assignment records ("allocations") into utilization,
  availability, and financial figures. It has no knowledge of HTTP, storage,
  or scenarios; those layers consume it.

KEY CONCEPTS IN THIS FILE (types.go):
  - Resource:   A person with a role, skills, rates, and allocations
  - Allocation: A time-bounded, percentage-valued commitment to a project
  - Project:    A client engagement with required skills/roles and a budget
  - Money:      A decimal amount tagged with a currency code

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal for all money math
  2. Type Safety: Strong ID types prevent mixing resource/project ids
  3. Tolerance: Calculators return zero/empty for missing data, never error
  4. No currency conversion: mixed-currency rollups sum numerically; the
     caller is responsible for keeping a rollup scope in one currency

SEE ALSO:
  - period.go:     Inclusive date ranges and week bucketing
  - allocation.go: Utilization aggregation
  - finance.go:    Cost/billable/margin rollups
  - skills.go:     Skills and role coverage
*/
package domain

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ResourceID string
type ProjectID string
type AllocationID string
type ScenarioID string

// =============================================================================
// MONEY - Decimal amount with currency code
// =============================================================================

type Money struct {
	Amount   decimal.Decimal
	Currency string
}

func NewMoney(amount float64, currency string) Money {
	return Money{Amount: decimal.NewFromFloat(amount), Currency: currency}
}

func ZeroMoney(currency string) Money {
	return Money{Amount: decimal.Zero, Currency: currency}
}

// Add sums two amounts. If the receiver has no currency yet, it adopts the
// operand's. Amounts in different currencies are summed numerically; keeping
// a rollup scope in a single currency is the caller's responsibility.
func (m Money) Add(other Money) Money {
	cur := m.Currency
	if cur == "" {
		cur = other.Currency
	}
	return Money{Amount: m.Amount.Add(other.Amount), Currency: cur}
}

func (m Money) Sub(other Money) Money {
	cur := m.Currency
	if cur == "" {
		cur = other.Currency
	}
	return Money{Amount: m.Amount.Sub(other.Amount), Currency: cur}
}

func (m Money) IsZero() bool     { return m.Amount.IsZero() }
func (m Money) IsNegative() bool { return m.Amount.IsNegative() }

func (m Money) Float64() float64 {
	f, _ := m.Amount.Float64()
	return f
}

// =============================================================================
// SKILLS AND PROFICIENCY
// =============================================================================

type Proficiency string

const (
	ProficiencyBeginner     Proficiency = "beginner"
	ProficiencyIntermediate Proficiency = "intermediate"
	ProficiencyAdvanced     Proficiency = "advanced"
	ProficiencyExpert       Proficiency = "expert"
)

// Rank orders proficiency levels for minimum-level checks.
// Unknown levels rank as beginner.
func (p Proficiency) Rank() int {
	switch p {
	case ProficiencyExpert:
		return 3
	case ProficiencyAdvanced:
		return 2
	case ProficiencyIntermediate:
		return 1
	default:
		return 0
	}
}

// Skill is a named capability a resource has, optionally with a level.
type Skill struct {
	Name        string
	Proficiency Proficiency
}

// RequiredSkill is a skill a project needs, optionally with a minimum level.
type RequiredSkill struct {
	Name           string
	MinProficiency Proficiency
}

// RequiredRole is a role a project needs with a target headcount.
type RequiredRole struct {
	Name  string
	Count int
}

// =============================================================================
// RESOURCE
// =============================================================================

// Resource is a person that can be allocated to projects.
//
// Legacy note: older records carry a single-slot Allocation field alongside
// the Allocations list. NormalizeAllocations (allocation.go) reconciles both
// into one logical set; all readers go through it.
type Resource struct {
	ID           ResourceID
	Name         string
	Role         string
	Email        string
	Skills       []Skill
	HourlyRate   decimal.Decimal
	BillableRate decimal.Decimal
	Currency     string
	// WeeklyCapacityHours is the nominal working hours per week.
	// Zero means unset; callers fall back to the configured default.
	WeeklyCapacityHours decimal.Decimal

	// Allocation is the legacy single-slot field. Allocations is the list.
	Allocation  *Allocation
	Allocations []Allocation
}

// =============================================================================
// ALLOCATION
// =============================================================================

// Allocation is one time-bounded, percentage-valued commitment of one
// resource to one project. Two allocations on the same resource may overlap
// in time; overlap is expected and is exactly what produces over-allocation.
type Allocation struct {
	ID          AllocationID
	ResourceID  ResourceID
	ProjectID   ProjectID
	StartDate   Date
	EndDate     Date // inclusive; EndDate >= StartDate enforced at creation
	Utilization int  // percent, conventionally 1-100

	// Optional per-allocation rate overrides. Nil falls back to the
	// resource's rates.
	HourlyRate   *decimal.Decimal
	BillableRate *decimal.Decimal

	// TotalHours is an optional fixed estimate of hours for the engagement.
	// Nil means no financial contribution can be computed for it.
	TotalHours *decimal.Decimal
}

// Range returns the allocation's inclusive date range.
func (a Allocation) Range() DateRange {
	return DateRange{Start: a.StartDate, End: a.EndDate}
}

// ActiveOn reports whether the allocation's [start,end] contains date.
func (a Allocation) ActiveOn(date Date) bool {
	return a.Range().Contains(date)
}

// =============================================================================
// PROJECT
// =============================================================================

type Project struct {
	ID             ProjectID
	Name           string
	Client         string
	StartDate      Date
	EndDate        Date
	RequiredSkills []RequiredSkill
	RequiredRoles  []RequiredRole
	Budget         decimal.Decimal
	Currency       string
}

// =============================================================================
// SYSTEM CONFIG
// =============================================================================

// SystemConfig carries the organization-wide allocation settings supplied by
// the external configuration collaborator.
type SystemConfig struct {
	MaxUtilizationPercentage    int
	AllowOverallocation         bool
	DefaultAllocationPercentage int
}

// DefaultSystemConfig matches the out-of-the-box behavior: 100% cap,
// overbooking not permitted.
func DefaultSystemConfig() SystemConfig {
	return SystemConfig{
		MaxUtilizationPercentage:    100,
		AllowOverallocation:         false,
		DefaultAllocationPercentage: 100,
	}
}

// OverallocationThreshold returns the utilization percentage above which a
// resource counts as over-allocated. With AllowOverallocation the configured
// maximum applies (and may exceed 100 to explicitly permit overbooking);
// otherwise the threshold is 100.
func (c SystemConfig) OverallocationThreshold() int {
	if c.AllowOverallocation && c.MaxUtilizationPercentage > 0 {
		return c.MaxUtilizationPercentage
	}
	return 100
}
