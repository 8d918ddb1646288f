/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Resources:
    ResourceDTO, SkillDTO, SaveResourceRequest

  Projects:
    ProjectDTO, SaveProjectRequest

  Allocations:
    AllocationDTO, SaveAllocationRequest

  Aggregation:
    UtilizationDTO, ProjectFinancialsDTO, SkillsCoverageDTO,
    ForecastRowDTO, MatchScoreDTO

  Scenarios:
    ScenarioDTO, MetricsDTO, ComparisonDTO, PromotionResultDTO

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - scenarios.go: Scenario endpoint types
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/freeup86/resource-pulse-sub002/domain"
)

// =============================================================================
// RESOURCE TYPES
// =============================================================================

// SkillDTO represents one skill with an optional proficiency level.
type SkillDTO struct {
	Name        string `json:"name"`
	Proficiency string `json:"proficiency,omitempty"`
}

// ResourceDTO represents a resource in API responses.
type ResourceDTO struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	Role                string          `json:"role,omitempty"`
	Email               string          `json:"email,omitempty"`
	Skills              []SkillDTO      `json:"skills,omitempty"`
	HourlyRate          float64         `json:"hourly_rate"`
	BillableRate        float64         `json:"billable_rate"`
	Currency            string          `json:"currency,omitempty"`
	WeeklyCapacityHours float64         `json:"weekly_capacity_hours,omitempty"`
	Allocations         []AllocationDTO `json:"allocations"`
}

// SaveResourceRequest is the request to create or update a resource.
type SaveResourceRequest struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Role                string     `json:"role,omitempty"`
	Email               string     `json:"email,omitempty"`
	Skills              []SkillDTO `json:"skills,omitempty"`
	HourlyRate          float64    `json:"hourly_rate"`
	BillableRate        float64    `json:"billable_rate"`
	Currency            string     `json:"currency,omitempty"`
	WeeklyCapacityHours float64    `json:"weekly_capacity_hours,omitempty"`
}

// UtilizationDTO is a resource's aggregated utilization.
type UtilizationDTO struct {
	ResourceID    string `json:"resource_id"`
	Total         int    `json:"total"`
	OverAllocated bool   `json:"over_allocated"`
	AsOf          string `json:"as_of,omitempty"`
}

// =============================================================================
// PROJECT TYPES
// =============================================================================

// RequiredSkillDTO is a skill requirement with an optional minimum level.
type RequiredSkillDTO struct {
	Name           string `json:"name"`
	MinProficiency string `json:"min_proficiency,omitempty"`
}

// RequiredRoleDTO is a role requirement with a target headcount.
type RequiredRoleDTO struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ProjectDTO represents a project in API responses.
type ProjectDTO struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Client         string             `json:"client,omitempty"`
	StartDate      string             `json:"start_date"`
	EndDate        string             `json:"end_date"`
	RequiredSkills []RequiredSkillDTO `json:"required_skills,omitempty"`
	RequiredRoles  []RequiredRoleDTO  `json:"required_roles,omitempty"`
	Budget         float64            `json:"budget"`
	Currency       string             `json:"currency,omitempty"`
}

// SaveProjectRequest is the request to create or update a project.
type SaveProjectRequest struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Client         string             `json:"client,omitempty"`
	StartDate      string             `json:"start_date"`
	EndDate        string             `json:"end_date"`
	RequiredSkills []RequiredSkillDTO `json:"required_skills,omitempty"`
	RequiredRoles  []RequiredRoleDTO  `json:"required_roles,omitempty"`
	Budget         float64            `json:"budget"`
	Currency       string             `json:"currency,omitempty"`
}

// ProjectFinancialsDTO is the budget-vs-actual rollup for one project.
type ProjectFinancialsDTO struct {
	ProjectID            string  `json:"project_id"`
	Budget               float64 `json:"budget"`
	ActualCost           float64 `json:"actual_cost"`
	Billable             float64 `json:"billable"`
	Profit               float64 `json:"profit"`
	MarginPct            float64 `json:"margin_pct"`
	Variance             float64 `json:"variance"`
	BudgetUtilizationPct float64 `json:"budget_utilization_pct"`
	Currency             string  `json:"currency,omitempty"`
}

// RoleCoverageDTO is the fulfillment state of one required role.
type RoleCoverageDTO struct {
	Role      string `json:"role"`
	Required  int    `json:"required"`
	Assigned  int    `json:"assigned"`
	Fulfilled bool   `json:"fulfilled"`
	Gap       int    `json:"gap"`
}

// SkillsCoverageDTO is the project-level coverage summary.
type SkillsCoverageDTO struct {
	ProjectID          string            `json:"project_id"`
	CoveragePercentage float64           `json:"coverage_percentage"`
	Covered            []string          `json:"covered"`
	Missing            []string          `json:"missing"`
	Roles              []RoleCoverageDTO `json:"roles"`
}

// MatchScoreDTO is one resource's fit against a project.
type MatchScoreDTO struct {
	ResourceID    string `json:"resource_id"`
	Name          string `json:"name"`
	Score         int    `json:"score"`
	SkillsMatched int    `json:"skills_matched"`
	SkillsTotal   int    `json:"skills_total"`
	RoleMatched   bool   `json:"role_matched"`
	Utilization   int    `json:"utilization"`
}

// =============================================================================
// ALLOCATION TYPES
// =============================================================================

// AllocationDTO represents an allocation in API responses.
type AllocationDTO struct {
	ID           string   `json:"id"`
	ResourceID   string   `json:"resource_id"`
	ProjectID    string   `json:"project_id"`
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date"`
	Utilization  int      `json:"utilization"`
	HourlyRate   *float64 `json:"hourly_rate,omitempty"`
	BillableRate *float64 `json:"billable_rate,omitempty"`
	TotalHours   *float64 `json:"total_hours,omitempty"`
}

// SaveAllocationRequest is the request to create or update an allocation.
type SaveAllocationRequest struct {
	ID           string   `json:"id,omitempty"`
	ResourceID   string   `json:"resource_id"`
	ProjectID    string   `json:"project_id"`
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date"`
	Utilization  int      `json:"utilization"`
	HourlyRate   *float64 `json:"hourly_rate,omitempty"`
	BillableRate *float64 `json:"billable_rate,omitempty"`
	TotalHours   *float64 `json:"total_hours,omitempty"`
}

// =============================================================================
// FORECAST TYPES
// =============================================================================

// WeekCellDTO is one resource-week in the forecast grid.
type WeekCellDTO struct {
	WeekStart         string  `json:"week_start"`
	Utilization       int     `json:"utilization"`
	AvailabilityHours float64 `json:"availability_hours"`
	DisplayHours      float64 `json:"display_hours"`
}

// ForecastRowDTO is a resource's row in the forecast grid.
type ForecastRowDTO struct {
	ResourceID    string        `json:"resource_id"`
	Name          string        `json:"name"`
	CapacityHours float64       `json:"capacity_hours"`
	Weeks         []WeekCellDTO `json:"weeks"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toResourceDTO(r domain.Resource) ResourceDTO {
	dto := ResourceDTO{
		ID:                  string(r.ID),
		Name:                r.Name,
		Role:                r.Role,
		Email:               r.Email,
		HourlyRate:          decFloat(r.HourlyRate),
		BillableRate:        decFloat(r.BillableRate),
		Currency:            r.Currency,
		WeeklyCapacityHours: decFloat(r.WeeklyCapacityHours),
		Allocations:         []AllocationDTO{},
	}
	for _, s := range r.Skills {
		dto.Skills = append(dto.Skills, SkillDTO{
			Name:        s.Name,
			Proficiency: string(s.Proficiency),
		})
	}
	for _, a := range domain.NormalizeAllocations(r) {
		dto.Allocations = append(dto.Allocations, toAllocationDTO(a))
	}
	return dto
}

func toAllocationDTO(a domain.Allocation) AllocationDTO {
	return AllocationDTO{
		ID:           string(a.ID),
		ResourceID:   string(a.ResourceID),
		ProjectID:    string(a.ProjectID),
		StartDate:    a.StartDate.String(),
		EndDate:      a.EndDate.String(),
		Utilization:  a.Utilization,
		HourlyRate:   decPtrFloat(a.HourlyRate),
		BillableRate: decPtrFloat(a.BillableRate),
		TotalHours:   decPtrFloat(a.TotalHours),
	}
}

func toProjectDTO(p domain.Project) ProjectDTO {
	dto := ProjectDTO{
		ID:        string(p.ID),
		Name:      p.Name,
		Client:    p.Client,
		StartDate: p.StartDate.String(),
		EndDate:   p.EndDate.String(),
		Budget:    decFloat(p.Budget),
		Currency:  p.Currency,
	}
	for _, s := range p.RequiredSkills {
		dto.RequiredSkills = append(dto.RequiredSkills, RequiredSkillDTO{
			Name:           s.Name,
			MinProficiency: string(s.MinProficiency),
		})
	}
	for _, r := range p.RequiredRoles {
		dto.RequiredRoles = append(dto.RequiredRoles, RequiredRoleDTO{
			Name:  r.Name,
			Count: r.Count,
		})
	}
	return dto
}

func toFinancialsDTO(f domain.ProjectFinancials) ProjectFinancialsDTO {
	return ProjectFinancialsDTO{
		ProjectID:            string(f.ProjectID),
		Budget:               f.Budget.Float64(),
		ActualCost:           f.ActualCost.Float64(),
		Billable:             f.Billable.Float64(),
		Profit:               f.Profit.Float64(),
		MarginPct:            decFloat(f.MarginPct),
		Variance:             f.Variance.Float64(),
		BudgetUtilizationPct: decFloat(f.BudgetUtilizationPct),
		Currency:             f.Budget.Currency,
	}
}

func toCoverageDTO(c domain.SkillsCoverage) SkillsCoverageDTO {
	dto := SkillsCoverageDTO{
		ProjectID:          string(c.ProjectID),
		CoveragePercentage: c.CoveragePercentage,
		Covered:            emptyIfNil(c.Covered),
		Missing:            emptyIfNil(c.Missing),
		Roles:              []RoleCoverageDTO{},
	}
	for _, r := range c.Roles {
		dto.Roles = append(dto.Roles, RoleCoverageDTO{
			Role:      r.Role,
			Required:  r.Required,
			Assigned:  r.Assigned,
			Fulfilled: r.Fulfilled,
			Gap:       r.Gap,
		})
	}
	return dto
}

func toForecastDTO(rows []domain.ResourceForecast) []ForecastRowDTO {
	out := make([]ForecastRowDTO, 0, len(rows))
	for _, row := range rows {
		dto := ForecastRowDTO{
			ResourceID:    string(row.ResourceID),
			Name:          row.Name,
			CapacityHours: decFloat(row.CapacityHours),
			Weeks:         make([]WeekCellDTO, 0, len(row.Weeks)),
		}
		for _, w := range row.Weeks {
			dto.Weeks = append(dto.Weeks, WeekCellDTO{
				WeekStart:         w.WeekStart.String(),
				Utilization:       w.Utilization,
				AvailabilityHours: decFloat(w.AvailabilityHours),
				DisplayHours:      decFloat(w.DisplayHours),
			})
		}
		out = append(out, dto)
	}
	return out
}

func toMatchScoreDTOs(scores []domain.MatchScore) []MatchScoreDTO {
	out := make([]MatchScoreDTO, 0, len(scores))
	for _, s := range scores {
		out = append(out, MatchScoreDTO{
			ResourceID:    string(s.ResourceID),
			Name:          s.Name,
			Score:         s.Score,
			SkillsMatched: s.SkillsMatched,
			SkillsTotal:   s.SkillsTotal,
			RoleMatched:   s.RoleMatched,
			Utilization:   s.Utilization,
		})
	}
	return out
}

func fromSaveAllocationRequest(req SaveAllocationRequest) (domain.Allocation, error) {
	start, err := domain.ParseDate(req.StartDate)
	if err != nil {
		return domain.Allocation{}, &domain.InputError{Field: "start_date", Reason: "use YYYY-MM-DD", Err: err}
	}
	end, err := domain.ParseDate(req.EndDate)
	if err != nil {
		return domain.Allocation{}, &domain.InputError{Field: "end_date", Reason: "use YYYY-MM-DD", Err: err}
	}
	return domain.Allocation{
		ID:           domain.AllocationID(req.ID),
		ResourceID:   domain.ResourceID(req.ResourceID),
		ProjectID:    domain.ProjectID(req.ProjectID),
		StartDate:    start,
		EndDate:      end,
		Utilization:  req.Utilization,
		HourlyRate:   floatPtrDec(req.HourlyRate),
		BillableRate: floatPtrDec(req.BillableRate),
		TotalHours:   floatPtrDec(req.TotalHours),
	}, nil
}

func decFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func decPtrFloat(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := decFloat(*d)
	return &f
}

func floatPtrDec(f *float64) *decimal.Decimal {
	if f == nil {
		return nil
	}
	d := decimal.NewFromFloat(*f)
	return &d
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
