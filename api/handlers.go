/*
handlers.go - HTTP API handlers for the allocation engine

PURPOSE:
  Exposes the allocation aggregation engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Resources:
    GET    /api/resources                    List all resources
    POST   /api/resources                    Create/update resource
    GET    /api/resources/{id}               Get resource details
    GET    /api/resources/{id}/utilization   Aggregated utilization

  Projects:
    GET    /api/projects                     List all projects
    POST   /api/projects                     Create/update project
    GET    /api/projects/{id}                Get project details
    GET    /api/projects/{id}/financials     Budget-vs-actual rollup
    GET    /api/projects/{id}/skills-coverage Coverage analysis
    GET    /api/projects/{id}/matches        Resource fit scores

  Allocations:
    POST   /api/allocations                  Create/update allocation
    DELETE /api/allocations/{id}             Delete allocation

  Capacity:
    GET    /api/capacity/forecast            Per-week availability grid

  Scenarios: see scenarios.go

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (aggregators, scenario service)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Promotion conflicts
  - 500: Storage and internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Scenario lifecycle handlers
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/freeup86/resource-pulse-sub002/domain"
	"github.com/freeup86/resource-pulse-sub002/scenario"
)

// defaultWeeklyCapacityHours applies to resources with no configured
// weekly capacity in the forecast grid.
var defaultWeeklyCapacityHours = decimal.NewFromInt(40)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     domain.TxStore
	Scenarios *scenario.Service
	Config    domain.SystemConfig
	Log       *zap.Logger
}

// NewHandler creates a new handler with the given store and scenario
// service. A nil logger falls back to a no-op logger.
func NewHandler(store domain.TxStore, scenarios *scenario.Service, cfg domain.SystemConfig, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Store:     store,
		Scenarios: scenarios,
		Config:    cfg,
		Log:       log,
	}
}

// =============================================================================
// RESOURCE HANDLERS
// =============================================================================

// ListResources returns all resources with their allocations.
func (h *Handler) ListResources(w http.ResponseWriter, r *http.Request) {
	resources, err := h.Store.ListResources(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]ResourceDTO, len(resources))
	for i, res := range resources {
		dtos[i] = toResourceDTO(res)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetResource returns a single resource.
func (h *Handler) GetResource(w http.ResponseWriter, r *http.Request) {
	id := domain.ResourceID(chi.URLParam(r, "id"))

	res, err := h.Store.GetResource(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResourceDTO(*res))
}

// SaveResource creates or updates a resource.
func (h *Handler) SaveResource(w http.ResponseWriter, r *http.Request) {
	var req SaveResourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "id is required", nil)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	res := domain.Resource{
		ID:                  domain.ResourceID(req.ID),
		Name:                req.Name,
		Role:                req.Role,
		Email:               req.Email,
		HourlyRate:          decimal.NewFromFloat(req.HourlyRate),
		BillableRate:        decimal.NewFromFloat(req.BillableRate),
		Currency:            req.Currency,
		WeeklyCapacityHours: decimal.NewFromFloat(req.WeeklyCapacityHours),
	}
	for _, s := range req.Skills {
		res.Skills = append(res.Skills, domain.Skill{
			Name:        s.Name,
			Proficiency: domain.Proficiency(s.Proficiency),
		})
	}

	if err := h.Store.SaveResource(r.Context(), res); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toResourceDTO(res))
}

// GetUtilization returns a resource's aggregated utilization, optionally
// scoped to a single date via ?as_of=YYYY-MM-DD.
func (h *Handler) GetUtilization(w http.ResponseWriter, r *http.Request) {
	id := domain.ResourceID(chi.URLParam(r, "id"))

	res, err := h.Store.GetResource(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var asOf *domain.Date
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		d, err := domain.ParseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid as_of format (use YYYY-MM-DD)", err)
			return
		}
		asOf = &d
	}

	u := domain.UtilizationSummary(*res, h.Config, asOf)
	dto := UtilizationDTO{
		ResourceID:    string(u.ResourceID),
		Total:         u.Total,
		OverAllocated: u.OverAllocated,
	}
	if asOf != nil {
		dto.AsOf = asOf.String()
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// PROJECT HANDLERS
// =============================================================================

// ListProjects returns all projects.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Store.ListProjects(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]ProjectDTO, len(projects))
	for i, p := range projects {
		dtos[i] = toProjectDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetProject returns a single project.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	id := domain.ProjectID(chi.URLParam(r, "id"))

	p, err := h.Store.GetProject(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectDTO(*p))
}

// SaveProject creates or updates a project.
func (h *Handler) SaveProject(w http.ResponseWriter, r *http.Request) {
	var req SaveProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "id is required", nil)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	start, err := domain.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date format (use YYYY-MM-DD)", err)
		return
	}
	end, err := domain.ParseDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date format (use YYYY-MM-DD)", err)
		return
	}
	if _, err := domain.NewDateRange(start, end); err != nil {
		writeDomainError(w, err)
		return
	}

	p := domain.Project{
		ID:        domain.ProjectID(req.ID),
		Name:      req.Name,
		Client:    req.Client,
		StartDate: start,
		EndDate:   end,
		Budget:    decimal.NewFromFloat(req.Budget),
		Currency:  req.Currency,
	}
	for _, s := range req.RequiredSkills {
		p.RequiredSkills = append(p.RequiredSkills, domain.RequiredSkill{
			Name:           s.Name,
			MinProficiency: domain.Proficiency(s.MinProficiency),
		})
	}
	for _, role := range req.RequiredRoles {
		p.RequiredRoles = append(p.RequiredRoles, domain.RequiredRole{
			Name:  role.Name,
			Count: role.Count,
		})
	}

	if err := h.Store.SaveProject(r.Context(), p); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProjectDTO(p))
}

// GetProjectFinancials returns the budget-vs-actual rollup for a project.
func (h *Handler) GetProjectFinancials(w http.ResponseWriter, r *http.Request) {
	id := domain.ProjectID(chi.URLParam(r, "id"))

	p, err := h.Store.GetProject(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resources, err := h.Store.ListResources(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toFinancialsDTO(domain.ProjectRollup(*p, resources)))
}

// GetSkillsCoverage returns the skills and role coverage analysis for a
// project based on its currently assigned resources.
func (h *Handler) GetSkillsCoverage(w http.ResponseWriter, r *http.Request) {
	id := domain.ProjectID(chi.URLParam(r, "id"))

	p, err := h.Store.GetProject(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resources, err := h.Store.ListResources(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	assigned := domain.AssignedResources(*p, resources)
	writeJSON(w, http.StatusOK, toCoverageDTO(domain.AnalyzeSkillsCoverage(*p, assigned)))
}

// GetProjectMatches returns resources ranked by fit against a project's
// requirements. Advisory only.
func (h *Handler) GetProjectMatches(w http.ResponseWriter, r *http.Request) {
	id := domain.ProjectID(chi.URLParam(r, "id"))

	p, err := h.Store.GetProject(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resources, err := h.Store.ListResources(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toMatchScoreDTOs(domain.ScoreResources(*p, resources, h.Config)))
}

// =============================================================================
// ALLOCATION HANDLERS
// =============================================================================

// SaveAllocation creates or updates an allocation.
func (h *Handler) SaveAllocation(w http.ResponseWriter, r *http.Request) {
	var req SaveAllocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ResourceID == "" {
		writeError(w, http.StatusBadRequest, "resource_id is required", nil)
		return
	}
	if req.ProjectID == "" {
		writeError(w, http.StatusBadRequest, "project_id is required", nil)
		return
	}

	a, err := fromSaveAllocationRequest(req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.validateAllocation(a); err != nil {
		writeDomainError(w, err)
		return
	}

	// Referential checks keep the aggregators from chewing on dangling ids.
	if _, err := h.Store.GetResource(r.Context(), a.ResourceID); err != nil {
		writeDomainError(w, err)
		return
	}
	if _, err := h.Store.GetProject(r.Context(), a.ProjectID); err != nil {
		writeDomainError(w, err)
		return
	}

	if a.ID == "" {
		a.ID = domain.AllocationID(newID())
	}
	if err := h.Store.UpsertAllocation(r.Context(), a); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAllocationDTO(a))
}

// DeleteAllocation removes an allocation. Deleting a missing id succeeds.
func (h *Handler) DeleteAllocation(w http.ResponseWriter, r *http.Request) {
	id := domain.AllocationID(chi.URLParam(r, "id"))

	if err := h.Store.DeleteAllocation(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) validateAllocation(a domain.Allocation) error {
	if _, err := domain.NewDateRange(a.StartDate, a.EndDate); err != nil {
		return err
	}
	max := h.Config.MaxUtilizationPercentage
	if max <= 0 {
		max = 100
	}
	if a.Utilization < 1 || a.Utilization > max {
		return &domain.InputError{
			Field:  "utilization",
			Reason: "must be between 1 and " + strconv.Itoa(max),
			Err:    domain.ErrInvalidUtilization,
		}
	}
	return nil
}

// =============================================================================
// CAPACITY FORECAST
// =============================================================================

// GetCapacityForecast returns the per-resource, per-week availability grid.
// Query params: start=YYYY-MM-DD (default today), weeks=N (default 8).
func (h *Handler) GetCapacityForecast(w http.ResponseWriter, r *http.Request) {
	start := domain.Today()
	if raw := r.URL.Query().Get("start"); raw != "" {
		d, err := domain.ParseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start format (use YYYY-MM-DD)", err)
			return
		}
		start = d
	}

	weeks := 8
	if raw := r.URL.Query().Get("weeks"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 104 {
			writeError(w, http.StatusBadRequest, "weeks must be an integer between 1 and 104", err)
			return
		}
		weeks = n
	}

	resources, err := h.Store.ListResources(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	grid := domain.CapacityForecast(resources, start, weeks, defaultWeeklyCapacityHours)
	writeJSON(w, http.StatusOK, toForecastDTO(grid))
}

func newID() string {
	return uuid.NewString()
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain error categories onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsInput(err):
		writeError(w, http.StatusBadRequest, "Invalid input", err)
	case domain.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case domain.IsStorage(err):
		writeError(w, http.StatusInternalServerError, "Storage failure", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}
