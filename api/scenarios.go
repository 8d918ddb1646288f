/*
scenarios.go - Scenario lifecycle endpoints

PURPOSE:
  HTTP surface for the what-if simulation engine: create and inspect
  scenarios, record hypothetical changes, compute and read metrics
  snapshots, compare scenarios side by side, and promote an approved
  scenario into live data.

ENDPOINTS:
  POST   /api/scenarios                       Create (optionally clone)
  GET    /api/scenarios                       List
  GET    /api/scenarios/{id}                  Get with change lists
  POST   /api/scenarios/{id}/changes/resource Record allocation change
  POST   /api/scenarios/{id}/changes/timeline Record timeline change
  POST   /api/scenarios/{id}/metrics          Recalculate snapshot
  GET    /api/scenarios/{id}/metrics          Cached snapshot + stale flag
  POST   /api/scenarios/compare               N-way comparison
  POST   /api/scenarios/{id}/promote          Two-phase promotion

PROMOTION STATUSES:
  200: promoted
  409: rejected with the full conflict list in the body

SEE ALSO:
  - handlers.go: Shared helpers, error mapping
  - dto.go: Resource/allocation DTOs reused here
*/
package api

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/freeup86/resource-pulse-sub002/domain"
	"github.com/freeup86/resource-pulse-sub002/scenario"
)

// =============================================================================
// SCENARIO DTOs
// =============================================================================

// ScenarioDTO represents a scenario in API responses.
type ScenarioDTO struct {
	ID              string              `json:"id"`
	Name            string              `json:"name"`
	Description     string              `json:"description,omitempty"`
	BaseID          string              `json:"base_id,omitempty"`
	Status          string              `json:"status"`
	WindowStart     string              `json:"window_start,omitempty"`
	WindowEnd       string              `json:"window_end,omitempty"`
	ResourceChanges []ResourceChangeDTO `json:"resource_changes"`
	TimelineChanges []TimelineChangeDTO `json:"timeline_changes"`
	Version         string              `json:"version"`
	SnapshotStale   bool                `json:"snapshot_stale"`
}

// CreateScenarioRequest is the request to create a scenario.
type CreateScenarioRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	BaseID      string `json:"base_id,omitempty"`
	WindowStart string `json:"window_start,omitempty"`
	WindowEnd   string `json:"window_end,omitempty"`
}

// ResourceChangeDTO is one hypothetical allocation change.
type ResourceChangeDTO struct {
	ResourceID string        `json:"resource_id"`
	Allocation AllocationDTO `json:"allocation"`
	Remove     bool          `json:"remove,omitempty"`
}

// ResourceChangeRequest records an allocation change on a scenario.
type ResourceChangeRequest struct {
	ResourceID string                `json:"resource_id"`
	Allocation SaveAllocationRequest `json:"allocation"`
	Remove     bool                  `json:"remove,omitempty"`
}

// TimelineChangeDTO is one hypothetical project timeline shift.
type TimelineChangeDTO struct {
	ProjectID     string `json:"project_id"`
	OriginalStart string `json:"original_start,omitempty"`
	OriginalEnd   string `json:"original_end,omitempty"`
	NewStart      string `json:"new_start"`
	NewEnd        string `json:"new_end"`
	Notes         string `json:"notes,omitempty"`
}

// TimelineChangeRequest records a timeline change on a scenario.
type TimelineChangeRequest struct {
	ProjectID string `json:"project_id"`
	NewStart  string `json:"new_start"`
	NewEnd    string `json:"new_end"`
	Notes     string `json:"notes,omitempty"`
}

// ResourceMetricDTO is one resource's utilization row in a snapshot.
type ResourceMetricDTO struct {
	ResourceID    string `json:"resource_id"`
	Name          string `json:"name"`
	Total         int    `json:"total"`
	OverAllocated bool   `json:"over_allocated"`
}

// UtilizationMetricsDTO summarizes utilization across a scenario.
type UtilizationMetricsDTO struct {
	Overall    float64             `json:"overall"`
	ByResource []ResourceMetricDTO `json:"by_resource"`
}

// CostMetricsDTO summarizes the financial rollup of a scenario.
type CostMetricsDTO struct {
	TotalCost     float64                `json:"total_cost"`
	TotalBillable float64                `json:"total_billable"`
	Profit        float64                `json:"profit"`
	MarginPct     float64                `json:"margin_pct"`
	ByProject     []ProjectFinancialsDTO `json:"by_project"`
}

// CoverageMetricsDTO aggregates skills coverage across a scenario.
type CoverageMetricsDTO struct {
	CoveragePercentage float64             `json:"coverage_percentage"`
	Covered            []string            `json:"covered"`
	Missing            []string            `json:"missing"`
	ByProject          []SkillsCoverageDTO `json:"by_project"`
}

// MetricsDTO is a scenario's metrics snapshot with its staleness flag.
type MetricsDTO struct {
	ScenarioID  string                 `json:"scenario_id"`
	Version     string                 `json:"version"`
	Stale       bool                   `json:"stale"`
	Utilization *UtilizationMetricsDTO `json:"utilization,omitempty"`
	Costs       *CostMetricsDTO        `json:"costs,omitempty"`
	Skills      *CoverageMetricsDTO    `json:"skills,omitempty"`
}

// CompareRequest selects the scenarios and metric groups to align.
type CompareRequest struct {
	ScenarioIDs []string `json:"scenario_ids"`
	Metrics     []string `json:"metrics,omitempty"`
}

// ComparisonEntryDTO is one scenario's column in a comparison.
type ComparisonEntryDTO struct {
	ScenarioID   string                 `json:"scenario_id"`
	ScenarioName string                 `json:"scenario_name"`
	Stale        bool                   `json:"stale"`
	Utilization  *UtilizationMetricsDTO `json:"utilization,omitempty"`
	Costs        *CostMetricsDTO        `json:"costs,omitempty"`
	Skills       *CoverageMetricsDTO    `json:"skills,omitempty"`
}

// ComparisonDTO is the aligned result set.
type ComparisonDTO struct {
	Metrics   []string             `json:"metrics"`
	Scenarios []ComparisonEntryDTO `json:"scenarios"`
}

// ConflictDTO is one promotion validation conflict.
type ConflictDTO struct {
	ResourceID  string `json:"resource_id"`
	Name        string `json:"name,omitempty"`
	Utilization int    `json:"utilization"`
	Threshold   int    `json:"threshold"`
}

// PromotionResultDTO is the outcome of a promotion request.
type PromotionResultDTO struct {
	ScenarioID string        `json:"scenario_id"`
	Promoted   bool          `json:"promoted"`
	Conflicts  []ConflictDTO `json:"conflicts"`
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// CreateScenario creates a new draft scenario, optionally cloned from an
// existing one.
func (h *Handler) CreateScenario(w http.ResponseWriter, r *http.Request) {
	var req CreateScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	params := scenario.CreateParams{
		Name:            req.Name,
		Description:     req.Description,
		CloneFromBaseID: domain.ScenarioID(req.BaseID),
	}
	if req.WindowStart != "" && req.WindowEnd != "" {
		start, err := domain.ParseDate(req.WindowStart)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid window_start format (use YYYY-MM-DD)", err)
			return
		}
		end, err := domain.ParseDate(req.WindowEnd)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid window_end format (use YYYY-MM-DD)", err)
			return
		}
		window, err := domain.NewDateRange(start, end)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		params.Window = window
	}

	s, err := h.Scenarios.Create(r.Context(), params)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toScenarioDTO(s))
}

// ListScenarios returns all scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	scenarios := h.Scenarios.List(r.Context())
	dtos := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		dtos[i] = toScenarioDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetScenario returns one scenario with its change lists.
func (h *Handler) GetScenario(w http.ResponseWriter, r *http.Request) {
	id := domain.ScenarioID(chi.URLParam(r, "id"))

	s, err := h.Scenarios.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toScenarioDTO(s))
}

// RecordResourceChange records a hypothetical allocation change.
func (h *Handler) RecordResourceChange(w http.ResponseWriter, r *http.Request) {
	id := domain.ScenarioID(chi.URLParam(r, "id"))

	var req ResourceChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ch := scenario.ResourceChange{
		ResourceID: domain.ResourceID(req.ResourceID),
		Remove:     req.Remove,
	}
	if req.Remove {
		// Removal only needs the allocation id.
		ch.Allocation = domain.Allocation{ID: domain.AllocationID(req.Allocation.ID)}
	} else {
		a, err := fromSaveAllocationRequest(req.Allocation)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if a.ID == "" {
			a.ID = domain.AllocationID(newID())
		}
		ch.Allocation = a
	}

	if err := h.Scenarios.UpsertResourceChange(r.Context(), id, ch); err != nil {
		writeDomainError(w, err)
		return
	}

	s, err := h.Scenarios.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toScenarioDTO(s))
}

// RecordTimelineChange records a hypothetical project timeline shift.
func (h *Handler) RecordTimelineChange(w http.ResponseWriter, r *http.Request) {
	id := domain.ScenarioID(chi.URLParam(r, "id"))

	var req TimelineChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start, err := domain.ParseDate(req.NewStart)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid new_start format (use YYYY-MM-DD)", err)
		return
	}
	end, err := domain.ParseDate(req.NewEnd)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid new_end format (use YYYY-MM-DD)", err)
		return
	}

	ch := scenario.ProjectTimelineChange{
		ProjectID: domain.ProjectID(req.ProjectID),
		NewStart:  start,
		NewEnd:    end,
		Notes:     req.Notes,
	}
	if err := h.Scenarios.UpsertTimelineChange(r.Context(), id, ch); err != nil {
		writeDomainError(w, err)
		return
	}

	s, err := h.Scenarios.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toScenarioDTO(s))
}

// CalculateMetrics recomputes a scenario's metrics snapshot.
func (h *Handler) CalculateMetrics(w http.ResponseWriter, r *http.Request) {
	id := domain.ScenarioID(chi.URLParam(r, "id"))

	result, err := h.Scenarios.CalculateMetrics(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMetricsDTO(id, result))
}

// GetMetrics returns the cached snapshot with its staleness flag,
// computing one only if none exists yet.
func (h *Handler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	id := domain.ScenarioID(chi.URLParam(r, "id"))

	result, err := h.Scenarios.Metrics(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMetricsDTO(id, result))
}

// CompareScenarios aligns metrics for two or more scenarios.
func (h *Handler) CompareScenarios(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ids := make([]domain.ScenarioID, len(req.ScenarioIDs))
	for i, raw := range req.ScenarioIDs {
		ids[i] = domain.ScenarioID(raw)
	}

	cmp, err := h.Scenarios.Compare(r.Context(), ids, req.Metrics)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dto := ComparisonDTO{
		Metrics:   cmp.Metrics,
		Scenarios: make([]ComparisonEntryDTO, 0, len(cmp.Scenarios)),
	}
	for _, entry := range cmp.Scenarios {
		e := ComparisonEntryDTO{
			ScenarioID:   string(entry.ScenarioID),
			ScenarioName: entry.ScenarioName,
			Stale:        entry.Stale,
		}
		if entry.Utilization != nil {
			u := toUtilizationMetricsDTO(*entry.Utilization)
			e.Utilization = &u
		}
		if entry.Costs != nil {
			c := toCostMetricsDTO(*entry.Costs)
			e.Costs = &c
		}
		if entry.Skills != nil {
			s := toCoverageMetricsDTO(*entry.Skills)
			e.Skills = &s
		}
		dto.Scenarios = append(dto.Scenarios, e)
	}
	writeJSON(w, http.StatusOK, dto)
}

// PromoteScenario re-validates a scenario against live data and applies
// its changes atomically. Conflicts return 409 with the full list.
func (h *Handler) PromoteScenario(w http.ResponseWriter, r *http.Request) {
	id := domain.ScenarioID(chi.URLParam(r, "id"))

	result, err := h.Scenarios.Promote(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dto := PromotionResultDTO{
		ScenarioID: string(result.ScenarioID),
		Promoted:   result.Promoted,
		Conflicts:  []ConflictDTO{},
	}
	for _, c := range result.Conflicts {
		dto.Conflicts = append(dto.Conflicts, ConflictDTO{
			ResourceID:  string(c.ResourceID),
			Name:        c.Name,
			Utilization: c.Utilization,
			Threshold:   c.Threshold,
		})
	}

	status := http.StatusOK
	if !result.Promoted {
		status = http.StatusConflict
	}
	writeJSON(w, status, dto)
}

// =============================================================================
// SCENARIO CONVERSIONS
// =============================================================================

func toScenarioDTO(s *scenario.Scenario) ScenarioDTO {
	dto := ScenarioDTO{
		ID:              string(s.ID),
		Name:            s.Name,
		Description:     s.Description,
		BaseID:          string(s.BaseID),
		Status:          string(s.Status),
		ResourceChanges: []ResourceChangeDTO{},
		TimelineChanges: []TimelineChangeDTO{},
		Version:         s.Version().String(),
		SnapshotStale:   s.SnapshotStale(),
	}
	if s.Window.IsValid() {
		dto.WindowStart = s.Window.Start.String()
		dto.WindowEnd = s.Window.End.String()
	}
	for _, ch := range s.ResourceChanges {
		dto.ResourceChanges = append(dto.ResourceChanges, ResourceChangeDTO{
			ResourceID: string(ch.ResourceID),
			Allocation: toAllocationDTO(ch.Allocation),
			Remove:     ch.Remove,
		})
	}
	for _, ch := range s.TimelineChanges {
		dto.TimelineChanges = append(dto.TimelineChanges, TimelineChangeDTO{
			ProjectID:     string(ch.ProjectID),
			OriginalStart: dateStringOrEmpty(ch.OriginalStart),
			OriginalEnd:   dateStringOrEmpty(ch.OriginalEnd),
			NewStart:      ch.NewStart.String(),
			NewEnd:        ch.NewEnd.String(),
			Notes:         ch.Notes,
		})
	}
	return dto
}

func toMetricsDTO(id domain.ScenarioID, result *scenario.MetricsResult) MetricsDTO {
	dto := MetricsDTO{
		ScenarioID: string(id),
		Version:    result.Version.String(),
		Stale:      result.Stale,
	}
	if result.Snapshot != nil {
		u := toUtilizationMetricsDTO(result.Snapshot.Utilization)
		c := toCostMetricsDTO(result.Snapshot.Costs)
		s := toCoverageMetricsDTO(result.Snapshot.Skills)
		dto.Utilization = &u
		dto.Costs = &c
		dto.Skills = &s
	}
	return dto
}

func toUtilizationMetricsDTO(m scenario.UtilizationMetrics) UtilizationMetricsDTO {
	dto := UtilizationMetricsDTO{
		Overall:    m.Overall,
		ByResource: []ResourceMetricDTO{},
	}
	for _, row := range m.ByResource {
		dto.ByResource = append(dto.ByResource, ResourceMetricDTO{
			ResourceID:    string(row.ResourceID),
			Name:          row.Name,
			Total:         row.Total,
			OverAllocated: row.OverAllocated,
		})
	}
	sort.Slice(dto.ByResource, func(i, j int) bool {
		return dto.ByResource[i].ResourceID < dto.ByResource[j].ResourceID
	})
	return dto
}

func toCostMetricsDTO(m scenario.CostMetrics) CostMetricsDTO {
	dto := CostMetricsDTO{
		TotalCost:     m.TotalCost.Float64(),
		TotalBillable: m.TotalBillable.Float64(),
		Profit:        m.Profit.Float64(),
		MarginPct:     decFloat(m.MarginPct),
		ByProject:     []ProjectFinancialsDTO{},
	}
	for _, fin := range m.ByProject {
		dto.ByProject = append(dto.ByProject, toFinancialsDTO(fin))
	}
	sort.Slice(dto.ByProject, func(i, j int) bool {
		return dto.ByProject[i].ProjectID < dto.ByProject[j].ProjectID
	})
	return dto
}

func toCoverageMetricsDTO(m scenario.CoverageMetrics) CoverageMetricsDTO {
	dto := CoverageMetricsDTO{
		CoveragePercentage: m.CoveragePercentage,
		Covered:            emptyIfNil(m.Covered),
		Missing:            emptyIfNil(m.Missing),
		ByProject:          []SkillsCoverageDTO{},
	}
	for _, cov := range m.ByProject {
		dto.ByProject = append(dto.ByProject, toCoverageDTO(cov))
	}
	sort.Slice(dto.ByProject, func(i, j int) bool {
		return dto.ByProject[i].ProjectID < dto.ByProject[j].ProjectID
	})
	return dto
}

func dateStringOrEmpty(d domain.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}
