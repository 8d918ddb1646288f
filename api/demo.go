/*
demo.go - Demo dataset loader for testing and demonstrations

PURPOSE:
  Seeds the store with a small but realistic live dataset: a handful of
  resources with skills and rates, projects with requirements and budgets,
  and allocations that include one intentionally over-allocated resource.
  Gives the aggregators and the scenario engine something to chew on
  without hand-entering data.

USAGE VIA API:
  POST /api/demo/load

NOTE:
  The loader upserts on fixed ids, so reloading is idempotent. Only use
  in development/demo environments.

SEE ALSO:
  - handlers.go: Shared helpers
  - server.go: Route registration
*/
package api

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/freeup86/resource-pulse-sub002/domain"
)

// LoadDemoData seeds the store with the demo dataset.
func (h *Handler) LoadDemoData(w http.ResponseWriter, r *http.Request) {
	if err := SeedDemoData(r.Context(), h.Store); err != nil {
		writeDomainError(w, err)
		return
	}
	h.Log.Info("demo dataset loaded")
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded"})
}

// SeedDemoData writes the demo dataset through the given store. Exported
// so tests and the server's --demo flag can reuse it.
func SeedDemoData(ctx context.Context, store domain.TxStore) error {
	dec := decimal.NewFromInt
	hours := func(n int64) *decimal.Decimal {
		d := dec(n)
		return &d
	}

	resources := []domain.Resource{
		{
			ID:   "res-ana",
			Name: "Ana Silva",
			Role: "Frontend Developer",
			Skills: []domain.Skill{
				{Name: "React", Proficiency: domain.ProficiencyExpert},
				{Name: "TypeScript", Proficiency: domain.ProficiencyAdvanced},
			},
			HourlyRate:          dec(70),
			BillableRate:        dec(120),
			Currency:            "USD",
			WeeklyCapacityHours: dec(40),
		},
		{
			ID:   "res-ben",
			Name: "Ben Okafor",
			Role: "Backend Developer",
			Skills: []domain.Skill{
				{Name: "Go", Proficiency: domain.ProficiencyExpert},
				{Name: "PostgreSQL", Proficiency: domain.ProficiencyIntermediate},
			},
			HourlyRate:          dec(80),
			BillableRate:        dec(140),
			Currency:            "USD",
			WeeklyCapacityHours: dec(40),
		},
		{
			ID:   "res-chloe",
			Name: "Chloe Martin",
			Role: "Project Manager",
			Skills: []domain.Skill{
				{Name: "Agile", Proficiency: domain.ProficiencyAdvanced},
			},
			HourlyRate:          dec(90),
			BillableRate:        dec(150),
			Currency:            "USD",
			WeeklyCapacityHours: dec(40),
		},
	}

	projects := []domain.Project{
		{
			ID:        "proj-portal",
			Name:      "Customer Portal",
			Client:    "Acme Corp",
			StartDate: domain.NewDate(2026, 1, 5),
			EndDate:   domain.NewDate(2026, 6, 30),
			RequiredSkills: []domain.RequiredSkill{
				{Name: "React", MinProficiency: domain.ProficiencyAdvanced},
				{Name: "Go", MinProficiency: domain.ProficiencyIntermediate},
			},
			RequiredRoles: []domain.RequiredRole{
				{Name: "Frontend Developer", Count: 1},
				{Name: "Backend Developer", Count: 1},
			},
			Budget:   dec(120000),
			Currency: "USD",
		},
		{
			ID:        "proj-billing",
			Name:      "Billing Migration",
			Client:    "Acme Corp",
			StartDate: domain.NewDate(2026, 3, 2),
			EndDate:   domain.NewDate(2026, 9, 30),
			RequiredSkills: []domain.RequiredSkill{
				{Name: "Go", MinProficiency: domain.ProficiencyAdvanced},
				{Name: "Kafka", MinProficiency: domain.ProficiencyIntermediate},
			},
			RequiredRoles: []domain.RequiredRole{
				{Name: "Backend Developer", Count: 2},
			},
			Budget:   dec(200000),
			Currency: "USD",
		},
	}

	allocations := []domain.Allocation{
		{
			ID:          "alloc-ana-portal",
			ResourceID:  "res-ana",
			ProjectID:   "proj-portal",
			StartDate:   domain.NewDate(2026, 1, 5),
			EndDate:     domain.NewDate(2026, 6, 30),
			Utilization: 80,
			TotalHours:  hours(800),
		},
		{
			ID:          "alloc-ben-portal",
			ResourceID:  "res-ben",
			ProjectID:   "proj-portal",
			StartDate:   domain.NewDate(2026, 1, 5),
			EndDate:     domain.NewDate(2026, 4, 30),
			Utilization: 60,
			TotalHours:  hours(500),
		},
		// Ben is over-allocated once the billing project starts.
		{
			ID:          "alloc-ben-billing",
			ResourceID:  "res-ben",
			ProjectID:   "proj-billing",
			StartDate:   domain.NewDate(2026, 3, 2),
			EndDate:     domain.NewDate(2026, 9, 30),
			Utilization: 50,
			TotalHours:  hours(700),
		},
		{
			ID:          "alloc-chloe-billing",
			ResourceID:  "res-chloe",
			ProjectID:   "proj-billing",
			StartDate:   domain.NewDate(2026, 3, 2),
			EndDate:     domain.NewDate(2026, 9, 30),
			Utilization: 40,
			TotalHours:  hours(400),
		},
	}

	return store.WithTx(ctx, func(m domain.Mutator) error {
		for _, r := range resources {
			if err := m.SaveResource(ctx, r); err != nil {
				return err
			}
		}
		for _, p := range projects {
			if err := m.SaveProject(ctx, p); err != nil {
				return err
			}
		}
		for _, a := range allocations {
			if err := m.UpsertAllocation(ctx, a); err != nil {
				return err
			}
		}
		return nil
	})
}
