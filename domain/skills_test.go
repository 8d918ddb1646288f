package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freeup86/resource-pulse-sub002/domain"
)

// =============================================================================
// ROLE MATCHING TESTS
// =============================================================================

func TestNormalizeRole(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Frontend Developer", "frontend developer"},
		{"frontend-developer", "frontend developer"},
		{"Frontend_Developer", "frontend developer"},
		{"  Frontend   Developer  ", "frontend developer"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, domain.NormalizeRole(tt.in), "input %q", tt.in)
	}
}

func TestRolesMatch(t *testing.T) {
	tests := []struct {
		name     string
		required string
		actual   string
		want     bool
	}{
		{"exact", "Backend Developer", "backend developer", true},
		{"separator variant", "backend-developer", "Backend_Developer", true},
		{"substring either way", "Developer", "Senior Backend Developer", true},
		{"no relation", "Designer", "Backend Developer", false},
		{"empty required", "", "Backend Developer", false},
		{"empty actual", "Backend Developer", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.RolesMatch(tt.required, tt.actual))
		})
	}
}

// =============================================================================
// COVERAGE ANALYSIS TESTS
// =============================================================================

func skilled(id, name, role string, skills ...domain.Skill) domain.Resource {
	return domain.Resource{
		ID:     domain.ResourceID(id),
		Name:   name,
		Role:   role,
		Skills: skills,
	}
}

func TestAnalyzeSkillsCoverage_NoRequirements_FullCoverage(t *testing.T) {
	// GIVEN: A project with no skill requirements
	// THEN: 100% coverage with empty detail, never an error
	p := domain.Project{ID: "proj-a"}

	out := domain.AnalyzeSkillsCoverage(p, nil)
	assert.Equal(t, 100.0, out.CoveragePercentage)
	assert.Empty(t, out.Covered)
	assert.Empty(t, out.Missing)
}

func TestAnalyzeSkillsCoverage_PartialCoverage(t *testing.T) {
	p := domain.Project{
		ID: "proj-a",
		RequiredSkills: []domain.RequiredSkill{
			{Name: "Go"},
			{Name: "Kafka"},
		},
	}
	assigned := []domain.Resource{
		skilled("res-1", "Ben", "Backend Developer",
			domain.Skill{Name: "go", Proficiency: domain.ProficiencyExpert}),
	}

	out := domain.AnalyzeSkillsCoverage(p, assigned)
	assert.Equal(t, 50.0, out.CoveragePercentage)
	assert.Equal(t, []string{"Go"}, out.Covered, "skill name matching is case-insensitive")
	assert.Equal(t, []string{"Kafka"}, out.Missing)
}

func TestAnalyzeSkillsCoverage_MinProficiencyEnforced(t *testing.T) {
	// GIVEN: A requirement at advanced level
	// WHEN: The only assigned resource has the skill at intermediate
	// THEN: The skill counts as missing
	p := domain.Project{
		ID: "proj-a",
		RequiredSkills: []domain.RequiredSkill{
			{Name: "Go", MinProficiency: domain.ProficiencyAdvanced},
		},
	}
	assigned := []domain.Resource{
		skilled("res-1", "Ben", "Backend Developer",
			domain.Skill{Name: "Go", Proficiency: domain.ProficiencyIntermediate}),
	}

	out := domain.AnalyzeSkillsCoverage(p, assigned)
	assert.Equal(t, []string{"Go"}, out.Missing)

	// Expert satisfies advanced.
	assigned[0].Skills[0].Proficiency = domain.ProficiencyExpert
	out = domain.AnalyzeSkillsCoverage(p, assigned)
	assert.Equal(t, []string{"Go"}, out.Covered)
}

func TestAnalyzeSkillsCoverage_UnspecifiedProficiency_AnyLevelCovers(t *testing.T) {
	p := domain.Project{
		ID:             "proj-a",
		RequiredSkills: []domain.RequiredSkill{{Name: "Go"}},
	}
	assigned := []domain.Resource{
		skilled("res-1", "Ben", "Backend Developer",
			domain.Skill{Name: "Go", Proficiency: domain.ProficiencyBeginner}),
	}

	out := domain.AnalyzeSkillsCoverage(p, assigned)
	assert.Equal(t, []string{"Go"}, out.Covered)
}

func TestAnalyzeSkillsCoverage_RoleGaps(t *testing.T) {
	p := domain.Project{
		ID: "proj-a",
		RequiredRoles: []domain.RequiredRole{
			{Name: "Backend Developer", Count: 2},
			{Name: "Designer", Count: 1},
		},
	}
	assigned := []domain.Resource{
		skilled("res-1", "Ben", "Backend Developer"),
	}

	out := domain.AnalyzeSkillsCoverage(p, assigned)
	require.Len(t, out.Roles, 2)

	backend := out.Roles[0]
	assert.Equal(t, 2, backend.Required)
	assert.Equal(t, 1, backend.Assigned)
	assert.False(t, backend.Fulfilled)
	assert.Equal(t, 1, backend.Gap)

	designer := out.Roles[1]
	assert.Equal(t, 0, designer.Assigned)
	assert.Equal(t, 1, designer.Gap)
}

func TestAssignedResources_FiltersByAllocation(t *testing.T) {
	s := domain.NewDate(2026, time.January, 1)
	e := domain.NewDate(2026, time.March, 31)

	onProject := domain.Resource{
		ID:          "res-1",
		Allocations: []domain.Allocation{alloc("a1", "proj-a", 50, s, e)},
	}
	elsewhere := domain.Resource{
		ID:          "res-2",
		Allocations: []domain.Allocation{alloc("a2", "proj-b", 50, s, e)},
	}
	idle := domain.Resource{ID: "res-3"}

	p := domain.Project{ID: "proj-a"}
	out := domain.AssignedResources(p, []domain.Resource{onProject, elsewhere, idle})
	require.Len(t, out, 1)
	assert.Equal(t, domain.ResourceID("res-1"), out[0].ID)
}
