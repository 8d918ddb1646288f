/*
skills.go - Skills and role coverage analyzer

PURPOSE:
  Given a project's required skills/roles and the resources effectively
  assigned to it, computes which requirements are covered and which are
  missing.

ROLE MATCHING:
  Role matching is fuzzy by design: both names are normalized (lowercase,
  collapsed whitespace, -/_ as spaces) and match when equal or when either
  contains the other. Source role names are free text, so this tolerates
  naming drift ("Senior Developer" vs "developer") at the cost of
  occasional over-matching ("QA" matches "QA Lead"). Callers needing exact
  matching must pre-filter by role id.
*/
package domain

import (
	"strings"
)

// RoleCoverage is the fulfillment state of one required role.
type RoleCoverage struct {
	Role      string
	Required  int
	Assigned  int
	Fulfilled bool
	Gap       int
}

// SkillsCoverage is the project-level coverage summary.
type SkillsCoverage struct {
	ProjectID          ProjectID
	CoveragePercentage float64
	Covered            []string
	Missing            []string
	Roles              []RoleCoverage
}

// NormalizeRole lowercases, treats -/_ as spaces, and collapses whitespace.
func NormalizeRole(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	return strings.Join(strings.Fields(s), " ")
}

// RolesMatch reports whether two free-text role names refer to the same
// role: normalized-equal, or either contains the other.
func RolesMatch(required, actual string) bool {
	a, b := NormalizeRole(required), NormalizeRole(actual)
	if a == "" || b == "" {
		return false
	}
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}

// AnalyzeSkillsCoverage computes covered vs. missing requirements for a
// project from the resources assigned to it. Empty requirement lists yield
// 100% coverage with empty detail, never an error.
func AnalyzeSkillsCoverage(p Project, assigned []Resource) SkillsCoverage {
	out := SkillsCoverage{
		ProjectID: p.ID,
		Covered:   []string{},
		Missing:   []string{},
	}

	// Skill coverage: a required skill is covered when any assigned
	// resource has it at or above the minimum proficiency. Name matching
	// for skills is case-insensitive but exact (skills are curated, roles
	// are free text).
	for _, req := range p.RequiredSkills {
		if skillCovered(req, assigned) {
			out.Covered = append(out.Covered, req.Name)
		} else {
			out.Missing = append(out.Missing, req.Name)
		}
	}
	if total := len(p.RequiredSkills); total > 0 {
		out.CoveragePercentage = float64(len(out.Covered)) / float64(total) * 100
	} else {
		out.CoveragePercentage = 100
	}

	// Role coverage: headcount of assigned resources whose role fuzzily
	// matches the requirement.
	for _, req := range p.RequiredRoles {
		count := 0
		for _, r := range assigned {
			if RolesMatch(req.Name, r.Role) {
				count++
			}
		}
		out.Roles = append(out.Roles, RoleCoverage{
			Role:      req.Name,
			Required:  req.Count,
			Assigned:  count,
			Fulfilled: count >= req.Count,
			Gap:       max(req.Count-count, 0),
		})
	}

	return out
}

func skillCovered(req RequiredSkill, assigned []Resource) bool {
	want := strings.ToLower(strings.TrimSpace(req.Name))
	for _, r := range assigned {
		for _, s := range r.Skills {
			if strings.ToLower(strings.TrimSpace(s.Name)) != want {
				continue
			}
			if s.Proficiency.Rank() >= req.MinProficiency.Rank() {
				return true
			}
		}
	}
	return false
}

// AssignedResources filters resources down to those with at least one
// allocation referencing the project.
func AssignedResources(p Project, resources []Resource) []Resource {
	var out []Resource
	for _, r := range resources {
		for _, a := range NormalizeAllocations(r) {
			if a.ProjectID == p.ID {
				out = append(out, r)
				break
			}
		}
	}
	return out
}
