package domain

import (
	"sort"
)

// =============================================================================
// MATCH SCORING - Simple resource-to-project fit score
// =============================================================================
// Matching is advisory only: a plain score over skills, role fit, and
// availability. It feeds suggestion lists; it never drives allocation
// decisions on its own.

// MatchScore is one resource's fit against a project's requirements.
type MatchScore struct {
	ResourceID    ResourceID
	Name          string
	Score         int // 0-100
	SkillsMatched int
	SkillsTotal   int
	RoleMatched   bool
	Utilization   int
}

// ScoreResources ranks resources against a project: 60 points for skill
// coverage, 20 for a role match, 20 for headroom under the threshold.
// Results are sorted by score descending, name ascending for ties.
func ScoreResources(p Project, resources []Resource, cfg SystemConfig) []MatchScore {
	threshold := cfg.OverallocationThreshold()
	out := make([]MatchScore, 0, len(resources))
	for _, r := range resources {
		s := MatchScore{
			ResourceID:  r.ID,
			Name:        r.Name,
			SkillsTotal: len(p.RequiredSkills),
			Utilization: TotalUtilization(r),
		}

		for _, req := range p.RequiredSkills {
			if skillCovered(req, []Resource{r}) {
				s.SkillsMatched++
			}
		}
		if s.SkillsTotal > 0 {
			s.Score += 60 * s.SkillsMatched / s.SkillsTotal
		} else {
			s.Score += 60
		}

		for _, role := range p.RequiredRoles {
			if RolesMatch(role.Name, r.Role) {
				s.RoleMatched = true
				break
			}
		}
		if s.RoleMatched {
			s.Score += 20
		}

		if headroom := threshold - s.Utilization; headroom > 0 {
			pts := 20 * headroom / threshold
			if pts > 20 {
				pts = 20
			}
			s.Score += pts
		}

		out = append(out, s)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Name < out[j].Name
	})
	return out
}
