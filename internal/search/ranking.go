package search

import (
	"sort"
	"strings"

	"skill-gap/internal/domain/skillgap"
)

type RoleScore struct {
	RoleID     string
	Title      float64
	Category   float64
	Skills     float64
	FinalScore float64
}

const maxRelevance = 10

// ScoreRole rates how well a role matches any of the query variants. Title
// hits count most, then category and requirement skills, then description.
func ScoreRole(role skillgap.Role, variants []string) RoleScore {
	out := RoleScore{RoleID: role.ID}
	if len(variants) == 0 {
		return out
	}

	title := strings.ToLower(role.Title)
	category := strings.ToLower(role.Category)
	desc := strings.ToLower(role.Description)
	skills := make([]string, 0, len(role.Requirements))
	for _, r := range role.Requirements {
		skills = append(skills, strings.ToLower(r.Skill))
	}

	descHits := 0.0
	for _, v := range variants {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if title != "" && strings.Contains(title, v) {
			out.Title += 3
		}
		if category != "" && strings.Contains(category, v) {
			out.Category += 2
		}
		for _, s := range skills {
			if s == v {
				out.Skills += 2
			} else if strings.Contains(s, v) {
				out.Skills++
			}
		}
		if desc != "" && strings.Contains(desc, v) {
			descHits++
		}
	}

	final := out.Title*2 + out.Category*1.5 + out.Skills + descHits*0.5
	if final > maxRelevance*2 {
		final = maxRelevance * 2
	}
	out.FinalScore = final
	return out
}

// RankRoles keeps roles scoring above zero, best first. Ties keep catalog order.
func RankRoles(roles []skillgap.Role, variants []string) []skillgap.Role {
	if len(variants) == 0 {
		return roles
	}

	type scored struct {
		idx   int
		score float64
	}
	hits := make([]scored, 0, len(roles))
	for i := range roles {
		s := ScoreRole(roles[i], variants).FinalScore
		if s <= 0 {
			continue
		}
		hits = append(hits, scored{idx: i, score: s})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].score > hits[j].score
	})

	out := make([]skillgap.Role, 0, len(hits))
	for _, h := range hits {
		out = append(out, roles[h.idx])
	}
	return out
}

// Roles runs the whole query pipeline. An empty query returns roles unchanged.
func Roles(roles []skillgap.Role, query string) []skillgap.Role {
	q := ProcessQuery(query)
	if q.Normalized == "" {
		return roles
	}
	return RankRoles(roles, q.Variants)
}
