package dto

import "skill-gap/internal/domain/skillgap"

type RequirementResponse struct {
	Skill    string  `json:"skill"`
	Weight   float64 `json:"weight"`
	Priority string  `json:"priority"`
}

type RoleResponse struct {
	ID           string                `json:"id"`
	Title        string                `json:"title"`
	Category     string                `json:"category"`
	Description  string                `json:"description,omitempty"`
	Requirements []RequirementResponse `json:"requirements,omitempty"`
}

// NewRoleResponse leaves requirements out of list views.
func NewRoleResponse(r skillgap.Role, withRequirements bool) RoleResponse {
	out := RoleResponse{ID: r.ID, Title: r.Title, Category: r.Category, Description: r.Description}
	if !withRequirements {
		return out
	}
	out.Requirements = make([]RequirementResponse, 0, len(r.Requirements))
	for _, req := range r.Requirements {
		out.Requirements = append(out.Requirements, RequirementResponse{
			Skill:    req.Skill,
			Weight:   req.Weight,
			Priority: string(req.Priority),
		})
	}
	return out
}
