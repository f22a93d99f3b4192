package dto

import (
	"time"

	"github.com/google/uuid"

	"skill-gap/internal/domain/skillgap"
	"skill-gap/internal/repository"
)

type AnalysisRequest struct {
	RoleID     string `json:"role_id" validate:"required,max=64"`
	JDTitle    string `json:"jd_title" validate:"max=200"`
	JDText     string `json:"jd_text" validate:"max=50000"`
	ResumeText string `json:"resume_text" validate:"max=100000"`
}

type TaskUpdateRequest struct {
	Completed *bool `json:"completed" validate:"required"`
}

type ScoresResponse struct {
	Overall   int `json:"overall"`
	Readiness int `json:"readiness"`
	Alignment int `json:"alignment"`
	ATS       int `json:"ats"`
	Impact    int `json:"impact"`
	Polish    int `json:"polish"`
	Potential int `json:"potential"`
}

type ResourceResponse struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Type  string `json:"type"`
}

type MissingSkillResponse struct {
	Skill     string             `json:"skill"`
	Weight    float64            `json:"weight"`
	Priority  string             `json:"priority"`
	Resources []ResourceResponse `json:"resources"`
}

type MetaResponse struct {
	RequiredTotal    int            `json:"required_total"`
	RequiredMatched  int            `json:"required_matched"`
	PreferredTotal   int            `json:"preferred_total"`
	PreferredMatched int            `json:"preferred_matched"`
	MatchedSkills    []string       `json:"matched_skills"`
	JDSkills         []string       `json:"jd_skills"`
	UnlistedSkills   []string       `json:"unlisted_skills"`
	InsufficientText []string       `json:"insufficient_text"`
	Percentiles      map[string]int `json:"percentiles"`
	Ranking          string         `json:"ranking"`
	Confidence       int            `json:"confidence"`
}

type CombinationCoverageResponse struct {
	Anchor  string   `json:"anchor"`
	Have    []string `json:"have"`
	Missing []string `json:"missing"`
}

type PrioritizedGapResponse struct {
	Skill          string  `json:"skill"`
	Weight         float64 `json:"weight"`
	Priority       string  `json:"priority"`
	MarketDemand   int     `json:"market_demand"`
	MarketPriority float64 `json:"market_priority"`
}

type ExplanationResponse struct {
	Skill        string `json:"skill"`
	Reason       string `json:"reason"`
	MarketDemand int    `json:"market_demand"`
	Priority     string `json:"priority"`
}

type MarketAnalysisResponse struct {
	UsedFallback        bool                          `json:"used_fallback"`
	HighDemandMatched   []string                      `json:"high_demand_matched"`
	HighDemandMissing   []string                      `json:"high_demand_missing"`
	EmergingMatched     []string                      `json:"emerging_matched"`
	EmergingMissing     []string                      `json:"emerging_missing"`
	PartialCombinations []CombinationCoverageResponse `json:"partial_combinations"`
	PrioritizedGaps     []PrioritizedGapResponse      `json:"prioritized_gaps"`
	Explanations        []ExplanationResponse         `json:"explanations"`
	LearningPath        string                        `json:"learning_path"`
}

type TaskResponse struct {
	Day         int    `json:"day"`
	Skill       string `json:"skill"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

type AnalysisSummaryResponse struct {
	ID        uuid.UUID `json:"id"`
	RoleID    string    `json:"role_id"`
	JDTitle   string    `json:"jd_title"`
	Overall   int       `json:"overall"`
	Ranking   string    `json:"ranking"`
	TasksDone int       `json:"tasks_done"`
	TasksAll  int       `json:"tasks_total"`
	CreatedAt time.Time `json:"created_at"`
}

type AnalysisResponse struct {
	ID             uuid.UUID              `json:"id"`
	RoleID         string                 `json:"role_id"`
	JDTitle        string                 `json:"jd_title"`
	Scores         ScoresResponse         `json:"scores"`
	Strengths      []string               `json:"strengths"`
	Improvements   []string               `json:"improvements"`
	MissingSkills  []MissingSkillResponse `json:"missing_skills"`
	Meta           MetaResponse           `json:"meta"`
	MarketAnalysis MarketAnalysisResponse `json:"market_analysis"`
	LearningPlan   []TaskResponse         `json:"learning_plan"`
	CreatedAt      time.Time              `json:"created_at"`
}

func NewAnalysisResponse(a repository.Analysis) AnalysisResponse {
	r := a.Result
	out := AnalysisResponse{
		ID:      a.ID,
		RoleID:  a.RoleID,
		JDTitle: a.JDTitle,
		Scores: ScoresResponse{
			Overall:   r.Overall,
			Readiness: r.Readiness,
			Alignment: r.Alignment,
			ATS:       r.ATS,
			Impact:    r.Impact,
			Polish:    r.Polish,
			Potential: r.Potential,
		},
		Strengths:     nonNilStrings(r.Strengths),
		Improvements:  nonNilStrings(r.Improvements),
		MissingSkills: make([]MissingSkillResponse, 0, len(r.MissingSkills)),
		Meta: MetaResponse{
			RequiredTotal:    r.Meta.RequiredTotal,
			RequiredMatched:  r.Meta.RequiredMatched,
			PreferredTotal:   r.Meta.PreferredTotal,
			PreferredMatched: r.Meta.PreferredMatched,
			MatchedSkills:    nonNilStrings(r.Meta.MatchedSkills),
			JDSkills:         nonNilStrings(r.Meta.JDSkills),
			UnlistedSkills:   nonNilStrings(r.Meta.UnlistedSkills),
			InsufficientText: nonNilStrings(r.Meta.InsufficientText),
			Percentiles:      r.Meta.Percentiles,
			Ranking:          r.Meta.Ranking,
			Confidence:       r.Meta.Confidence,
		},
		MarketAnalysis: newMarketAnalysisResponse(r.MarketAnalysis),
		LearningPlan:   NewTaskResponses(a.Plan),
		CreatedAt:      a.CreatedAt,
	}
	if out.Meta.Percentiles == nil {
		out.Meta.Percentiles = map[string]int{}
	}
	for _, m := range r.MissingSkills {
		ms := MissingSkillResponse{
			Skill:     m.Skill,
			Weight:    m.Weight,
			Priority:  string(m.Priority),
			Resources: make([]ResourceResponse, 0, len(m.Resources)),
		}
		for _, res := range m.Resources {
			ms.Resources = append(ms.Resources, ResourceResponse{Title: res.Title, URL: res.URL, Type: res.Type})
		}
		out.MissingSkills = append(out.MissingSkills, ms)
	}
	return out
}

func newMarketAnalysisResponse(m skillgap.MarketAnalysis) MarketAnalysisResponse {
	out := MarketAnalysisResponse{
		UsedFallback:        m.UsedFallback,
		HighDemandMatched:   nonNilStrings(m.HighDemandMatched),
		HighDemandMissing:   nonNilStrings(m.HighDemandMissing),
		EmergingMatched:     nonNilStrings(m.EmergingMatched),
		EmergingMissing:     nonNilStrings(m.EmergingMissing),
		PartialCombinations: make([]CombinationCoverageResponse, 0, len(m.PartialCombinations)),
		PrioritizedGaps:     make([]PrioritizedGapResponse, 0, len(m.PrioritizedGaps)),
		Explanations:        make([]ExplanationResponse, 0, len(m.Explanations)),
		LearningPath:        m.LearningPath,
	}
	for _, c := range m.PartialCombinations {
		out.PartialCombinations = append(out.PartialCombinations, CombinationCoverageResponse{
			Anchor: c.Anchor, Have: nonNilStrings(c.Have), Missing: nonNilStrings(c.Missing),
		})
	}
	for _, g := range m.PrioritizedGaps {
		out.PrioritizedGaps = append(out.PrioritizedGaps, PrioritizedGapResponse{
			Skill: g.Skill, Weight: g.Weight, Priority: string(g.Priority),
			MarketDemand: g.MarketDemand, MarketPriority: g.MarketPriority,
		})
	}
	for _, e := range m.Explanations {
		out.Explanations = append(out.Explanations, ExplanationResponse{
			Skill: e.Skill, Reason: e.Reason, MarketDemand: e.MarketDemand, Priority: string(e.Priority),
		})
	}
	return out
}

func NewTaskResponses(plan []skillgap.LearningTask) []TaskResponse {
	out := make([]TaskResponse, 0, len(plan))
	for _, t := range plan {
		out = append(out, TaskResponse{
			Day:         t.Day,
			Skill:       t.Skill,
			Kind:        string(t.Kind),
			Description: t.Description,
			Completed:   t.Completed,
		})
	}
	return out
}

func NewAnalysisSummary(a repository.Analysis) AnalysisSummaryResponse {
	done := 0
	for _, t := range a.Plan {
		if t.Completed {
			done++
		}
	}
	return AnalysisSummaryResponse{
		ID:        a.ID,
		RoleID:    a.RoleID,
		JDTitle:   a.JDTitle,
		Overall:   a.Result.Overall,
		Ranking:   a.Result.Meta.Ranking,
		TasksDone: done,
		TasksAll:  len(a.Plan),
		CreatedAt: a.CreatedAt,
	}
}
