package dto

import (
	"time"

	"skill-gap/internal/domain"
	"skill-gap/internal/usecase"
)

type SkillCountResponse struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}

type CombinationResponse struct {
	Anchor  string   `json:"anchor"`
	Members []string `json:"members"`
}

type MarketResponse struct {
	TopSkills    []SkillCountResponse  `json:"top_skills"`
	Emerging     []string              `json:"emerging"`
	Combinations []CombinationResponse `json:"combinations"`
	TotalSkills  int                   `json:"total_skills"`
	UsedFallback bool                  `json:"used_fallback"`
}

func NewMarketResponse(m usecase.MarketOverview) MarketResponse {
	out := MarketResponse{
		TopSkills:    make([]SkillCountResponse, 0, len(m.TopSkills)),
		Emerging:     nonNilStrings(m.Emerging),
		Combinations: make([]CombinationResponse, 0, len(m.Combinations)),
		TotalSkills:  m.TotalSkills,
		UsedFallback: m.UsedFallback,
	}
	for _, s := range m.TopSkills {
		out.TopSkills = append(out.TopSkills, SkillCountResponse{Skill: s.Skill, Count: s.Count})
	}
	for _, c := range m.Combinations {
		out.Combinations = append(out.Combinations, CombinationResponse{Anchor: c.Anchor, Members: nonNilStrings(c.Members)})
	}
	return out
}

// MarketStatusResponse is the JSON form of domain.PipelineStatus.
type MarketStatusResponse struct {
	TotalPostings   int                 `json:"total_postings"`
	PostingsToday   int                 `json:"postings_today"`
	SkillsCounted   int                 `json:"skills_counted"`
	Sources         []domain.SourceStat `json:"sources"`
	RecentRuns      []domain.SyncRun    `json:"recent_runs"`
	DatabaseHealthy bool                `json:"database_healthy"`
	RedisHealthy    bool                `json:"redis_healthy"`
	ServerTime      time.Time           `json:"server_time"`
}

func NewMarketStatusResponse(s *domain.PipelineStatus) MarketStatusResponse {
	if s == nil {
		return MarketStatusResponse{Sources: []domain.SourceStat{}, RecentRuns: []domain.SyncRun{}, ServerTime: time.Now().UTC()}
	}
	return MarketStatusResponse(*s)
}
