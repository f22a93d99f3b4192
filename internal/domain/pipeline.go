package domain

import "time"

type SourceStat struct {
	Source        string    `json:"source"`
	TotalPostings int       `json:"total_postings"`
	LastScrapedAt time.Time `json:"last_scraped_at"`
}

type SyncRun struct {
	ID         string     `json:"id"`
	Source     string     `json:"source"`
	Status     string     `json:"status"`
	Postings   int        `json:"postings"`
	Message    string     `json:"message,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// PipelineStatus summarizes the market-sync side of the service.
type PipelineStatus struct {
	TotalPostings   int          `json:"total_postings"`
	PostingsToday   int          `json:"postings_today"`
	SkillsCounted   int          `json:"skills_counted"`
	Sources         []SourceStat `json:"sources"`
	RecentRuns      []SyncRun    `json:"recent_runs"`
	DatabaseHealthy bool         `json:"database_healthy"`
	RedisHealthy    bool         `json:"redis_healthy"`
	ServerTime      time.Time    `json:"server_time"`
}

const (
	SyncStatusRunning = "running"
	SyncStatusDone    = "done"
	SyncStatusFailed  = "failed"
)
