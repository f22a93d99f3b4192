package usecase

import (
	"context"
	"log"
	"sync"
	"time"

	"skill-gap/internal/domain"
	"skill-gap/internal/domain/skillgap"
)

const (
	defaultTopSkills = 20
	maxTopSkills     = 100
	recentRunsLimit  = 10
)

type MarketOverview struct {
	TopSkills    []skillgap.SkillCount       `json:"topSkills"`
	Emerging     []string                    `json:"emerging"`
	Combinations []skillgap.CombinationGroup `json:"combinations"`
	TotalSkills  int                         `json:"totalSkills"`
	UsedFallback bool                        `json:"usedFallback"`
}

type MarketUsecase interface {
	GetMarket(ctx context.Context, top int) (MarketOverview, error)
	GetStatus(ctx context.Context) (*domain.PipelineStatus, error)
}

// MarketStats is the read side of the market repository used by the status view.
type MarketStats interface {
	GetTotalPostings(ctx context.Context) (int, error)
	GetPostingsToday(ctx context.Context) (int, error)
	GetSourceStats(ctx context.Context) ([]domain.SourceStat, error)
	ListSyncRuns(ctx context.Context, limit int) ([]domain.SyncRun, error)
	LoadSkillCounts(ctx context.Context) (map[string]int, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Market struct {
	source MarketLoader
	stats  MarketStats
	db     Pinger
	redis  Pinger
	log    *log.Logger
	now    func() time.Time
}

func NewMarketUsecase(source MarketLoader, stats MarketStats, db, redis Pinger, logger *log.Logger) *Market {
	if logger == nil {
		logger = log.Default()
	}
	return &Market{source: source, stats: stats, db: db, redis: redis, log: logger, now: time.Now}
}

func (u *Market) GetMarket(ctx context.Context, top int) (MarketOverview, error) {
	if top < 0 || top > maxTopSkills {
		return MarketOverview{}, ErrInvalidInput
	}
	if top == 0 {
		top = defaultTopSkills
	}

	var counts map[string]int
	if u.source != nil {
		c, err := u.source.Load(ctx)
		if err != nil {
			u.log.Printf("[Market] using fallback counts | err=%v", err)
		} else {
			counts = c
		}
	}

	md := skillgap.AnalyzeMarket(counts)
	return MarketOverview{
		TopSkills:    md.TopSkills(top),
		Emerging:     md.EmergingList(),
		Combinations: md.Combinations,
		TotalSkills:  len(md.Counts),
		UsedFallback: md.UsedFallback,
	}, nil
}

// GetStatus gathers sync statistics concurrently. Individual failures are
// logged and leave their section empty.
func (u *Market) GetStatus(ctx context.Context) (*domain.PipelineStatus, error) {
	out := &domain.PipelineStatus{
		Sources:    []domain.SourceStat{},
		RecentRuns: []domain.SyncRun{},
	}

	if u.stats != nil {
		// each step writes a distinct field of out
		wg := sync.WaitGroup{}
		step := func(name string, fn func() error) {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := fn(); err != nil {
					u.log.Printf("market_status step=%s status=error err=%v", name, err)
				}
			}()
		}

		step("total_postings", func() error {
			v, err := u.stats.GetTotalPostings(ctx)
			out.TotalPostings = v
			return err
		})
		step("postings_today", func() error {
			v, err := u.stats.GetPostingsToday(ctx)
			out.PostingsToday = v
			return err
		})
		step("sources", func() error {
			v, err := u.stats.GetSourceStats(ctx)
			if err == nil && v != nil {
				out.Sources = v
			}
			return err
		})
		step("recent_runs", func() error {
			v, err := u.stats.ListSyncRuns(ctx, recentRunsLimit)
			if err == nil && v != nil {
				out.RecentRuns = v
			}
			return err
		})
		step("skill_counts", func() error {
			v, err := u.stats.LoadSkillCounts(ctx)
			out.SkillsCounted = len(v)
			return err
		})
		wg.Wait()
	}

	out.DatabaseHealthy = ping(ctx, u.db)
	out.RedisHealthy = ping(ctx, u.redis)
	out.ServerTime = u.now().UTC()
	return out, nil
}

func ping(ctx context.Context, p Pinger) bool {
	if p == nil {
		return false
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.Ping(pingCtx) == nil
}
