package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"skill-gap/internal/domain"
)

type fakeStats struct {
	total    int
	today    int
	sources  []domain.SourceStat
	runs     []domain.SyncRun
	counts   map[string]int
	countErr error
}

func (f fakeStats) GetTotalPostings(context.Context) (int, error) { return f.total, nil }
func (f fakeStats) GetPostingsToday(context.Context) (int, error) { return f.today, nil }
func (f fakeStats) GetSourceStats(context.Context) ([]domain.SourceStat, error) {
	return f.sources, nil
}
func (f fakeStats) ListSyncRuns(context.Context, int) ([]domain.SyncRun, error) { return f.runs, nil }
func (f fakeStats) LoadSkillCounts(context.Context) (map[string]int, error) {
	return f.counts, f.countErr
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestMarketUsecase_GetMarket_Fallback(t *testing.T) {
	uc := NewMarketUsecase(fakeMarket{err: errors.New("no data")}, nil, nil, nil, quietLogger())
	out, err := uc.GetMarket(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !out.UsedFallback {
		t.Fatalf("expected fallback")
	}
	if len(out.TopSkills) != 5 {
		t.Fatalf("expected 5 top skills, got %d", len(out.TopSkills))
	}
}

func TestMarketUsecase_GetMarket_Counts(t *testing.T) {
	uc := NewMarketUsecase(fakeMarket{counts: map[string]int{"go": 3, "python": 9, "sql": 9}}, nil, nil, nil, quietLogger())
	out, err := uc.GetMarket(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.UsedFallback {
		t.Fatalf("expected live counts")
	}
	if out.TotalSkills != 3 || out.TopSkills[0].Skill != "python" || out.TopSkills[1].Skill != "sql" {
		t.Fatalf("unexpected top skills %+v", out.TopSkills)
	}

	if _, err := uc.GetMarket(context.Background(), 500); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestMarketUsecase_GetStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	stats := fakeStats{
		total:    42,
		today:    5,
		sources:  []domain.SourceStat{{Source: "acme", TotalPostings: 42}},
		countErr: errors.New("boom"),
	}
	uc := NewMarketUsecase(nil, stats, fakePinger{}, fakePinger{err: errors.New("down")}, quietLogger())
	uc.now = func() time.Time { return now }

	st, err := uc.GetStatus(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if st.TotalPostings != 42 || st.PostingsToday != 5 || len(st.Sources) != 1 {
		t.Fatalf("unexpected stats %+v", st)
	}
	if st.RecentRuns == nil || len(st.RecentRuns) != 0 {
		t.Fatalf("expected empty recent runs, got %+v", st.RecentRuns)
	}
	if st.SkillsCounted != 0 {
		t.Fatalf("expected 0 skills after count error")
	}
	if !st.DatabaseHealthy || st.RedisHealthy {
		t.Fatalf("unexpected health db=%t redis=%t", st.DatabaseHealthy, st.RedisHealthy)
	}
	if !st.ServerTime.Equal(now) {
		t.Fatalf("unexpected server time %s", st.ServerTime)
	}
}
