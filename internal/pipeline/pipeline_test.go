package pipeline

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skill-gap/internal/domain/skillgap"
	"skill-gap/internal/infrastructure/market"
	"skill-gap/internal/repository"
)

type fakePostings struct {
	items []repository.Posting
	err   error
	calls int
}

func (f *fakePostings) ListPostings(_ context.Context, limit, offset int) ([]repository.Posting, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if offset >= len(f.items) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.items) {
		end = len(f.items)
	}
	return f.items[offset:end], nil
}

type fakeCounts struct {
	mu       sync.Mutex
	replaced map[string]int
	calls    int
	err      error
}

func (f *fakeCounts) ReplaceSkillCounts(_ context.Context, counts map[string]int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.replaced = counts
	return nil
}

type fakeCatalog struct {
	roles []skillgap.Role
}

func (f fakeCatalog) ListRoles(context.Context) ([]skillgap.Role, error) { return f.roles, nil }
func (f fakeCatalog) GetResources(context.Context) ([]skillgap.Resource, error) {
	return nil, nil
}

type fakeInvalidator struct{ calls int }

func (f *fakeInvalidator) InvalidateMarket(context.Context) error {
	f.calls++
	return nil
}

type staticDataset struct {
	counts map[string]int
	err    error
}

func (s staticDataset) Fetch(context.Context) (map[string]int, error) { return s.counts, s.err }

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func testCatalog() fakeCatalog {
	return fakeCatalog{roles: []skillgap.Role{{
		ID:    "backend",
		Title: "Backend Developer",
		Requirements: []skillgap.Requirement{
			{Skill: "Python", Weight: 1, Priority: skillgap.PriorityRequired},
			{Skill: "SQL", Weight: 1, Priority: skillgap.PriorityRequired},
			{Skill: "Docker", Weight: 0.5, Priority: skillgap.PriorityPreferred},
		},
	}}}
}

func TestPostingCounts_CountsEachPostingOncePerSkill(t *testing.T) {
	postings := &fakePostings{items: []repository.Posting{
		{Title: "Backend", Description: "Python and SQL. More Python."},
		{Title: "Data", Description: "SQL reporting"},
		{Title: "Docker wrangler", Description: ""},
		{Title: "", Description: "   "},
	}}
	counts := &fakeCounts{}
	p := NewPostingCountsPipeline(postings, counts, testCatalog(), quietLogger())
	p.limit = 3

	res, err := p.Run(context.Background(), RunParams{Workers: 2})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Postings)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, map[string]int{"python": 1, "sql": 2, "docker": 1}, counts.replaced)
	assert.Equal(t, 1, counts.calls)
	assert.Equal(t, 3, postings.calls)
}

func TestPostingCounts_EmptyDictionary(t *testing.T) {
	counts := &fakeCounts{}
	p := NewPostingCountsPipeline(&fakePostings{}, counts, fakeCatalog{}, quietLogger())

	_, err := p.Run(context.Background(), RunParams{})
	require.ErrorIs(t, err, skillgap.ErrEmptyDictionary)
	assert.Zero(t, counts.calls)
}

func TestPostingCounts_ListErrorStopsBeforeReplace(t *testing.T) {
	counts := &fakeCounts{}
	boom := errors.New("boom")
	p := NewPostingCountsPipeline(&fakePostings{err: boom}, counts, testCatalog(), quietLogger())

	_, err := p.Run(context.Background(), RunParams{})
	require.ErrorIs(t, err, boom)
	assert.Zero(t, counts.calls)
}

func TestPostingCounts_CancelledContext(t *testing.T) {
	counts := &fakeCounts{}
	p := NewPostingCountsPipeline(&fakePostings{items: []repository.Posting{{Description: "python"}}}, counts, testCatalog(), quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx, RunParams{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, counts.calls)
}

func TestMarketSync_InvalidatesAfterCounts(t *testing.T) {
	counts := &fakeCounts{}
	cache := &fakeInvalidator{}
	p := NewPostingCountsPipeline(&fakePostings{items: []repository.Posting{{Description: "python"}}}, counts, testCatalog(), quietLogger())
	ms := NewMarketSync(nil, p, cache, quietLogger())

	require.NoError(t, ms.Run(context.Background(), MarketSyncParams{}))
	assert.Equal(t, map[string]int{"python": 1}, counts.replaced)
	assert.Equal(t, 1, cache.calls)
}

func TestMarketSync_CountFailureKeepsCache(t *testing.T) {
	counts := &fakeCounts{err: errors.New("db down")}
	cache := &fakeInvalidator{}
	p := NewPostingCountsPipeline(&fakePostings{items: []repository.Posting{{Description: "python"}}}, counts, testCatalog(), quietLogger())
	ms := NewMarketSync(nil, p, cache, quietLogger())

	require.Error(t, ms.Run(context.Background(), MarketSyncParams{}))
	assert.Zero(t, cache.calls)
}

func TestImportCounts(t *testing.T) {
	counts := &fakeCounts{}
	cache := &fakeInvalidator{}

	n, err := ImportCounts(context.Background(), staticDataset{counts: map[string]int{"python": 10, "go": 4}}, counts, cache, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 10, counts.replaced["python"])
	assert.Equal(t, 1, cache.calls)

	_, err = ImportCounts(context.Background(), staticDataset{counts: map[string]int{}}, counts, cache, quietLogger())
	require.ErrorIs(t, err, market.ErrEmptyDataset)
}
