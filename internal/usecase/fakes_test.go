package usecase

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"skill-gap/internal/domain/skillgap"
	"skill-gap/internal/domain/user"
	"skill-gap/internal/infrastructure/events"
	"skill-gap/internal/repository"
)

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

type fakeStore struct {
	mu        sync.Mutex
	roles     []skillgap.Role
	resources []skillgap.Resource
	profiles  map[uuid.UUID]user.Profile
	analyses  []repository.Analysis
	saveErr   error
	rolesErr  error
	taskErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		roles: []skillgap.Role{
			{ID: "ml", Title: "ML Intern", Category: "AI/ML", Requirements: []skillgap.Requirement{
				{Skill: "python", Weight: 2, Priority: skillgap.PriorityRequired},
				{Skill: "machine learning basics", Weight: 2, Priority: skillgap.PriorityRequired},
			}},
			{ID: "empty", Title: "Placeholder"},
		},
		resources: []skillgap.Resource{
			{Skill: "machine learning basics", Title: "A", URL: "https://a.example"},
			{Skill: "machine learning basics", Title: "B", URL: "https://b.example"},
			{Skill: "machine learning basics", Title: "C", URL: "https://c.example"},
		},
		profiles: map[uuid.UUID]user.Profile{},
	}
}

func (f *fakeStore) GetRole(_ context.Context, id string) (skillgap.Role, error) {
	for _, r := range f.roles {
		if r.ID == id {
			return r, nil
		}
	}
	return skillgap.Role{}, repository.ErrRoleNotFound
}

func (f *fakeStore) ListRoles(context.Context) ([]skillgap.Role, error) {
	if f.rolesErr != nil {
		return nil, f.rolesErr
	}
	return f.roles, nil
}

func (f *fakeStore) GetResources(context.Context) ([]skillgap.Resource, error) {
	return f.resources, nil
}

// GetResourcesForSkill deliberately ignores limit so callers must cap.
func (f *fakeStore) GetResourcesForSkill(_ context.Context, skill string, _ int) ([]skillgap.Resource, error) {
	out := []skillgap.Resource{}
	for _, r := range f.resources {
		if r.Skill == skill {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) GetProfile(_ context.Context, userID uuid.UUID) (user.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return user.Profile{}, repository.ErrProfileNotFound
	}
	return p, nil
}

func (f *fakeStore) UpsertProfile(_ context.Context, p user.Profile) (user.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.UpdatedAt = time.Now().UTC()
	f.profiles[p.UserID] = p
	return p, nil
}

func (f *fakeStore) SaveAnalysis(_ context.Context, a repository.Analysis) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.analyses = append(f.analyses, a)
	return nil
}

func (f *fakeStore) GetAnalysis(_ context.Context, id, userID uuid.UUID) (repository.Analysis, error) {
	for _, a := range f.analyses {
		if a.ID == id && a.UserID == userID {
			return a, nil
		}
	}
	return repository.Analysis{}, repository.ErrAnalysisNotFound
}

func (f *fakeStore) ListAnalyses(_ context.Context, userID uuid.UUID, _ int) ([]repository.Analysis, error) {
	out := []repository.Analysis{}
	for _, a := range f.analyses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) SetTaskCompleted(_ context.Context, analysisID, userID uuid.UUID, day int, completed bool) ([]skillgap.LearningTask, error) {
	if f.taskErr != nil {
		return nil, f.taskErr
	}
	a, err := f.GetAnalysis(context.Background(), analysisID, userID)
	if err != nil {
		return nil, err
	}
	return repository.ToggleTask(a.Plan, day, completed)
}

type fakeMarket struct {
	counts map[string]int
	err    error
}

func (f fakeMarket) Load(context.Context) (map[string]int, error) { return f.counts, f.err }

type recordingNotifier struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingNotifier) Notify(_ context.Context, ev events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

type memoryCache struct {
	mu    sync.Mutex
	items map[string]any
	locks map[string]bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: map[string]any{}, locks: map[string]bool{}}
}

func (c *memoryCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	if !ok {
		return false, nil
	}
	res, ok := v.(skillgap.ScoreResult)
	if !ok {
		return false, errors.New("unexpected cached type")
	}
	*(out.(*skillgap.ScoreResult)) = res
	return true, nil
}

func (c *memoryCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	delete(c.locks, key)
	return nil
}

func (c *memoryCache) SetIfNotExists(_ context.Context, key string, _ string, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locks[key] {
		return false, nil
	}
	c.locks[key] = true
	return true, nil
}
