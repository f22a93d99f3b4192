package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"skill-gap/internal/domain/skillgap"
	"skill-gap/internal/domain/user"
)

var (
	ErrRoleNotFound     = errors.New("role not found")
	ErrProfileNotFound  = errors.New("profile not found")
	ErrAnalysisNotFound = errors.New("analysis not found")
	ErrTaskNotFound     = errors.New("learning task not found")
)

// Analysis is one stored scoring run together with its learning plan.
type Analysis struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	RoleID    string
	JDTitle   string
	JDText    string
	Result    skillgap.ScoreResult
	Plan      []skillgap.LearningTask
	CreatedAt time.Time
}

// Store is everything the analysis flow reads and writes. Postgres backs the
// service and SQLite backs the offline CLI.
type Store interface {
	GetRole(ctx context.Context, id string) (skillgap.Role, error)
	ListRoles(ctx context.Context) ([]skillgap.Role, error)

	GetResources(ctx context.Context) ([]skillgap.Resource, error)
	GetResourcesForSkill(ctx context.Context, skill string, limit int) ([]skillgap.Resource, error)

	GetProfile(ctx context.Context, userID uuid.UUID) (user.Profile, error)
	UpsertProfile(ctx context.Context, p user.Profile) (user.Profile, error)

	SaveAnalysis(ctx context.Context, a Analysis) error
	GetAnalysis(ctx context.Context, id, userID uuid.UUID) (Analysis, error)
	ListAnalyses(ctx context.Context, userID uuid.UUID, limit int) ([]Analysis, error)
	SetTaskCompleted(ctx context.Context, analysisID, userID uuid.UUID, day int, completed bool) ([]skillgap.LearningTask, error)
}

const (
	defaultAnalysisLimit = 20
	maxAnalysisLimit     = 100
)

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultAnalysisLimit
	}
	if limit > maxAnalysisLimit {
		return maxAnalysisLimit
	}
	return limit
}

// ToggleTask marks the task for day in plan. It returns ErrTaskNotFound when
// no task is scheduled on that day.
func ToggleTask(plan []skillgap.LearningTask, day int, completed bool) ([]skillgap.LearningTask, error) {
	found := false
	out := make([]skillgap.LearningTask, len(plan))
	copy(out, plan)
	for i := range out {
		if out[i].Day == day {
			out[i].Completed = completed
			found = true
		}
	}
	if !found {
		return nil, ErrTaskNotFound
	}
	return out, nil
}

// groupRoles folds flat role/requirement rows into roles, keeping row order.
func groupRoles(rows []roleRow) []skillgap.Role {
	out := make([]skillgap.Role, 0)
	index := map[string]int{}
	for _, r := range rows {
		i, ok := index[r.id]
		if !ok {
			out = append(out, skillgap.Role{
				ID:           r.id,
				Title:        r.title,
				Category:     r.category,
				Description:  r.description,
				Requirements: []skillgap.Requirement{},
			})
			i = len(out) - 1
			index[r.id] = i
		}
		if r.skill == nil {
			continue
		}
		out[i].Requirements = append(out[i].Requirements, skillgap.Requirement{
			Skill:    *r.skill,
			Weight:   *r.weight,
			Priority: skillgap.Priority(*r.priority),
		})
	}
	return out
}

type roleRow struct {
	id          string
	title       string
	category    string
	description string
	skill       *string
	weight      *float64
	priority    *string
}
