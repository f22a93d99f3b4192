package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"skill-gap/internal/domain/skillgap"
	"skill-gap/internal/domain/user"
	"skill-gap/internal/infrastructure/events"
	"skill-gap/internal/repository"
)

const (
	resourcesPerSkill = 2
	marketLoadTimeout = 3 * time.Second
	analysisLockTTL   = 15 * time.Second
	analysisCacheTTL  = 10 * time.Minute
	analysisLockWait  = 300 * time.Millisecond
)

type AnalysisInput struct {
	UserID     uuid.UUID
	RoleID     string
	JDTitle    string
	JDText     string
	ResumeText string
}

type AnalysisUsecase interface {
	Run(ctx context.Context, in AnalysisInput) (repository.Analysis, error)
	Get(ctx context.Context, userID, id uuid.UUID) (repository.Analysis, error)
	List(ctx context.Context, userID uuid.UUID, limit int) ([]repository.Analysis, error)
	SetTaskCompleted(ctx context.Context, userID, id uuid.UUID, day int, completed bool) ([]skillgap.LearningTask, error)
}

type MarketLoader interface {
	Load(ctx context.Context) (map[string]int, error)
}

// Notifier receives completed analyses. The websocket hub and the AMQP
// publisher both satisfy it through small adapters.
type Notifier interface {
	Notify(ctx context.Context, ev events.Event) error
}

type PublisherNotifier struct {
	Publisher events.Publisher
}

func (p PublisherNotifier) Notify(ctx context.Context, ev events.Event) error {
	if p.Publisher == nil {
		return nil
	}
	return p.Publisher.Publish(ctx, ev)
}

type Analysis struct {
	store     repository.Store
	market    MarketLoader
	cache     ResultCache
	notifiers []Notifier
	log       *log.Logger
	now       func() time.Time
	lockWait  func() time.Duration
}

func NewAnalysisUsecase(store repository.Store, market MarketLoader, cache ResultCache, logger *log.Logger, notifiers ...Notifier) *Analysis {
	if logger == nil {
		logger = log.Default()
	}
	return &Analysis{store: store, market: market, cache: cache, notifiers: notifiers, log: logger, now: time.Now, lockWait: lockWaitWithJitter}
}

// lockWaitWithJitter spreads out re-reads from callers that lost the lock.
func lockWaitWithJitter() time.Duration {
	return analysisLockWait + time.Duration(time.Now().UnixNano()%201)*time.Millisecond
}

type analysisInputs struct {
	role      skillgap.Role
	roles     []skillgap.Role
	resources []skillgap.Resource
	profile   user.Profile
	market    *skillgap.MarketData
}

func (u *Analysis) Run(ctx context.Context, in AnalysisInput) (repository.Analysis, error) {
	if in.UserID == uuid.Nil {
		return repository.Analysis{}, ErrUnauthorized
	}
	in.RoleID = strings.TrimSpace(in.RoleID)
	in.JDTitle = strings.TrimSpace(in.JDTitle)
	if in.RoleID == "" {
		return repository.Analysis{}, ErrInvalidInput
	}

	li, err := u.load(ctx, in)
	if err != nil {
		return repository.Analysis{}, err
	}

	resume := strings.TrimSpace(in.ResumeText)
	if resume == "" {
		resume = li.profile.ResumeText
	}

	result, err := u.score(ctx, in, li, resume)
	if err != nil {
		return repository.Analysis{}, err
	}

	for i := range result.MissingSkills {
		res, err := u.store.GetResourcesForSkill(ctx, result.MissingSkills[i].Skill, resourcesPerSkill)
		if err != nil {
			u.log.Printf("[Analysis] resources lookup failed | skill=%s err=%v", result.MissingSkills[i].Skill, err)
			res = nil
		}
		if len(res) > resourcesPerSkill {
			res = res[:resourcesPerSkill]
		}
		result.MissingSkills[i].Resources = nonNilResources(res)
	}

	a := repository.Analysis{
		ID:        uuid.New(),
		UserID:    in.UserID,
		RoleID:    li.role.ID,
		JDTitle:   in.JDTitle,
		JDText:    in.JDText,
		Result:    result,
		Plan:      skillgap.BuildLearningPlan(result.MissingSkills),
		CreatedAt: u.now().UTC(),
	}
	if err := u.store.SaveAnalysis(ctx, a); err != nil {
		u.log.Printf("[Analysis] save failed | user_id=%s err=%v", in.UserID, err)
		return repository.Analysis{}, ErrInternal
	}
	u.log.Printf("[Analysis] analysis saved | id=%s user_id=%s role_id=%s overall=%d fallback=%t",
		a.ID, a.UserID, a.RoleID, a.Result.Overall, a.Result.MarketAnalysis.UsedFallback)

	u.notify(ctx, a)
	return a, nil
}

// load fetches everything the engine needs in parallel. Only the role is
// mandatory; a missing profile scores as empty and a failed market load
// falls back to the static table.
func (u *Analysis) load(ctx context.Context, in AnalysisInput) (analysisInputs, error) {
	var li analysisInputs
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		role, err := u.store.GetRole(gctx, in.RoleID)
		if err != nil {
			if errors.Is(err, repository.ErrRoleNotFound) {
				return ErrRoleNotFound
			}
			return fmt.Errorf("get role: %w", err)
		}
		li.role = role
		return nil
	})
	g.Go(func() error {
		roles, err := u.store.ListRoles(gctx)
		if err != nil {
			return fmt.Errorf("list roles: %w", err)
		}
		li.roles = roles
		return nil
	})
	g.Go(func() error {
		resources, err := u.store.GetResources(gctx)
		if err != nil {
			return fmt.Errorf("list resources: %w", err)
		}
		li.resources = resources
		return nil
	})
	g.Go(func() error {
		p, err := u.store.GetProfile(gctx, in.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrProfileNotFound) {
				li.profile = user.Profile{UserID: in.UserID}
				return nil
			}
			return fmt.Errorf("get profile: %w", err)
		}
		li.profile = p
		return nil
	})
	g.Go(func() error {
		if u.market == nil {
			return nil
		}
		mctx, cancel := context.WithTimeout(gctx, marketLoadTimeout)
		defer cancel()
		counts, err := u.market.Load(mctx)
		if err != nil {
			u.log.Printf("[Analysis] market data unavailable, using fallback | err=%v", err)
			return nil
		}
		li.market = skillgap.AnalyzeMarket(counts)
		return nil
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, ErrRoleNotFound) {
			return analysisInputs{}, err
		}
		u.log.Printf("[Analysis] load failed | user_id=%s role_id=%s err=%v", in.UserID, in.RoleID, err)
		return analysisInputs{}, ErrInternal
	}
	return li, nil
}

func (u *Analysis) score(ctx context.Context, in AnalysisInput, li analysisInputs, resume string) (skillgap.ScoreResult, error) {
	key := ""
	lockKey := ""
	lockAcquired := false
	if u.cache != nil {
		key = AnalysisCacheKey(li.role.ID, li.profile.Skills, li.profile.Coursework, li.profile.Experiences, in.JDTitle, in.JDText, resume)
		lockKey = AnalysisLockKey(key)

		var cached skillgap.ScoreResult
		if hit, err := u.cache.GetJSON(ctx, key, &cached); err == nil && hit {
			u.log.Printf("[Analysis] Cache HIT: %s", key)
			return cached, nil
		}
		ok, err := u.cache.SetIfNotExists(ctx, lockKey, "1", analysisLockTTL)
		if err == nil && ok {
			lockAcquired = true
		} else if err == nil && !ok {
			t := time.NewTimer(u.lockWait())
			select {
			case <-ctx.Done():
				t.Stop()
				return skillgap.ScoreResult{}, ctx.Err()
			case <-t.C:
			}
			if hit, err := u.cache.GetJSON(ctx, key, &cached); err == nil && hit {
				u.log.Printf("[Analysis] Cache HIT: %s", key)
				return cached, nil
			}
			u.log.Printf("[Analysis] Lock wait fallback: %s", lockKey)
		}
	}

	dict := skillgap.BuildDictionary(li.roles, li.resources, skillgap.WithAliases(skillgap.CommonAliases))
	result, err := skillgap.ComputeScores(skillgap.ScoreInput{
		UserSkills:       skillgap.ExpandUserSkills(li.profile.Skills, li.profile.Coursework, resume, dict),
		RoleRequirements: li.role.Requirements,
		JDText:           in.JDText,
		JDTitle:          in.JDTitle,
		Dictionary:       dict,
		ResumeProvided:   resume != "",
		ResumeText:       resume,
		RoleCategory:     li.role.Category,
		MarketData:       li.market,
		Experiences:      li.profile.Experiences,
		Coursework:       li.profile.Coursework,
	})
	if lockAcquired {
		defer func() { _ = u.cache.Delete(context.WithoutCancel(ctx), lockKey) }()
	}
	if err != nil {
		return skillgap.ScoreResult{}, mapEngineError(err)
	}

	if u.cache != nil {
		if err := u.cache.SetJSON(ctx, key, result, analysisCacheTTL); err == nil {
			u.log.Printf("[Analysis] Cache SET: %s", key)
		}
	}
	return result, nil
}

func mapEngineError(err error) error {
	switch {
	case errors.Is(err, skillgap.ErrEmptyDictionary):
		return ErrCatalogEmpty
	case errors.Is(err, skillgap.ErrNoRequirements), errors.Is(err, skillgap.ErrMalformedRequirement):
		return fmt.Errorf("%w: %v", ErrRoleNotScorable, err)
	default:
		return ErrInternal
	}
}

func (u *Analysis) notify(ctx context.Context, a repository.Analysis) {
	if len(u.notifiers) == 0 {
		return
	}
	ev := events.Event{
		Type:       events.TypeAnalysisCompleted,
		UserID:     a.UserID.String(),
		AnalysisID: a.ID.String(),
		RoleID:     a.RoleID,
		Overall:    a.Result.Overall,
		CreatedAt:  a.CreatedAt,
	}
	nctx := context.WithoutCancel(ctx)
	for _, n := range u.notifiers {
		if n == nil {
			continue
		}
		if err := n.Notify(nctx, ev); err != nil {
			u.log.Printf("[Analysis] notify failed | analysis_id=%s err=%v", a.ID, err)
		}
	}
}

func (u *Analysis) Get(ctx context.Context, userID, id uuid.UUID) (repository.Analysis, error) {
	if userID == uuid.Nil {
		return repository.Analysis{}, ErrUnauthorized
	}
	a, err := u.store.GetAnalysis(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrAnalysisNotFound) {
			return repository.Analysis{}, ErrAnalysisNotFound
		}
		return repository.Analysis{}, ErrInternal
	}
	return a, nil
}

func (u *Analysis) List(ctx context.Context, userID uuid.UUID, limit int) ([]repository.Analysis, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	if limit < 0 {
		return nil, ErrInvalidInput
	}
	items, err := u.store.ListAnalyses(ctx, userID, limit)
	if err != nil {
		return nil, ErrInternal
	}
	return items, nil
}

func (u *Analysis) SetTaskCompleted(ctx context.Context, userID, id uuid.UUID, day int, completed bool) ([]skillgap.LearningTask, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	if day < 1 || day > skillgap.MaxPlanTasks {
		return nil, ErrInvalidInput
	}
	plan, err := u.store.SetTaskCompleted(ctx, id, userID, day, completed)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAnalysisNotFound):
			return nil, ErrAnalysisNotFound
		case errors.Is(err, repository.ErrTaskNotFound):
			return nil, ErrTaskNotFound
		default:
			return nil, ErrInternal
		}
	}
	return plan, nil
}

func nonNilResources(in []skillgap.Resource) []skillgap.Resource {
	if in == nil {
		return []skillgap.Resource{}
	}
	return in
}
