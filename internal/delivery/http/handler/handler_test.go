package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skill-gap/internal/delivery/http/middleware"
	"skill-gap/internal/domain"
	"skill-gap/internal/domain/skillgap"
	"skill-gap/internal/domain/user"
	"skill-gap/internal/repository"
	"skill-gap/internal/usecase"
)

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

var testUser = uuid.MustParse("4b1f7f2e-9c0a-4a53-9d9e-0c1a1b2c3d4e")

// newTestApp mounts register under /x behind the error middleware. When
// authed is set the request carries testUser the way the auth middleware would.
func newTestApp(authed bool, register func(r fiber.Router)) *fiber.App {
	app := fiber.New()
	app.Use(middleware.NewErrorMiddleware(log.New(io.Discard, "", 0)).Middleware())
	if authed {
		app.Use(func(c fiber.Ctx) error {
			c.Locals(middleware.CtxUserIDKey, testUser)
			return c.Next()
		})
	}
	register(app.Group("/x"))
	return app
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, envelope) {
	t.Helper()
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func jsonRequest(method, target string, body any) *http.Request {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

type fakeRoles struct {
	roles []skillgap.Role
	query string
}

func (f *fakeRoles) List(_ context.Context, q string) ([]skillgap.Role, error) {
	f.query = q
	return f.roles, nil
}

func (f *fakeRoles) Get(_ context.Context, id string) (skillgap.Role, error) {
	for _, r := range f.roles {
		if r.ID == id {
			return r, nil
		}
	}
	return skillgap.Role{}, usecase.ErrRoleNotFound
}

func TestRoleHandler(t *testing.T) {
	uc := &fakeRoles{roles: []skillgap.Role{{
		ID: "ml", Title: "ML Intern", Category: "ml",
		Requirements: []skillgap.Requirement{{Skill: "python", Weight: 1, Priority: skillgap.PriorityRequired}},
	}}}
	app := newTestApp(false, NewRoleHandler(uc).RegisterRoutes)

	status, env := do(t, app, httptest.NewRequest(http.MethodGet, "/x?q=%20machine%20", nil))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "machine", uc.query)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)

	status, env = do(t, app, httptest.NewRequest(http.MethodGet, "/x/ml", nil))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(env.Data), "python")

	status, env = do(t, app, httptest.NewRequest(http.MethodGet, "/x/nope", nil))
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "Role not found", env.Message)
}

type fakeMarketUC struct {
	top int
}

func (f *fakeMarketUC) GetMarket(_ context.Context, top int) (usecase.MarketOverview, error) {
	if top < 0 || top > 100 {
		return usecase.MarketOverview{}, usecase.ErrInvalidInput
	}
	f.top = top
	return usecase.MarketOverview{
		TopSkills:    []skillgap.SkillCount{{Skill: "python", Count: 10}},
		UsedFallback: true,
	}, nil
}

func (f *fakeMarketUC) GetStatus(context.Context) (*domain.PipelineStatus, error) {
	return &domain.PipelineStatus{TotalPostings: 3, Sources: []domain.SourceStat{}, RecentRuns: []domain.SyncRun{}}, nil
}

func TestMarketHandler(t *testing.T) {
	uc := &fakeMarketUC{}
	app := newTestApp(false, NewMarketHandler(uc).RegisterRoutes)

	status, env := do(t, app, httptest.NewRequest(http.MethodGet, "/x?top=5", nil))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 5, uc.top)
	assert.Contains(t, string(env.Data), "python")

	status, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/x?top=abc", nil))
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/x?top=500", nil))
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/x/status", nil))
	assert.Equal(t, fiber.StatusOK, status)
}

type fakeAnalysisUC struct {
	runErr error
	got    usecase.AnalysisInput
	day    int
}

func (f *fakeAnalysisUC) Run(_ context.Context, in usecase.AnalysisInput) (repository.Analysis, error) {
	f.got = in
	if f.runErr != nil {
		return repository.Analysis{}, f.runErr
	}
	return repository.Analysis{
		ID:        uuid.New(),
		UserID:    in.UserID,
		RoleID:    in.RoleID,
		Result:    skillgap.ScoreResult{Overall: 61},
		Plan:      []skillgap.LearningTask{{Day: 1, Skill: "sql", Kind: skillgap.TaskIntroduction}},
		CreatedAt: time.Now(),
	}, nil
}

func (f *fakeAnalysisUC) Get(_ context.Context, _, _ uuid.UUID) (repository.Analysis, error) {
	return repository.Analysis{}, usecase.ErrAnalysisNotFound
}

func (f *fakeAnalysisUC) List(_ context.Context, _ uuid.UUID, limit int) ([]repository.Analysis, error) {
	return []repository.Analysis{}, nil
}

func (f *fakeAnalysisUC) SetTaskCompleted(_ context.Context, _, _ uuid.UUID, day int, completed bool) ([]skillgap.LearningTask, error) {
	f.day = day
	if day > skillgap.MaxPlanTasks {
		return nil, usecase.ErrInvalidInput
	}
	return []skillgap.LearningTask{{Day: day, Skill: "sql", Completed: completed}}, nil
}

func TestAnalysisHandler_Create(t *testing.T) {
	uc := &fakeAnalysisUC{}
	app := newTestApp(true, NewAnalysisHandler(uc).RegisterRoutes)

	status, env := do(t, app, jsonRequest(http.MethodPost, "/x", map[string]any{
		"role_id": " ml ", "jd_title": "Intern", "jd_text": "python and sql",
	}))
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "ml", uc.got.RoleID)
	assert.Equal(t, testUser, uc.got.UserID)
	assert.Contains(t, string(env.Data), `"overall":61`)
}

func TestAnalysisHandler_ValidationAndErrors(t *testing.T) {
	uc := &fakeAnalysisUC{}
	app := newTestApp(true, NewAnalysisHandler(uc).RegisterRoutes)

	status, env := do(t, app, jsonRequest(http.MethodPost, "/x", map[string]any{"jd_text": "x"}))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, string(env.Data), "role_id")

	cases := []struct {
		err    error
		status int
	}{
		{usecase.ErrRoleNotFound, fiber.StatusNotFound},
		{usecase.ErrRoleNotScorable, fiber.StatusBadRequest},
		{usecase.ErrCatalogEmpty, fiber.StatusServiceUnavailable},
		{usecase.ErrInternal, fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		uc.runErr = tc.err
		status, _ := do(t, app, jsonRequest(http.MethodPost, "/x", map[string]any{"role_id": "ml"}))
		assert.Equal(t, tc.status, status, tc.err.Error())
	}

	status, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/x/"+uuid.NewString(), nil))
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/x/not-a-uuid", nil))
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/x?limit=0", nil))
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestAnalysisHandler_UpdateTask(t *testing.T) {
	uc := &fakeAnalysisUC{}
	app := newTestApp(true, NewAnalysisHandler(uc).RegisterRoutes)
	target := "/x/" + uuid.NewString() + "/tasks/"

	status, env := do(t, app, jsonRequest(http.MethodPatch, target+"3", map[string]any{"completed": true}))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 3, uc.day)
	assert.Contains(t, string(env.Data), `"completed":true`)

	status, _ = do(t, app, jsonRequest(http.MethodPatch, target+"3", map[string]any{}))
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = do(t, app, jsonRequest(http.MethodPatch, target+"99", map[string]any{"completed": false}))
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestProtectedHandlersRequireUser(t *testing.T) {
	app := newTestApp(false, NewAnalysisHandler(&fakeAnalysisUC{}).RegisterRoutes)

	status, _ := do(t, app, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

type fakeProfileUC struct {
	upserted usecase.ProfileInput
	upload   usecase.ResumeUpload
}

func (f *fakeProfileUC) Get(_ context.Context, id uuid.UUID) (user.Profile, error) {
	return user.Profile{UserID: id, IsStudent: true}, nil
}

func (f *fakeProfileUC) Upsert(_ context.Context, id uuid.UUID, in usecase.ProfileInput) (user.Profile, error) {
	f.upserted = in
	return user.Profile{UserID: id, Skills: in.Skills}, nil
}

func (f *fakeProfileUC) UploadResume(_ context.Context, id uuid.UUID, up usecase.ResumeUpload) (usecase.ResumeResult, error) {
	f.upload = up
	if len(up.Data) == 0 {
		return usecase.ResumeResult{}, usecase.ErrResumeEmpty
	}
	return usecase.ResumeResult{
		Profile:         user.Profile{UserID: id},
		Text:            string(up.Data),
		SuggestedSkills: []string{"Docker"},
	}, nil
}

func multipartResume(t *testing.T, name string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(resumeFormField, name)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/x/resume", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestProfileHandler(t *testing.T) {
	uc := &fakeProfileUC{}
	app := newTestApp(true, NewProfileHandler(uc).RegisterRoutes)

	status, _ := do(t, app, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, fiber.StatusOK, status)

	status, env := do(t, app, jsonRequest(http.MethodPut, "/x", map[string]any{
		"is_student": true, "skills": []string{"Go", "SQL"},
	}))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, []string{"Go", "SQL"}, uc.upserted.Skills)
	assert.Contains(t, string(env.Data), "SQL")

	status, env = do(t, app, multipartResume(t, "cv.txt", []byte("docker and kubernetes")))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "cv.txt", uc.upload.Filename)
	assert.Contains(t, string(env.Data), `"characters":21`)
	assert.Contains(t, string(env.Data), "Docker")

	status, _ = do(t, app, multipartResume(t, "cv.txt", nil))
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = do(t, app, jsonRequest(http.MethodPost, "/x/resume", map[string]any{}))
	assert.Equal(t, fiber.StatusBadRequest, status)
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) InvalidateMarket(context.Context) error {
	c.calls++
	return nil
}

func TestMarketSyncedHandler(t *testing.T) {
	inv := &countingInvalidator{}
	h := NewMarketSyncedHandler("s3cret", inv, log.New(io.Discard, "", 0))
	app := newTestApp(false, h.RegisterRoutes)

	req := jsonRequest(http.MethodPost, "/x/market-synced", map[string]any{"source": "csv", "postings": 12})
	status, _ := do(t, app, req)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Zero(t, inv.calls)

	req = jsonRequest(http.MethodPost, "/x/market-synced", map[string]any{"source": "csv", "postings": 12})
	req.Header.Set("X-Internal-Token", "s3cret")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, inv.calls)

	req = jsonRequest(http.MethodPost, "/x/market-synced", map[string]any{"source": "csv", "completed_at": "yesterday"})
	req.Header.Set("X-Internal-Token", "s3cret")
	status, _ = do(t, app, req)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

type nopPinger struct{ err error }

func (p nopPinger) Ping(context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	app := fiber.New()
	NewHealthHandler(nopPinger{}).RegisterRoutes(app)

	status, env := do(t, app, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(env.Data), `"database":"up"`)
}
