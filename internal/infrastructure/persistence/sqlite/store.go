// Package sqlite is the local, single-file Store used by the offline CLI.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"skill-gap/internal/database/seeder"
	"skill-gap/internal/domain/skillgap"
	"skill-gap/internal/domain/user"
	"skill-gap/internal/repository"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const timeLayout = "2006-01-02T15:04:05.000000000Z"

type Store struct {
	db *sql.DB
}

var _ repository.Store = (*Store)(nil)

// Open opens (or creates) skillgap.db in dataDir, migrates it and loads the
// built-in catalog on first use. ":memory:" opens a throwaway database.
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "skillgap.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA busy_timeout = 5000", "PRAGMA journal_mode=WAL", "PRAGMA foreign_keys = ON"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	if err := s.seedCatalog(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("seeding catalog: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		prefix, _, _ := strings.Cut(entry.Name(), "_")
		version, err := strconv.Atoi(prefix)
		if err != nil {
			return fmt.Errorf("bad migration name %s: %w", entry.Name(), err)
		}

		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}
	return nil
}

func (s *Store) seedCatalog(ctx context.Context) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM roles`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	c, err := seeder.LoadCatalog()
	if err != nil {
		return err
	}
	return s.ImportCatalog(ctx, c)
}

// ImportCatalog inserts roles and resources, ignoring rows that already exist.
func (s *Store) ImportCatalog(ctx context.Context, c seeder.Catalog) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, r := range c.Roles {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO roles (id, title, category, description) VALUES (?, ?, ?, ?)`,
			r.ID, r.Title, r.Category, r.Description,
		); err != nil {
			return fmt.Errorf("role %s: %w", r.ID, err)
		}
		for i, req := range r.Requirements {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO role_requirements (role_id, position, skill, weight, priority) VALUES (?, ?, ?, ?, ?)`,
				r.ID, i, req.Skill, req.Weight, string(req.Priority),
			); err != nil {
				return fmt.Errorf("requirement %s/%d: %w", r.ID, i, err)
			}
		}
	}
	for i, res := range c.Resources {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO resources (position, skill, title, url, type) VALUES (?, ?, ?, ?, ?)`,
			i, res.Skill, res.Title, res.URL, res.Type,
		); err != nil {
			return fmt.Errorf("resource %s: %w", res.URL, err)
		}
	}
	return tx.Commit()
}

func (s *Store) queryRoles(ctx context.Context, where, order string, args ...any) ([]skillgap.Role, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.title, r.category, r.description, rr.skill, rr.weight, rr.priority
		 FROM roles r
		 LEFT JOIN role_requirements rr ON rr.role_id = r.id `+where+` ORDER BY `+order,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]skillgap.Role, 0)
	index := map[string]int{}
	for rows.Next() {
		var (
			id, title, category, description string
			skill, priority                  sql.NullString
			weight                           sql.NullFloat64
		)
		if err := rows.Scan(&id, &title, &category, &description, &skill, &weight, &priority); err != nil {
			return nil, err
		}
		i, ok := index[id]
		if !ok {
			out = append(out, skillgap.Role{ID: id, Title: title, Category: category, Description: description, Requirements: []skillgap.Requirement{}})
			i = len(out) - 1
			index[id] = i
		}
		if skill.Valid {
			out[i].Requirements = append(out[i].Requirements, skillgap.Requirement{
				Skill:    skill.String,
				Weight:   weight.Float64,
				Priority: skillgap.Priority(priority.String),
			})
		}
	}
	return out, rows.Err()
}

func (s *Store) GetRole(ctx context.Context, id string) (skillgap.Role, error) {
	roles, err := s.queryRoles(ctx, `WHERE r.id = ?`, `rr.position ASC`, id)
	if err != nil {
		return skillgap.Role{}, err
	}
	if len(roles) == 0 {
		return skillgap.Role{}, repository.ErrRoleNotFound
	}
	return roles[0], nil
}

func (s *Store) ListRoles(ctx context.Context) ([]skillgap.Role, error) {
	return s.queryRoles(ctx, ``, `r.title ASC, r.id ASC, rr.position ASC`)
}

func (s *Store) GetResources(ctx context.Context) ([]skillgap.Resource, error) {
	return s.queryResources(ctx, `SELECT skill, title, url, type FROM resources ORDER BY position ASC, title ASC`)
}

func (s *Store) GetResourcesForSkill(ctx context.Context, skill string, limit int) ([]skillgap.Resource, error) {
	if limit <= 0 {
		return []skillgap.Resource{}, nil
	}
	return s.queryResources(ctx,
		`SELECT skill, title, url, type FROM resources
		 WHERE skill = ? COLLATE NOCASE
		 ORDER BY position ASC, title ASC
		 LIMIT ?`,
		skill, limit,
	)
}

func (s *Store) queryResources(ctx context.Context, query string, args ...any) ([]skillgap.Resource, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]skillgap.Resource, 0)
	for rows.Next() {
		var r skillgap.Resource
		if err := rows.Scan(&r.Skill, &r.Title, &r.URL, &r.Type); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) GetProfile(ctx context.Context, userID uuid.UUID) (user.Profile, error) {
	var (
		p                               user.Profile
		id, updated                     string
		skills, coursework, experiences string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, is_student, year, major, skills, coursework, experiences, resume_text, resume_key, updated_at
		 FROM profiles WHERE user_id = ?`,
		userID.String(),
	).Scan(&id, &p.IsStudent, &p.Year, &p.Major, &skills, &coursework, &experiences, &p.ResumeText, &p.ResumeKey, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.Profile{}, repository.ErrProfileNotFound
		}
		return user.Profile{}, err
	}
	p.UserID = userID
	p.UpdatedAt, _ = time.Parse(timeLayout, updated)
	for _, f := range []struct {
		raw string
		dst *[]string
	}{{skills, &p.Skills}, {coursework, &p.Coursework}, {experiences, &p.Experiences}} {
		if err := json.Unmarshal([]byte(f.raw), f.dst); err != nil {
			return user.Profile{}, fmt.Errorf("decode profile: %w", err)
		}
	}
	return p, nil
}

func (s *Store) UpsertProfile(ctx context.Context, p user.Profile) (user.Profile, error) {
	skills, _ := json.Marshal(orEmpty(p.Skills))
	coursework, _ := json.Marshal(orEmpty(p.Coursework))
	experiences, _ := json.Marshal(orEmpty(p.Experiences))

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles (user_id, is_student, year, major, skills, coursework, experiences, resume_text, resume_key, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET
		   is_student = excluded.is_student,
		   year = excluded.year,
		   major = excluded.major,
		   skills = excluded.skills,
		   coursework = excluded.coursework,
		   experiences = excluded.experiences,
		   resume_text = excluded.resume_text,
		   resume_key = excluded.resume_key,
		   updated_at = excluded.updated_at`,
		p.UserID.String(), p.IsStudent, p.Year, p.Major, string(skills), string(coursework), string(experiences),
		p.ResumeText, p.ResumeKey, time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return user.Profile{}, err
	}
	return s.GetProfile(ctx, p.UserID)
}

func (s *Store) SaveAnalysis(ctx context.Context, a repository.Analysis) error {
	result, err := json.Marshal(a.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	plan, err := json.Marshal(orEmptyTasks(a.Plan))
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	created := a.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, user_id, role_id, jd_title, jd_text, overall, result, learning_plan, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID.String(), a.UserID.String(), a.RoleID, a.JDTitle, a.JDText, a.Result.Overall,
		string(result), string(plan), created.UTC().Format(timeLayout),
	)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row scanner) (repository.Analysis, error) {
	var (
		a                                 repository.Analysis
		id, userID, result, plan, created string
	)
	if err := row.Scan(&id, &userID, &a.RoleID, &a.JDTitle, &a.JDText, &result, &plan, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.Analysis{}, repository.ErrAnalysisNotFound
		}
		return repository.Analysis{}, err
	}
	var err error
	if a.ID, err = uuid.Parse(id); err != nil {
		return repository.Analysis{}, err
	}
	if a.UserID, err = uuid.Parse(userID); err != nil {
		return repository.Analysis{}, err
	}
	a.CreatedAt, _ = time.Parse(timeLayout, created)
	if err := json.Unmarshal([]byte(result), &a.Result); err != nil {
		return repository.Analysis{}, fmt.Errorf("decode result: %w", err)
	}
	if err := json.Unmarshal([]byte(plan), &a.Plan); err != nil {
		return repository.Analysis{}, fmt.Errorf("decode plan: %w", err)
	}
	return a, nil
}

const analysisColumns = `id, user_id, role_id, jd_title, jd_text, result, learning_plan, created_at`

func (s *Store) GetAnalysis(ctx context.Context, id, userID uuid.UUID) (repository.Analysis, error) {
	return scanAnalysis(s.db.QueryRowContext(ctx,
		`SELECT `+analysisColumns+` FROM analyses WHERE id = ? AND user_id = ?`,
		id.String(), userID.String(),
	))
}

func (s *Store) ListAnalyses(ctx context.Context, userID uuid.UUID, limit int) ([]repository.Analysis, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+analysisColumns+` FROM analyses WHERE user_id = ? ORDER BY created_at DESC, id ASC LIMIT ?`,
		userID.String(), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]repository.Analysis, 0)
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) SetTaskCompleted(ctx context.Context, analysisID, userID uuid.UUID, day int, completed bool) ([]skillgap.LearningTask, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var raw string
	err = tx.QueryRowContext(ctx,
		`SELECT learning_plan FROM analyses WHERE id = ? AND user_id = ?`,
		analysisID.String(), userID.String(),
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrAnalysisNotFound
		}
		return nil, err
	}

	var plan []skillgap.LearningTask
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	updated, err := repository.ToggleTask(plan, day, completed)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(updated)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE analyses SET learning_plan = ? WHERE id = ? AND user_id = ?`,
		string(b), analysisID.String(), userID.String(),
	); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return updated, nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func orEmptyTasks(t []skillgap.LearningTask) []skillgap.LearningTask {
	if t == nil {
		return []skillgap.LearningTask{}
	}
	return t
}
