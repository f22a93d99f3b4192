package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"skill-gap/internal/database"
	"skill-gap/internal/domain/skillgap"
	"skill-gap/internal/domain/user"
)

type PostgresStore struct {
	db database.DB
}

func NewPostgresStore(db database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func isNoRows(err error) bool {
	return err == sql.ErrNoRows || errors.Is(err, pgx.ErrNoRows)
}

const roleSelect = `SELECT r.id, r.title, r.category, r.description, rr.skill, rr.weight, rr.priority
	 FROM roles r
	 LEFT JOIN role_requirements rr ON rr.role_id = r.id`

func (s *PostgresStore) queryRoles(ctx context.Context, query string, args ...any) ([]skillgap.Role, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flat := make([]roleRow, 0)
	for rows.Next() {
		var r roleRow
		if err := rows.Scan(&r.id, &r.title, &r.category, &r.description, &r.skill, &r.weight, &r.priority); err != nil {
			return nil, err
		}
		flat = append(flat, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return groupRoles(flat), nil
}

func (s *PostgresStore) GetRole(ctx context.Context, id string) (skillgap.Role, error) {
	roles, err := s.queryRoles(ctx, roleSelect+` WHERE r.id = $1 ORDER BY rr.position ASC`, id)
	if err != nil {
		return skillgap.Role{}, err
	}
	if len(roles) == 0 {
		return skillgap.Role{}, ErrRoleNotFound
	}
	return roles[0], nil
}

func (s *PostgresStore) ListRoles(ctx context.Context) ([]skillgap.Role, error) {
	return s.queryRoles(ctx, roleSelect+` ORDER BY r.title ASC, r.id ASC, rr.position ASC`)
}

func (s *PostgresStore) GetResources(ctx context.Context) ([]skillgap.Resource, error) {
	return s.queryResources(ctx,
		`SELECT skill, title, url, type FROM resources ORDER BY position ASC, title ASC`,
	)
}

func (s *PostgresStore) GetResourcesForSkill(ctx context.Context, skill string, limit int) ([]skillgap.Resource, error) {
	if limit <= 0 {
		return []skillgap.Resource{}, nil
	}
	return s.queryResources(ctx,
		`SELECT skill, title, url, type
		 FROM resources
		 WHERE lower(skill) = lower($1)
		 ORDER BY position ASC, title ASC
		 LIMIT $2`,
		skill, limit,
	)
}

func (s *PostgresStore) queryResources(ctx context.Context, query string, args ...any) ([]skillgap.Resource, error) {
	rows, err := s.db.Query(ctx, query, args...)
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
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

const profileColumns = `user_id, is_student, year, major, skills, coursework, experiences, resume_text, resume_key, updated_at`

func scanProfile(row database.Row) (user.Profile, error) {
	var p user.Profile
	err := row.Scan(&p.UserID, &p.IsStudent, &p.Year, &p.Major, &p.Skills, &p.Coursework, &p.Experiences, &p.ResumeText, &p.ResumeKey, &p.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return user.Profile{}, ErrProfileNotFound
		}
		return user.Profile{}, err
	}
	return p, nil
}

func (s *PostgresStore) GetProfile(ctx context.Context, userID uuid.UUID) (user.Profile, error) {
	return scanProfile(s.db.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`,
		userID,
	))
}

func (s *PostgresStore) UpsertProfile(ctx context.Context, p user.Profile) (user.Profile, error) {
	return scanProfile(s.db.QueryRow(ctx,
		`INSERT INTO profiles (user_id, is_student, year, major, skills, coursework, experiences, resume_text, resume_key, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
		 ON CONFLICT (user_id) DO UPDATE SET
		   is_student = EXCLUDED.is_student,
		   year = EXCLUDED.year,
		   major = EXCLUDED.major,
		   skills = EXCLUDED.skills,
		   coursework = EXCLUDED.coursework,
		   experiences = EXCLUDED.experiences,
		   resume_text = EXCLUDED.resume_text,
		   resume_key = EXCLUDED.resume_key,
		   updated_at = now()
		 RETURNING `+profileColumns,
		p.UserID, p.IsStudent, p.Year, p.Major,
		nonNilStrings(p.Skills), nonNilStrings(p.Coursework), nonNilStrings(p.Experiences),
		p.ResumeText, p.ResumeKey,
	))
}

func (s *PostgresStore) SaveAnalysis(ctx context.Context, a Analysis) error {
	result, err := json.Marshal(a.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	plan, err := json.Marshal(nonNilTasks(a.Plan))
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO analyses (id, user_id, role_id, jd_title, jd_text, overall, result, learning_plan, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.UserID, a.RoleID, a.JDTitle, a.JDText, a.Result.Overall, result, plan, a.CreatedAt,
	)
	return err
}

const analysisColumns = `id, user_id, role_id, jd_title, jd_text, result, learning_plan, created_at`

func scanAnalysis(row database.Row) (Analysis, error) {
	var (
		a            Analysis
		result, plan []byte
	)
	if err := row.Scan(&a.ID, &a.UserID, &a.RoleID, &a.JDTitle, &a.JDText, &result, &plan, &a.CreatedAt); err != nil {
		if isNoRows(err) {
			return Analysis{}, ErrAnalysisNotFound
		}
		return Analysis{}, err
	}
	if err := json.Unmarshal(result, &a.Result); err != nil {
		return Analysis{}, fmt.Errorf("decode result: %w", err)
	}
	if err := json.Unmarshal(plan, &a.Plan); err != nil {
		return Analysis{}, fmt.Errorf("decode plan: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) GetAnalysis(ctx context.Context, id, userID uuid.UUID) (Analysis, error) {
	return scanAnalysis(s.db.QueryRow(ctx,
		`SELECT `+analysisColumns+` FROM analyses WHERE id = $1 AND user_id = $2`,
		id, userID,
	))
}

func (s *PostgresStore) ListAnalyses(ctx context.Context, userID uuid.UUID, limit int) ([]Analysis, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+analysisColumns+`
		 FROM analyses
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id ASC
		 LIMIT $2`,
		userID, clampLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Analysis, 0)
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) SetTaskCompleted(ctx context.Context, analysisID, userID uuid.UUID, day int, completed bool) ([]skillgap.LearningTask, error) {
	var updated []skillgap.LearningTask
	err := database.InTx(ctx, s.db, func(tx database.Tx) error {
		var raw []byte
		err := tx.QueryRow(ctx,
			`SELECT learning_plan FROM analyses WHERE id = $1 AND user_id = $2 FOR UPDATE`,
			analysisID, userID,
		).Scan(&raw)
		if err != nil {
			if isNoRows(err) {
				return ErrAnalysisNotFound
			}
			return err
		}

		var plan []skillgap.LearningTask
		if err := json.Unmarshal(raw, &plan); err != nil {
			return fmt.Errorf("decode plan: %w", err)
		}
		updated, err = ToggleTask(plan, day, completed)
		if err != nil {
			return err
		}

		b, err := json.Marshal(updated)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `UPDATE analyses SET learning_plan = $3 WHERE id = $1 AND user_id = $2`, analysisID, userID, b)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilTasks(t []skillgap.LearningTask) []skillgap.LearningTask {
	if t == nil {
		return []skillgap.LearningTask{}
	}
	return t
}
