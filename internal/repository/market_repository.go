package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"skill-gap/internal/database"
	"skill-gap/internal/domain"
)

// Posting is one scraped job advertisement used to build market demand counts.
type Posting struct {
	ID          uuid.UUID
	Source      string
	URL         string
	Title       string
	Company     string
	Location    string
	Description string
	ScrapedAt   time.Time
}

type MarketRepository interface {
	InsertPosting(ctx context.Context, p Posting) (bool, error)
	ListPostings(ctx context.Context, limit, offset int) ([]Posting, error)

	ReplaceSkillCounts(ctx context.Context, counts map[string]int) error
	LoadSkillCounts(ctx context.Context) (map[string]int, error)

	StartSyncRun(ctx context.Context, source string) (uuid.UUID, error)
	FinishSyncRun(ctx context.Context, id uuid.UUID, status string, postings int, message string) error
	ListSyncRuns(ctx context.Context, limit int) ([]domain.SyncRun, error)

	GetTotalPostings(ctx context.Context) (int, error)
	GetPostingsToday(ctx context.Context) (int, error)
	GetSourceStats(ctx context.Context) ([]domain.SourceStat, error)
}

type PostgresMarketRepository struct {
	db database.DB
}

func NewPostgresMarketRepository(db database.DB) *PostgresMarketRepository {
	return &PostgresMarketRepository{db: db}
}

func (r *PostgresMarketRepository) InsertPosting(ctx context.Context, p Posting) (bool, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.ScrapedAt.IsZero() {
		p.ScrapedAt = time.Now().UTC()
	}
	affected, err := r.db.Exec(ctx,
		`INSERT INTO market_postings (id, source, url, title, company, location, description, scraped_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (url) DO NOTHING`,
		p.ID, p.Source, p.URL, p.Title, p.Company, p.Location, p.Description, p.ScrapedAt,
	)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *PostgresMarketRepository) ListPostings(ctx context.Context, limit, offset int) ([]Posting, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, source, url, title, company, location, description, scraped_at
		 FROM market_postings
		 ORDER BY scraped_at ASC, id ASC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Posting, 0)
	for rows.Next() {
		var p Posting
		if err := rows.Scan(&p.ID, &p.Source, &p.URL, &p.Title, &p.Company, &p.Location, &p.Description, &p.ScrapedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ReplaceSkillCounts swaps the whole count table in one transaction so readers
// never observe a half-written snapshot.
func (r *PostgresMarketRepository) ReplaceSkillCounts(ctx context.Context, counts map[string]int) error {
	return database.InTx(ctx, r.db, func(tx database.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM market_skill_counts`); err != nil {
			return err
		}
		for skill, n := range counts {
			skill = strings.TrimSpace(skill)
			if skill == "" || n < 0 {
				continue
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO market_skill_counts (skill, count, updated_at) VALUES ($1, $2, now())
				 ON CONFLICT (skill) DO UPDATE SET count = EXCLUDED.count, updated_at = now()`,
				skill, n,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PostgresMarketRepository) LoadSkillCounts(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.Query(ctx, `SELECT skill, count FROM market_skill_counts`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var (
			skill string
			n     int
		)
		if err := rows.Scan(&skill, &n); err != nil {
			return nil, err
		}
		out[skill] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresMarketRepository) StartSyncRun(ctx context.Context, source string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.db.Exec(ctx,
		`INSERT INTO market_sync_runs (id, source, started_at, status) VALUES ($1, $2, $3, $4)`,
		id, source, time.Now().UTC(), domain.SyncStatusRunning,
	)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (r *PostgresMarketRepository) FinishSyncRun(ctx context.Context, id uuid.UUID, status string, postings int, message string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE market_sync_runs SET finished_at = $2, status = $3, postings = $4, message = $5 WHERE id = $1`,
		id, time.Now().UTC(), status, postings, message,
	)
	return err
}

func (r *PostgresMarketRepository) ListSyncRuns(ctx context.Context, limit int) ([]domain.SyncRun, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, source, status, postings, message, started_at, finished_at
		 FROM market_sync_runs
		 ORDER BY started_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.SyncRun, 0)
	for rows.Next() {
		var (
			run      domain.SyncRun
			id       uuid.UUID
			finished sql.NullTime
		)
		if err := rows.Scan(&id, &run.Source, &run.Status, &run.Postings, &run.Message, &run.StartedAt, &finished); err != nil {
			return nil, err
		}
		run.ID = id.String()
		run.StartedAt = run.StartedAt.UTC()
		if finished.Valid {
			t := finished.Time.UTC()
			run.FinishedAt = &t
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresMarketRepository) GetTotalPostings(ctx context.Context) (int, error) {
	var c int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM market_postings`).Scan(&c); err != nil {
		return 0, err
	}
	return c, nil
}

func (r *PostgresMarketRepository) GetPostingsToday(ctx context.Context) (int, error) {
	var c int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM market_postings WHERE scraped_at >= CURRENT_DATE`).Scan(&c); err != nil {
		return 0, err
	}
	return c, nil
}

func (r *PostgresMarketRepository) GetSourceStats(ctx context.Context) ([]domain.SourceStat, error) {
	rows, err := r.db.Query(ctx,
		`SELECT source, COUNT(*) AS total, MAX(scraped_at) AS last_scraped
		 FROM market_postings
		 GROUP BY source
		 ORDER BY total DESC, source ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.SourceStat, 0)
	for rows.Next() {
		var (
			src   sql.NullString
			total int
			last  sql.NullTime
		)
		if err := rows.Scan(&src, &total, &last); err != nil {
			return nil, err
		}
		st := domain.SourceStat{Source: "unknown", TotalPostings: total}
		if src.Valid && src.String != "" {
			st.Source = src.String
		}
		if last.Valid {
			st.LastScrapedAt = last.Time.UTC()
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
