package seeder

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"skill-gap/internal/database"
	"skill-gap/internal/domain/skillgap"
)

type fakeRows struct {
	vals []string
	i    int
}

func (r *fakeRows) Close()     {}
func (r *fakeRows) Err() error { return nil }
func (r *fakeRows) Next() bool {
	r.i++
	return r.i <= len(r.vals)
}
func (r *fakeRows) Scan(dest ...any) error {
	p, ok := dest[0].(*string)
	if !ok {
		return fmt.Errorf("unsupported scan type")
	}
	*p = r.vals[r.i-1]
	return nil
}

type fakeTx struct {
	db *fakeDB
}

func (tx fakeTx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	tx.db.execs = append(tx.db.execs, strings.Fields(query)[2])
	return 1, nil
}
func (tx fakeTx) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	return nil, fmt.Errorf("not implemented")
}
func (tx fakeTx) QueryRow(ctx context.Context, query string, args ...any) database.Row { return nil }
func (tx fakeTx) Commit(ctx context.Context) error {
	tx.db.committed = true
	return nil
}
func (tx fakeTx) Rollback(ctx context.Context) error { return nil }

type fakeDB struct {
	columns   map[string][]string
	execs     []string
	committed bool
}

func (db *fakeDB) Ping(ctx context.Context) error { return nil }
func (db *fakeDB) Close() error                   { return nil }
func (db *fakeDB) SQLDB() *sql.DB                 { return nil }
func (db *fakeDB) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return 0, fmt.Errorf("exec outside tx")
}
func (db *fakeDB) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	return &fakeRows{vals: db.columns[args[0].(string)]}, nil
}
func (db *fakeDB) QueryRow(ctx context.Context, query string, args ...any) database.Row { return nil }
func (db *fakeDB) Begin(ctx context.Context) (database.Tx, error) {
	return fakeTx{db: db}, nil
}

func fullSchema() map[string][]string {
	return map[string][]string{
		"roles":             {"id", "title", "category", "description", "created_at"},
		"role_requirements": {"role_id", "position", "skill", "weight", "priority"},
		"resources":         {"id", "position", "skill", "title", "url", "type", "created_at"},
	}
}

func TestCatalogSeeder_InsertsEverything(t *testing.T) {
	db := &fakeDB{columns: fullSchema()}
	c := &Catalog{
		Roles: []skillgap.Role{{
			ID:    "backend-intern",
			Title: "Backend Intern",
			Requirements: []skillgap.Requirement{
				{Skill: "go", Weight: 2, Priority: skillgap.PriorityRequired},
				{Skill: "sql", Weight: 1, Priority: skillgap.PriorityPreferred},
			},
		}},
		Resources: []skillgap.Resource{{Skill: "go", Title: "Tour", URL: "https://go.dev/tour", Type: "interactive"}},
	}

	if err := (CatalogSeeder{Catalog: c}).Run(context.Background(), db); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := []string{"roles", "role_requirements", "role_requirements", "resources"}
	if strings.Join(db.execs, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected inserts %v", db.execs)
	}
	if !db.committed {
		t.Fatalf("expected commit")
	}
}

func TestCatalogSeeder_SchemaMismatch(t *testing.T) {
	schema := fullSchema()
	schema["resources"] = []string{"id", "position", "skill", "title"}
	db := &fakeDB{columns: schema}

	err := (CatalogSeeder{}).Run(context.Background(), db)
	if err == nil || !strings.Contains(err.Error(), "missing column resources.url") {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
	if len(db.execs) != 0 {
		t.Fatalf("expected no inserts, got %v", db.execs)
	}
}

func TestRunner_NilDB(t *testing.T) {
	if err := (Runner{Seeders: Defaults()}).Run(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil db")
	}
}
