package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"skill-gap/internal/database"
	"skill-gap/internal/domain/user"
)

type stubRow struct {
	vals []any
	err  error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.vals) {
		return fmt.Errorf("scan dest mismatch")
	}
	for i := range dest {
		switch d := dest[i].(type) {
		case *uuid.UUID:
			*d = r.vals[i].(uuid.UUID)
		case *string:
			*d = r.vals[i].(string)
		case *time.Time:
			*d = r.vals[i].(time.Time)
		case *bool:
			*d = r.vals[i].(bool)
		default:
			return fmt.Errorf("unsupported scan type")
		}
	}
	return nil
}

type stubDB struct {
	row       stubRow
	lastQuery string
	lastArgs  []any
}

func (db *stubDB) Ping(ctx context.Context) error { return nil }
func (db *stubDB) Close() error                   { return nil }
func (db *stubDB) SQLDB() *sql.DB                 { return nil }
func (db *stubDB) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	db.lastQuery, db.lastArgs = query, args
	return 1, nil
}
func (db *stubDB) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	return nil, fmt.Errorf("not implemented")
}
func (db *stubDB) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	db.lastQuery, db.lastArgs = query, args
	return db.row
}
func (db *stubDB) Begin(ctx context.Context) (database.Tx, error) {
	return nil, fmt.Errorf("not implemented")
}

func TestUserRepository_GetUserByEmail(t *testing.T) {
	id := uuid.New()
	now := time.Now()
	db := &stubDB{row: stubRow{vals: []any{id, "a@b.co", "hash", now, now}}}

	u, err := NewUserRepository(db).GetUserByEmail(context.Background(), "a@b.co")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if u.ID != id || u.Email != "a@b.co" || u.PasswordHash != "hash" {
		t.Fatalf("unexpected user %+v", u)
	}
}

func TestUserRepository_NotFound(t *testing.T) {
	for _, rowErr := range []error{pgx.ErrNoRows, sql.ErrNoRows} {
		db := &stubDB{row: stubRow{err: rowErr}}
		_, err := NewUserRepository(db).GetUserByID(context.Background(), uuid.New())
		if !errors.Is(err, user.ErrNotFound) {
			t.Fatalf("expected ErrNotFound for %v, got %v", rowErr, err)
		}
	}
}

func TestUserRepository_ExistsByEmail(t *testing.T) {
	db := &stubDB{row: stubRow{vals: []any{true}}}
	ok, err := NewUserRepository(db).ExistsByEmail(context.Background(), "a@b.co")
	if err != nil || !ok {
		t.Fatalf("expected exists, got %v %v", ok, err)
	}
	if db.lastArgs[0] != "a@b.co" {
		t.Fatalf("unexpected args %v", db.lastArgs)
	}
}
