package migration

import (
	"context"
	"testing"
	"testing/fstest"
)

func TestLoadMigrations_SortsAndChecksums(t *testing.T) {
	src := fstest.MapFS{
		"V2__analyses.sql": {Data: []byte("CREATE TABLE analyses (id UUID);\n")},
		"V1__init.sql":     {Data: []byte("  CREATE TABLE users (id UUID);  ")},
		"README.md":        {Data: []byte("ignored")},
		"V3__bad name.sql": {Data: []byte("ignored, name does not match")},
		"nested/V9__x.sql": {Data: []byte("ignored, directory")},
	}

	migs, err := loadMigrations(src)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(migs) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migs))
	}
	if migs[0].Version != 1 || migs[0].Name != "init" {
		t.Fatalf("unexpected first migration %+v", migs[0])
	}
	if migs[0].SQL != "CREATE TABLE users (id UUID);" {
		t.Fatalf("expected trimmed sql, got %q", migs[0].SQL)
	}
	if migs[0].Checksum == "" || migs[0].Checksum == migs[1].Checksum {
		t.Fatalf("expected distinct checksums")
	}
}

func TestLoadMigrations_DuplicateVersion(t *testing.T) {
	src := fstest.MapFS{
		"V1__a.sql": {Data: []byte("SELECT 1")},
		"V1__b.sql": {Data: []byte("SELECT 2")},
	}
	if _, err := loadMigrations(src); err == nil {
		t.Fatalf("expected duplicate version error")
	}
}

func TestLoadMigrations_EmptyFile(t *testing.T) {
	src := fstest.MapFS{"V1__empty.sql": {Data: []byte("   \n")}}
	if _, err := loadMigrations(src); err == nil {
		t.Fatalf("expected empty migration error")
	}
}

func TestRunner_NilDB(t *testing.T) {
	if err := (Runner{FS: fstest.MapFS{}}).Run(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil db")
	}
}
