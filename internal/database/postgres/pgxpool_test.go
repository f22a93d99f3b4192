package postgres

import (
	"context"
	"testing"

	"skill-gap/internal/config"
)

func TestDSN(t *testing.T) {
	got := DSN(config.DatabaseConfig{
		DBHost:     "localhost",
		DBPort:     "5432",
		DBUser:     "app",
		DBPassword: "secret",
		DBName:     "skillgap",
		DBSSLMode:  "disable",
	})
	want := "host=localhost port=5432 user=app password=secret dbname=skillgap sslmode=disable"
	if got != want {
		t.Fatalf("unexpected dsn:\n got %q\nwant %q", got, want)
	}
}

func TestDSN_SkipsEmpty(t *testing.T) {
	got := DSN(config.DatabaseConfig{DBHost: "db", DBName: "skillgap"})
	if got != "host=db dbname=skillgap" {
		t.Fatalf("unexpected dsn %q", got)
	}
}

func TestConnect_NotConfigured(t *testing.T) {
	if _, err := Connect(context.Background(), config.DatabaseConfig{}); err == nil {
		t.Fatalf("expected error for empty config")
	}
}
