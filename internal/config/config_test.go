package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("APP_NAME", "skill-gap")
	t.Setenv("APP_ENV", "test")
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("JWT_ACCESS_SECRET", "access")
	t.Setenv("JWT_REFRESH_SECRET", "refresh")
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("APP_NAME", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("JWT_ACCESS_SECRET", "x")
	t.Setenv("JWT_REFRESH_SECRET", "y")

	_, err := Load()
	if !errors.Is(err, errMissingRequiredEnv) {
		t.Fatalf("expected errMissingRequiredEnv, got %v", err)
	}
	if !strings.Contains(err.Error(), "APP_NAME") || !strings.Contains(err.Error(), "APP_ENV") {
		t.Fatalf("expected both keys listed, got %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("MARKET_CACHE_TTL", "")
	t.Setenv("JWT_ACCESS_EXPIRES_IN", "")
	t.Setenv("AMQP_EXCHANGE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.Market.CacheTTL != 5*time.Minute {
		t.Fatalf("expected 5m market cache ttl, got %s", cfg.Market.CacheTTL)
	}
	if cfg.JWT.AccessExpiresIn != 15*time.Minute {
		t.Fatalf("expected 15m access ttl, got %s", cfg.JWT.AccessExpiresIn)
	}
	if cfg.Events.Exchange != "analysis_events" {
		t.Fatalf("unexpected exchange %q", cfg.Events.Exchange)
	}
}

func TestLoad_DurationsAcceptSecondsOrDuration(t *testing.T) {
	setRequired(t)
	t.Setenv("MARKET_FETCH_TIMEOUT", "3")
	t.Setenv("MARKET_CACHE_TTL", "90s")
	t.Setenv("DB_POOL_MAX_CONNS", "bogus")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.Market.FetchTimeout != 3*time.Second {
		t.Fatalf("expected 3s, got %s", cfg.Market.FetchTimeout)
	}
	if cfg.Market.CacheTTL != 90*time.Second {
		t.Fatalf("expected 90s, got %s", cfg.Market.CacheTTL)
	}
	if cfg.Database.PoolMaxConns != 10 {
		t.Fatalf("expected default pool size, got %d", cfg.Database.PoolMaxConns)
	}
}
