package market

import (
	"context"
	"fmt"
	"log"
	"time"

	"skill-gap/internal/config"
	"skill-gap/internal/domain/skillgap"
	"skill-gap/internal/infrastructure/cache"
)

const countsCacheKey = cache.KeyPrefixMarket + "counts"

type Cache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

type CountLoader interface {
	LoadSkillCounts(ctx context.Context) (map[string]int, error)
}

// Source resolves raw demand counts from the cheapest place that has them:
// Redis, then the market_skill_counts table, then the configured CSV dataset.
type Source struct {
	cache    Cache
	repo     CountLoader
	datasets []DatasetClient
	ttl      time.Duration
	timeout  time.Duration
	log      *log.Logger
}

func NewSource(cfg config.MarketConfig, c Cache, repo CountLoader, logger *log.Logger) *Source {
	if logger == nil {
		logger = log.Default()
	}
	datasets := make([]DatasetClient, 0, 2)
	if d := NewFileDatasetClient(cfg.DatasetPath); d != nil {
		datasets = append(datasets, d)
	}
	if d := NewDatasetClient(cfg.DatasetURL, cfg.FetchTimeout, logger); d != nil {
		datasets = append(datasets, d)
	}
	return newSource(c, repo, datasets, cfg.CacheTTL, cfg.FetchTimeout, logger)
}

func newSource(c Cache, repo CountLoader, datasets []DatasetClient, ttl, timeout time.Duration, logger *log.Logger) *Source {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Source{cache: c, repo: repo, datasets: datasets, ttl: ttl, timeout: timeout, log: logger}
}

// Load returns raw skill counts or skillgap.ErrMarketDataUnavailable when no
// source produced any rows. The whole lookup is bounded by the fetch timeout.
func (s *Source) Load(ctx context.Context) (map[string]int, error) {
	if s == nil {
		return nil, skillgap.ErrMarketDataUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if s.cache != nil {
		var cached map[string]int
		hit, err := s.cache.GetJSON(ctx, countsCacheKey, &cached)
		if err != nil {
			s.log.Printf("[Market] cache read failed: %v", err)
		}
		if hit && len(cached) > 0 {
			return cached, nil
		}
	}

	counts, from, err := s.loadUncached(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, countsCacheKey, counts, s.ttl); err != nil {
			s.log.Printf("[Market] cache write failed: %v", err)
		}
	}
	s.log.Printf("[Market] counts loaded | source=%s skills=%d", from, len(counts))
	return counts, nil
}

func (s *Source) loadUncached(ctx context.Context) (map[string]int, string, error) {
	var lastErr error
	if s.repo != nil {
		counts, err := s.repo.LoadSkillCounts(ctx)
		if err == nil && len(counts) > 0 {
			return counts, "database", nil
		}
		if err != nil {
			lastErr = err
			s.log.Printf("[Market] database counts unavailable: %v", err)
		}
	}
	for _, d := range s.datasets {
		counts, err := d.Fetch(ctx)
		if err == nil && len(counts) > 0 {
			return counts, "dataset", nil
		}
		if err != nil {
			lastErr = err
			s.log.Printf("[Market] dataset unavailable: %v", err)
		}
	}
	if lastErr != nil {
		return nil, "", fmt.Errorf("%w: %v", skillgap.ErrMarketDataUnavailable, lastErr)
	}
	return nil, "", skillgap.ErrMarketDataUnavailable
}
