package pipeline

import (
	"context"
	"log"
	"time"

	"skill-gap/internal/infrastructure/market"
	"skill-gap/internal/scraper"
)

type CacheInvalidator interface {
	InvalidateMarket(ctx context.Context) error
}

// MarketSync runs collection, counting and cache invalidation in order. A
// failed step is logged and the remaining steps still run.
type MarketSync struct {
	collector *scraper.Collector
	counts    *PostingCountsPipeline
	cache     CacheInvalidator
	log       *log.Logger
}

type MarketSyncParams struct {
	Targets      []scraper.Target
	Feeds        []scraper.FeedSource
	Pages        int
	CountWorkers int
}

func NewMarketSync(collector *scraper.Collector, counts *PostingCountsPipeline, cache CacheInvalidator, logger *log.Logger) *MarketSync {
	if logger == nil {
		logger = log.Default()
	}
	return &MarketSync{collector: collector, counts: counts, cache: cache, log: logger}
}

func (p *MarketSync) Run(ctx context.Context, params MarketSyncParams) error {
	if p == nil {
		return nil
	}
	start := time.Now()
	p.log.Printf("pipeline=market_sync status=started targets=%d feeds=%d", len(params.Targets), len(params.Feeds))
	defer func() {
		p.log.Printf("pipeline=market_sync status=finished duration=%s", time.Since(start))
	}()

	if p.collector != nil && len(params.Targets) > 0 {
		sums, err := p.collector.Collect(ctx, params.Targets, params.Pages)
		if err != nil {
			p.log.Printf("pipeline=market_sync step=collect status=error err=%v", err)
		}
		for _, s := range sums {
			p.log.Printf("pipeline=market_sync step=collect source=%s found=%d inserted=%d errors=%d", s.Source, s.Found, s.Inserted, s.Errors)
		}
	}

	if p.collector != nil && len(params.Feeds) > 0 {
		sums, err := p.collector.CollectFeeds(ctx, params.Feeds)
		if err != nil {
			p.log.Printf("pipeline=market_sync step=feeds status=error err=%v", err)
		}
		for _, s := range sums {
			p.log.Printf("pipeline=market_sync step=feeds source=%s found=%d inserted=%d errors=%d", s.Source, s.Found, s.Inserted, s.Errors)
		}
	}

	var countErr error
	if p.counts != nil {
		res, err := p.counts.Run(ctx, RunParams{Workers: params.CountWorkers})
		if err != nil {
			countErr = err
			p.log.Printf("pipeline=market_sync step=counts status=error err=%v", err)
		} else {
			p.log.Printf("pipeline=market_sync step=counts status=ok postings=%d skills=%d", res.Postings, len(res.Counts))
		}
	}

	if countErr == nil {
		p.invalidate(ctx)
	}
	return countErr
}

func (p *MarketSync) invalidate(ctx context.Context) {
	if p.cache == nil {
		return
	}
	if err := p.cache.InvalidateMarket(ctx); err != nil {
		p.log.Printf("pipeline=market_sync step=invalidate status=error err=%v", err)
	}
}

// ImportCounts loads a skill,count dataset and replaces the stored counts
// with it, bypassing posting collection entirely.
func ImportCounts(ctx context.Context, src market.DatasetClient, w CountWriter, cache CacheInvalidator, logger *log.Logger) (int, error) {
	if logger == nil {
		logger = log.Default()
	}
	counts, err := src.Fetch(ctx)
	if err != nil {
		return 0, err
	}
	if len(counts) == 0 {
		return 0, market.ErrEmptyDataset
	}
	if err := w.ReplaceSkillCounts(ctx, counts); err != nil {
		return 0, err
	}
	if cache != nil {
		if err := cache.InvalidateMarket(ctx); err != nil {
			logger.Printf("pipeline=market_import step=invalidate status=error err=%v", err)
		}
	}
	logger.Printf("pipeline=market_import status=done skills=%d", len(counts))
	return len(counts), nil
}
