package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"skill-gap/internal/pipeline"
	"skill-gap/internal/scraper"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Scrape careers pages, recount skills and invalidate caches",
	Long:  "Visits every target in the targets JSON file and every named feed, stores new postings, rebuilds market_skill_counts from all stored postings and drops cached market data.",
	RunE:  runCollect,
}

var (
	collectTargets string
	collectFeeds   []string
	collectPages   int
	collectWorkers int
)

func init() {
	collectCmd.Flags().StringVarP(&collectTargets, "targets", "t", "", "Path to a JSON array of scrape targets")
	collectCmd.Flags().StringSliceVar(&collectFeeds, "feeds", nil, "JSON job feeds to pull, e.g. devto")
	collectCmd.Flags().IntVarP(&collectPages, "pages", "p", 1, "Listing pages per target")
	collectCmd.Flags().IntVarP(&collectWorkers, "workers", "w", 0, "Worker count for detail pages and counting (defaults to MARKET_SYNC_WORKERS)")

	collectCmd.MarkFlagsOneRequired("targets", "feeds")

	rootCmd.AddCommand(collectCmd)
}

func loadTargets(path string) ([]scraper.Target, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read targets %s: %w", path, err)
	}
	var targets []scraper.Target
	if err := json.Unmarshal(raw, &targets); err != nil {
		return nil, fmt.Errorf("parse targets %s: %w", path, err)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("targets %s: no targets", path)
	}
	return targets, nil
}

func runCollect(cmd *cobra.Command, _ []string) error {
	var targets []scraper.Target
	if collectTargets != "" {
		t, err := loadTargets(collectTargets)
		if err != nil {
			return err
		}
		targets = t
	}
	feeds, err := scraper.FeedsByName(collectFeeds)
	if err != nil {
		return err
	}

	d, err := openDeps(cmd.Context())
	if err != nil {
		return err
	}
	defer d.Close()

	workers := collectWorkers
	if workers <= 0 {
		workers = d.cfg.Market.SyncWorkers
	}

	collector := scraper.NewCollector(d.market, workers, d.cfg.Market.SyncRPS, d.logger)
	counts := pipeline.NewPostingCountsPipeline(d.market, d.market, d.store, d.logger)
	sync := pipeline.NewMarketSync(collector, counts, d.redis, d.logger)

	return sync.Run(cmd.Context(), pipeline.MarketSyncParams{
		Targets:      targets,
		Feeds:        feeds,
		Pages:        collectPages,
		CountWorkers: workers,
	})
}
