package main

import (
	"github.com/spf13/cobra"

	"skill-gap/internal/pipeline"
)

var countsCmd = &cobra.Command{
	Use:   "counts",
	Short: "Rebuild market_skill_counts from stored postings",
	RunE:  runCounts,
}

var countsWorkers int

func init() {
	countsCmd.Flags().IntVarP(&countsWorkers, "workers", "w", 0, "Extraction workers (defaults to MARKET_SYNC_WORKERS)")
	rootCmd.AddCommand(countsCmd)
}

func runCounts(cmd *cobra.Command, _ []string) error {
	d, err := openDeps(cmd.Context())
	if err != nil {
		return err
	}
	defer d.Close()

	workers := countsWorkers
	if workers <= 0 {
		workers = d.cfg.Market.SyncWorkers
	}

	sync := pipeline.NewMarketSync(nil, pipeline.NewPostingCountsPipeline(d.market, d.market, d.store, d.logger), d.redis, d.logger)
	return sync.Run(cmd.Context(), pipeline.MarketSyncParams{CountWorkers: workers})
}
