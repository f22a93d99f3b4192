package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"skill-gap/internal/infrastructure/market"
	"skill-gap/internal/pipeline"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Replace market_skill_counts with a skill,count CSV",
	Long:  "Reads a skill,count CSV from a file or URL and replaces the stored counts. Falls back to MARKET_DATASET_PATH / MARKET_DATASET_URL when no flag is given.",
	RunE:  runImport,
}

var (
	importFile string
	importURL  string
)

func init() {
	importCmd.Flags().StringVarP(&importFile, "csv", "f", "", "Path to a skill,count CSV file")
	importCmd.Flags().StringVarP(&importURL, "url", "u", "", "URL of a skill,count CSV")
	importCmd.MarkFlagsMutuallyExclusive("csv", "url")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, _ []string) error {
	d, err := openDeps(cmd.Context())
	if err != nil {
		return err
	}
	defer d.Close()

	file := strings.TrimSpace(importFile)
	url := strings.TrimSpace(importURL)
	if file == "" && url == "" {
		file, url = d.cfg.Market.DatasetPath, d.cfg.Market.DatasetURL
	}

	var src market.DatasetClient
	switch {
	case file != "":
		src = market.NewFileDatasetClient(file)
	case url != "":
		src = market.NewDatasetClient(url, d.cfg.Market.FetchTimeout, d.logger)
	}
	if src == nil {
		return errors.New("no dataset: pass --csv or --url, or set MARKET_DATASET_PATH / MARKET_DATASET_URL")
	}

	n, err := pipeline.ImportCounts(cmd.Context(), src, d.market, d.redis, d.logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d skills\n", n)
	return nil
}
