package main

import (
	"github.com/spf13/cobra"

	"skill-gap/internal/usecase"
)

var marketCmd = &cobra.Command{
	Use:   "market",
	Short: "Print top skills, emerging skills and common combinations",
	RunE:  runMarket,
}

var (
	marketCSV string
	marketTop int
)

func init() {
	marketCmd.Flags().StringVar(&marketCSV, "csv", "", "Path to a skill,count CSV (uses the built-in table when empty)")
	marketCmd.Flags().IntVarP(&marketTop, "top", "n", 20, "Number of top skills to print")
	rootCmd.AddCommand(marketCmd)
}

func runMarket(cmd *cobra.Command, _ []string) error {
	uc := usecase.NewMarketUsecase(marketLoader(marketCSV), nil, nil, nil, newLogger())
	m, err := uc.GetMarket(cmd.Context(), marketTop)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), m)
}
