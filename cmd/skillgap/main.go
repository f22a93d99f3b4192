// Command skillgap runs the scoring engine offline against a local SQLite
// catalog. Nothing here needs Postgres, Redis or network access.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"skill-gap/internal/config"
	"skill-gap/internal/infrastructure/market"
	"skill-gap/internal/infrastructure/persistence/sqlite"
	"skill-gap/internal/usecase"
)

// localUser owns every profile and analysis stored by the CLI.
var localUser = uuid.NewSHA1(uuid.NameSpaceOID, []byte("skillgap.local"))

var rootCmd = &cobra.Command{
	Use:           "skillgap",
	Short:         "Score a profile against an internship role",
	Long:          "skillgap scores your skills, job description and resume against a catalog role, explains the gaps with market demand and builds a 14-day learning plan.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	dataDir string
	verbose bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Directory holding skillgap.db (defaults to SKILLGAP_DATA_DIR or .skillgap)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log engine activity to stderr")
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger() *log.Logger {
	if verbose {
		return log.New(os.Stderr, "", log.LstdFlags)
	}
	return log.New(io.Discard, "", 0)
}

func openStore() (*sqlite.Store, error) {
	dir := dataDir
	if dir == "" {
		dir = config.LoadLocal().DataDir
	}
	return sqlite.Open(dir)
}

// csvMarket adapts a dataset file to the usecase market loader.
type csvMarket struct {
	client market.DatasetClient
}

func (m csvMarket) Load(ctx context.Context) (map[string]int, error) {
	return m.client.Fetch(ctx)
}

// marketLoader returns nil without a path so callers use the fallback table.
func marketLoader(path string) usecase.MarketLoader {
	c := market.NewFileDatasetClient(path)
	if c == nil {
		return nil
	}
	return csvMarket{client: c}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
