// Command marketsync refreshes the market demand counts the scoring engine
// reads: it collects postings, counts skills in them and imports CSV datasets.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"skill-gap/internal/config"
	"skill-gap/internal/database"
	"skill-gap/internal/database/migration"
	dbpostgres "skill-gap/internal/database/postgres"
	"skill-gap/internal/infrastructure/cache"
	"skill-gap/internal/repository"
)

var rootCmd = &cobra.Command{
	Use:           "marketsync",
	Short:         "Refresh market skill demand counts",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type deps struct {
	cfg    config.Config
	logger *log.Logger
	db     database.DB
	market *repository.PostgresMarketRepository
	store  *repository.PostgresStore
	redis  *cache.Redis
}

func (d *deps) Close() {
	if d.redis != nil {
		_ = d.redis.Close()
	}
	if d.db != nil {
		_ = d.db.Close()
	}
}

// openDeps connects to Postgres, applies pending migrations and opens Redis.
// Redis is optional; without it cache invalidation is a logged no-op.
func openDeps(ctx context.Context) (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := log.New(os.Stdout, "", log.LstdFlags)

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	db, err := dbpostgres.Connect(connectCtx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	runner := migration.Runner{Dir: cfg.App.MigrationsDir, Logger: logger}
	if err := runner.Run(ctx, db.SQLDB()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &deps{
		cfg:    cfg,
		logger: logger,
		db:     db,
		market: repository.NewPostgresMarketRepository(db),
		store:  repository.NewPostgresStore(db),
		redis:  cache.NewRedis(cfg.Redis, logger),
	}, nil
}
