package app

import (
	"context"
	"errors"
	"log"
	"time"

	"skill-gap/internal/config"
	"skill-gap/internal/database"
	"skill-gap/internal/database/migration"
	dbpostgres "skill-gap/internal/database/postgres"
	"skill-gap/internal/database/seeder"
	"skill-gap/internal/infrastructure/cache"
	"skill-gap/internal/infrastructure/events"
	"skill-gap/internal/infrastructure/market"
	"skill-gap/internal/infrastructure/objectstore"
	"skill-gap/internal/pkg/jwt"
	"skill-gap/internal/repository"
	"skill-gap/internal/ws"
)

// Container owns every long-lived dependency of the HTTP service.
type Container struct {
	Config    config.Config
	Logger    *log.Logger
	DB        database.DB
	Redis     *cache.Redis
	Store     *repository.PostgresStore
	Market    *repository.PostgresMarketRepository
	Source    *market.Source
	Objects   objectstore.Store
	Publisher events.Publisher
	Hub       *ws.Hub
	JWT       jwt.Service
}

func NewContainer(ctx context.Context, cfg config.Config, logger *log.Logger) (*Container, error) {
	if logger == nil {
		logger = log.Default()
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(connectCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	c := &Container{Config: cfg, Logger: logger, DB: db}

	runner := migration.Runner{Dir: cfg.App.MigrationsDir, Logger: logger}
	if err := runner.Run(ctx, db.SQLDB()); err != nil {
		_ = c.Close()
		return nil, err
	}
	if cfg.App.SeedOnStart {
		if err := (seeder.Runner{Seeders: seeder.Defaults()}).Run(ctx, db); err != nil {
			_ = c.Close()
			return nil, err
		}
		logger.Printf("[Seeder] catalog seeded")
	}

	c.Redis = cache.NewRedis(cfg.Redis, logger)
	c.Store = repository.NewPostgresStore(db)
	c.Market = repository.NewPostgresMarketRepository(db)
	c.Source = market.NewSource(cfg.Market, c.Redis, c.Market, logger)

	s3, err := objectstore.NewS3(ctx, cfg.Storage)
	switch {
	case errors.Is(err, objectstore.ErrDisabled):
		logger.Printf("[Storage] resume archive disabled")
	case err != nil:
		logger.Printf("[Storage] resume archive unavailable | err=%v", err)
	default:
		c.Objects = s3
	}

	pub, err := events.NewPublisher(cfg.Events, logger)
	if err != nil {
		logger.Printf("[Events] publisher unavailable, continuing without | err=%v", err)
		pub = events.NopPublisher{}
	}
	c.Publisher = pub

	c.Hub = ws.NewHub(logger)
	c.JWT = jwt.NewHMACService(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiresIn,
		cfg.JWT.RefreshExpiresIn,
	)

	return c, nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Publisher != nil {
		errs = append(errs, c.Publisher.Close())
	}
	if c.Redis != nil {
		errs = append(errs, c.Redis.Close())
	}
	if c.DB != nil {
		errs = append(errs, c.DB.Close())
	}
	return errors.Join(errs...)
}
