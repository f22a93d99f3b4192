package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gofiber/fiber/v3"

	"skill-gap/internal/config"
	"skill-gap/internal/delivery/http/handler"
	"skill-gap/internal/delivery/http/middleware"
	"skill-gap/internal/delivery/http/routes"
	v1 "skill-gap/internal/delivery/http/routes/v1"
	"skill-gap/internal/infrastructure/persistence/postgres"
	"skill-gap/internal/usecase"
	"skill-gap/internal/ws"
)

type App struct {
	Fiber *fiber.App
}

// New builds the fiber app on top of an initialised container.
func New(c *Container) *App {
	f := fiber.New(fiber.Config{
		AppName:   c.Config.App.AppName,
		BodyLimit: 8 << 20,
	})

	registerGlobalMiddleware(f, c.Logger)
	registerRoutes(f, c)

	return &App{Fiber: f}
}

// Bootstrap wires the container, starts the websocket hub and returns a
// cleanup that stops both.
func Bootstrap(cfg config.Config) (*App, func() error, error) {
	logger := log.New(os.Stdout, "", log.LstdFlags|log.Lmicroseconds)

	ctx, cancel := context.WithCancel(context.Background())
	c, err := NewContainer(ctx, cfg, logger)
	if err != nil {
		cancel()
		return nil, nil, err
	}

	go c.Hub.Run(ctx)

	cleanup := func() error {
		cancel()
		return c.Close()
	}
	return New(c), cleanup, nil
}

func registerGlobalMiddleware(app *fiber.App, logger *log.Logger) {
	if app == nil {
		return
	}

	accessMw := middleware.NewAccessLogMiddleware(logger)
	errMw := middleware.NewErrorMiddleware(logger)
	app.Use(accessMw.Middleware())
	app.Use(errMw.Middleware())
}

func registerRoutes(app *fiber.App, c *Container) {
	if app == nil || c == nil {
		return
	}

	users := postgres.NewUserRepository(c.DB)

	authUC := usecase.NewAuthUsecase(users, c.Store, c.JWT, c.Logger)
	roleUC := usecase.NewRoleUsecase(c.Store)
	marketUC := usecase.NewMarketUsecase(c.Source, c.Market, c.DB, c.Redis, c.Logger)
	profileUC := usecase.NewProfileUsecase(c.Store, c.Objects, c.Logger)
	analysisUC := usecase.NewAnalysisUsecase(c.Store, c.Source, c.Redis, c.Logger,
		ws.NewNotifier(c.Hub),
		usecase.PublisherNotifier{Publisher: c.Publisher},
	)

	authMw := middleware.NewAuthMiddleware(c.JWT)

	var internal *handler.MarketSyncedHandler
	if strings.TrimSpace(c.Config.App.InternalToken) != "" {
		internal = handler.NewMarketSyncedHandler(c.Config.App.InternalToken, c.Redis, c.Logger)
	}

	routes.NewRegistry(routes.RegistryParams{
		Health:   handler.NewHealthHandler(c.DB),
		WS:       ws.NewHandler(c.Hub, c.JWT, c.Logger).HandleWS,
		Internal: internal,
		V1: v1.Handlers{
			Auth:     handler.NewAuthHandler(authUC),
			Roles:    handler.NewRoleHandler(roleUC),
			Market:   handler.NewMarketHandler(marketUC),
			Profile:  handler.NewProfileHandler(profileUC),
			Analyses: handler.NewAnalysisHandler(analysisUC),
		},
		RequireAuth: authMw.Middleware(),
	}).Register(app)
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
