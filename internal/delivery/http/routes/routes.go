package routes

import (
	"github.com/gofiber/fiber/v3"

	"skill-gap/internal/delivery/http/handler"
	v1 "skill-gap/internal/delivery/http/routes/v1"
)

type Registry struct {
	health      *handler.HealthHandler
	ws          fiber.Handler
	internal    *handler.MarketSyncedHandler
	v1          v1.Handlers
	requireAuth fiber.Handler
}

type RegistryParams struct {
	Health      *handler.HealthHandler
	WS          fiber.Handler
	Internal    *handler.MarketSyncedHandler
	V1          v1.Handlers
	RequireAuth fiber.Handler
}

func NewRegistry(p RegistryParams) *Registry {
	return &Registry{
		health:      p.Health,
		ws:          p.WS,
		internal:    p.Internal,
		v1:          p.V1,
		requireAuth: p.RequireAuth,
	}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerHealth(app)
	r.registerRealtime(app)
	r.registerInternal(app)
	r.registerAPI(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	if r.health != nil {
		r.health.RegisterRoutes(app)
	}
}

func (r *Registry) registerRealtime(app *fiber.App) {
	if r.ws != nil {
		app.Get("/ws", r.ws)
	}
}

func (r *Registry) registerInternal(app *fiber.App) {
	if r.internal != nil {
		r.internal.RegisterRoutes(app.Group("/internal"))
	}
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")
	RegisterV1(api.Group("/v1"), r.v1, r.requireAuth)
}
