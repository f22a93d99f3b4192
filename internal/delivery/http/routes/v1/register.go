package v1

import (
	"github.com/gofiber/fiber/v3"

	"skill-gap/internal/delivery/http/handler"
)

type Handlers struct {
	Auth     *handler.AuthHandler
	Roles    *handler.RoleHandler
	Market   *handler.MarketHandler
	Profile  *handler.ProfileHandler
	Analyses *handler.AnalysisHandler
}

// Register mounts the public groups first, then everything that needs a
// valid access token behind requireAuth.
func Register(r fiber.Router, h Handlers, requireAuth fiber.Handler) {
	if r == nil {
		return
	}

	if h.Auth != nil {
		h.Auth.RegisterRoutes(r.Group("/auth"))
	}
	if h.Roles != nil {
		h.Roles.RegisterRoutes(r.Group("/roles"))
	}
	if h.Market != nil {
		h.Market.RegisterRoutes(r.Group("/market"))
	}

	if requireAuth == nil {
		return
	}
	if h.Profile != nil {
		h.Profile.RegisterRoutes(r.Group("/profile", requireAuth))
	}
	if h.Analyses != nil {
		h.Analyses.RegisterRoutes(r.Group("/analyses", requireAuth))
	}
}
