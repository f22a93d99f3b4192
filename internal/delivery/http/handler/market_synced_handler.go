package handler

import (
	"context"
	"crypto/subtle"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"skill-gap/internal/delivery/http/middleware"
)

type MarketSyncedRequest struct {
	Source      string `json:"source"`
	Postings    int    `json:"postings"`
	CompletedAt string `json:"completed_at"`
}

type marketCacheInvalidator interface {
	InvalidateMarket(ctx context.Context) error
}

// MarketSyncedHandler is called by an external collector once fresh counts
// are in the database. It drops the cached snapshot and cached analyses.
type MarketSyncedHandler struct {
	token  string
	cache  marketCacheInvalidator
	logger *log.Logger
}

func NewMarketSyncedHandler(token string, cache marketCacheInvalidator, logger *log.Logger) *MarketSyncedHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &MarketSyncedHandler{token: strings.TrimSpace(token), cache: cache, logger: logger}
}

func (h *MarketSyncedHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Post("/market-synced", h.HandleMarketSynced)
}

func (h *MarketSyncedHandler) HandleMarketSynced(c fiber.Ctx) error {
	tok := strings.TrimSpace(c.Get("X-Internal-Token"))
	if h.token == "" || subtle.ConstantTimeCompare([]byte(tok), []byte(h.token)) != 1 {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	var req MarketSyncedRequest
	if err := c.Bind().Body(&req); err != nil {
		h.logger.Printf("[Webhook] bad market-synced body | err=%v", err)
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	req.Source = strings.TrimSpace(req.Source)
	req.CompletedAt = strings.TrimSpace(req.CompletedAt)
	if req.Source == "" || req.Postings < 0 {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, nil)
	}
	if req.CompletedAt != "" {
		if _, err := time.Parse(time.RFC3339, req.CompletedAt); err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
		}
	}

	h.logger.Printf("[Webhook] market synced | source=%s postings=%d", req.Source, req.Postings)

	invalidated := false
	if h.cache != nil {
		if err := h.cache.InvalidateMarket(c.Context()); err != nil {
			h.logger.Printf("[Webhook] cache invalidation failed | err=%v", err)
		} else {
			invalidated = true
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":      "received",
		"source":      req.Source,
		"invalidated": invalidated,
	})
}
