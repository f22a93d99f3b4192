package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"

	"skill-gap/internal/delivery/http/dto"
	"skill-gap/internal/delivery/http/middleware"
	"skill-gap/internal/pkg/response"
	"skill-gap/internal/usecase"
)

type MarketHandler struct {
	uc usecase.MarketUsecase
}

func NewMarketHandler(uc usecase.MarketUsecase) *MarketHandler {
	return &MarketHandler{uc: uc}
}

func (h *MarketHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/", h.Get)
	r.Get("/status", h.Status)
}

func (h *MarketHandler) Get(c fiber.Ctx) error {
	top := 0
	if raw := strings.TrimSpace(c.Query("top")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
		}
		top = v
	}

	m, err := h.uc.GetMarket(c.Context(), top)
	if err != nil {
		return mapMarketUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewMarketResponse(m))
}

func (h *MarketHandler) Status(c fiber.Ctx) error {
	st, err := h.uc.GetStatus(c.Context())
	if err != nil {
		return mapMarketUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewMarketStatusResponse(st))
}
