package handler

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"skill-gap/internal/delivery/http/dto"
	"skill-gap/internal/pkg/response"
	"skill-gap/internal/usecase"
)

type RoleHandler struct {
	uc usecase.RoleUsecase
}

func NewRoleHandler(uc usecase.RoleUsecase) *RoleHandler {
	return &RoleHandler{uc: uc}
}

func (h *RoleHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/", h.List)
	r.Get("/:id", h.Get)
}

func (h *RoleHandler) List(c fiber.Ctx) error {
	roles, err := h.uc.List(c.Context(), strings.TrimSpace(c.Query("q")))
	if err != nil {
		return mapRoleUsecaseError(err)
	}

	out := make([]dto.RoleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, dto.NewRoleResponse(r, false))
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *RoleHandler) Get(c fiber.Ctx) error {
	role, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return mapRoleUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewRoleResponse(role, true))
}
