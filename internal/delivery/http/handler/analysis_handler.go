package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"skill-gap/internal/delivery/http/dto"
	"skill-gap/internal/delivery/http/middleware"
	"skill-gap/internal/pkg/response"
	"skill-gap/internal/usecase"
)

const (
	defaultAnalysisLimit = 20
	maxAnalysisLimit     = 100
)

type AnalysisHandler struct {
	uc usecase.AnalysisUsecase
}

func NewAnalysisHandler(uc usecase.AnalysisUsecase) *AnalysisHandler {
	return &AnalysisHandler{uc: uc}
}

func (h *AnalysisHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/:id", h.Get)
	r.Patch("/:id/tasks/:day", h.UpdateTask)
}

func (h *AnalysisHandler) Create(c fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var req dto.AnalysisRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	a, err := h.uc.Run(c.Context(), usecase.AnalysisInput{
		UserID:     userID,
		RoleID:     strings.TrimSpace(req.RoleID),
		JDTitle:    strings.TrimSpace(req.JDTitle),
		JDText:     req.JDText,
		ResumeText: req.ResumeText,
	})
	if err != nil {
		return mapAnalysisUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, dto.NewAnalysisResponse(a))
}

func (h *AnalysisHandler) List(c fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	limit := defaultAnalysisLimit
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > maxAnalysisLimit {
			return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
		}
		limit = v
	}

	items, err := h.uc.List(c.Context(), userID, limit)
	if err != nil {
		return mapAnalysisUsecaseError(err)
	}

	out := make([]dto.AnalysisSummaryResponse, 0, len(items))
	for _, a := range items {
		out = append(out, dto.NewAnalysisSummary(a))
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *AnalysisHandler) Get(c fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusNotFound, "Analysis not found", nil, err)
	}

	a, err := h.uc.Get(c.Context(), userID, id)
	if err != nil {
		return mapAnalysisUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewAnalysisResponse(a))
}

func (h *AnalysisHandler) UpdateTask(c fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusNotFound, "Analysis not found", nil, err)
	}
	day, err := strconv.Atoi(c.Params("day"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	var req dto.TaskUpdateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	plan, err := h.uc.SetTaskCompleted(c.Context(), userID, id, day, *req.Completed)
	if err != nil {
		return mapAnalysisUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewTaskResponses(plan))
}
