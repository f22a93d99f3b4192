package handler

import (
	"io"

	"github.com/gofiber/fiber/v3"

	"skill-gap/internal/delivery/http/dto"
	"skill-gap/internal/delivery/http/middleware"
	"skill-gap/internal/infrastructure/resumetext"
	"skill-gap/internal/pkg/response"
	"skill-gap/internal/usecase"
)

const resumeFormField = "file"

type ProfileHandler struct {
	uc usecase.ProfileUsecase
}

func NewProfileHandler(uc usecase.ProfileUsecase) *ProfileHandler {
	return &ProfileHandler{uc: uc}
}

func (h *ProfileHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/", h.Get)
	r.Put("/", h.Put)
	r.Post("/resume", h.UploadResume)
}

func (h *ProfileHandler) Get(c fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	p, err := h.uc.Get(c.Context(), userID)
	if err != nil {
		return mapProfileUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewProfileResponse(p))
}

func (h *ProfileHandler) Put(c fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var req dto.ProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	p, err := h.uc.Upsert(c.Context(), userID, usecase.ProfileInput{
		IsStudent:   req.IsStudent,
		Year:        req.Year,
		Major:       req.Major,
		Skills:      req.Skills,
		Coursework:  req.Coursework,
		Experiences: req.Experiences,
	})
	if err != nil {
		return mapProfileUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewProfileResponse(p))
}

func (h *ProfileHandler) UploadResume(c fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile(resumeFormField)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Resume file is required", nil, err)
	}
	if fh.Size > resumetext.MaxUploadBytes {
		return mapProfileUsecaseError(usecase.ErrResumeTooLarge)
	}

	f, err := fh.Open()
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	defer f.Close()

	// one byte past the limit is enough to reject
	data, err := io.ReadAll(io.LimitReader(f, resumetext.MaxUploadBytes+1))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	res, err := h.uc.UploadResume(c.Context(), userID, usecase.ResumeUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		return mapProfileUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.ResumeResponse{
		Profile:         dto.NewProfileResponse(res.Profile),
		Characters:      len([]rune(res.Text)),
		SuggestedSkills: nonNil(res.SuggestedSkills),
		Archived:        res.Archived,
	})
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
