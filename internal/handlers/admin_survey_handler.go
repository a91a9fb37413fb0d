package handlers

import (
	"errors"

	"github.com/coinpoll/coinpoll-backend/internal/dto"
	"github.com/coinpoll/coinpoll-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// AdminSurveyHandler is the thin catalog-authoring API. Surveys are authored
// here and served to participants read-only.
type AdminSurveyHandler struct {
	surveys *services.SurveyService
}

func NewAdminSurveyHandler(surveys *services.SurveyService) *AdminSurveyHandler {
	return &AdminSurveyHandler{surveys: surveys}
}

// ListSurveys handles GET /api/admin/surveys
func (h *AdminSurveyHandler) ListSurveys(c *fiber.Ctx) error {
	surveys, err := h.surveys.ListSurveys()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}
	return c.JSON(fiber.Map{"surveys": surveys})
}

// GetSurvey handles GET /api/admin/surveys/:id
func (h *AdminSurveyHandler) GetSurvey(c *fiber.Ctx) error {
	surveyID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badID(c)
	}

	survey, err := h.surveys.GetSurvey(surveyID)
	if err != nil {
		return surveyError(c, err)
	}
	return c.JSON(survey)
}

// CreateSurvey handles POST /api/admin/surveys
func (h *AdminSurveyHandler) CreateSurvey(c *fiber.Ctx) error {
	var req dto.UpsertSurveyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	survey, err := h.surveys.CreateSurvey(&req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(survey)
}

// UpdateSurvey handles PUT /api/admin/surveys/:id
func (h *AdminSurveyHandler) UpdateSurvey(c *fiber.Ctx) error {
	surveyID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badID(c)
	}

	var req dto.UpsertSurveyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	survey, err := h.surveys.UpdateSurvey(c.Context(), surveyID, &req)
	if err != nil {
		return surveyError(c, err)
	}
	return c.JSON(survey)
}

// DeleteSurvey handles DELETE /api/admin/surveys/:id
func (h *AdminSurveyHandler) DeleteSurvey(c *fiber.Ctx) error {
	surveyID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badID(c)
	}

	if err := h.surveys.DeleteSurvey(c.Context(), surveyID); err != nil {
		return surveyError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Survey deleted"})
}

// SetGuestSurvey handles PUT /api/admin/surveys/:id/guest
func (h *AdminSurveyHandler) SetGuestSurvey(c *fiber.Ctx) error {
	surveyID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badID(c)
	}

	survey, err := h.surveys.SetGuestSurvey(c.Context(), surveyID)
	if err != nil {
		return surveyError(c, err)
	}
	return c.JSON(survey)
}

func badID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: "Invalid survey id",
	})
}

func surveyError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrSurveyNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrSurveyTypeUnknown):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}
}
