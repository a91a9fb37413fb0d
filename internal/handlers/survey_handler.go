package handlers

import (
	"errors"

	"github.com/coinpoll/coinpoll-backend/internal/dto"
	"github.com/coinpoll/coinpoll-backend/internal/middleware"
	"github.com/coinpoll/coinpoll-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SurveyHandler serves the guest survey and both submission paths.
type SurveyHandler struct {
	surveys     *services.SurveyService
	submissions *services.SubmissionService
	guests      *services.GuestService
}

func NewSurveyHandler(surveys *services.SurveyService, submissions *services.SubmissionService, guests *services.GuestService) *SurveyHandler {
	return &SurveyHandler{surveys: surveys, submissions: submissions, guests: guests}
}

// GetGuestSurvey handles GET /api/surveys/guest
func (h *SurveyHandler) GetGuestSurvey(c *fiber.Ctx) error {
	resp, err := h.surveys.GetGuestSurvey(c.Context())
	if err != nil {
		if errors.Is(err, services.ErrNoGuestSurvey) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}
	return c.JSON(resp)
}

// SubmitGuestAnswers handles POST /api/surveys/guest/submit. The caller needs
// no credential; an omitted guest_user_id creates a fresh guest identity whose
// id is echoed back so the client can carry it into signup later.
func (h *SurveyHandler) SubmitGuestAnswers(c *fiber.Ctx) error {
	var req dto.GuestSubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	surveyID, err := uuid.Parse(req.SurveyID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid survey_id",
		})
	}

	guest, err := h.guests.ResolveOrCreateGuest(req.GuestUserID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	// Guest submissions skip the duplicate check: the client flow submits
	// once by construction, and a guest has nothing to replay into.
	result, err := h.submissions.Submit(guest.ID, surveyID, req.Answers, false)
	if err != nil {
		return submissionError(c, err)
	}

	return c.JSON(dto.GuestSubmitResponse{
		Success:          true,
		TotalCoinsEarned: result.TotalCoinsEarned,
		GuestUserID:      guest.ID,
	})
}

// SubmitSurveyAnswers handles POST /api/surveys/:id/submit (JWT required).
func (h *SurveyHandler) SubmitSurveyAnswers(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	surveyID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid survey id",
		})
	}

	var req dto.SubmitAnswersRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	result, err := h.submissions.Submit(userID, surveyID, req.Answers, true)
	if err != nil {
		return submissionError(c, err)
	}

	return c.JSON(dto.SubmitResponse{
		Success:          true,
		TotalCoinsEarned: result.TotalCoinsEarned,
	})
}

func submissionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrSurveyNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrSurveyNotPublished):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrAlreadyAnswered):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}
}
