package handlers

import (
	"strconv"

	"github.com/coinpoll/coinpoll-backend/internal/dto"
	"github.com/coinpoll/coinpoll-backend/internal/middleware"
	"github.com/coinpoll/coinpoll-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type PointsHandler struct {
	points *services.PointsService
}

func NewPointsHandler(points *services.PointsService) *PointsHandler {
	return &PointsHandler{points: points}
}

// GetBalance handles GET /api/points/balance
func (h *PointsHandler) GetBalance(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	balance, err := h.points.Balance(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	return c.JSON(dto.BalanceResponse{Balance: balance})
}

// GetHistory handles GET /api/points/history
func (h *PointsHandler) GetHistory(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	points, total, err := h.points.History(userID, limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	return c.JSON(fiber.Map{
		"points": points,
		"total":  total,
	})
}
