package handlers

import (
	"errors"

	"github.com/coinpoll/coinpoll-backend/internal/dto"
	"github.com/coinpoll/coinpoll-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type DeviceHandler struct {
	devices *services.DeviceService
}

func NewDeviceHandler(devices *services.DeviceService) *DeviceHandler {
	return &DeviceHandler{devices: devices}
}

// CheckOnboarding handles GET /api/devices/:device_id/onboarding
func (h *DeviceHandler) CheckOnboarding(c *fiber.Ctx) error {
	completed, err := h.devices.CheckOnboarding(c.Params("device_id"))
	if err != nil {
		if errors.Is(err, services.ErrDeviceIDRequired) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	return c.JSON(dto.OnboardingResponse{OnboardingCompleted: completed})
}

// CompleteOnboarding handles POST /api/devices/:device_id/onboarding/complete
func (h *DeviceHandler) CompleteOnboarding(c *fiber.Ctx) error {
	completed, err := h.devices.CompleteOnboarding(c.Params("device_id"))
	if err != nil {
		if errors.Is(err, services.ErrDeviceIDRequired) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	return c.JSON(dto.OnboardingResponse{Success: true, OnboardingCompleted: completed})
}
