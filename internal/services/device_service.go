package services

import (
	"errors"
	"fmt"

	"github.com/coinpoll/coinpoll-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrDeviceIDRequired = errors.New("device id is required")

// DeviceService tracks install-level onboarding state, the only thing known
// about a caller before any identity exists.
type DeviceService struct {
	db *gorm.DB
}

func NewDeviceService(db *gorm.DB) *DeviceService {
	return &DeviceService{db: db}
}

// CheckOnboarding reports whether the device finished onboarding. An unknown
// device has simply not onboarded yet; no row is created.
func (s *DeviceService) CheckOnboarding(deviceID string) (bool, error) {
	if deviceID == "" {
		return false, ErrDeviceIDRequired
	}
	var device models.Device
	err := s.db.First(&device, "device_id = ?", deviceID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return device.OnboardingCompleted, nil
}

// CompleteOnboarding marks the device as onboarded, creating the row if this
// is the first time the device is seen.
func (s *DeviceService) CompleteOnboarding(deviceID string) (bool, error) {
	if deviceID == "" {
		return false, ErrDeviceIDRequired
	}

	var device models.Device
	err := s.db.First(&device, "device_id = ?", deviceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		device = models.Device{
			ID:                  uuid.New(),
			DeviceID:            deviceID,
			OnboardingCompleted: true,
		}
		if err := s.db.Create(&device).Error; err != nil {
			return false, fmt.Errorf("failed to create device: %w", err)
		}
		return true, nil
	}
	if err != nil {
		return false, err
	}

	if !device.OnboardingCompleted {
		if err := s.db.Model(&device).Update("onboarding_completed", true).Error; err != nil {
			return false, err
		}
	}
	return true, nil
}
