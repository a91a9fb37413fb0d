package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Device tracks install-level state that exists before any identity does.
// The only thing it holds is whether the onboarding flow has been completed.
type Device struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DeviceID            string    `gorm:"size:255;not null;uniqueIndex" json:"device_id"`
	OnboardingCompleted bool      `gorm:"default:false" json:"onboarding_completed"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (d *Device) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
