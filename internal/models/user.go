package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User kinds. A guest is a regular user row tagged UserKindGuest; it carries
// no password hash and therefore can never authenticate.
const (
	UserKindRegistered = "registered"
	UserKindGuest      = "guest"
)

// User is a registered account or a guest placeholder identity.
// At least one of Email/Phone is set; each is globally unique when present.
type User struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email     *string        `gorm:"size:255;uniqueIndex" json:"email,omitempty"`
	Phone     *string        `gorm:"size:32;uniqueIndex" json:"phone,omitempty"`
	Password  string         `gorm:"size:255" json:"-"`
	Name      string         `gorm:"size:100" json:"name"`
	Role      string         `gorm:"size:20;default:'user'" json:"role"`
	Kind      string         `gorm:"size:20;not null;default:'registered';index" json:"kind"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// IsGuest reports whether this user is a guest placeholder identity.
func (u *User) IsGuest() bool {
	return u.Kind == UserKindGuest
}
