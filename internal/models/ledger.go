package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserAnswer is an immutable record of one answered question. Value holds the
// ordered option-id set as a JSON array. Rows are only ever created by the
// submission engine, re-owned by guest migration, or removed by cascade when
// the owning user is deleted.
type UserAnswer struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	SurveyID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"survey_id"`
	QuestionID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"question_id"`
	Value       datatypes.JSON `gorm:"not null" json:"value"`
	CoinsEarned int            `gorm:"default:0" json:"coins_earned"`
	IsCorrect   bool           `gorm:"default:false" json:"is_correct"` // vestigial, always false
	CreatedAt   time.Time      `json:"created_at"`
}

func (a *UserAnswer) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// UserPoint is one append-only coin ledger entry. A user's balance is always
// SUM(amount) over their rows; no stored counter exists anywhere.
type UserPoint struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Amount    int        `gorm:"not null" json:"amount"`
	Reason    string     `gorm:"size:255;not null" json:"reason"`
	SurveyID  *uuid.UUID `gorm:"type:uuid;index" json:"survey_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (p *UserPoint) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// SurveyCompletion marks a completed submission for a (user, survey) pair.
// The unique index is what makes "at most one completed submission" hold
// under concurrent duplicate submissions, not the friendly pre-check.
type SurveyCompletion struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_completions_user_survey" json:"user_id"`
	SurveyID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_completions_user_survey" json:"survey_id"`
	CoinsEarned int       `gorm:"default:0" json:"coins_earned"`
	CreatedAt   time.Time `json:"created_at"`
}

func (c *SurveyCompletion) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
