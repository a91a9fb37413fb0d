package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Survey types.
const (
	SurveyTypeGuest = "guest" // disposable, shown to anonymous participants
	SurveyTypeDaily = "daily" // recurring
)

// Question types.
const (
	QuestionTypeSingleSelect = "single_select"
	QuestionTypeMultiSelect  = "multi_select"
	QuestionTypeBoolean      = "boolean"
	QuestionTypeRating       = "rating"
)

// Survey is an authored question set with a completion coin reward.
// At most one survey has IsGuestSurvey=true at a time; SurveyService
// enforces that by unsetting all others inside the designation transaction.
type Survey struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title         string         `gorm:"size:255;not null" json:"title"`
	Description   string         `gorm:"type:text" json:"description"`
	Type          string         `gorm:"size:20;not null;default:'daily';index" json:"type"`
	IsPublished   bool           `gorm:"default:false;index" json:"is_published"`
	IsGuestSurvey bool           `gorm:"default:false;index" json:"is_guest_survey"`
	CoinsReward   int            `gorm:"default:0" json:"coins_reward"`
	Questions     []Question     `gorm:"foreignKey:SurveyID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (s *Survey) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Question belongs to one survey and carries a flat per-answer coin reward.
type Question struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SurveyID    uuid.UUID `gorm:"type:uuid;not null;index" json:"survey_id"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	Type        string    `gorm:"size:20;not null;default:'single_select'" json:"type"`
	CoinsReward int       `gorm:"default:0" json:"coins_reward"`
	Explanation string    `gorm:"type:text" json:"explanation,omitempty"`
	Position    int       `gorm:"default:0" json:"position"`
	Options     []Option  `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"options,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// Option is one selectable choice of a question.
type Option struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuestionID uuid.UUID `gorm:"type:uuid;not null;index" json:"question_id"`
	Text       string    `gorm:"size:500;not null" json:"text"`
	Emoji      string    `gorm:"size:16" json:"emoji,omitempty"`
	Position   int       `gorm:"default:0" json:"position"`
	CreatedAt  time.Time `json:"created_at"`
}

func (o *Option) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
