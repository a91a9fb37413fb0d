package dto

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// AnswerValue is an ordered set of option ids. Clients send either a single
// string or an array of strings; both normalize to the array form.
type AnswerValue []string

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*v = AnswerValue{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*v = AnswerValue(many)
		return nil
	}
	return fmt.Errorf("answer must be a string or an array of strings")
}

// AnswerItem is one submitted answer in a batch.
type AnswerItem struct {
	QuestionID string      `json:"question_id"`
	Answer     AnswerValue `json:"answer"`
}

type SubmitAnswersRequest struct {
	Answers []AnswerItem `json:"answers"`
}

type GuestSubmitRequest struct {
	SurveyID    string       `json:"survey_id"`
	Answers     []AnswerItem `json:"answers"`
	GuestUserID string       `json:"guest_user_id,omitempty"`
}

type SubmitResponse struct {
	Success          bool `json:"success"`
	TotalCoinsEarned int  `json:"total_coins_earned"`
}

type GuestSubmitResponse struct {
	Success          bool      `json:"success"`
	TotalCoinsEarned int       `json:"total_coins_earned"`
	GuestUserID      uuid.UUID `json:"guest_user_id"`
}

type OptionPayload struct {
	ID    uuid.UUID `json:"id"`
	Text  string    `json:"text"`
	Emoji string    `json:"emoji,omitempty"`
}

type QuestionPayload struct {
	ID          uuid.UUID       `json:"id"`
	Text        string          `json:"text"`
	Type        string          `json:"type"`
	CoinsReward int             `json:"coins_reward"`
	Explanation string          `json:"explanation,omitempty"`
	Options     []OptionPayload `json:"options"`
}

// GuestSurveyResponse is the rendered payload served to anonymous
// participants; this is the shape cached in Redis.
type GuestSurveyResponse struct {
	ID          uuid.UUID         `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	CoinsReward int               `json:"coins_reward"`
	Questions   []QuestionPayload `json:"questions"`
}

type BalanceResponse struct {
	Balance int `json:"balance"`
}

type OnboardingResponse struct {
	Success             bool `json:"success,omitempty"`
	OnboardingCompleted bool `json:"onboarding_completed"`
}

// --- admin catalog DTOs ---

type UpsertOptionRequest struct {
	Text  string `json:"text"`
	Emoji string `json:"emoji,omitempty"`
}

type UpsertQuestionRequest struct {
	Text        string                `json:"text"`
	Type        string                `json:"type"`
	CoinsReward int                   `json:"coins_reward"`
	Explanation string                `json:"explanation,omitempty"`
	Options     []UpsertOptionRequest `json:"options"`
}

type UpsertSurveyRequest struct {
	Title       string                  `json:"title"`
	Description string                  `json:"description,omitempty"`
	Type        string                  `json:"type"`
	IsPublished *bool                   `json:"is_published,omitempty"`
	CoinsReward int                     `json:"coins_reward"`
	Questions   []UpsertQuestionRequest `json:"questions,omitempty"`
}
