package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/coinpoll/coinpoll-backend/internal/cache"
	"github.com/coinpoll/coinpoll-backend/internal/dto"
	"github.com/coinpoll/coinpoll-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNoGuestSurvey     = errors.New("no guest survey available")
	ErrSurveyTypeUnknown = errors.New("unknown survey type")
)

const (
	guestSurveyCacheKey = "coinpoll:guest_survey"
	guestSurveyCacheTTL = 5 * time.Minute
)

// SurveyService owns the survey catalog: guest survey selection for anonymous
// participants and the thin admin authoring API. The rendered guest survey
// payload is cached in Redis; coin balances never are.
type SurveyService struct {
	db    *gorm.DB
	cache *cache.Client
}

func NewSurveyService(db *gorm.DB, cacheClient *cache.Client) *SurveyService {
	return &SurveyService{db: db, cache: cacheClient}
}

// GetGuestSurvey picks the survey shown to anonymous participants: the
// published guest-type survey holding the designation flag, falling back to
// any published guest-type survey so a missed designation does not block the
// guest funnel entirely.
func (s *SurveyService) GetGuestSurvey(ctx context.Context) (*dto.GuestSurveyResponse, error) {
	if b := s.cache.Get(ctx, guestSurveyCacheKey); b != nil {
		var cached dto.GuestSurveyResponse
		if err := json.Unmarshal(b, &cached); err == nil {
			return &cached, nil
		}
	}

	var survey models.Survey
	err := s.loadSurveyTree(s.db.Where(
		"type = ? AND is_guest_survey = ? AND is_published = ?",
		models.SurveyTypeGuest, true, true,
	)).First(&survey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = s.loadSurveyTree(s.db.Where(
			"type = ? AND is_published = ?",
			models.SurveyTypeGuest, true,
		)).First(&survey).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoGuestSurvey
		}
		return nil, fmt.Errorf("failed to load guest survey: %w", err)
	}

	resp := renderGuestSurvey(&survey)
	if b, err := json.Marshal(resp); err == nil {
		s.cache.Set(ctx, guestSurveyCacheKey, b, guestSurveyCacheTTL)
	}
	return resp, nil
}

// SetGuestSurvey designates surveyID as the guest survey. The flag is unset
// on every other survey inside the same transaction, so at most one survey
// ever holds it.
func (s *SurveyService) SetGuestSurvey(ctx context.Context, surveyID uuid.UUID) (*models.Survey, error) {
	var survey models.Survey
	if err := s.db.First(&survey, "id = ?", surveyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSurveyNotFound
		}
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Survey{}).
			Where("is_guest_survey = ?", true).
			Update("is_guest_survey", false).Error; err != nil {
			return err
		}
		return tx.Model(&survey).Update("is_guest_survey", true).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to designate guest survey: %w", err)
	}

	survey.IsGuestSurvey = true
	s.cache.Delete(ctx, guestSurveyCacheKey)
	return &survey, nil
}

// GetSurvey loads one survey with its full question/option tree.
func (s *SurveyService) GetSurvey(surveyID uuid.UUID) (*models.Survey, error) {
	var survey models.Survey
	if err := s.loadSurveyTree(s.db).First(&survey, "id = ?", surveyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSurveyNotFound
		}
		return nil, err
	}
	return &survey, nil
}

// ListSurveys returns all surveys, newest first, without their question trees.
func (s *SurveyService) ListSurveys() ([]models.Survey, error) {
	var surveys []models.Survey
	if err := s.db.Order("created_at DESC").Find(&surveys).Error; err != nil {
		return nil, err
	}
	return surveys, nil
}

// CreateSurvey creates a survey together with its nested questions/options.
func (s *SurveyService) CreateSurvey(req *dto.UpsertSurveyRequest) (*models.Survey, error) {
	if req.Title == "" {
		return nil, errors.New("title is required")
	}
	surveyType := req.Type
	if surveyType == "" {
		surveyType = models.SurveyTypeDaily
	}
	if surveyType != models.SurveyTypeGuest && surveyType != models.SurveyTypeDaily {
		return nil, ErrSurveyTypeUnknown
	}

	survey := models.Survey{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Type:        surveyType,
		CoinsReward: req.CoinsReward,
	}
	if req.IsPublished != nil {
		survey.IsPublished = *req.IsPublished
	}
	for qi, q := range req.Questions {
		question := models.Question{
			ID:          uuid.New(),
			Text:        q.Text,
			Type:        q.Type,
			CoinsReward: q.CoinsReward,
			Explanation: q.Explanation,
			Position:    qi,
		}
		if question.Type == "" {
			question.Type = models.QuestionTypeSingleSelect
		}
		for oi, o := range q.Options {
			question.Options = append(question.Options, models.Option{
				ID:       uuid.New(),
				Text:     o.Text,
				Emoji:    o.Emoji,
				Position: oi,
			})
		}
		survey.Questions = append(survey.Questions, question)
	}

	if err := s.db.Create(&survey).Error; err != nil {
		return nil, fmt.Errorf("failed to create survey: %w", err)
	}
	return &survey, nil
}

// UpdateSurvey updates survey attributes (not the question tree; questions
// are replaced by authoring a new survey in practice).
func (s *SurveyService) UpdateSurvey(ctx context.Context, surveyID uuid.UUID, req *dto.UpsertSurveyRequest) (*models.Survey, error) {
	var survey models.Survey
	if err := s.db.First(&survey, "id = ?", surveyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSurveyNotFound
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Type != "" {
		if req.Type != models.SurveyTypeGuest && req.Type != models.SurveyTypeDaily {
			return nil, ErrSurveyTypeUnknown
		}
		updates["type"] = req.Type
	}
	if req.IsPublished != nil {
		updates["is_published"] = *req.IsPublished
	}
	if req.CoinsReward > 0 {
		updates["coins_reward"] = req.CoinsReward
	}

	if len(updates) > 0 {
		if err := s.db.Model(&survey).Updates(updates).Error; err != nil {
			return nil, err
		}
		s.cache.Delete(ctx, guestSurveyCacheKey)
	}
	return &survey, nil
}

// DeleteSurvey soft-deletes a survey; its questions and options cascade.
func (s *SurveyService) DeleteSurvey(ctx context.Context, surveyID uuid.UUID) error {
	result := s.db.Delete(&models.Survey{}, "id = ?", surveyID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSurveyNotFound
	}
	s.cache.Delete(ctx, guestSurveyCacheKey)
	return nil
}

func (s *SurveyService) loadSurveyTree(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		})
}

func renderGuestSurvey(survey *models.Survey) *dto.GuestSurveyResponse {
	resp := &dto.GuestSurveyResponse{
		ID:          survey.ID,
		Title:       survey.Title,
		Description: survey.Description,
		CoinsReward: survey.CoinsReward,
		Questions:   make([]dto.QuestionPayload, 0, len(survey.Questions)),
	}
	for _, q := range survey.Questions {
		qp := dto.QuestionPayload{
			ID:          q.ID,
			Text:        q.Text,
			Type:        q.Type,
			CoinsReward: q.CoinsReward,
			Explanation: q.Explanation,
			Options:     make([]dto.OptionPayload, 0, len(q.Options)),
		}
		for _, o := range q.Options {
			qp.Options = append(qp.Options, dto.OptionPayload{
				ID:    o.ID,
				Text:  o.Text,
				Emoji: o.Emoji,
			})
		}
		resp.Questions = append(resp.Questions, qp)
	}
	return resp
}
