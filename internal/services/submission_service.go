package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/coinpoll/coinpoll-backend/internal/dto"
	"github.com/coinpoll/coinpoll-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrSurveyNotFound     = errors.New("survey not found")
	ErrSurveyNotPublished = errors.New("survey is not published")
	ErrAlreadyAnswered    = errors.New("survey already answered")
)

// Per-answer ledger reason; the completion bonus gets its own reason string
// built from the survey title.
const reasonSurveyAnswer = "Survey answer"

// SubmissionService turns a batch of answers into answer rows and coin ledger
// entries. A submission is all-or-nothing: every row it produces is written
// in one transaction.
type SubmissionService struct {
	db *gorm.DB
}

func NewSubmissionService(db *gorm.DB) *SubmissionService {
	return &SubmissionService{db: db}
}

// SubmitResult is the outcome of an accepted submission.
type SubmitResult struct {
	TotalCoinsEarned int
	AnswersAccepted  int
	Completed        bool
}

// Submit validates answers against the survey's question set, writes one
// UserAnswer per accepted answer, one UserPoint per positive per-answer
// reward, and the completion bonus when every question was answered.
//
// enforceSingle is true on the authenticated path: a completion row under a
// unique (user, survey) index is inserted in the same transaction, so a
// concurrent duplicate fails inside the transaction and writes nothing. The
// guest path passes false and treats every call as a fresh submission.
func (s *SubmissionService) Submit(userID, surveyID uuid.UUID, answers []dto.AnswerItem, enforceSingle bool) (*SubmitResult, error) {
	var survey models.Survey
	err := s.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&survey, "id = ?", surveyID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to load survey: %w", err)
	}
	if !survey.IsPublished {
		return nil, ErrSurveyNotPublished
	}

	if enforceSingle {
		var count int64
		if err := s.db.Model(&models.SurveyCompletion{}).
			Where("user_id = ? AND survey_id = ?", userID, surveyID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrAlreadyAnswered
		}
	}

	questionsByID := make(map[uuid.UUID]*models.Question, len(survey.Questions))
	for i := range survey.Questions {
		questionsByID[survey.Questions[i].ID] = &survey.Questions[i]
	}

	// Unknown question ids are dropped silently rather than rejected, so a
	// client sending stale ids does not fail an otherwise valid submission.
	// Duplicates keep the first occurrence only.
	type accepted struct {
		question *models.Question
		value    dto.AnswerValue
	}
	var batch []accepted
	seen := make(map[uuid.UUID]bool)
	for _, item := range answers {
		qid, err := uuid.Parse(item.QuestionID)
		if err != nil {
			continue
		}
		q, ok := questionsByID[qid]
		if !ok || seen[qid] {
			continue
		}
		seen[qid] = true
		batch = append(batch, accepted{question: q, value: item.Answer})
	}

	// Completion requires the set of answered question ids to equal the
	// survey's question id set. Accepted answers are a deduplicated subset
	// of the survey's questions, so cardinality equality is set equality.
	completed := len(survey.Questions) > 0 && len(batch) == len(survey.Questions)

	result := &SubmitResult{AnswersAccepted: len(batch), Completed: completed}

	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		for _, a := range batch {
			value, err := json.Marshal([]string(a.value))
			if err != nil {
				return fmt.Errorf("failed to serialize answer: %w", err)
			}

			coins := a.question.CoinsReward
			answer := models.UserAnswer{
				ID:          uuid.New(),
				UserID:      userID,
				SurveyID:    surveyID,
				QuestionID:  a.question.ID,
				Value:       datatypes.JSON(value),
				CoinsEarned: coins,
			}
			if err := tx.Create(&answer).Error; err != nil {
				return err
			}

			if coins > 0 {
				point := models.UserPoint{
					ID:       uuid.New(),
					UserID:   userID,
					Amount:   coins,
					Reason:   reasonSurveyAnswer,
					SurveyID: &surveyID,
				}
				if err := tx.Create(&point).Error; err != nil {
					return err
				}
				result.TotalCoinsEarned += coins
			}
		}

		if completed && survey.CoinsReward > 0 {
			bonus := models.UserPoint{
				ID:       uuid.New(),
				UserID:   userID,
				Amount:   survey.CoinsReward,
				Reason:   fmt.Sprintf("Survey completed: %s", survey.Title),
				SurveyID: &surveyID,
			}
			if err := tx.Create(&bonus).Error; err != nil {
				return err
			}
			result.TotalCoinsEarned += survey.CoinsReward
		}

		if enforceSingle {
			completion := models.SurveyCompletion{
				ID:          uuid.New(),
				UserID:      userID,
				SurveyID:    surveyID,
				CoinsEarned: result.TotalCoinsEarned,
			}
			if err := tx.Create(&completion).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if txErr != nil {
		if errors.Is(txErr, gorm.ErrDuplicatedKey) {
			// Lost the race on the (user, survey) unique index.
			return nil, ErrAlreadyAnswered
		}
		return nil, txErr
	}

	return result, nil
}
