package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/coinpoll/coinpoll-backend/internal/config"
	"github.com/coinpoll/coinpoll-backend/internal/database"
	"github.com/coinpoll/coinpoll-backend/internal/dto"
	"github.com/coinpoll/coinpoll-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory SQLite database with the full schema.
// The single connection keeps the shared-cache memory DB alive for the test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: 168 * time.Hour,
		GuestEmailDomain: "guest.test",
	}
}

// createGuestSurvey seeds a published guest survey with two questions worth
// 5 and 3 coins and a completion bonus of 10.
func createGuestSurvey(t *testing.T, db *gorm.DB, designated bool) *models.Survey {
	t.Helper()

	survey := &models.Survey{
		ID:            uuid.New(),
		Title:         "Quick intro survey",
		Type:          models.SurveyTypeGuest,
		IsPublished:   true,
		IsGuestSurvey: designated,
		CoinsReward:   10,
		Questions: []models.Question{
			{
				ID:          uuid.New(),
				Text:        "Pick one",
				Type:        models.QuestionTypeSingleSelect,
				CoinsReward: 5,
				Position:    0,
				Options: []models.Option{
					{ID: uuid.New(), Text: "A", Position: 0},
					{ID: uuid.New(), Text: "B", Position: 1},
				},
			},
			{
				ID:          uuid.New(),
				Text:        "Pick many",
				Type:        models.QuestionTypeMultiSelect,
				CoinsReward: 3,
				Position:    1,
				Options: []models.Option{
					{ID: uuid.New(), Text: "X", Position: 0},
					{ID: uuid.New(), Text: "Y", Position: 1},
				},
			},
		},
	}
	if err := db.Create(survey).Error; err != nil {
		t.Fatalf("failed to seed survey: %v", err)
	}
	return survey
}

func createRegisteredUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{
		ID:       uuid.New(),
		Email:    &email,
		Password: "not-a-real-hash",
		Name:     "Tester",
		Role:     "user",
		Kind:     models.UserKindRegistered,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

// fullAnswers builds one answer per survey question, first option each.
func fullAnswers(survey *models.Survey) []dto.AnswerItem {
	answers := make([]dto.AnswerItem, 0, len(survey.Questions))
	for _, q := range survey.Questions {
		answers = append(answers, dto.AnswerItem{
			QuestionID: q.ID.String(),
			Answer:     dto.AnswerValue{q.Options[0].ID.String()},
		})
	}
	return answers
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var count int64
	if err := db.Model(model).Where(query, args...).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	return count
}
