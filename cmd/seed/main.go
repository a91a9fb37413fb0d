package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/coinpoll/coinpoll-backend/internal/config"
	"github.com/coinpoll/coinpoll-backend/internal/database"
	"github.com/coinpoll/coinpoll-backend/internal/dto"
	"github.com/coinpoll/coinpoll-backend/internal/logging"
	"github.com/coinpoll/coinpoll-backend/internal/models"
	"github.com/coinpoll/coinpoll-backend/internal/services"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Seeds an admin user and a published, designated guest survey so a fresh
// environment has a working guest funnel out of the box.
func main() {
	logging.Setup()
	cfg := config.Load()

	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}
	db := database.DB

	adminEmail := "admin@coinpoll.app"
	var admin models.User
	if err := db.Where("email = ?", adminEmail).First(&admin).Error; err != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte("changeme-admin"), bcrypt.DefaultCost)
		if err != nil {
			slog.Error("failed to hash admin password", "error", err)
			os.Exit(1)
		}
		admin = models.User{
			ID:       uuid.New(),
			Email:    &adminEmail,
			Password: string(hash),
			Name:     "Admin",
			Role:     "admin",
			Kind:     models.UserKindRegistered,
		}
		if err := db.Create(&admin).Error; err != nil {
			slog.Error("failed to create admin user", "error", err)
			os.Exit(1)
		}
		slog.Info("admin user created", "email", adminEmail)
	}

	var count int64
	db.Model(&models.Survey{}).Where("type = ?", models.SurveyTypeGuest).Count(&count)
	if count > 0 {
		slog.Info("guest survey already seeded, nothing to do")
		return
	}

	surveys := services.NewSurveyService(db, nil)
	published := true
	survey, err := surveys.CreateSurvey(&dto.UpsertSurveyRequest{
		Title:       "Welcome to CoinPoll",
		Description: "Answer a couple of quick questions and earn your first coins.",
		Type:        models.SurveyTypeGuest,
		IsPublished: &published,
		CoinsReward: 10,
		Questions: []dto.UpsertQuestionRequest{
			{
				Text:        "How do you usually discover new apps?",
				Type:        models.QuestionTypeSingleSelect,
				CoinsReward: 5,
				Options: []dto.UpsertOptionRequest{
					{Text: "Friends", Emoji: "🗣️"},
					{Text: "App store charts", Emoji: "📈"},
					{Text: "Social media", Emoji: "📱"},
					{Text: "Ads", Emoji: "📺"},
				},
			},
			{
				Text:        "Which rewards interest you most?",
				Type:        models.QuestionTypeMultiSelect,
				CoinsReward: 3,
				Options: []dto.UpsertOptionRequest{
					{Text: "Gift cards", Emoji: "🎁"},
					{Text: "Discounts", Emoji: "🏷️"},
					{Text: "Donations", Emoji: "💝"},
				},
			},
		},
	})
	if err != nil {
		slog.Error("failed to seed guest survey", "error", err)
		os.Exit(1)
	}

	if _, err := surveys.SetGuestSurvey(context.Background(), survey.ID); err != nil {
		slog.Error("failed to designate guest survey", "error", err)
		os.Exit(1)
	}

	slog.Info("guest survey seeded", "survey_id", survey.ID, "questions", len(survey.Questions))
}
