package routes

import (
	"time"

	"github.com/coinpoll/coinpoll-backend/internal/config"
	"github.com/coinpoll/coinpoll-backend/internal/handlers"
	"github.com/coinpoll/coinpoll-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	surveyHandler *handlers.SurveyHandler,
	pointsHandler *handlers.PointsHandler,
	deviceHandler *handlers.DeviceHandler,
	adminSurveyHandler *handlers.AdminSurveyHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Guest funnel — no credential required
	api.Get("/surveys/guest", surveyHandler.GetGuestSurvey)
	api.Post("/surveys/guest/submit", surveyHandler.SubmitGuestAnswers)

	// Device onboarding — pre-identity, keyed by opaque device id
	api.Get("/devices/:device_id/onboarding", deviceHandler.CheckOnboarding)
	api.Post("/devices/:device_id/onboarding/complete", deviceHandler.CompleteOnboarding)

	// Auth — stricter rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/signup", authHandler.Signup)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	// Protected routes (JWT required) - apply middleware per route so the
	// public routes above stay public
	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)
	api.Post("/surveys/:id/submit", middleware.JWTProtected(cfg), surveyHandler.SubmitSurveyAnswers)
	api.Get("/points/balance", middleware.JWTProtected(cfg), pointsHandler.GetBalance)
	api.Get("/points/history", middleware.JWTProtected(cfg), pointsHandler.GetHistory)

	// Admin catalog authoring (JWT + admin required)
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg))
	admin.Get("/surveys", adminSurveyHandler.ListSurveys)
	admin.Post("/surveys", adminSurveyHandler.CreateSurvey)
	admin.Get("/surveys/:id", adminSurveyHandler.GetSurvey)
	admin.Put("/surveys/:id", adminSurveyHandler.UpdateSurvey)
	admin.Delete("/surveys/:id", adminSurveyHandler.DeleteSurvey)
	admin.Put("/surveys/:id/guest", adminSurveyHandler.SetGuestSurvey)
}
