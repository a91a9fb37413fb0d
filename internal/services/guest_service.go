package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/coinpoll/coinpoll-backend/internal/config"
	"github.com/coinpoll/coinpoll-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrInvalidGuest = errors.New("guest id does not resolve to a guest identity")

// GuestService creates guest placeholder identities for anonymous
// participation and folds their answers and coins into a registered account
// when the guest signs up.
type GuestService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewGuestService(db *gorm.DB, cfg *config.Config) *GuestService {
	return &GuestService{db: db, cfg: cfg}
}

// MigrationResult reports the outcome of a guest-to-user migration.
type MigrationResult struct {
	Migrated         bool `json:"migrated"`
	CoinsTransferred int  `json:"coins_transferred"`
}

// ResolveOrCreateGuest returns the guest user for guestID, or creates a fresh
// guest identity when guestID is empty. A non-empty id that does not resolve
// to a guest-kind user fails with ErrInvalidGuest.
func (s *GuestService) ResolveOrCreateGuest(guestID string) (*models.User, error) {
	if guestID != "" {
		id, err := uuid.Parse(guestID)
		if err != nil {
			return nil, ErrInvalidGuest
		}
		var user models.User
		if err := s.db.First(&user, "id = ?", id).Error; err != nil {
			return nil, ErrInvalidGuest
		}
		if !user.IsGuest() {
			return nil, ErrInvalidGuest
		}
		return &user, nil
	}

	// Guests get a synthetic unique email so the identity uniqueness
	// contract holds; all guest logic keys off Kind, not the address.
	email := fmt.Sprintf("guest_%d_%s@%s", time.Now().Unix(), randomSuffix(), s.cfg.GuestEmailDomain)
	user := models.User{
		ID:    uuid.New(),
		Email: &email,
		Name:  "Guest",
		Role:  "user",
		Kind:  models.UserKindGuest,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create guest user: %w", err)
	}
	return &user, nil
}

// MigrateGuestToUser re-parents every answer, coin ledger entry and survey
// completion owned by the guest onto the new user, then deletes the guest.
// The whole operation is one transaction: it either fully applies or the
// guest retains ownership. No coin amount is created or destroyed.
func (s *GuestService) MigrateGuestToUser(guestID, newUserID uuid.UUID) (*MigrationResult, error) {
	var guest models.User
	if err := s.db.First(&guest, "id = ?", guestID).Error; err != nil {
		return &MigrationResult{}, ErrInvalidGuest
	}
	if !guest.IsGuest() {
		return &MigrationResult{}, ErrInvalidGuest
	}

	var target models.User
	if err := s.db.First(&target, "id = ?", newUserID).Error; err != nil {
		return &MigrationResult{}, fmt.Errorf("target user not found: %w", err)
	}

	var coinsTransferred int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var sum *int
		if err := tx.Model(&models.UserPoint{}).
			Where("user_id = ?", guestID).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&sum).Error; err != nil {
			return err
		}
		if sum != nil {
			coinsTransferred = *sum
		}

		if err := tx.Model(&models.UserAnswer{}).
			Where("user_id = ?", guestID).
			Update("user_id", newUserID).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.UserPoint{}).
			Where("user_id = ?", guestID).
			Update("user_id", newUserID).Error; err != nil {
			return err
		}

		// Completions move too, so a migrated user cannot re-answer a
		// survey their guest self already submitted. Completions that
		// would collide with one the target already holds are dropped.
		existing := tx.Model(&models.SurveyCompletion{}).
			Select("survey_id").
			Where("user_id = ?", newUserID)
		if err := tx.Model(&models.SurveyCompletion{}).
			Where("user_id = ? AND survey_id NOT IN (?)", guestID, existing).
			Update("user_id", newUserID).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", guestID).
			Delete(&models.SurveyCompletion{}).Error; err != nil {
			return err
		}

		return tx.Unscoped().Delete(&models.User{}, "id = ?", guestID).Error
	})
	if err != nil {
		return &MigrationResult{}, fmt.Errorf("guest migration failed: %w", err)
	}

	return &MigrationResult{Migrated: true, CoinsTransferred: coinsTransferred}, nil
}

func randomSuffix() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return uuid.NewString()[:8]
	}
	return hex.EncodeToString(b)
}
