package services

import (
	"github.com/coinpoll/coinpoll-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PointsService reads the coin ledger. The balance is always re-aggregated
// from the ledger rows; there is no stored counter to drift.
type PointsService struct {
	db *gorm.DB
}

func NewPointsService(db *gorm.DB) *PointsService {
	return &PointsService{db: db}
}

// Balance returns SUM(amount) over the user's ledger entries.
func (s *PointsService) Balance(userID uuid.UUID) (int, error) {
	var sum *int
	err := s.db.Model(&models.UserPoint{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}

// History returns the user's ledger entries newest-first with the total count.
func (s *PointsService) History(userID uuid.UUID, limit, offset int) ([]models.UserPoint, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := s.db.Model(&models.UserPoint{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var points []models.UserPoint
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&points).Error
	if err != nil {
		return nil, 0, err
	}
	return points, total, nil
}
