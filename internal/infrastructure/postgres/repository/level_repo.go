package repository

import (
	"context"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultCommissionLevelRepository struct {
	DB *gorm.DB
}

func NewDefaultCommissionLevelRepository(db *gorm.DB) *DefaultCommissionLevelRepository {
	return &DefaultCommissionLevelRepository{DB: db}
}

func (r *DefaultCommissionLevelRepository) ActiveLevels(ctx context.Context) ([]domain.CommissionLevel, error) {
	var levelModels []models.CommissionLevelModel
	if err := r.DB.WithContext(ctx).
		Where("active = true").
		Order("level ASC").
		Find(&levelModels).Error; err != nil {
		return nil, err
	}

	levels := make([]domain.CommissionLevel, len(levelModels))
	for i, levelModel := range levelModels {
		levels[i] = mappers.ToDomainCommissionLevel(&levelModel)
	}

	return levels, nil
}
