package repository

import (
	"context"
	"errors"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultAccountRepository struct {
	DB *gorm.DB
}

func NewDefaultAccountRepository(db *gorm.DB) *DefaultAccountRepository {
	return &DefaultAccountRepository{DB: db}
}

// GetAccountByID returns (nil, nil) for an unknown account: the callers
// decide whether that is a validation fault or a data-integrity one.
func (r *DefaultAccountRepository) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	var accountModel models.AccountModel
	if err := r.DB.WithContext(ctx).First(&accountModel, "id = ?", accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return mappers.ToDomainAccount(&accountModel), nil
}

func (r *DefaultAccountRepository) UpdateAccountRank(ctx context.Context, accountID string, rank domain.RankName) error {
	return r.DB.WithContext(ctx).
		Model(&models.AccountModel{}).
		Where("id = ?", accountID).
		Update("rank", rank).Error
}

func (r *DefaultAccountRepository) ListActiveAccountIDs(ctx context.Context) ([]string, error) {
	var accountIDs []string
	if err := r.DB.WithContext(ctx).
		Model(&models.AccountModel{}).
		Where("status = ?", domain.AccountActive).
		Pluck("id", &accountIDs).Error; err != nil {
		return nil, err
	}

	return accountIDs, nil
}
