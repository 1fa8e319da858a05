package repository

import (
	"context"
	"errors"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultTransactionRepository struct {
	DB *gorm.DB
}

func NewDefaultTransactionRepository(db *gorm.DB) *DefaultTransactionRepository {
	return &DefaultTransactionRepository{DB: db}
}

func (r *DefaultTransactionRepository) GetTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	var transactionModel models.TransactionModel
	if err := r.DB.WithContext(ctx).First(&transactionModel, "id = ?", transactionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return mappers.ToDomainTransaction(&transactionModel), nil
}

func (r *DefaultTransactionRepository) ListUnprocessedByAccount(ctx context.Context, accountID string, period domain.Period) ([]*domain.Transaction, error) {
	var transactionModels []models.TransactionModel
	if err := r.DB.WithContext(ctx).
		Where("buyer_account_id = ? AND period = ? AND processed = false", accountID, period).
		Order("created_at ASC").
		Find(&transactionModels).Error; err != nil {
		return nil, err
	}

	transactions := make([]*domain.Transaction, len(transactionModels))
	for i, transactionModel := range transactionModels {
		transactions[i] = mappers.ToDomainTransaction(&transactionModel)
	}

	return transactions, nil
}

func (r *DefaultTransactionRepository) ListAccountIDsWithSales(ctx context.Context, period domain.Period) ([]string, error) {
	var accountIDs []string
	if err := r.DB.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Where("period = ? AND processed = false", period).
		Distinct().
		Pluck("buyer_account_id", &accountIDs).Error; err != nil {
		return nil, err
	}

	return accountIDs, nil
}

func (r *DefaultTransactionRepository) MarkProcessed(ctx context.Context, transactionID string) error {
	return r.DB.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Where("id = ?", transactionID).
		Update("processed", true).Error
}
