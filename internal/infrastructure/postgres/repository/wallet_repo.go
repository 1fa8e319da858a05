package repository

import (
	"context"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DefaultWalletRepository struct {
	DB *gorm.DB
}

func NewDefaultWalletRepository(db *gorm.DB) *DefaultWalletRepository {
	return &DefaultWalletRepository{DB: db}
}

// WalletBalance folds the append-only ledger for the account.
func (r *DefaultWalletRepository) WalletBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.DB.WithContext(ctx).
		Model(&models.WalletLedgerEntryModel{}).
		Where("account_id = ?", accountID).
		Select("COALESCE(SUM(amount), 0)").
		Row().
		Scan(&balance)
	if err != nil {
		return decimal.Zero, err
	}

	return balance, nil
}

func (r *DefaultWalletRepository) HasEntryForReference(ctx context.Context, reference string) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).
		Model(&models.WalletLedgerEntryModel{}).
		Where("reference = ?", reference).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *DefaultWalletRepository) ListEntriesByAccount(ctx context.Context, accountID string) ([]*domain.WalletLedgerEntry, error) {
	var entryModels []models.WalletLedgerEntryModel
	if err := r.DB.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}

	entries := make([]*domain.WalletLedgerEntry, len(entryModels))
	for i, entryModel := range entryModels {
		entries[i] = mappers.ToDomainWalletEntry(&entryModel)
	}

	return entries, nil
}
