package usecase

import (
	"context"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/shopspring/decimal"
)

// WalletUsecase is the read-only surface for withdrawal and reporting
// flows; writes go through disbursement only.
type WalletUsecase interface {
	WalletBalance(ctx context.Context, accountID string) (decimal.Decimal, error)
	CommissionHistory(ctx context.Context, accountID string, status *domain.CommissionStatus) ([]*domain.CommissionRecord, error)
}

type DefaultWalletUsecase struct {
	WalletRepo     domain.WalletRepository
	CommissionRepo domain.CommissionRepository
}

func NewDefaultWalletUsecase(walletRepo domain.WalletRepository, commissionRepo domain.CommissionRepository) *DefaultWalletUsecase {
	return &DefaultWalletUsecase{
		WalletRepo:     walletRepo,
		CommissionRepo: commissionRepo,
	}
}

func (uc *DefaultWalletUsecase) WalletBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	return uc.WalletRepo.WalletBalance(ctx, accountID)
}

func (uc *DefaultWalletUsecase) CommissionHistory(ctx context.Context, accountID string, status *domain.CommissionStatus) ([]*domain.CommissionRecord, error) {
	return uc.CommissionRepo.CommissionHistory(ctx, accountID, status)
}
