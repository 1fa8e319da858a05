package repository

import (
	"context"
	"errors"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultReferralGraphRepository is the read-only view over the account
// forest plus the period volumes derived from it.
type DefaultReferralGraphRepository struct {
	DB *gorm.DB
}

func NewDefaultReferralGraphRepository(db *gorm.DB) *DefaultReferralGraphRepository {
	return &DefaultReferralGraphRepository{DB: db}
}

// UplineChain walks parent pointers iteratively rather than trusting
// the stored graph to terminate: malformed cyclic data fails the walk
// instead of hanging it.
func (r *DefaultReferralGraphRepository) UplineChain(ctx context.Context, accountID string, maxDepth int) ([]string, error) {
	parentOf := func(id string) (*string, error) {
		var accountModel models.AccountModel
		if err := r.DB.WithContext(ctx).
			Select("id", "upline_id").
			First(&accountModel, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.Integrity(domain.ErrAccountNotFound)
			}
			return nil, err
		}
		return accountModel.UplineID, nil
	}

	return domain.WalkUpline(parentOf, accountID, maxDepth)
}

func (r *DefaultReferralGraphRepository) QualifyingLegCount(ctx context.Context, accountID string, period domain.Period) (int, error) {
	var count int64
	err := r.DB.WithContext(ctx).
		Model(&models.AccountModel{}).
		Joins("JOIN transactions ON transactions.buyer_account_id = accounts.id").
		Where("accounts.upline_id = ? AND transactions.period = ?", accountID, period).
		Distinct("accounts.id").
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return int(count), nil
}

// AccountVolumes computes PV as the account's own sales for the period
// and GV over the bounded downline subtree.
func (r *DefaultReferralGraphRepository) AccountVolumes(ctx context.Context, accountID string, period domain.Period) (gv, pv decimal.Decimal, err error) {
	err = r.DB.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Where("buyer_account_id = ? AND period = ?", accountID, period).
		Select("COALESCE(SUM(amount), 0)").
		Row().
		Scan(&pv)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	err = r.DB.WithContext(ctx).Raw(`
		WITH RECURSIVE downline AS (
			SELECT id, 0 AS depth FROM accounts WHERE id = ?
			UNION ALL
			SELECT a.id, d.depth + 1
			FROM accounts a
			JOIN downline d ON a.upline_id = d.id
			WHERE d.depth < ?
		)
		SELECT COALESCE(SUM(t.amount), 0)
		FROM transactions t
		JOIN downline d ON t.buyer_account_id = d.id
		WHERE t.period = ?`,
		accountID, domain.MaxUplineHops, period,
	).Row().Scan(&gv)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return gv, pv, nil
}
